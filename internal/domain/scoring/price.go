package scoring

import (
	"github.com/shopspring/decimal"

	"github.com/rpggio/tenderscore/internal/domain/project"
)

// TotalPrice sums DPGF1 + DPGF2 over the base entry and every active lot line.
func TotalPrice(lot *project.Lot, version *project.NegotiationVersion, companyID int) decimal.Decimal {
	total := decimal.Zero
	if entry, ok := version.Price(companyID, project.BaseLineID); ok {
		total = total.Add(entryAmount(entry))
	}
	for _, line := range lot.Lines {
		if !line.Active {
			continue
		}
		if entry, ok := version.Price(companyID, line.ID); ok {
			total = total.Add(entryAmount(entry))
		}
	}
	return total
}

// PriceScore is the lowest-cost-normalised score: minTotal/total * weight.
// A non-positive total scores 0.
func PriceScore(minTotal, total decimal.Decimal, weight float64) float64 {
	if !total.IsPositive() || !minTotal.IsPositive() {
		return 0
	}
	return minTotal.Div(total).Mul(decimal.NewFromFloat(weight)).InexactFloat64()
}

func entryAmount(entry project.PriceEntry) decimal.Decimal {
	return decimal.NewFromFloat(entry.DPGF1).Add(decimal.NewFromFloat(entry.DPGF2))
}

func minPositive(totals map[int]decimal.Decimal) decimal.Decimal {
	minTotal := decimal.Zero
	for _, total := range totals {
		if !total.IsPositive() {
			continue
		}
		if minTotal.IsZero() || total.LessThan(minTotal) {
			minTotal = total
		}
	}
	return minTotal
}
