package scoring

import (
	"github.com/shopspring/decimal"

	"github.com/rpggio/tenderscore/internal/domain/project"
)

var five = decimal.NewFromInt(5)

// NotationValue maps the technical scale to 1..5. Unrated returns 0.
func NotationValue(n project.Notation) int {
	switch n {
	case project.NotationInsufficient:
		return 1
	case project.NotationPassable:
		return 2
	case project.NotationAverage:
		return 3
	case project.NotationGood:
		return 4
	case project.NotationVeryGood:
		return 5
	default:
		return 0
	}
}

// Compute scores every company of the version roster. It never fails:
// missing notes and prices count as zero.
func Compute(lot *project.Lot, version *project.NegotiationVersion) Result {
	result := Result{Companies: []CompanyScore{}}
	if lot == nil || version == nil {
		return result
	}

	result.LotID = lot.ID
	result.VersionID = version.ID
	result.WeightTotal = lot.WeightTotal()
	result.WeightsValid = lot.CheckWeights() == nil
	result.PriceWeight = lot.PriceWeight()

	companies := rosterCompanies(lot, version)
	totals := make(map[int]decimal.Decimal, len(companies))
	for _, c := range companies {
		if c.Excluded() {
			continue
		}
		totals[c.ID] = TotalPrice(lot, version, c.ID)
	}
	minTotal := minPositive(totals)
	result.MinTotal = minTotal.InexactFloat64()

	for _, c := range companies {
		score := CompanyScore{
			CompanyID: c.ID,
			Name:      c.Name,
			Excluded:  c.Excluded(),
			Criteria:  make([]CriterionScore, 0, len(lot.Criteria)),
		}
		for i := range lot.Criteria {
			crit := &lot.Criteria[i]
			if crit.Role == project.RolePrice {
				continue
			}
			value := 0.0
			if !score.Excluded {
				value = criterionScore(crit, version, c.ID)
			}
			score.Criteria = append(score.Criteria, CriterionScore{
				CriterionID: crit.ID,
				Role:        crit.Role,
				Weight:      crit.Weight,
				Score:       value,
			})
			switch crit.Role {
			case project.RoleEnvironmental:
				score.Environmental += value
			case project.RolePlanning:
				score.Planning += value
			default:
				score.Technical += value
			}
			score.TechnicalTotal += value
		}

		if !score.Excluded {
			total := totals[c.ID]
			score.TotalPrice = total.InexactFloat64()
			score.PriceScore = PriceScore(minTotal, total, result.PriceWeight)
		}
		score.GlobalScore = score.TechnicalTotal + score.PriceScore
		result.Companies = append(result.Companies, score)
	}

	Rank(result.Companies, result.WeightsValid)
	return result
}

// ComputeCurrent scores the lot's current version.
func ComputeCurrent(lot *project.Lot) Result {
	if lot == nil {
		return Result{Companies: []CompanyScore{}}
	}
	version, err := lot.CurrentVersion()
	if err != nil {
		return Result{LotID: lot.ID, Companies: []CompanyScore{}}
	}
	return Compute(lot, version)
}

func rosterCompanies(lot *project.Lot, version *project.NegotiationVersion) []project.Company {
	out := make([]project.Company, 0, len(lot.Companies))
	for _, c := range lot.Companies {
		if version.InRoster(c.ID) {
			out = append(out, c)
		}
	}
	return out
}

// criterionScore applies the notation scale to one criterion. Sub-criterion
// weights are renormalised to sum to 1; unrated sub-criteria contribute 0.
func criterionScore(crit *project.Criterion, version *project.NegotiationVersion, companyID int) float64 {
	weight := decimal.NewFromFloat(crit.Weight)

	if len(crit.SubCriteria) == 0 {
		note, ok := version.Note(companyID, crit.ID, "")
		if !ok {
			return 0
		}
		value := NotationValue(note.Notation)
		if value == 0 {
			return 0
		}
		return decimal.NewFromInt(int64(value)).Div(five).Mul(weight).InexactFloat64()
	}

	subTotal := decimal.Zero
	for _, sub := range crit.SubCriteria {
		subTotal = subTotal.Add(decimal.NewFromInt(int64(sub.Weight)))
	}
	if subTotal.IsZero() {
		return 0
	}

	acc := decimal.Zero
	for _, sub := range crit.SubCriteria {
		note, ok := version.Note(companyID, crit.ID, sub.ID)
		if !ok {
			continue
		}
		value := NotationValue(note.Notation)
		if value == 0 {
			continue
		}
		share := decimal.NewFromInt(int64(sub.Weight)).Div(subTotal)
		acc = acc.Add(decimal.NewFromInt(int64(value)).Mul(share))
	}
	return acc.Div(five).Mul(weight).InexactFloat64()
}
