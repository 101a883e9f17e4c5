package scoring

import "github.com/rpggio/tenderscore/internal/domain/project"

// LineView is one priced line of a company in the export view.
type LineView struct {
	LineID    int              `json:"lineId"`
	Label     string           `json:"label"`
	Kind      project.LineKind `json:"kind,omitempty"`
	Active    bool             `json:"active"`
	Offered   project.Amounts  `json:"offered"`
	Deviation Deviation        `json:"deviation"`
}

// CompanyView pairs a company's scores with its priced lines.
type CompanyView struct {
	CompanyScore
	Decision project.Decision `json:"decision"`
	Lines    []LineView       `json:"lines"`
}

// LotView is the read model handed to export renderers.
type LotView struct {
	LotID        string        `json:"lotId"`
	LotLabel     string        `json:"lotLabel"`
	LotNumber    string        `json:"lotNumber"`
	VersionID    string        `json:"versionId"`
	VersionLabel string        `json:"versionLabel"`
	ReadOnly     bool          `json:"readOnly"`
	WeightTotal  float64       `json:"weightTotal"`
	WeightsValid bool          `json:"weightsValid"`
	Companies    []CompanyView `json:"companies"`
}

// View builds the export view of a lot version, in ranking order.
func View(lot *project.Lot, version *project.NegotiationVersion) LotView {
	result := Compute(lot, version)
	view := LotView{Companies: []CompanyView{}}
	if lot == nil || version == nil {
		return view
	}
	view.LotID = lot.ID
	view.LotLabel = lot.Label
	view.LotNumber = lot.Number
	view.VersionID = version.ID
	view.VersionLabel = version.Label
	view.ReadOnly = version.ReadOnly()
	view.WeightTotal = result.WeightTotal
	view.WeightsValid = result.WeightsValid

	for _, score := range result.Companies {
		cv := CompanyView{
			CompanyScore: score,
			Decision:     version.Decisions[score.CompanyID],
			Lines:        []LineView{},
		}
		base, _ := version.Price(score.CompanyID, project.BaseLineID)
		cv.Lines = append(cv.Lines, lineView(project.BaseLineID, "", "", true, base, lot.BaseEstimate))
		for _, line := range lot.Lines {
			entry, _ := version.Price(score.CompanyID, line.ID)
			cv.Lines = append(cv.Lines, lineView(line.ID, line.Label, line.Kind, line.Active, entry, line.Estimate))
		}
		view.Companies = append(view.Companies, cv)
	}
	return view
}

func lineView(id int, label string, kind project.LineKind, active bool, entry project.PriceEntry, estimate project.Amounts) LineView {
	offered := project.Amounts{DPGF1: entry.DPGF1, DPGF2: entry.DPGF2}
	return LineView{
		LineID:    id,
		Label:     label,
		Kind:      kind,
		Active:    active,
		Offered:   offered,
		Deviation: Deviate(offered.DPGF1+offered.DPGF2, estimate.DPGF1+estimate.DPGF2),
	}
}
