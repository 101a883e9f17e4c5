// Package scoring computes technical, price and global scores for the
// companies of a lot in a given negotiation version. Every function here is
// pure: results are derived on each call and never written back.
package scoring

import "github.com/rpggio/tenderscore/internal/domain/project"

// CriterionScore is the contribution of one criterion to a company's total.
type CriterionScore struct {
	CriterionID string       `json:"criterionId"`
	Role        project.Role `json:"role"`
	Weight      float64      `json:"weight"`
	Score       float64      `json:"score"`
}

// CompanyScore holds every derived number for one company.
type CompanyScore struct {
	CompanyID int              `json:"companyId"`
	Name      string           `json:"name"`
	Excluded  bool             `json:"excluded"`
	Criteria  []CriterionScore `json:"criteria"`

	// Technical, Environmental and Planning group the criterion scores by role.
	Technical     float64 `json:"technical"`
	Environmental float64 `json:"environmental"`
	Planning      float64 `json:"planning"`

	TechnicalTotal float64 `json:"technicalTotal"`
	TotalPrice     float64 `json:"totalPrice"`
	PriceScore     float64 `json:"priceScore"`
	GlobalScore    float64 `json:"globalScore"`

	// Rank is 1-based; 0 means unranked (excluded, or weights invalid).
	Rank int `json:"rank"`
}

// Result is the ranked synthesis of a lot version.
type Result struct {
	LotID        string  `json:"lotId"`
	VersionID    string  `json:"versionId"`
	WeightTotal  float64 `json:"weightTotal"`
	WeightsValid bool    `json:"weightsValid"`
	PriceWeight  float64 `json:"priceWeight"`
	MinTotal     float64 `json:"minTotal"`

	// Companies are in ranking order.
	Companies []CompanyScore `json:"companies"`
}

// Company returns the score of a company by id.
func (r *Result) Company(id int) (CompanyScore, bool) {
	for _, c := range r.Companies {
		if c.CompanyID == id {
			return c, true
		}
	}
	return CompanyScore{}, false
}
