package project

import "time"

// Limits applied to a lot.
const (
	MaxCompanies    = 16
	MaxCompanyID    = 30
	MaxLines        = 12
	MaxVersions     = 3
	MaxSubCriteria  = 20
	BaseLineID      = 0
	InitialVersion  = "Analyse initiale"
	RequiredWeights = 100.0
)

// CompanyStatus is the lot-level standing of a company.
type CompanyStatus string

const (
	StatusUndecided CompanyStatus = "undecided"
	StatusRetained  CompanyStatus = "retained"
	StatusExcluded  CompanyStatus = "excluded"
)

// LineKind tags optional or alternative price lines.
type LineKind string

const (
	KindStandard        LineKind = ""
	KindPSE             LineKind = "PSE"
	KindVariante        LineKind = "VARIANTE"
	KindOptionalTranche LineKind = "OPTIONAL_TRANCHE"
)

// Sheet selects which estimation sheet(s) a line belongs to.
type Sheet string

const (
	SheetDPGF1 Sheet = "dpgf1"
	SheetDPGF2 Sheet = "dpgf2"
	SheetBoth  Sheet = "both"
)

// Role tells the scoring engine how a criterion participates in the total.
type Role string

const (
	RoleGeneric       Role = "generic"
	RolePrice         Role = "price"
	RoleEnvironmental Role = "environmental"
	RolePlanning      Role = "planning"
)

// Notation is the 5-level technical scale. The empty value means "not rated".
type Notation string

const (
	NotationNone         Notation = ""
	NotationInsufficient Notation = "insufficient"
	NotationPassable     Notation = "passable"
	NotationAverage      Notation = "average"
	NotationGood         Notation = "good"
	NotationVeryGood     Notation = "very_good"
)

// Decision is the outcome recorded for a company in a negotiation round.
type Decision string

const (
	DecisionUndecided   Decision = "undecided"
	DecisionRetained    Decision = "retained"
	DecisionNotRetained Decision = "not_retained"
	DecisionAwardee     Decision = "awardee"
)

// Project is the full document persisted per project id.
type Project struct {
	ID           string `json:"id" validate:"required,max=128"`
	Info         Info   `json:"info"`
	Lots         []Lot  `json:"lots" validate:"dive"`
	CurrentLotID string `json:"currentLotId,omitempty"`
}

// Info is the free-form header of a project.
type Info struct {
	Name         string `json:"name" validate:"max=256"`
	MarketRef    string `json:"marketRef,omitempty" validate:"max=128"`
	DualEstimate bool   `json:"dualEstimate"`
	Owner        string `json:"owner,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// Amounts holds the two DPGF amounts of an estimate or an offer.
type Amounts struct {
	DPGF1 float64 `json:"dpgf1" validate:"gte=0"`
	DPGF2 float64 `json:"dpgf2" validate:"gte=0"`
}

// Lot is one procurement package.
type Lot struct {
	ID               string               `json:"id" validate:"required"`
	Label            string               `json:"label"`
	Number           string               `json:"number"`
	Companies        []Company            `json:"companies" validate:"max=16,dive"`
	Lines            []LotLine            `json:"lines" validate:"max=12,dive"`
	Criteria         []Criterion          `json:"criteria" validate:"dive"`
	Versions         []NegotiationVersion `json:"versions" validate:"min=1,max=3,dive"`
	CurrentVersionID string               `json:"currentVersionId" validate:"required"`
	BaseEstimate     Amounts              `json:"baseEstimate"`
}

// Company is a bidder on a lot.
type Company struct {
	ID              int           `json:"id" validate:"min=1,max=30"`
	Name            string        `json:"name"`
	Status          CompanyStatus `json:"status" validate:"oneof=undecided retained excluded"`
	ExclusionReason string        `json:"exclusionReason,omitempty"`
}

// Excluded reports whether the company is out of scoring.
func (c Company) Excluded() bool {
	return c.Status == StatusExcluded
}

// LotLine is a priced line in addition to the base offer.
type LotLine struct {
	ID       int      `json:"id" validate:"min=1,max=12"`
	Label    string   `json:"label"`
	Kind     LineKind `json:"kind,omitempty" validate:"omitempty,oneof=PSE VARIANTE OPTIONAL_TRANCHE"`
	Sheet    Sheet    `json:"sheet,omitempty" validate:"omitempty,oneof=dpgf1 dpgf2 both"`
	Active   bool     `json:"active"`
	Estimate Amounts  `json:"estimate"`
}

// Criterion is a top-level weighting criterion.
type Criterion struct {
	ID          string         `json:"id" validate:"required"`
	Label       string         `json:"label"`
	Role        Role           `json:"role" validate:"oneof=generic price environmental planning"`
	Weight      float64        `json:"weight" validate:"gte=0,lte=100"`
	SubCriteria []SubCriterion `json:"subCriteria,omitempty" validate:"max=20,dive"`
}

// SubCriterion refines a criterion. Weights are integer percentages.
type SubCriterion struct {
	ID     string `json:"id" validate:"required"`
	Label  string `json:"label"`
	Weight int    `json:"weight" validate:"gte=0,lte=100"`
}

// NegotiationVersion is one evaluation round of a lot.
type NegotiationVersion struct {
	ID            string           `json:"id" validate:"required"`
	Label         string           `json:"label"`
	CreatedAt     time.Time        `json:"createdAt"`
	AnalysisDate  string           `json:"analysisDate,omitempty"`
	DerivedFrom   string           `json:"derivedFrom,omitempty"`
	Roster        []int            `json:"roster"`
	Notes         []TechnicalNote  `json:"notes" validate:"dive"`
	Prices        []PriceEntry     `json:"prices" validate:"dive"`
	Decisions     map[int]Decision `json:"decisions" validate:"dive,oneof=undecided retained not_retained awardee"`
	Questionnaire Questionnaire    `json:"questionnaire"`
	Frozen        bool             `json:"frozen"`
	Validated     bool             `json:"validated"`
	ValidatedAt   *time.Time       `json:"validatedAt,omitempty"`
}

// ReadOnly is the effective lock state exposed to callers.
func (v *NegotiationVersion) ReadOnly() bool {
	return v.Frozen || v.Validated
}

// InRoster reports whether the company takes part in this round.
func (v *NegotiationVersion) InRoster(companyID int) bool {
	for _, id := range v.Roster {
		if id == companyID {
			return true
		}
	}
	return false
}

// HasAwardee reports whether any company is marked as awardee.
func (v *NegotiationVersion) HasAwardee() bool {
	for _, d := range v.Decisions {
		if d == DecisionAwardee {
			return true
		}
	}
	return false
}

// Note returns the note for a (company, criterion, sub-criterion) key.
func (v *NegotiationVersion) Note(companyID int, criterionID, subCriterionID string) (TechnicalNote, bool) {
	for _, n := range v.Notes {
		if n.CompanyID == companyID && n.CriterionID == criterionID && n.SubCriterionID == subCriterionID {
			return n, true
		}
	}
	return TechnicalNote{}, false
}

// Price returns the price entry for a (company, line) key.
func (v *NegotiationVersion) Price(companyID, lineID int) (PriceEntry, bool) {
	for _, p := range v.Prices {
		if p.CompanyID == companyID && p.LineID == lineID {
			return p, true
		}
	}
	return PriceEntry{}, false
}

// TechnicalNote rates a company on a criterion or sub-criterion.
type TechnicalNote struct {
	CompanyID      int      `json:"companyId" validate:"min=1,max=30"`
	CriterionID    string   `json:"criterionId" validate:"required"`
	SubCriterionID string   `json:"subCriterionId,omitempty"`
	Notation       Notation `json:"notation,omitempty" validate:"omitempty,oneof=insufficient passable average good very_good"`
	Comment        string   `json:"comment,omitempty"`
}

// PriceEntry is an offered amount for the base (line 0) or a lot line.
type PriceEntry struct {
	CompanyID int     `json:"companyId" validate:"min=1,max=30"`
	LineID    int     `json:"lineId" validate:"min=0,max=12"`
	DPGF1     float64 `json:"dpgf1" validate:"gte=0"`
	DPGF2     float64 `json:"dpgf2" validate:"gte=0"`
}

// Questionnaire gathers the questions sent to companies during a round.
type Questionnaire struct {
	Active    bool                   `json:"active"`
	Deadline  string                 `json:"deadline,omitempty"`
	Companies []CompanyQuestionnaire `json:"companies,omitempty" validate:"dive"`
}

// CompanyQuestionnaire holds the questions for one company.
type CompanyQuestionnaire struct {
	CompanyID     int        `json:"companyId" validate:"min=1,max=30"`
	ReceptionMode bool       `json:"receptionMode"`
	Questions     []Question `json:"questions" validate:"dive"`
}

// Question is a question and its answer.
type Question struct {
	ID       string `json:"id" validate:"required"`
	Text     string `json:"text"`
	Response string `json:"response,omitempty"`
}

// Summary is the listing representation served by the persistence service.
type Summary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	MarketRef   string    `json:"marketRef"`
	LotAnalyzed string    `json:"lotAnalyzed"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Document is a stored project together with its server-maintained timestamp.
type Document struct {
	Project   *Project
	UpdatedAt time.Time
}
