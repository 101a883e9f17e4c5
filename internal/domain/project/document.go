package project

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// New builds an empty project document.
func New(id string, info Info) *Project {
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}
	return &Project{ID: id, Info: info, Lots: []Lot{}}
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() (*Project, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding project: %w", err)
	}
	var out Project
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding project: %w", err)
	}
	return &out, nil
}

// Lot returns the lot with the given id.
func (p *Project) Lot(id string) (*Lot, error) {
	for i := range p.Lots {
		if p.Lots[i].ID == id {
			return &p.Lots[i], nil
		}
	}
	return nil, ErrLotNotFound
}

// CurrentLot returns the lot being analysed, or the first lot.
func (p *Project) CurrentLot() (*Lot, error) {
	if p.CurrentLotID != "" {
		return p.Lot(p.CurrentLotID)
	}
	if len(p.Lots) == 0 {
		return nil, ErrLotNotFound
	}
	return &p.Lots[0], nil
}

// Summary derives the listing representation of the project.
func (p *Project) Summary(updatedAt time.Time) Summary {
	s := Summary{
		ID:        p.ID,
		Name:      p.Info.Name,
		MarketRef: p.Info.MarketRef,
		UpdatedAt: updatedAt,
	}
	if lot, err := p.CurrentLot(); err == nil {
		s.LotAnalyzed = lot.Number
	}
	return s
}

// SetCurrentLot changes which lot is analysed.
func (p *Project) SetCurrentLot(id string) error {
	if _, err := p.Lot(id); err != nil {
		return err
	}
	p.CurrentLotID = id
	return nil
}

// AddLot appends a lot with its initial analysis version.
func (p *Project) AddLot(label, number string, now time.Time) *Lot {
	version := NegotiationVersion{
		ID:        uuid.NewString(),
		Label:     InitialVersion,
		CreatedAt: now,
		Roster:    []int{},
		Notes:     []TechnicalNote{},
		Prices:    []PriceEntry{},
		Decisions: map[int]Decision{},
	}
	p.Lots = append(p.Lots, Lot{
		ID:               uuid.NewString(),
		Label:            label,
		Number:           number,
		Companies:        []Company{},
		Lines:            []LotLine{},
		Criteria:         []Criterion{},
		Versions:         []NegotiationVersion{version},
		CurrentVersionID: version.ID,
	})
	lot := &p.Lots[len(p.Lots)-1]
	if p.CurrentLotID == "" {
		p.CurrentLotID = lot.ID
	}
	return lot
}

// Version returns the negotiation version with the given id.
func (l *Lot) Version(id string) (*NegotiationVersion, error) {
	for i := range l.Versions {
		if l.Versions[i].ID == id {
			return &l.Versions[i], nil
		}
	}
	return nil, ErrVersionNotFound
}

// CurrentVersion returns the version currently selected on the lot.
func (l *Lot) CurrentVersion() (*NegotiationVersion, error) {
	return l.Version(l.CurrentVersionID)
}

// Company returns the company with the given id.
func (l *Lot) Company(id int) (*Company, error) {
	for i := range l.Companies {
		if l.Companies[i].ID == id {
			return &l.Companies[i], nil
		}
	}
	return nil, ErrCompanyNotFound
}

// Line returns the lot line with the given id.
func (l *Lot) Line(id int) (*LotLine, error) {
	for i := range l.Lines {
		if l.Lines[i].ID == id {
			return &l.Lines[i], nil
		}
	}
	return nil, ErrLineNotFound
}

// Criterion returns the criterion with the given id.
func (l *Lot) Criterion(id string) (*Criterion, error) {
	for i := range l.Criteria {
		if l.Criteria[i].ID == id {
			return &l.Criteria[i], nil
		}
	}
	return nil, ErrCriterionNotFound
}

// SubCriterion returns the sub-criterion with the given id.
func (c *Criterion) SubCriterion(id string) (*SubCriterion, error) {
	for i := range c.SubCriteria {
		if c.SubCriteria[i].ID == id {
			return &c.SubCriteria[i], nil
		}
	}
	return nil, ErrCriterionNotFound
}

// AddCompany registers a bidder under the smallest free id. The company joins
// the roster of the initial version while it is still editable.
func (l *Lot) AddCompany(name string) (*Company, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidInput
	}
	if len(l.Companies) >= MaxCompanies {
		return nil, ErrLimitReached
	}
	id := 0
	for candidate := 1; candidate <= MaxCompanyID; candidate++ {
		if _, err := l.Company(candidate); err != nil {
			id = candidate
			break
		}
	}
	if id == 0 {
		return nil, ErrLimitReached
	}

	l.Companies = append(l.Companies, Company{ID: id, Name: name, Status: StatusUndecided})
	if v, err := l.CurrentVersion(); err == nil && v.DerivedFrom == "" && !v.ReadOnly() {
		v.Roster = append(v.Roster, id)
		if v.Decisions == nil {
			v.Decisions = map[int]Decision{}
		}
		v.Decisions[id] = DecisionUndecided
	}
	return &l.Companies[len(l.Companies)-1], nil
}

// RenameCompany changes a company's display name.
func (l *Lot) RenameCompany(id int, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidInput
	}
	c, err := l.Company(id)
	if err != nil {
		return err
	}
	c.Name = name
	return nil
}

// SetCompanyStatus changes the standing of a company. Excluding requires a
// reason; notes and prices recorded for the company are kept.
func (l *Lot) SetCompanyStatus(id int, status CompanyStatus, reason string) error {
	switch status {
	case StatusUndecided, StatusRetained:
		reason = ""
	case StatusExcluded:
		if strings.TrimSpace(reason) == "" {
			return ErrInvalidInput
		}
	default:
		return ErrInvalidInput
	}
	c, err := l.Company(id)
	if err != nil {
		return err
	}
	c.Status = status
	c.ExclusionReason = reason
	return nil
}

// AddLine appends an active lot line under the next free id.
func (l *Lot) AddLine(label string, kind LineKind, sheet Sheet) (*LotLine, error) {
	switch kind {
	case KindStandard, KindPSE, KindVariante, KindOptionalTranche:
	default:
		return nil, ErrInvalidInput
	}
	switch sheet {
	case "":
		sheet = SheetDPGF1
	case SheetDPGF1, SheetDPGF2, SheetBoth:
	default:
		return nil, ErrInvalidInput
	}
	if len(l.Lines) >= MaxLines {
		return nil, ErrLimitReached
	}
	id := 0
	for candidate := 1; candidate <= MaxLines; candidate++ {
		if _, err := l.Line(candidate); err != nil {
			id = candidate
			break
		}
	}
	l.Lines = append(l.Lines, LotLine{ID: id, Label: label, Kind: kind, Sheet: sheet, Active: true})
	return &l.Lines[len(l.Lines)-1], nil
}

// SetLineActive toggles whether a line counts in price totals.
func (l *Lot) SetLineActive(id int, active bool) error {
	line, err := l.Line(id)
	if err != nil {
		return err
	}
	line.Active = active
	return nil
}

// SetBaseEstimate sets the estimation of the base offer.
func (l *Lot) SetBaseEstimate(amounts Amounts) error {
	if amounts.DPGF1 < 0 || amounts.DPGF2 < 0 {
		return ErrInvalidInput
	}
	l.BaseEstimate = amounts
	return nil
}

// SetLineEstimate sets the estimation of a lot line.
func (l *Lot) SetLineEstimate(id int, amounts Amounts) error {
	if amounts.DPGF1 < 0 || amounts.DPGF2 < 0 {
		return ErrInvalidInput
	}
	line, err := l.Line(id)
	if err != nil {
		return err
	}
	line.Estimate = amounts
	return nil
}

// Estimate returns the estimation for the base (line 0) or a lot line.
func (l *Lot) Estimate(lineID int) Amounts {
	if lineID == BaseLineID {
		return l.BaseEstimate
	}
	if line, err := l.Line(lineID); err == nil {
		return line.Estimate
	}
	return Amounts{}
}

// RoleForID resolves the role of legacy criterion ids.
func RoleForID(id string) Role {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "prix", "price":
		return RolePrice
	case "environnemental", "environmental":
		return RoleEnvironmental
	case "planning", "delai", "delais":
		return RolePlanning
	default:
		return RoleGeneric
	}
}

// CriterionSpec describes a criterion to add.
type CriterionSpec struct {
	ID     string
	Label  string
	Role   Role
	Weight float64
}

// AddCriterion appends a top-level criterion. The role is resolved once here.
func (l *Lot) AddCriterion(spec CriterionSpec) (*Criterion, error) {
	if !validCriterionWeight(spec.Weight) {
		return nil, ErrInvalidInput
	}
	id := strings.TrimSpace(spec.ID)
	if id == "" {
		id = uuid.NewString()
	}
	if _, err := l.Criterion(id); err == nil {
		return nil, ErrInvalidInput
	}
	role := spec.Role
	if role == "" {
		role = RoleForID(id)
	}
	switch role {
	case RoleGeneric, RolePrice, RoleEnvironmental, RolePlanning:
	default:
		return nil, ErrInvalidInput
	}
	l.Criteria = append(l.Criteria, Criterion{ID: id, Label: spec.Label, Role: role, Weight: spec.Weight})
	return &l.Criteria[len(l.Criteria)-1], nil
}

// SetCriterionWeight changes a criterion weight.
func (l *Lot) SetCriterionWeight(id string, weight float64) error {
	if !validCriterionWeight(weight) {
		return ErrInvalidInput
	}
	c, err := l.Criterion(id)
	if err != nil {
		return err
	}
	c.Weight = weight
	return nil
}

// AddSubCriterion appends a sub-criterion to a criterion.
func (l *Lot) AddSubCriterion(criterionID, label string, weight int) (*SubCriterion, error) {
	if weight < 0 || weight > 100 {
		return nil, ErrInvalidInput
	}
	c, err := l.Criterion(criterionID)
	if err != nil {
		return nil, err
	}
	if len(c.SubCriteria) >= MaxSubCriteria {
		return nil, ErrLimitReached
	}
	c.SubCriteria = append(c.SubCriteria, SubCriterion{ID: uuid.NewString(), Label: label, Weight: weight})
	return &c.SubCriteria[len(c.SubCriteria)-1], nil
}

// SetSubCriterionWeight changes a sub-criterion weight.
func (l *Lot) SetSubCriterionWeight(criterionID, subID string, weight int) error {
	if weight < 0 || weight > 100 {
		return ErrInvalidInput
	}
	c, err := l.Criterion(criterionID)
	if err != nil {
		return err
	}
	sub, err := c.SubCriterion(subID)
	if err != nil {
		return err
	}
	sub.Weight = weight
	return nil
}

// WeightTotal sums the top-level criterion weights.
func (l *Lot) WeightTotal() float64 {
	total := 0.0
	for _, c := range l.Criteria {
		total += c.Weight
	}
	return total
}

// CheckWeights reports a *WeightSumError when the weights do not sum to 100.
func (l *Lot) CheckWeights() error {
	total := l.WeightTotal()
	if math.Abs(total-RequiredWeights) > 1e-9 {
		return &WeightSumError{Total: total}
	}
	return nil
}

// PriceWeight is the total weight carried by price criteria.
func (l *Lot) PriceWeight() float64 {
	total := 0.0
	for _, c := range l.Criteria {
		if c.Role == RolePrice {
			total += c.Weight
		}
	}
	return total
}

func validCriterionWeight(weight float64) bool {
	if weight < 0 || weight > 100 {
		return false
	}
	return math.Mod(weight*2, 1) == 0
}
