// Package negotiation implements the life cycle of a lot's negotiation
// versions: creating a new round from a validated one, freezing, validating,
// and the data entry that those states guard.
package negotiation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rpggio/tenderscore/internal/domain/project"
)

// CreateVersion opens a new negotiation round derived from the current one.
// The current version must be validated and designate no awardee. It is
// frozen, and only companies retained (or awarded) in it carry forward.
func CreateVersion(lot *project.Lot, label, analysisDate string, now time.Time) (*project.NegotiationVersion, error) {
	if len(lot.Versions) >= project.MaxVersions {
		return nil, ErrMaxVersions
	}
	current, err := lot.CurrentVersion()
	if err != nil {
		return nil, err
	}
	if !current.Validated {
		return nil, ErrCurrentNotValidated
	}
	if current.HasAwardee() {
		return nil, ErrAwardeePresent
	}

	if label == "" {
		label = fmt.Sprintf("V%d", len(lot.Versions))
	}
	next := project.NegotiationVersion{
		ID:           uuid.NewString(),
		Label:        label,
		CreatedAt:    now,
		AnalysisDate: analysisDate,
		DerivedFrom:  current.ID,
		Roster:       []int{},
		Notes:        []project.TechnicalNote{},
		Prices:       []project.PriceEntry{},
		Decisions:    map[int]project.Decision{},
	}
	for _, id := range current.Roster {
		switch current.Decisions[id] {
		case project.DecisionRetained, project.DecisionAwardee:
			next.Roster = append(next.Roster, id)
			next.Decisions[id] = project.DecisionUndecided
		}
	}

	current.Frozen = true
	lot.Versions = append(lot.Versions, next)
	lot.CurrentVersionID = next.ID
	return &lot.Versions[len(lot.Versions)-1], nil
}

// FreezeVersion closes a version to data entry.
func FreezeVersion(lot *project.Lot, versionID string) error {
	v, err := lot.Version(versionID)
	if err != nil {
		return err
	}
	v.Frozen = true
	return nil
}

// UnfreezeVersion reopens a frozen version. Later versions are untouched.
func UnfreezeVersion(lot *project.Lot, versionID string) error {
	v, err := lot.Version(versionID)
	if err != nil {
		return err
	}
	v.Frozen = false
	return nil
}

// ValidateVersion marks a version as validated. It requires at least one
// awardee and criterion weights summing to 100.
func ValidateVersion(lot *project.Lot, versionID string, now time.Time) error {
	v, err := lot.Version(versionID)
	if err != nil {
		return err
	}
	if !v.HasAwardee() {
		return ErrNoAwardee
	}
	if err := lot.CheckWeights(); err != nil {
		return err
	}
	at := now
	v.Validated = true
	v.ValidatedAt = &at
	return nil
}

// UnvalidateVersion clears the validation of a version. Later versions are untouched.
func UnvalidateVersion(lot *project.Lot, versionID string) error {
	v, err := lot.Version(versionID)
	if err != nil {
		return err
	}
	v.Validated = false
	v.ValidatedAt = nil
	return nil
}

// SwitchVersion selects which version of the lot is displayed and edited.
func SwitchVersion(lot *project.Lot, versionID string) error {
	if _, err := lot.Version(versionID); err != nil {
		return err
	}
	lot.CurrentVersionID = versionID
	return nil
}

// SetTechnicalNote records the notation of a company on a criterion or
// sub-criterion, replacing any previous note for the same key.
func SetTechnicalNote(lot *project.Lot, versionID string, note project.TechnicalNote) error {
	v, err := editableVersion(lot, versionID)
	if err != nil {
		return err
	}
	if !v.InRoster(note.CompanyID) {
		return project.ErrCompanyNotFound
	}
	crit, err := lot.Criterion(note.CriterionID)
	if err != nil {
		return err
	}
	if note.SubCriterionID != "" {
		if _, err := crit.SubCriterion(note.SubCriterionID); err != nil {
			return err
		}
	}
	switch note.Notation {
	case project.NotationNone, project.NotationInsufficient, project.NotationPassable,
		project.NotationAverage, project.NotationGood, project.NotationVeryGood:
	default:
		return project.ErrInvalidInput
	}

	for i := range v.Notes {
		n := &v.Notes[i]
		if n.CompanyID == note.CompanyID && n.CriterionID == note.CriterionID && n.SubCriterionID == note.SubCriterionID {
			*n = note
			return nil
		}
	}
	v.Notes = append(v.Notes, note)
	return nil
}

// SetPriceEntry records an offered amount for the base (line 0) or a lot line.
func SetPriceEntry(lot *project.Lot, versionID string, entry project.PriceEntry) error {
	v, err := editableVersion(lot, versionID)
	if err != nil {
		return err
	}
	if !v.InRoster(entry.CompanyID) {
		return project.ErrCompanyNotFound
	}
	if entry.LineID != project.BaseLineID {
		if _, err := lot.Line(entry.LineID); err != nil {
			return err
		}
	}
	if entry.DPGF1 < 0 || entry.DPGF2 < 0 {
		return project.ErrInvalidInput
	}

	for i := range v.Prices {
		p := &v.Prices[i]
		if p.CompanyID == entry.CompanyID && p.LineID == entry.LineID {
			*p = entry
			return nil
		}
	}
	v.Prices = append(v.Prices, entry)
	return nil
}

// SetDecision records the round outcome for a company. Decisions stay
// editable on frozen and validated versions.
func SetDecision(lot *project.Lot, versionID string, companyID int, decision project.Decision) error {
	v, err := lot.Version(versionID)
	if err != nil {
		return err
	}
	if !v.InRoster(companyID) {
		return project.ErrCompanyNotFound
	}
	switch decision {
	case project.DecisionUndecided, project.DecisionRetained, project.DecisionNotRetained, project.DecisionAwardee:
	default:
		return project.ErrInvalidInput
	}
	if v.Decisions == nil {
		v.Decisions = map[int]project.Decision{}
	}
	v.Decisions[companyID] = decision
	return nil
}

func editableVersion(lot *project.Lot, versionID string) (*project.NegotiationVersion, error) {
	v, err := lot.Version(versionID)
	if err != nil {
		return nil, err
	}
	if v.ReadOnly() {
		return nil, ErrVersionReadOnly
	}
	return v, nil
}
