package negotiation

import (
	"errors"

	"github.com/rpggio/tenderscore/internal/domain/project"
)

var (
	// ErrMaxVersions indicates the lot already holds the maximum number of versions.
	ErrMaxVersions = errors.New("maximum number of negotiation versions reached")
	// ErrCurrentNotValidated indicates a new round requires the current one to be validated.
	ErrCurrentNotValidated = errors.New("current version is not validated")
	// ErrAwardeePresent indicates the current round already designates an awardee.
	ErrAwardeePresent = errors.New("current version already has an awardee")
	// ErrNoAwardee indicates validation requires at least one awardee.
	ErrNoAwardee = errors.New("version has no awardee")
	// ErrVersionReadOnly indicates the version is frozen or validated.
	ErrVersionReadOnly = errors.New("version is read-only")
	// ErrReceptionClosed indicates responses can only be entered in reception mode.
	ErrReceptionClosed = errors.New("questionnaire reception mode is off")
	// ErrReceptionOpen indicates questions can't be edited in reception mode.
	ErrReceptionOpen = errors.New("questionnaire reception mode is on")
	// ErrQuestionNotFound indicates the question doesn't exist.
	ErrQuestionNotFound = errors.New("question not found")
)

// Reason codes reported alongside rejected operations.
const (
	ReasonMaxVersions         = "max_versions"
	ReasonCurrentNotValidated = "current_not_validated"
	ReasonAwardeePresent      = "awardee_present"
	ReasonNoAwardee           = "no_awardee"
	ReasonVersionReadOnly     = "version_read_only"
	ReasonWeightsInvalid      = "weights_invalid"
	ReasonVersionNotFound     = "version_not_found"
	ReasonCompanyNotFound     = "company_not_found"
	ReasonCriterionNotFound   = "criterion_not_found"
	ReasonLineNotFound        = "line_not_found"
	ReasonQuestionNotFound    = "question_not_found"
	ReasonReceptionClosed     = "reception_closed"
	ReasonReceptionOpen       = "reception_open"
	ReasonInvalidInput        = "invalid_input"
)

var reasons = []struct {
	err  error
	code string
}{
	{ErrMaxVersions, ReasonMaxVersions},
	{ErrCurrentNotValidated, ReasonCurrentNotValidated},
	{ErrAwardeePresent, ReasonAwardeePresent},
	{ErrNoAwardee, ReasonNoAwardee},
	{ErrVersionReadOnly, ReasonVersionReadOnly},
	{ErrReceptionClosed, ReasonReceptionClosed},
	{ErrReceptionOpen, ReasonReceptionOpen},
	{ErrQuestionNotFound, ReasonQuestionNotFound},
	{project.ErrWeightSum, ReasonWeightsInvalid},
	{project.ErrVersionNotFound, ReasonVersionNotFound},
	{project.ErrCompanyNotFound, ReasonCompanyNotFound},
	{project.ErrCriterionNotFound, ReasonCriterionNotFound},
	{project.ErrLineNotFound, ReasonLineNotFound},
	{project.ErrInvalidInput, ReasonInvalidInput},
}

// ReasonCode returns the machine-readable reason for a rejected operation,
// or "" when err is nil or not a lifecycle rejection.
func ReasonCode(err error) string {
	if err == nil {
		return ""
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.code
		}
	}
	return ""
}
