package negotiation

import (
	"strings"

	"github.com/google/uuid"

	"github.com/rpggio/tenderscore/internal/domain/project"
)

// SetQuestionnaireActive turns the questionnaire of a round on or off.
func SetQuestionnaireActive(lot *project.Lot, versionID string, active bool) error {
	v, err := editableVersion(lot, versionID)
	if err != nil {
		return err
	}
	v.Questionnaire.Active = active
	return nil
}

// SetQuestionnaireDeadline sets the answer deadline (free-form date).
func SetQuestionnaireDeadline(lot *project.Lot, versionID, deadline string) error {
	v, err := editableVersion(lot, versionID)
	if err != nil {
		return err
	}
	v.Questionnaire.Deadline = deadline
	return nil
}

// AddQuestion appends a question for a company of the round.
func AddQuestion(lot *project.Lot, versionID string, companyID int, text string) (*project.Question, error) {
	v, err := editableVersion(lot, versionID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, project.ErrInvalidInput
	}
	cq, err := companyQuestionnaire(v, companyID)
	if err != nil {
		return nil, err
	}
	if cq.ReceptionMode {
		return nil, ErrReceptionOpen
	}
	cq.Questions = append(cq.Questions, project.Question{ID: uuid.NewString(), Text: text})
	return &cq.Questions[len(cq.Questions)-1], nil
}

// SetQuestionText edits a question. Questions are frozen once reception starts.
func SetQuestionText(lot *project.Lot, versionID string, companyID int, questionID, text string) error {
	q, cq, err := question(lot, versionID, companyID, questionID)
	if err != nil {
		return err
	}
	if cq.ReceptionMode {
		return ErrReceptionOpen
	}
	if strings.TrimSpace(text) == "" {
		return project.ErrInvalidInput
	}
	q.Text = text
	return nil
}

// RemoveQuestion deletes a question while reception is off.
func RemoveQuestion(lot *project.Lot, versionID string, companyID int, questionID string) error {
	_, cq, err := question(lot, versionID, companyID, questionID)
	if err != nil {
		return err
	}
	if cq.ReceptionMode {
		return ErrReceptionOpen
	}
	for i := range cq.Questions {
		if cq.Questions[i].ID == questionID {
			cq.Questions = append(cq.Questions[:i], cq.Questions[i+1:]...)
			break
		}
	}
	return nil
}

// SetReceptionMode switches a company's questionnaire between drafting and
// receiving answers.
func SetReceptionMode(lot *project.Lot, versionID string, companyID int, on bool) error {
	v, err := editableVersion(lot, versionID)
	if err != nil {
		return err
	}
	cq, err := companyQuestionnaire(v, companyID)
	if err != nil {
		return err
	}
	cq.ReceptionMode = on
	return nil
}

// SetQuestionResponse records a company's answer. Only allowed in reception mode.
func SetQuestionResponse(lot *project.Lot, versionID string, companyID int, questionID, response string) error {
	q, cq, err := question(lot, versionID, companyID, questionID)
	if err != nil {
		return err
	}
	if !cq.ReceptionMode {
		return ErrReceptionClosed
	}
	q.Response = response
	return nil
}

// companyQuestionnaire returns the questionnaire of a roster company, creating it on first use.
func companyQuestionnaire(v *project.NegotiationVersion, companyID int) (*project.CompanyQuestionnaire, error) {
	if !v.InRoster(companyID) {
		return nil, project.ErrCompanyNotFound
	}
	for i := range v.Questionnaire.Companies {
		if v.Questionnaire.Companies[i].CompanyID == companyID {
			return &v.Questionnaire.Companies[i], nil
		}
	}
	v.Questionnaire.Companies = append(v.Questionnaire.Companies, project.CompanyQuestionnaire{
		CompanyID: companyID,
		Questions: []project.Question{},
	})
	return &v.Questionnaire.Companies[len(v.Questionnaire.Companies)-1], nil
}

func question(lot *project.Lot, versionID string, companyID int, questionID string) (*project.Question, *project.CompanyQuestionnaire, error) {
	v, err := editableVersion(lot, versionID)
	if err != nil {
		return nil, nil, err
	}
	cq, err := companyQuestionnaire(v, companyID)
	if err != nil {
		return nil, nil, err
	}
	for i := range cq.Questions {
		if cq.Questions[i].ID == questionID {
			return &cq.Questions[i], cq, nil
		}
	}
	return nil, nil, ErrQuestionNotFound
}
