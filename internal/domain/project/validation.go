package project

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// documentValidate is the validator instance for project documents.
var documentValidate = validator.New()

// Validate checks the structural rules of a whole document: ids, ranges,
// enum values and collection sizes. Weight sums are not checked here since a
// document under analysis is allowed to be incomplete.
func Validate(p *Project) error {
	if p == nil {
		return ErrInvalidInput
	}
	if err := documentValidate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if p.CurrentLotID != "" {
		if _, err := p.Lot(p.CurrentLotID); err != nil {
			return fmt.Errorf("%w: current lot %q missing", ErrInvalidInput, p.CurrentLotID)
		}
	}

	for i := range p.Lots {
		lot := &p.Lots[i]
		seen := make(map[int]bool, len(lot.Companies))
		for _, c := range lot.Companies {
			if seen[c.ID] {
				return fmt.Errorf("%w: lot %s has duplicate company id %d", ErrInvalidInput, lot.ID, c.ID)
			}
			seen[c.ID] = true
		}
		if _, err := lot.CurrentVersion(); err != nil {
			return fmt.Errorf("%w: lot %s current version %q missing", ErrInvalidInput, lot.ID, lot.CurrentVersionID)
		}
	}
	return nil
}
