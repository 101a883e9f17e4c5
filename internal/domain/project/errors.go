package project

import (
	"errors"
	"fmt"
)

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = errors.New("invalid project input")
	// ErrIDMismatch indicates the document id differs from the addressed id.
	ErrIDMismatch = errors.New("project id does not match document id")
	// ErrLotNotFound indicates the lot doesn't exist in the project.
	ErrLotNotFound = errors.New("lot not found")
	// ErrCompanyNotFound indicates the company doesn't exist in the lot.
	ErrCompanyNotFound = errors.New("company not found")
	// ErrLineNotFound indicates the lot line doesn't exist.
	ErrLineNotFound = errors.New("lot line not found")
	// ErrCriterionNotFound indicates the criterion or sub-criterion doesn't exist.
	ErrCriterionNotFound = errors.New("criterion not found")
	// ErrVersionNotFound indicates the negotiation version doesn't exist.
	ErrVersionNotFound = errors.New("negotiation version not found")
	// ErrLimitReached indicates a collection is already at its maximum size.
	ErrLimitReached = errors.New("collection limit reached")
	// ErrWeightSum indicates the criterion weights of a lot do not add up to 100.
	ErrWeightSum = errors.New("criterion weights must sum to 100")
)

// WeightSumError carries the actual total when weights are off.
type WeightSumError struct {
	Total float64
}

func (e *WeightSumError) Error() string {
	return fmt.Sprintf("criterion weights sum to %g, expected %g", e.Total, RequiredWeights)
}

func (e *WeightSumError) Unwrap() error {
	return ErrWeightSum
}
