package services

import (
	"errors"
	"fmt"

	"ring-predictions/internal/models"
)

var (
	ErrDeadlinePassed  = errors.New("deadline has passed")
	ErrAlreadyResolved = errors.New("prediction already resolved")
	ErrNotOwner        = errors.New("prediction belongs to another user")
	ErrNotVisible      = errors.New("prediction is not visible to this user")
)

// ValidationError describes malformed input at creation time. The caller
// can correct the field and retry.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// InvalidStateTransitionError reports an operation that is illegal for the
// prediction's current lifecycle state.
type InvalidStateTransitionError struct {
	Current   models.PredictionStatus
	Attempted models.PredictionStatus
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("cannot transition prediction from %s to %s", e.Current, e.Attempted)
}

// IncompleteOutcomeError reports that the supplied actual outcome does not
// cover every pick position.
type IncompleteOutcomeError struct {
	MissingPositions []int
}

func (e *IncompleteOutcomeError) Error() string {
	return fmt.Sprintf("actual outcome missing positions %v", e.MissingPositions)
}
