package tracker

import (
	"errors"
	"fmt"

	"intake-go/internal/model"
)

var (
	// ErrNotFound is returned for operations on an unknown document ID.
	ErrNotFound = errors.New("document not found")

	// ErrDuplicateID is returned when inserting a document whose ID already exists.
	ErrDuplicateID = errors.New("duplicate document id")

	// ErrInvalidTransition is returned when an operation is not allowed
	// from the document's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAlreadyStarted is returned by Start on a tracker that was already started.
	ErrAlreadyStarted = errors.New("tracker already started")
)

// TransitionError describes a rejected status change.
type TransitionError struct {
	ID   string
	From model.Status
	To   model.Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("document %s: cannot move from %s to %s", e.ID, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
