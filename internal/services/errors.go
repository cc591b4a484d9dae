package services

import (
	"errors"
	"fmt"

	"github.com/worknote/backend/internal/models"
)

// Sentinel errors for conditions that need no extra payload.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports malformed input, caught before any write. Row is
// the 1-based input line for bulk import failures and 0 otherwise.
type ValidationError struct {
	Field string
	Msg   string
	Row   int
}

func (e *ValidationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: field %q %s", e.Row, e.Field, e.Msg)
	}
	if e.Field != "" {
		return fmt.Sprintf("field %q %s", e.Field, e.Msg)
	}
	return e.Msg
}

// UniquenessConflictError reports an owner/period collision: a second
// report for the same key, or an update moving onto an occupied key.
type UniquenessConflictError struct {
	OwnerID    uint
	Period     models.Period
	ExistingID uint
}

func (e *UniquenessConflictError) Error() string {
	return fmt.Sprintf("a report already exists for owner %d and period %s", e.OwnerID, e.Period)
}

// DanglingReferenceError reports a reference-entity ID that does not exist
// in the store. Row is set during bulk import, 0 otherwise.
type DanglingReferenceError struct {
	Kind RefKind
	ID   uint
	Row  int
}

func (e *DanglingReferenceError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s %d does not exist", e.Row, e.Kind, e.ID)
	}
	return fmt.Sprintf("%s %d does not exist", e.Kind, e.ID)
}
