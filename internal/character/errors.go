package character

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound means the character is tombstoned locally or absent everywhere.
var ErrNotFound = errors.New("character not found")

// ValidationError lists required fields missing from a payload.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Missing required fields: %s", strings.Join(e.Fields, ", "))
}

// AlreadyDeletedError is returned when deleting or patching a tombstoned record.
type AlreadyDeletedError struct {
	ID        int64
	DeletedAt string
}

func (e *AlreadyDeletedError) Error() string {
	return fmt.Sprintf("character %d already deleted at %s", e.ID, e.DeletedAt)
}
