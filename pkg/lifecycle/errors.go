package lifecycle

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the engine. All of them are recoverable by the
// caller and map to user-facing validation messages; none indicate a corrupted
// engine state. The engine never retries internally.
var (
	// ErrNotFound means a referenced warranty or claim id does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateWarranty means a warranty already exists for the
	// (project, item) pair, whatever its derived status.
	ErrDuplicateWarranty = errors.New("warranty already exists for this project and material")

	// ErrNotClaimable means the warranty is neither active nor within the
	// post-expiry grace window.
	ErrNotClaimable = errors.New("warranty is not claimable")

	// ErrInvalidTransition means the requested state change is not permitted
	// from the claim's current state.
	ErrInvalidTransition = errors.New("transition not allowed from current state")
)

// ValidationError reports a missing or empty required field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func required(field string) error {
	return &ValidationError{Field: field, Message: "is required"}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
