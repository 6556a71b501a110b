package handlers

import (
	"errors"
	"log"
	"net/http"

	"portex.io/warranty/pkg/lifecycle"
)

// writeEngineError maps engine error kinds to HTTP statuses. Every kind is a
// user-facing validation outcome; only unknown errors are treated as internal.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case lifecycle.IsValidation(err):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, lifecycle.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, lifecycle.ErrDuplicateWarranty):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, lifecycle.ErrNotClaimable):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Printf("❌ Unexpected engine error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
