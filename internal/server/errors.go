// Package server provides the HTTP API for ranking roommate matches.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/roommate-matcher/internal/db"
	"github.com/jonathan/roommate-matcher/internal/matching"
	"github.com/jonathan/roommate-matcher/internal/schemas"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a requested resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrProfileIncomplete indicates the caller must finish their profile before matching
type ErrProfileIncomplete struct {
	UserID uuid.UUID
}

func (e *ErrProfileIncomplete) Error() string {
	return fmt.Sprintf("profile incomplete: %s", e.UserID)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrValidation, *schemas.ValidationError:
		return http.StatusBadRequest
	case *ErrNotFound:
		return http.StatusNotFound
	case *ErrProfileIncomplete:
		return http.StatusForbidden
	}

	var cfgErr *matching.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
