package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailUnverified    = errors.New("email not verified")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenExpired       = errors.New("token expired")
	ErrNoPrincipal        = errors.New("no authenticated principal")
	ErrNoActiveSession    = errors.New("no active session")
	// ErrBackendUnavailable wraps any backend failure that maps to no more
	// specific error above.
	ErrBackendUnavailable = errors.New("identity backend unavailable")
)

// ValidationError carries per-field messages for input rejected before any
// backend call is made.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, field+": "+msg)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// OAuthError reports a failed external identity-provider step, keeping the
// provider's diagnostic code for the caller.
type OAuthError struct {
	Provider string
	Code     string
}

func (e *OAuthError) Error() string {
	return fmt.Sprintf("oauth %s failed: %s", e.Provider, e.Code)
}
