package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/raugupatis/raugupatis-log/internal/db"
)

var (
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrDuplicateProfileName = errors.New("profile name already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	// ErrAccountLocked wraps ErrInvalidCredentials so callers that only care
	// about a failed login can match either.
	ErrAccountLocked           = fmt.Errorf("%w: account locked", ErrInvalidCredentials)
	ErrSessionNotFound         = errors.New("session not found")
	ErrSessionExpired          = errors.New("session expired")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrNotFound                = errors.New("not found")
	ErrStorage                 = errors.New("storage failure")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrValidation              = errors.New("validation failed")
)

// ValidationError carries one message per offending input field, keyed by
// the field's JSON name.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(field string, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e.Fields[key])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) add(field string, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// storageError marks an unexpected repository failure. The cause stays in
// the chain for logging but is never shown to clients.
func storageError(err error) error {
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

// translateRepositoryError maps the db package sentinels onto the service
// taxonomy.
func translateRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, db.ErrInvalidReference):
		return newValidationError("profile_id", "must reference an available fermentation profile")
	default:
		return storageError(err)
	}
}

// asValidationError reports whether err is a *ValidationError and stores it
// in target.
func asValidationError(err error, target **ValidationError) bool {
	return errors.As(err, target)
}
