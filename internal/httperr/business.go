package httperr

import (
	"errors"
	"fmt"
	"strings"
)

// ===============================
// Typed taxonomy
// ===============================

// ValidationError reports malformed input (bad time, start >= end, break
// outside window, ...).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// AuthorizationError means the actor lacks salon or staff scope.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// NotFoundError represents a missing template, staff member or salon.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// Is enables errors.Is() comparison for NotFoundError
func (e *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	if !ok {
		return false
	}
	return t.Entity == "" || e.Entity == t.Entity
}

// ConflictAppointment identifies one booking that collides with a window.
type ConflictAppointment struct {
	ID    string `json:"id"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// ConflictError is a business outcome: the requested window overlaps an
// active template or a live booking. Days holds lowercase weekday names.
type ConflictError struct {
	Days         []string
	Appointments []ConflictAppointment
}

func (e *ConflictError) Error() string {
	if len(e.Days) == 0 {
		return "schedule conflict detected"
	}
	return fmt.Sprintf("schedule conflict detected for %s", strings.Join(e.Days, ", "))
}

// SystemError wraps a storage or transport failure.
type SystemError struct {
	Op  string
	Err error
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SystemError) Unwrap() error {
	return e.Err
}

// ===============================
// Constructors
// ===============================

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func NewAuthorizationError(message string) error {
	return &AuthorizationError{Message: message}
}

func NewNotFoundError(entity string) error {
	return &NotFoundError{Entity: entity}
}

func NewConflictError(days ...string) error {
	return &ConflictError{Days: days}
}

func NewSystemError(op string, err error) error {
	return &SystemError{Op: op, Err: err}
}

var (
	ErrScheduleNotFound = &NotFoundError{Entity: "schedule"}
	ErrStaffNotFound    = &NotFoundError{Entity: "staff"}
	ErrSalonNotFound    = &NotFoundError{Entity: "salon"}
)

// ===============================
// Helpers
// ===============================

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsAuthorization(err error) bool {
	var a *AuthorizationError
	return errors.As(err, &a)
}

func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

func IsSystem(err error) bool {
	var s *SystemError
	return errors.As(err, &s)
}

// AsConflict returns the ConflictError carried by err, if any.
func AsConflict(err error) (*ConflictError, bool) {
	var c *ConflictError
	if errors.As(err, &c) {
		return c, true
	}
	return nil, false
}
