package domain

import "fmt"

// Error types for consistent error handling across the service.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrInvalidDate indicates a date string that is not a valid YYYY-MM-DD
// calendar date. Records carrying one are rejected at the input boundary.
type ErrInvalidDate struct {
	Value string
}

func (e *ErrInvalidDate) Error() string {
	return fmt.Sprintf("invalid date: %q is not a YYYY-MM-DD calendar date", e.Value)
}

// ErrInvalidAmount indicates a negative currency amount. Amounts are rejected
// at construction; the engine assumes non-negative inputs.
type ErrInvalidAmount struct {
	Field string
	Value float64
}

func (e *ErrInvalidAmount) Error() string {
	return fmt.Sprintf("invalid amount on '%s': %.2f must not be negative", e.Field, e.Value)
}

// ErrConflict indicates a resource already exists (e.g. duplicate card id).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}
