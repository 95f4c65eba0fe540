package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrDuplicateSessionRef is returned by the booking repository when an insert
// hits the unique index on payment.external_session_ref. Webhook handling
// resolves it to a no-op so redelivered events never create a second booking.
var ErrDuplicateSessionRef = errors.New("booking with this payment session reference already exists")

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing or invalid fields: " + strings.Join(e.Fields, ", ")
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s not found", e.Resource, e.ID)
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

type RateLimitedError struct {
	Limit             int
	RetryAfterSeconds int
	ResetAt           time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many attempts, retry after %d seconds", e.RetryAfterSeconds)
}

type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

type InvalidStateTransitionError struct {
	From   BookingStatus
	To     BookingStatus
	Reason string
}

func (e *InvalidStateTransitionError) Error() string {
	msg := fmt.Sprintf("cannot transition booking from %s to %s", e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// DependencyError wraps an unexpected failure from storage or an external
// service. Handlers log it with full context and return a generic message so
// internal detail is never leaked to the caller.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}
