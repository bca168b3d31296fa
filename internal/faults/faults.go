// Package faults defines the error classes the saga's transports care about.
// Components never retry internally; they classify and return, and the
// message-delivery layer decides between redelivery and dead-lettering.
package faults

import (
	"errors"
	"fmt"
)

// ValidationError marks malformed or out-of-range input. Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Invalid builds a ValidationError.
func Invalid(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError marks a referenced record that does not exist. Permanent.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// NotFound builds a NotFoundError.
func NotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// TransientError marks a store or broker that was temporarily unavailable.
// Safe to retry via redelivery.
type TransientError struct {
	Msg   string
	Cause error
}

func (e *TransientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *TransientError) Unwrap() error { return e.Cause }

// Transient wraps an infrastructure failure.
func Transient(cause error, format string, args ...interface{}) *TransientError {
	return &TransientError{Msg: fmt.Sprintf(format, args...), Cause: cause}
}

// UnsupportedJurisdictionError marks a countryISO outside the supported set.
// Permanent, rejected at the boundary.
type UnsupportedJurisdictionError struct {
	CountryISO string
}

func (e *UnsupportedJurisdictionError) Error() string {
	return fmt.Sprintf("CountryISO must be either PE or CL, got %q", e.CountryISO)
}

// IsRetryable reports whether the transport should expect a redelivery to
// succeed. Only transient infrastructure failures qualify.
func IsRetryable(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
