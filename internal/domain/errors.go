package domain

import (
	"errors"
	"fmt"
)

// ErrAccountNotFound is returned by read-only lookups for users that never
// contacted the bot. Lazy-creating reads never return it.
var ErrAccountNotFound = errors.New("account not found")

// ValidationError reports a malformed or unexpected user input, such as a
// quiz answer outside the current question's options. Recovered locally by
// re-prompting; never mutates state.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

// Code implements the error code contract used in handler summaries.
func (e *ValidationError) Code() string { return "VALIDATION" }

// GenerationError wraps a failure of the answer-generation collaborator.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return "generation: " + e.Err.Error() }

func (e *GenerationError) Unwrap() error { return e.Err }

// Code implements the error code contract used in handler summaries.
func (e *GenerationError) Code() string { return "GENERATION_ERROR" }

// PaymentMismatchError reports a payment callback whose payload, currency,
// or amount does not match the expected invoice. The payer-facing flow is
// rejected silently; operators see it in logs.
type PaymentMismatchError struct {
	Field string
	Got   string
	Want  string
}

func (e *PaymentMismatchError) Error() string {
	return fmt.Sprintf("payment mismatch: %s=%q, want %q", e.Field, e.Got, e.Want)
}

// Code implements the error code contract used in handler summaries.
func (e *PaymentMismatchError) Code() string { return "PAYMENT_MISMATCH" }

// StoreError wraps a persistence failure. Fatal for the single event that
// triggered it; other users' processing is unaffected.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return "store: " + e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

// Code implements the error code contract used in handler summaries.
func (e *StoreError) Code() string { return "STORE_ERROR" }
