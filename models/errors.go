package models

import (
	"errors"
	"fmt"
)

// Domain errors surfaced by the claim engine. Callers are expected to
// classify them with the helpers below rather than matching strings.
var (
	// ErrAlreadyClaimed indicates the streak record has already been
	// advanced for this calendar day.
	ErrAlreadyClaimed = errors.New("challenge already claimed today")

	// ErrDuplicateClaim indicates the ledger already holds a positive entry
	// for this (user, challenge, day). It is the durable backstop behind
	// ErrAlreadyClaimed.
	ErrDuplicateClaim = errors.New("duplicate claim for this challenge and day")

	// ErrChallengeNotConfigured indicates no active challenge exists for the
	// requested weekday. This is a deployment defect, not a user error.
	ErrChallengeNotConfigured = errors.New("no active challenge configured for this weekday")

	// ErrInsufficientBalance indicates an adjustment would drive a balance
	// below zero.
	ErrInsufficientBalance = errors.New("insufficient balance for adjustment")
)

// TransientError wraps storage failures that the caller may retry, such as
// serialization conflicts, lock timeouts, and cancelled statements.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient storage error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// FatalError wraps storage failures that must not be retried. The claim is
// guaranteed not to have been recorded.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal storage error: %v", e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsConflict reports whether err is an expected, user-visible duplicate
// claim. Conflicts are never retried.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyClaimed) || errors.Is(err, ErrDuplicateClaim)
}

// IsTransient reports whether err may be retried.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsFatal reports whether err is an unrecoverable storage failure.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
