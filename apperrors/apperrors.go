// Package apperrors defines the error taxonomy shared by services and the
// API layer. Services return these kinds; the API layer maps each kind to
// an HTTP status in exactly one place.
package apperrors

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindValidation Kind = iota + 1 // malformed or missing input, rejected before side effects
	KindNotFound                   // referenced entity absent or not visible to the caller
	KindAuthorization              // caller lacks ownership or role
	KindExternal                   // blob store or inference collaborator failure
	KindConflict                   // reserved for future idempotency enforcement
)

// Error is a kinded error. Message is safe to show to API callers; Err
// carries the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Authorization(msg string) error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

func External(msg string, err error) error {
	return &Error{Kind: KindExternal, Message: msg, Err: err}
}

func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

// KindOf returns the kind of err, or 0 if err is not an apperrors.Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Message returns the caller-safe message of err, falling back to a
// generic one for untyped errors.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal server error"
}

func IsValidation(err error) bool    { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool      { return KindOf(err) == KindNotFound }
func IsAuthorization(err error) bool { return KindOf(err) == KindAuthorization }
func IsExternal(err error) bool      { return KindOf(err) == KindExternal }
func IsConflict(err error) bool      { return KindOf(err) == KindConflict }
