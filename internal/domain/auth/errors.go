package auth

import (
	"errors"
	"fmt"
)

// Resolution error kinds. Match them with errors.Is.
var (
	// ErrNoToken means the request carried no session at all.
	ErrNoToken = errors.New("no session token")
	// ErrInvalidToken means the identity provider rejected the token (expired or tampered).
	ErrInvalidToken = errors.New("invalid session token")
	// ErrUserNotFound means the token is valid but no usable profile exists for its subject.
	ErrUserNotFound = errors.New("user not found")
	// ErrStoreUnavailable means the identity provider or user store could not be reached.
	ErrStoreUnavailable = errors.New("user store unavailable")
)

// ErrInvalidRole is the cause attached when a stored profile carries a role outside the enum.
var ErrInvalidRole = errors.New("invalid role")

// ErrSessionNotFound is returned by session stores for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// ResolutionError is returned when a token cannot be turned into a Principal.
type ResolutionError struct {
	Kind  error // one of ErrNoToken, ErrInvalidToken, ErrUserNotFound, ErrStoreUnavailable
	Cause error
}

func (e *ResolutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %v", e.Kind, e.Cause)
	}
	return e.Kind.Error()
}

// Is matches the error kind so callers can use errors.Is(err, ErrInvalidToken).
func (e *ResolutionError) Is(target error) bool {
	return e.Kind == target
}

// Unwrap exposes the underlying cause.
func (e *ResolutionError) Unwrap() error { return e.Cause }

// NewResolutionError builds a ResolutionError of the given kind.
func NewResolutionError(kind, cause error) *ResolutionError {
	return &ResolutionError{Kind: kind, Cause: cause}
}

// IsAuthFailure reports whether err means the caller is not authenticated
// (no token, rejected token, or orphaned session). Such callers go back to sign-in.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrNoToken) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrUserNotFound)
}

// IsRetryable reports whether err is a transient infrastructure failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
