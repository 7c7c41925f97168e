package errors

import (
	"context"
	goerrors "errors"
	"reflect"
	"strings"

	domainauth "github.com/beblocky/dashboard/internal/domain/auth"
	"github.com/beblocky/dashboard/internal/domain/dashboard"
)

// Outcome labels used when tagging auth metrics and logs.
const (
	OutcomeOK               = "ok"
	OutcomeNoToken          = "no_token"
	OutcomeInvalidToken     = "invalid_token"
	OutcomeUserNotFound     = "user_not_found"
	OutcomeStoreUnavailable = "store_unavailable"
	OutcomeUnsupportedRole  = "unsupported_role"
	OutcomeCanceled         = "canceled"
)

// Outcome maps a resolution or routing error onto a bounded label set.
// Errors outside the auth taxonomy fall back to Classify.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case goerrors.Is(err, context.Canceled), goerrors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	case goerrors.Is(err, domainauth.ErrNoToken):
		return OutcomeNoToken
	case goerrors.Is(err, domainauth.ErrInvalidToken):
		return OutcomeInvalidToken
	case goerrors.Is(err, domainauth.ErrUserNotFound):
		return OutcomeUserNotFound
	case goerrors.Is(err, domainauth.ErrStoreUnavailable):
		return OutcomeStoreUnavailable
	case goerrors.Is(err, dashboard.ErrUnsupportedRole):
		return OutcomeUnsupportedRole
	default:
		return Classify(err)
	}
}

// Classify returns a normalized error type name suitable for tagging metrics/logs.
// It unwraps errors until the innermost concrete type is found and converts it to snake_case-ish.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), "*", ""))
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
