package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err:  &AppError{Code: ErrCodeNotFound, Message: "resource not found"},
			want: "resource not found",
		},
		{
			name: "error with cause",
			err:  &AppError{Code: ErrCodeInternal, Message: "failed to process", Cause: errors.New("underlying error")},
			want: "failed to process: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &AppError{Code: ErrCodeInternal, Message: "wrapped error", Cause: cause}

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(AppError, cause) = false")
	}
}

func TestConstructors(t *testing.T) {
	nf := NotFoundf("user %s not found", "u1")
	if nf.Code != ErrCodeNotFound || nf.Message != "user u1 not found" {
		t.Errorf("NotFoundf() = %+v", nf)
	}

	v := ValidationField("role", "unknown role")
	if v.Code != ErrCodeValidation || v.Field != "role" {
		t.Errorf("ValidationField() = %+v", v)
	}

	if Wrap(nil, ErrCodeInternal, "x") != nil {
		t.Errorf("Wrap(nil) should be nil")
	}
	w := Wrap(errors.New("x"), ErrCodeUnavailable, "db down")
	if !IsUnavailable(w) {
		t.Errorf("Wrap() code = %v", w.Code)
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		pred func(error) bool
		want bool
	}{
		{name: "not found", err: NotFoundf("x"), pred: IsNotFound, want: true},
		{name: "wrapped not found", err: fmt.Errorf("ctx: %w", NotFoundf("x")), pred: IsNotFound, want: true},
		{name: "conflict", err: &AppError{Code: ErrCodeConflict}, pred: IsConflict, want: true},
		{name: "validation", err: ValidationField("f", "m"), pred: IsValidation, want: true},
		{name: "timeout", err: &AppError{Code: ErrCodeTimeout}, pred: IsTimeout, want: true},
		{name: "canceled", err: &AppError{Code: ErrCodeCanceled}, pred: IsCanceled, want: true},
		{name: "unavailable is not not found", err: &AppError{Code: ErrCodeUnavailable}, pred: IsNotFound, want: false},
		{name: "plain error", err: errors.New("x"), pred: IsNotFound, want: false},
		{name: "nil", err: nil, pred: IsUnavailable, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pred(tt.err); got != tt.want {
				t.Errorf("predicate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCodeAndField(t *testing.T) {
	if GetCode(errors.New("x")) != "" {
		t.Errorf("GetCode(plain) should be empty")
	}
	if GetField(ValidationField("email", "bad")) != "email" {
		t.Errorf("GetField() mismatch")
	}
	if GetField(nil) != "" {
		t.Errorf("GetField(nil) should be empty")
	}
}
