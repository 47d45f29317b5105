package testutil

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
)

// AssertAppError checks that err carries an *AppError with the expected code,
// however deeply it is wrapped.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected %s, got %T: %v", expectedCode, err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected %s, got %s (%s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test immediately if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertAmount compares a money value against its decimal string form.
// Trailing zeros are ignored, so "1500.50" matches 1500.5.
func AssertAmount(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()

	expected, err := decimal.NewFromString(want)
	if err != nil {
		t.Fatalf("bad expected amount %q: %v", want, err)
	}
	if !got.Equal(expected) {
		t.Errorf("expected amount %s, got %s", expected, got)
	}
}
