package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewMatchesKind(t *testing.T) {
	err := New(ErrNotFound, "skill not found")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected errors.Is(err, ErrNotFound)")
	}
	if errors.Is(err, ErrForbidden) {
		t.Fatalf("unexpected match with ErrForbidden")
	}
	if err.Error() != "skill not found" {
		t.Fatalf("message: got=%q", err.Error())
	}

	wrapped := fmt.Errorf("update: %w", Newf(ErrInvalidInput, "progress must be between %d and %d", 0, 100))
	if !errors.Is(wrapped, ErrInvalidInput) {
		t.Fatalf("wrapped error lost its kind")
	}
}

func TestEmptyMessageFallsBackToKind(t *testing.T) {
	if got := New(ErrConflict, "").Error(); got != "conflict" {
		t.Fatalf("got=%q want=conflict", got)
	}
}
