package errs

import (
	"errors"
	"testing"
)

func TestNewFormatsMessage(t *testing.T) {
	err := New(InvalidArguments, "bad field %q", "amount")
	if err.Kind != InvalidArguments {
		t.Fatalf("expected Kind=InvalidArguments, got %v", err.Kind)
	}
	want := `InvalidArguments: bad field "amount"`
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNewWithEmptyMessageFallsBackToKind(t *testing.T) {
	err := New(HostError, "")
	if err.Error() != "HostError" {
		t.Fatalf("expected bare kind string, got %q", err.Error())
	}
}

func TestWrapRetainsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(Deserialization, cause, "decoding state")
	if err.Unwrap() != cause {
		t.Fatalf("expected Unwrap to return the original cause")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to unwrap through Error.Unwrap")
	}
}

func TestIsMatchesKind(t *testing.T) {
	err := New(OutOfBounds, "index 9 out of range")
	if !Is(err, OutOfBounds) {
		t.Fatalf("expected Is to match OutOfBounds")
	}
	if Is(err, InvalidAmount) {
		t.Fatalf("expected Is to reject a non-matching kind")
	}
}

func TestIsUnwrapsWrappedTaxonomyErrors(t *testing.T) {
	inner := New(FrozenViolation, "storage is frozen")
	outer := Wrap(Application, inner, "handler failed")
	if !Is(outer, FrozenViolation) {
		t.Fatalf("expected Is to find the inner taxonomy kind through Cause")
	}
	if !Is(outer, Application) {
		t.Fatalf("expected Is to match the outer kind directly")
	}
}

func TestIsOnPlainErrorIsFalse(t *testing.T) {
	if Is(errors.New("not a taxonomy error"), Application) {
		t.Fatalf("expected Is to return false for a non-*Error")
	}
}

func TestIsOnNilIsFalse(t *testing.T) {
	if Is(nil, Application) {
		t.Fatalf("expected Is(nil, ...) to be false")
	}
}
