package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorMessageFormatting(t *testing.T) {
	base := New("TEST", "something failed", http.StatusBadRequest)
	if base.Error() != "something failed" {
		t.Fatalf("unexpected message: %s", base.Error())
	}

	wrapped := base.WithInternal(errors.New("boom"))
	if wrapped.Error() != "something failed: boom" {
		t.Fatalf("unexpected wrapped message: %s", wrapped.Error())
	}
}

func TestInvariantViolationDetection(t *testing.T) {
	err := NewInvariantViolation("system roles cannot be modified")
	if !IsInvariantViolation(err) {
		t.Fatal("expected invariant violation")
	}
	if err.StatusCode != http.StatusConflict {
		t.Fatalf("unexpected status: %d", err.StatusCode)
	}

	chained := fmt.Errorf("service: %w", err)
	if !IsInvariantViolation(chained) {
		t.Fatal("expected detection through wrapping")
	}
	if IsInvariantViolation(errors.New("plain")) {
		t.Fatal("plain errors must not match")
	}
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	err := FromError(errors.New("db closed"))
	if err.Code != ErrInternalServer.Code {
		t.Fatalf("unexpected code: %s", err.Code)
	}
	if err.Internal == nil {
		t.Fatal("expected internal error to be preserved")
	}

	if FromError(nil) != nil {
		t.Fatal("nil error must map to nil")
	}
}

func TestNotFoundDetection(t *testing.T) {
	if !IsNotFound(NewNotFound("role not found")) {
		t.Fatal("expected not-found match")
	}
	if IsNotFound(NewValidationFailure("bad input")) {
		t.Fatal("validation failure must not match not-found")
	}
}
