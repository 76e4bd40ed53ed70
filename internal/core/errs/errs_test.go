package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestKinds(t *testing.T) {
	app := NewApplication("dvo portal unavailable")
	if app.Kind != Application {
		t.Errorf("expected application kind, got %s", app.Kind)
	}
	if !app.Retryable() {
		t.Error("application errors must be retryable")
	}

	bus := NewBusiness("client %s has no email", "42")
	if bus.Kind != Business {
		t.Errorf("expected business kind, got %s", bus.Kind)
	}
	if bus.Retryable() {
		t.Error("business errors must not be retryable")
	}
	if bus.Code != "" {
		t.Errorf("expected no code, got %q", bus.Code)
	}
	if bus.Message != "client 42 has no email" {
		t.Errorf("unexpected message: %q", bus.Message)
	}
}

func TestBusinessCode(t *testing.T) {
	err := NewBusinessCode("MISSING_EMAIL", "client %s has no email", "42")
	if err.Code != "MISSING_EMAIL" {
		t.Errorf("expected code MISSING_EMAIL, got %q", err.Code)
	}
	if err.Retryable() {
		t.Error("coded business errors must not be retryable")
	}
}

func TestMatchesThroughWrapping(t *testing.T) {
	// Call sites match any classified failure in one errors.As, even
	// through fmt.Errorf wrapping.
	wrapped := fmt.Errorf("processing client: %w", NewApplication("timeout"))

	var ae *AutomationError
	if !errors.As(wrapped, &ae) {
		t.Fatal("expected wrapped AutomationError to match")
	}
	if ae.Kind != Application {
		t.Errorf("expected application kind, got %s", ae.Kind)
	}

	plain := errors.New("boom")
	if errors.As(plain, &ae) {
		t.Error("plain errors must not match AutomationError")
	}
}

func TestErrorString(t *testing.T) {
	err := NewBusinessCode("MISSING_FIELD", "field absent")
	want := "business error [MISSING_FIELD]: field absent"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}
