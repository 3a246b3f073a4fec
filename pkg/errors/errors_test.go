package errors

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "store unreachable", http.StatusInternalServerError)

	if !errors.Is(err, cause) {
		t.Error("expected wrapped error to match cause via errors.Is")
	}
	if err.Error() == "" {
		t.Error("expected non-empty error string")
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Booking", "abc123")

	if err.Code != CodeNotFound {
		t.Errorf("expected code %s, got %s", CodeNotFound, err.Code)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", err.HTTPStatus)
	}
	if err.Details["id"] != "abc123" {
		t.Errorf("expected id detail 'abc123', got %v", err.Details["id"])
	}
}

func TestLockBusy(t *testing.T) {
	err := LockBusy("Booking", 2*time.Second)

	if err.Code != CodeLockBusy {
		t.Errorf("expected code %s, got %s", CodeLockBusy, err.Code)
	}
	if err.HTTPStatus != http.StatusLocked {
		t.Errorf("expected status 423, got %d", err.HTTPStatus)
	}
	if err.RetryAfter != 2*time.Second {
		t.Errorf("expected retry-after 2s, got %s", err.RetryAfter)
	}
}

func TestRateLimited(t *testing.T) {
	err := RateLimited("too many location updates", time.Minute)

	if err.Code != CodeRateLimited {
		t.Errorf("expected code %s, got %s", CodeRateLimited, err.Code)
	}
	if err.HTTPStatus != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", err.HTTPStatus)
	}
}

func TestConflictCode(t *testing.T) {
	err := ConflictCode("ALREADY_CONFIRMED", "booking is already confirmed")

	if err.Code != "ALREADY_CONFIRMED" {
		t.Errorf("expected custom code, got %s", err.Code)
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("expected status 409, got %d", err.HTTPStatus)
	}
}

func TestAsAppError(t *testing.T) {
	plain := errors.New("boom")
	appErr := AsAppError(plain)

	if appErr.Code != CodeInternal {
		t.Errorf("expected plain errors to map to %s, got %s", CodeInternal, appErr.Code)
	}

	existing := Conflict("state conflict")
	if AsAppError(existing) != existing {
		t.Error("expected existing AppError to pass through unchanged")
	}
}
