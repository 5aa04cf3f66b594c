package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeInvalid, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeUnauthorized, http.StatusUnauthorized},
		{Code("OTHER"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := tt.code.HTTPStatus(); got != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestIsMatchesCodeAndMessage(t *testing.T) {
	notFound := New(CodeNotFound, "Property not found")
	wrapped := fmt.Errorf("loading: %w", notFound)

	if !errors.Is(wrapped, notFound) {
		t.Error("expected wrapped error to match sentinel")
	}
	if errors.Is(wrapped, New(CodeNotFound, "Lead not found")) {
		t.Error("different messages should not match")
	}
	if !errors.Is(wrapped, &Error{Code: CodeNotFound}) {
		t.Error("code-only target should match any message")
	}
	if errors.Is(wrapped, New(CodeConflict, "Property not found")) {
		t.Error("different codes should not match")
	}
}

func TestAsAndIsCode(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("saving: %w", Wrap(CodeConflict, "already exists", cause))

	e, ok := As(err)
	if !ok {
		t.Fatal("expected domain error in chain")
	}
	if e.Message != "already exists" {
		t.Errorf("message = %q", e.Message)
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable")
	}
	if !IsCode(err, CodeConflict) {
		t.Error("expected conflict code")
	}
	if IsCode(errors.New("plain"), CodeConflict) {
		t.Error("plain errors carry no code")
	}
}

func TestInvalidFormats(t *testing.T) {
	err := Invalid("invalid locality: %s", "GOTHAM")
	if err.Error() != "invalid locality: GOTHAM" {
		t.Errorf("error = %q", err.Error())
	}
	if err.Code != CodeInvalid {
		t.Errorf("code = %s", err.Code)
	}
}
