package err

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", Validation("Missing required fields", "userId"), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("create: %w", Validation("bad level", "level")), http.StatusBadRequest},
		{"not found", NotFound("stress entry", "abc"), http.StatusNotFound},
		{"store", fmt.Errorf("ping: %w", ErrStoreUnavailable), http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.in); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	if got := Validation("Missing required fields", "userId", "date").Error(); got != "Missing required fields: userId, date" {
		t.Errorf("got %q", got)
	}
	if got := Validation("bad").Error(); got != "bad" {
		t.Errorf("got %q", got)
	}
	if got := NotFound("session", "42").Error(); got != "session 42 not found" {
		t.Errorf("got %q", got)
	}
}

func TestRequestIDContext(t *testing.T) {
	if RequestIDFromContext(context.Background()) != "" {
		t.Error("expected empty request id")
	}
	ctx := WithRequestID(context.Background(), "req-1")
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("got %q", got)
	}
}
