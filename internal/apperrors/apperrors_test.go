package apperrors

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppError(t *testing.T) {
	t.Run("error string includes the cause", func(t *testing.T) {
		cause := errors.New("disk full")
		err := Internal(cause)
		if got := err.Error(); got != "INTERNAL_ERROR: An internal error occurred. Please try again later. (cause: disk full)" {
			t.Errorf("unexpected error string %q", got)
		}
		if !errors.Is(err, cause) {
			t.Error("expected the cause to unwrap")
		}
	})

	t.Run("WithCause and WithDetail chain", func(t *testing.T) {
		cause := errors.New("eof")
		err := InvalidInput("file", "truncated upload").
			WithCause(cause).
			WithDetail("filename", "clip.mp3")
		if err.Cause != cause {
			t.Error("expected cause set")
		}
		if err.Details["filename"] != "clip.mp3" {
			t.Errorf("unexpected details %v", err.Details)
		}
		if err.Details["field"] != "file" {
			t.Errorf("expected field detail preserved, got %v", err.Details)
		}
	})

	t.Run("Unauthorized maps to 401", func(t *testing.T) {
		err := Unauthorized()
		if err.HTTPStatus != http.StatusUnauthorized {
			t.Errorf("unexpected status %d", err.HTTPStatus)
		}
		if err.Code != ErrCodeUnauthorized {
			t.Errorf("unexpected code %s", err.Code)
		}
	})

	t.Run("constructor status mapping", func(t *testing.T) {
		tests := []struct {
			name string
			err  *AppError
			want int
		}{
			{"invalid input", InvalidInput("file", "missing"), http.StatusBadRequest},
			{"database", Database("create", errors.New("x")), http.StatusInternalServerError},
			{"external service", ExternalService("transcription", errors.New("x")), http.StatusInternalServerError},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				if tc.err.HTTPStatus != tc.want {
					t.Errorf("expected %d, got %d", tc.want, tc.err.HTTPStatus)
				}
			})
		}
	})
}

func TestAsAppError(t *testing.T) {
	app := Database("list", errors.New("x"))
	if got, ok := AsAppError(app); !ok || got != app {
		t.Error("expected a direct AppError to be recognized")
	}
	if _, ok := AsAppError(errors.New("plain")); ok {
		t.Error("expected a plain error not to be recognized")
	}
}
