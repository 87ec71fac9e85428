package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ledger/internal/core"
)

func TestJSONResponseBuilder(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Test", "1").
		Data(map[string]int{"id": 7}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
	if w.Header().Get("X-Test") != "1" {
		t.Error("custom header missing")
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Body.String() != "{\"id\":7}\n" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestJSONResponseBuilder_NoBody(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", core.Invalid("goal", core.ErrInvalidGoal), http.StatusUnprocessableEntity},
		{"wrapped validation", fmt.Errorf("create: %w", core.Invalid("name", core.ErrEmptyName)), http.StatusUnprocessableEntity},
		{"not found", core.NotFound("bucket", 7), http.StatusNotFound},
		{"malformed", malformed("amount", errors.New("missing")), http.StatusBadRequest},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWriteErrorHidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	writeError(w, r, errors.New("sqlite: disk I/O error"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if body := decode[errorBody](t, w); body.Error != "internal error" {
		t.Fatalf("body = %+v", body)
	}

	w = httptest.NewRecorder()
	writeError(w, r, core.Invalid("goal", core.ErrInvalidGoal))
	if body := decode[errorBody](t, w); body.Field != "goal" || body.Error != "goal: goal must be greater than zero" {
		t.Fatalf("validation body = %+v", body)
	}
}
