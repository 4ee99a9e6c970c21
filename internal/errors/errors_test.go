package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"review-dashboard/internal/analysis"
	"review-dashboard/internal/cleaning"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestFromDomain(t *testing.T) {
	coercion := &cleaning.CoercionError{Row: 4, Column: "rating", Value: "x", Err: fmt.Errorf("no leading decimal")}

	tests := []struct {
		name       string
		err        error
		wantCode   ErrorCode
		wantStatus int
	}{
		{"no reviews", analysis.ErrNoReviews, CodeNoData, http.StatusServiceUnavailable},
		{"wrapped no reviews", fmt.Errorf("summary: %w", analysis.ErrNoReviews), CodeNoData, http.StatusServiceUnavailable},
		{"coercion", fmt.Errorf("clean: %w", coercion), CodeInvalidData, http.StatusUnprocessableEntity},
		{"app error passthrough", NotFound("app not found"), CodeNotFound, http.StatusNotFound},
		{"unknown", stderrors.New("boom"), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromDomain(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", got.Code, tt.wantCode)
			}
			if got.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", got.StatusCode, tt.wantStatus)
			}
		})
	}

	if d := FromDomain(coercion).Details; d != "row 4 column rating" {
		t.Errorf("Details = %q", d)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	err := Wrap(analysis.ErrNoReviews, CodeNoData, "empty")
	if !stderrors.Is(err, analysis.ErrNoReviews) {
		t.Error("wrapped AppError should unwrap to its cause")
	}
	if err.Error() != "NO_DATA: empty (caused by: no reviews to summarize)" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, discard, analysis.ErrNoReviews, "req-1")

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q", ct)
	}

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code      string `json:"code"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success {
		t.Error("success should be false")
	}
	if resp.Error.Code != string(CodeNoData) || resp.Error.RequestID != "req-1" {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestWriteSuccessWithHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessWithHeaders(w, []int{1, 2}, map[string]string{"Cache-Control": "no-store"})

	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("cache-control = %q", cc)
	}

	var resp SuccessResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Error("success should be true")
	}
}
