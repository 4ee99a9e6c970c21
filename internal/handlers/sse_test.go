package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"review-dashboard/internal/services"
)

func TestNewSSEHandlers(t *testing.T) {
	analytics := createTestAnalytics()
	logger := testLogger()

	handlers := NewSSEHandlers(analytics, logger)

	if handlers == nil {
		t.Fatal("NewSSEHandlers() returned nil")
	}
	if handlers.analytics != analytics {
		t.Error("NewSSEHandlers() should set analytics field")
	}
	if handlers.logger != logger {
		t.Error("NewSSEHandlers() should set logger field")
	}
}

func TestSSEHandlers_Endpoints(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	tests := []struct {
		name     string
		path     string
		handler  http.HandlerFunc
		expected []string
	}{
		{
			name:     "app sentiment",
			path:     "/sse/sentiment/apps",
			handler:  handlers.HandleAppSentiment,
			expected: []string{"appSentiment", "app_name", "Notion", "Slack"},
		},
		{
			name:     "language sentiment",
			path:     "/sse/sentiment/languages",
			handler:  handlers.HandleLanguageSentiment,
			expected: []string{"languageSentiment", "lang_name", "ja"},
		},
		{
			name:     "refresh all",
			path:     "/sse/refresh-all",
			handler:  handlers.HandleRefreshAll,
			expected: []string{"appSentiment", "languageSentiment", "mostReviewedApp", "Notion"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()

			tt.handler(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
				t.Errorf("expected event-stream content type, got %q", ct)
			}

			body := w.Body.String()
			if !strings.Contains(body, "datastar-patch-signals") {
				t.Errorf("expected a datastar signal patch event, got %q", body)
			}
			for _, s := range tt.expected {
				if !strings.Contains(body, s) {
					t.Errorf("expected body to contain %q", s)
				}
			}
		})
	}
}

func TestSSEHandlers_HandleRefreshAll_NoData(t *testing.T) {
	handlers := NewSSEHandlers(services.NewAnalytics(services.Options{Logger: testLogger()}), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/refresh-all", nil)
	w := httptest.NewRecorder()
	handlers.HandleRefreshAll(w, req)

	body := w.Body.String()
	if !strings.Contains(body, `"summary":null`) {
		t.Errorf("expected null summary, got %q", body)
	}
	if !strings.Contains(body, `"appSentiment":[]`) {
		t.Errorf("expected empty app sentiment, got %q", body)
	}
}
