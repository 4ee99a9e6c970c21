package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"review-dashboard/internal/models"
	"review-dashboard/internal/services"
)

// SSEHandlers push report data to datastar clients as signal patches.
type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *SSEHandlers) patch(w http.ResponseWriter, r *http.Request, signals map[string]any) {
	sse := datastar.NewSSE(w, r)

	payload, err := json.Marshal(signals)
	if err != nil {
		h.logger.Error("marshal signals", "error", err)
		return
	}
	if err := sse.PatchSignals(payload); err != nil {
		h.logger.Warn("patch signals", "error", err)
		return
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleAppSentiment(w http.ResponseWriter, r *http.Request) {
	h.patch(w, r, map[string]any{"appSentiment": models.AppReports(h.analytics.AppSentiment())})
}

func (h *SSEHandlers) HandleLanguageSentiment(w http.ResponseWriter, r *http.Request) {
	h.patch(w, r, map[string]any{"languageSentiment": models.LanguageReports(h.analytics.LanguageSentiment())})
}

// HandleRefreshAll sends every report in one patch. summary is null when
// no reviews are loaded.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	var summary any
	if s, err := h.analytics.Summary(); err == nil {
		summary = s
	}

	h.patch(w, r, map[string]any{
		"appSentiment":      models.AppReports(h.analytics.AppSentiment()),
		"languageSentiment": models.LanguageReports(h.analytics.LanguageSentiment()),
		"summary":           summary,
	})
}
