package handlers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"review-dashboard/internal/errors"
	"review-dashboard/internal/models"
	"review-dashboard/internal/observability"
	"review-dashboard/internal/services"
)

const reloadTimeout = 30 * time.Second

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *APIHandlers) HandleAppSentiment(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, models.AppReports(h.analytics.AppSentiment()), cacheHeaders)
}

func (h *APIHandlers) HandleAppReport(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	report, ok := h.analytics.AppReport(name)
	if !ok {
		err := errors.NotFound("No reviews for app")
		err.Details = name
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}

	errors.WriteSuccessWithHeaders(w, report.AsApp(), cacheHeaders)
}

func (h *APIHandlers) HandleLanguageSentiment(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, models.LanguageReports(h.analytics.LanguageSentiment()), cacheHeaders)
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analytics.Summary()
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}

	errors.WriteSuccessWithHeaders(w, summary, cacheHeaders)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}

// HandleReload reloads the dataset file. A load failure is reported with
// the mapped error code and the previous reports keep serving.
func (h *APIHandlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), reloadTimeout)
	defer cancel()

	if err := h.analytics.Reload(ctx); err != nil {
		if stderrors.Is(err, services.ErrNoSource) {
			errors.WriteError(w, h.logger, errors.NoData("No dataset file has been loaded"), requestID)
			return
		}
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	h.logger.Info("dataset reloaded", "request_id", requestID)
	errors.WriteSuccess(w, h.analytics.Stats())
}
