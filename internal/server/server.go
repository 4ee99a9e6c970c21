package server

import (
	"log/slog"
	"net/http"

	"review-dashboard/internal/handlers"
	"review-dashboard/internal/services"
)

type Server struct {
	analytics   *services.Analytics
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

// NewServer registers the dashboard routes. A nil metrics handler leaves
// /metrics unregistered.
func NewServer(analytics *services.Analytics, logger *slog.Logger, metrics http.Handler) *Server {
	s := &Server{
		analytics:   analytics,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, logger),
	}
	s.setupRoutes(metrics)
	return s
}

func (s *Server) setupRoutes(metrics http.Handler) {
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	s.mux.HandleFunc("POST /admin/reload", s.apiHandlers.HandleReload)
	if metrics != nil {
		s.mux.Handle("GET /metrics", metrics)
	}

	// REST API endpoints
	s.mux.HandleFunc("GET /api/sentiment/apps", s.apiHandlers.HandleAppSentiment)
	s.mux.HandleFunc("GET /api/sentiment/apps/{name}", s.apiHandlers.HandleAppReport)
	s.mux.HandleFunc("GET /api/sentiment/languages", s.apiHandlers.HandleLanguageSentiment)
	s.mux.HandleFunc("GET /api/summary", s.apiHandlers.HandleSummary)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/sentiment/apps", s.sseHandlers.HandleAppSentiment)
	s.mux.HandleFunc("GET /sse/sentiment/languages", s.sseHandlers.HandleLanguageSentiment)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

// Route returns the pattern that would serve r, or "" when none matches.
func (s *Server) Route(r *http.Request) string {
	_, pattern := s.mux.Handler(r)
	return pattern
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
