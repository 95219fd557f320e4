package server

import (
	"log/slog"
	"net/http"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/handlers"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/realtime"
	"sales-dashboard/internal/services"
)

type Server struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	apiHandlers   *handlers.APIHandlers
	sseHandlers   *handlers.SSEHandlers
	clientHandler *realtime.ClientHandler
}

func NewServer(store *services.TransactionStore, hub *realtime.Hub, cfg *config.Config, logger *slog.Logger) *Server {
	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		apiHandlers:   handlers.NewAPIHandlers(store, hub, logger),
		sseHandlers:   handlers.NewSSEHandlers(store, hub, logger),
		clientHandler: realtime.NewClientHandler(hub, cfg.Realtime, cfg.Security, logger),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// REST API endpoints
	s.mux.HandleFunc("GET /api/health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /api/transactions", s.apiHandlers.HandleListTransactions)
	s.mux.HandleFunc("POST /api/transactions", s.apiHandlers.HandleCreateTransaction)
	s.mux.HandleFunc("GET /api/transactions/{id}", s.apiHandlers.HandleGetTransaction)
	s.mux.HandleFunc("GET /api/analytics", s.apiHandlers.HandleAnalytics)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// Realtime channels
	s.mux.HandleFunc("GET /ws", s.clientHandler.HandleWS)
	s.mux.HandleFunc("GET /sse/analytics", s.sseHandlers.HandleAnalyticsStream)

	// Everything else is a JSON 404.
	s.mux.HandleFunc("/", s.handleNotFound)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	errors.WriteError(w, s.logger, errors.NotFound("route not found"), requestID)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
