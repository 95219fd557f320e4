package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/realtime"
	"sales-dashboard/internal/services"
)

const maxBodyBytes = 1 << 20

type APIHandlers struct {
	store  *services.TransactionStore
	hub    *realtime.Hub
	logger *slog.Logger
}

func NewAPIHandlers(store *services.TransactionStore, hub *realtime.Hub, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		store:  store,
		hub:    hub,
		logger: logger,
	}
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *APIHandlers) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions := h.store.List()

	errors.WriteJSON(w, http.StatusOK, models.TransactionList{
		Transactions: transactions,
		Total:        len(transactions),
	})
}

func (h *APIHandlers) HandleGetTransaction(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	tx, ok := h.store.Get(r.PathValue("id"))
	if !ok {
		errors.WriteError(w, h.logger, errors.NotFound("transaction not found"), requestID)
		return
	}

	errors.WriteJSON(w, http.StatusOK, tx)
}

// HandleCreateTransaction validates the payload, commits it to the store and
// then publishes the new record plus the recomputed analytics to the hub.
// Broadcast delivery is best-effort and never fails the request.
func (h *APIHandlers) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	var req models.CreateTransactionRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "request body must be valid JSON"), requestID)
		return
	}

	normalized, err := services.ValidateCreateRequest(req)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	tx := h.store.Create(normalized)
	analytics := h.store.ComputeAnalytics()

	h.hub.Publish(realtime.TransactionAdded(tx))
	h.hub.Publish(realtime.AnalyticsUpdated(analytics))

	h.logger.Info("transaction created",
		"transaction_id", tx.ID,
		"amount", tx.Amount,
		"currency", tx.Currency,
		"request_id", requestID,
	)

	errors.WriteJSON(w, http.StatusCreated, tx)
}

func (h *APIHandlers) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	errors.WriteJSON(w, http.StatusOK, models.AnalyticsResponse{
		Analytics: h.store.ComputeAnalytics(),
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.store.Stats()
	stats["realtime_subscribers"] = h.hub.SubscriberCount()

	errors.WriteJSON(w, http.StatusOK, stats)
}
