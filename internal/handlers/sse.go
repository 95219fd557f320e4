package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/realtime"
	"sales-dashboard/internal/services"
)

// SSEHandlers serves dashboard clients that only need server-to-client
// updates. The stream pushes the current analytics snapshot on connect and a
// fresh one whenever the hub announces a change.
type SSEHandlers struct {
	store  *services.TransactionStore
	hub    *realtime.Hub
	logger *slog.Logger
}

func NewSSEHandlers(store *services.TransactionStore, hub *realtime.Hub, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		store:  store,
		hub:    hub,
		logger: logger,
	}
}

// HandleAnalyticsStream is the GET /sse/analytics endpoint.
func (h *SSEHandlers) HandleAnalyticsStream(w http.ResponseWriter, r *http.Request) {
	// Long-lived stream: lift the server write timeout for this response.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug("could not clear write deadline", "error", err)
	}

	sse := datastar.NewSSE(w, r)

	pushAnalytics := func() error {
		jsonData, err := json.Marshal(map[string]any{
			"analytics": h.store.ComputeAnalytics(),
		})
		if err != nil {
			return err
		}

		if err := sse.PatchSignals(jsonData); err != nil {
			return err
		}

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		return nil
	}

	if err := pushAnalytics(); err != nil {
		h.logger.Error("push initial analytics", "error", err)
		return
	}

	events := h.hub.Subscribe()
	defer h.hub.Unsubscribe(events)

	for {
		select {
		case <-r.Context().Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if event.Event != realtime.EventAnalyticsUpdated {
				continue
			}
			if err := pushAnalytics(); err != nil {
				h.logger.Error("push analytics update", "error", err)
				return
			}
		}
	}
}
