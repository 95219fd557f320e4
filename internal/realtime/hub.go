package realtime

import (
	"context"
	"log/slog"
	"sync"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
)

// EventName identifies a realtime event. Server-emitted names carry the
// "server:" prefix, client-emitted ones "client:".
type EventName string

const (
	EventConnected        EventName = "server:connected"
	EventTransactionAdded EventName = "server:transaction-added"
	EventAnalyticsUpdated EventName = "server:analytics-updated"
	EventError            EventName = "server:error"

	EventClientJoin  EventName = "client:join"
	EventClientLeave EventName = "client:leave"
)

// Event is the wire envelope for the realtime channel.
type Event struct {
	Event EventName `json:"event"`
	Data  any       `json:"data,omitempty"`
}

func Connected(message string) Event {
	return Event{Event: EventConnected, Data: map[string]string{"message": message}}
}

func TransactionAdded(tx models.Transaction) Event {
	return Event{Event: EventTransactionAdded, Data: tx}
}

func AnalyticsUpdated(a models.Analytics) Event {
	return Event{Event: EventAnalyticsUpdated, Data: a}
}

func ErrorEvent(err *errors.AppError) Event {
	return Event{Event: EventError, Data: err}
}

// Hub fans events out to all current subscribers. Delivery is fire-and-forget:
// Publish never blocks, a subscriber whose buffer is full misses the event,
// and there is no replay for late joiners. Clients that miss events catch up
// over REST.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	closed      bool
	sendBuffer  int
	logger      *slog.Logger
}

func NewHub(cfg config.RealtimeConfig, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subscribers: make(map[chan Event]struct{}),
		sendBuffer:  cfg.SendBuffer,
		logger:      logger,
	}
}

// Subscribe registers a new subscriber and returns its event channel. The
// channel is closed by Unsubscribe or Shutdown, never by the caller.
func (h *Hub) Subscribe() chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.sendBuffer)
	if h.closed {
		close(ch)
		return ch
	}
	h.subscribers[ch] = struct{}{}

	h.logger.Debug("subscriber joined", "subscribers", len(h.subscribers))
	return ch
}

func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[ch]; !ok {
		return
	}
	delete(h.subscribers, ch)
	close(ch)

	h.logger.Debug("subscriber left", "subscribers", len(h.subscribers))
}

// Publish delivers the event to every subscriber that has buffer space.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	dropped := 0
	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			dropped++
		}
	}

	if dropped > 0 {
		h.logger.Warn("event dropped for slow subscribers",
			"event", event.Event,
			"dropped", dropped,
			"subscribers", len(h.subscribers),
		)
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Shutdown closes every subscriber channel so attached connections drain and
// exit. Publish and Subscribe become no-ops afterwards.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	for ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = make(map[chan Event]struct{})

	h.logger.Info("realtime hub shut down")
	return nil
}
