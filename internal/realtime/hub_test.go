package realtime

import (
	"context"
	"testing"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/models"
)

func newTestHub(buffer int) *Hub {
	return NewHub(config.RealtimeConfig{SendBuffer: buffer}, nil)
}

func TestHub_PublishFansOut(t *testing.T) {
	hub := newTestHub(4)

	first := hub.Subscribe()
	second := hub.Subscribe()
	defer hub.Unsubscribe(first)
	defer hub.Unsubscribe(second)

	if hub.SubscriberCount() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", hub.SubscriberCount())
	}

	tx := models.Transaction{ID: "tx-1", CustomerName: "Customer", Amount: 10, Currency: models.CurrencyUSD}
	hub.Publish(TransactionAdded(tx))

	for name, ch := range map[string]chan Event{"first": first, "second": second} {
		select {
		case event := <-ch:
			if event.Event != EventTransactionAdded {
				t.Errorf("%s: expected %q, got %q", name, EventTransactionAdded, event.Event)
			}
		default:
			t.Errorf("%s subscriber did not receive the event", name)
		}
	}
}

func TestHub_UnsubscribeStopsDelivery(t *testing.T) {
	hub := newTestHub(4)

	ch := hub.Subscribe()
	hub.Unsubscribe(ch)

	if hub.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", hub.SubscriberCount())
	}

	if _, ok := <-ch; ok {
		t.Error("unsubscribed channel should be closed")
	}

	// Unsubscribing twice must be a no-op, not a double close.
	hub.Unsubscribe(ch)

	hub.Publish(AnalyticsUpdated(models.Analytics{Currency: models.CurrencyUSD}))
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	hub := newTestHub(1)

	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	// A full subscriber buffer drops events instead of blocking the writer.
	for i := 0; i < 5; i++ {
		hub.Publish(AnalyticsUpdated(models.Analytics{TransactionCount: i, Currency: models.CurrencyUSD}))
	}

	event := <-ch
	if event.Event != EventAnalyticsUpdated {
		t.Errorf("expected %q, got %q", EventAnalyticsUpdated, event.Event)
	}

	select {
	case <-ch:
		t.Error("buffer of 1 should hold at most one pending event")
	default:
	}
}

func TestHub_Shutdown(t *testing.T) {
	hub := newTestHub(4)

	ch := hub.Subscribe()

	if err := hub.Shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}

	if _, ok := <-ch; ok {
		t.Error("shutdown should close subscriber channels")
	}

	// After shutdown the hub is inert.
	hub.Publish(Connected("ignored"))

	late := hub.Subscribe()
	if _, ok := <-late; ok {
		t.Error("subscribing after shutdown should yield a closed channel")
	}

	if err := hub.Shutdown(context.Background()); err != nil {
		t.Errorf("repeated shutdown should be a no-op, got %v", err)
	}
}

func TestEventConstructors(t *testing.T) {
	tx := models.Transaction{ID: "tx-1"}
	if e := TransactionAdded(tx); e.Event != EventTransactionAdded {
		t.Errorf("expected %q, got %q", EventTransactionAdded, e.Event)
	}

	a := models.Analytics{TransactionCount: 3}
	if e := AnalyticsUpdated(a); e.Event != EventAnalyticsUpdated {
		t.Errorf("expected %q, got %q", EventAnalyticsUpdated, e.Event)
	}

	e := Connected("hello")
	data, ok := e.Data.(map[string]string)
	if !ok || data["message"] != "hello" {
		t.Errorf("connected event should carry a message, got %+v", e.Data)
	}
}
