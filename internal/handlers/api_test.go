package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/realtime"
	"sales-dashboard/internal/services"
)

func newTestHandlers() (*APIHandlers, *services.TransactionStore, *realtime.Hub) {
	logger := slog.Default()
	store := services.NewTransactionStore(logger)
	hub := realtime.NewHub(config.RealtimeConfig{SendBuffer: 8}, logger)
	return NewAPIHandlers(store, hub, logger), store, hub
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode JSON body: %v", err)
	}
	return body
}

func TestHandleHealth(t *testing.T) {
	h, _, _ := newTestHandlers()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()

	h.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected content-type 'application/json', got %q", ct)
	}

	body := decodeBody(t, w)
	if body["status"] != "healthy" {
		t.Errorf("expected status 'healthy', got %v", body["status"])
	}

	timestamp, _ := body["timestamp"].(string)
	if _, err := time.Parse(time.RFC3339, timestamp); err != nil {
		t.Errorf("invalid timestamp %q: %v", timestamp, err)
	}
}

func TestHandleListTransactions(t *testing.T) {
	h, store, _ := newTestHandlers()
	store.Seed(models.SeedTransactions())

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	w := httptest.NewRecorder()

	h.HandleListTransactions(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var list models.TransactionList
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if list.Total != store.Count() {
		t.Errorf("expected total %d, got %d", store.Count(), list.Total)
	}
	if len(list.Transactions) != list.Total {
		t.Errorf("transactions length %d does not match total %d", len(list.Transactions), list.Total)
	}

	for i := 1; i < len(list.Transactions); i++ {
		if list.Transactions[i].Date.After(list.Transactions[i-1].Date) {
			t.Errorf("transactions not date-descending at index %d", i)
		}
	}
}

func TestHandleCreateTransaction(t *testing.T) {
	h, store, hub := newTestHandlers()

	events := hub.Subscribe()
	defer hub.Unsubscribe(events)

	payload := `{"customerName": "Ada Lovelace", "amount": 150.5, "currency": "USD"}`
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(payload))
	w := httptest.NewRecorder()

	h.HandleCreateTransaction(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var tx models.Transaction
	if err := json.NewDecoder(w.Body).Decode(&tx); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if tx.ID == "" {
		t.Error("created transaction should have a non-empty id")
	}
	if tx.Amount != 150.5 {
		t.Errorf("expected amount 150.5, got %v", tx.Amount)
	}
	if tx.Currency != models.CurrencyUSD {
		t.Errorf("expected currency USD, got %q", tx.Currency)
	}
	if tx.CustomerName != "Ada Lovelace" {
		t.Errorf("expected customer 'Ada Lovelace', got %q", tx.CustomerName)
	}

	if store.Count() != 1 {
		t.Errorf("expected 1 stored transaction, got %d", store.Count())
	}

	// The creation must broadcast the identical record, then the fresh
	// analytics snapshot.
	select {
	case event := <-events:
		if event.Event != realtime.EventTransactionAdded {
			t.Fatalf("expected %q first, got %q", realtime.EventTransactionAdded, event.Event)
		}
		broadcast, ok := event.Data.(models.Transaction)
		if !ok {
			t.Fatalf("expected Transaction payload, got %T", event.Data)
		}
		if broadcast.ID != tx.ID || broadcast.Amount != tx.Amount ||
			broadcast.CustomerName != tx.CustomerName || broadcast.Currency != tx.Currency ||
			!broadcast.Date.Equal(tx.Date) {
			t.Errorf("broadcast record %+v does not match response %+v", broadcast, tx)
		}
	default:
		t.Fatal("no transaction-added event was broadcast")
	}

	select {
	case event := <-events:
		if event.Event != realtime.EventAnalyticsUpdated {
			t.Fatalf("expected %q second, got %q", realtime.EventAnalyticsUpdated, event.Event)
		}
		analytics, ok := event.Data.(models.Analytics)
		if !ok {
			t.Fatalf("expected Analytics payload, got %T", event.Data)
		}
		if analytics.TransactionCount != 1 {
			t.Errorf("expected broadcast count 1, got %d", analytics.TransactionCount)
		}
		if analytics.TotalRevenue != 150.5 {
			t.Errorf("expected broadcast revenue 150.5, got %v", analytics.TotalRevenue)
		}
	default:
		t.Fatal("no analytics-updated event was broadcast")
	}
}

func TestHandleCreateTransaction_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty name", `{"customerName": "", "amount": 10, "currency": "USD"}`},
		{"missing name", `{"amount": 10, "currency": "USD"}`},
		{"zero amount", `{"customerName": "Customer", "amount": 0, "currency": "USD"}`},
		{"negative amount", `{"customerName": "Customer", "amount": -3, "currency": "USD"}`},
		{"unsupported currency", `{"customerName": "Customer", "amount": 10, "currency": "JPY"}`},
		{"amount as string", `{"customerName": "Customer", "amount": "10", "currency": "USD"}`},
		{"not JSON", `not json at all`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store, hub := newTestHandlers()

			events := hub.Subscribe()
			defer hub.Unsubscribe(events)

			req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(tt.payload))
			w := httptest.NewRecorder()

			h.HandleCreateTransaction(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
			}

			body := decodeBody(t, w)
			if code, _ := body["error"].(string); code == "" {
				t.Error("error body should carry an error code")
			}
			if msg, _ := body["message"].(string); msg == "" {
				t.Error("error body should carry a message")
			}
			if sc, _ := body["statusCode"].(float64); int(sc) != http.StatusBadRequest {
				t.Errorf("error body statusCode should be 400, got %v", body["statusCode"])
			}

			if store.Count() != 0 {
				t.Errorf("rejected payload must not mutate the store, count=%d", store.Count())
			}

			select {
			case event := <-events:
				t.Errorf("rejected payload must not broadcast, got %q", event.Event)
			default:
			}
		})
	}
}

func TestHandleGetTransaction(t *testing.T) {
	h, store, _ := newTestHandlers()

	created := store.Create(models.CreateTransactionRequest{
		CustomerName: "Customer",
		Amount:       42,
		Currency:     models.CurrencyCAD,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/transactions/"+created.ID, nil)
	req.SetPathValue("id", created.ID)
	w := httptest.NewRecorder()

	h.HandleGetTransaction(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var tx models.Transaction
	if err := json.NewDecoder(w.Body).Decode(&tx); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if tx.ID != created.ID {
		t.Errorf("expected id %q, got %q", created.ID, tx.ID)
	}
}

func TestHandleGetTransaction_NotFound(t *testing.T) {
	h, _, _ := newTestHandlers()

	req := httptest.NewRequest(http.MethodGet, "/api/transactions/missing", nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()

	h.HandleGetTransaction(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}

	body := decodeBody(t, w)
	if body["error"] != "NOT_FOUND" {
		t.Errorf("expected error NOT_FOUND, got %v", body["error"])
	}
}

func TestHandleAnalytics(t *testing.T) {
	h, store, _ := newTestHandlers()

	store.Create(models.CreateTransactionRequest{
		CustomerName: "Customer",
		Amount:       150.5,
		Currency:     models.CurrencyUSD,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	w := httptest.NewRecorder()

	h.HandleAnalytics(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp models.AnalyticsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if resp.Analytics.TransactionCount != 1 {
		t.Errorf("expected count 1, got %d", resp.Analytics.TransactionCount)
	}
	if resp.Analytics.TotalRevenue != 150.5 {
		t.Errorf("expected revenue 150.5, got %v", resp.Analytics.TotalRevenue)
	}
	if resp.Analytics.Currency != models.CurrencyUSD {
		t.Errorf("expected currency USD, got %q", resp.Analytics.Currency)
	}
}

func TestHandleStats(t *testing.T) {
	h, store, _ := newTestHandlers()
	store.Seed(models.SeedTransactions())

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()

	h.HandleStats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	body := decodeBody(t, w)
	if count, _ := body["transaction_count"].(float64); int(count) != store.Count() {
		t.Errorf("expected transaction_count %d, got %v", store.Count(), body["transaction_count"])
	}
	if _, ok := body["realtime_subscribers"]; !ok {
		t.Error("stats should report realtime_subscribers")
	}
}
