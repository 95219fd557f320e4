package services

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sales-dashboard/internal/models"
)

// TransactionStore owns the authoritative in-memory transaction list: a
// date-descending slice plus an id lookup map. It is constructor-injected
// wherever it is needed, never a package-level singleton, so tests get
// isolated instances and a persistent backend can replace it later.
//
// Handlers run concurrently, so all state is guarded by an RWMutex. Create
// mutates and re-sorts under the write lock; readers see the state either
// before or after a whole create, never in between.
type TransactionStore struct {
	mu           sync.RWMutex
	transactions []models.Transaction
	byID         map[string]models.Transaction
	logger       *slog.Logger
}

func NewTransactionStore(logger *slog.Logger) *TransactionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransactionStore{
		transactions: make([]models.Transaction, 0),
		byID:         make(map[string]models.Transaction),
		logger:       logger,
	}
}

// Seed loads the given transactions, replacing whatever is stored.
func (s *TransactionStore) Seed(txs []models.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = make([]models.Transaction, 0, len(txs))
	s.byID = make(map[string]models.Transaction, len(txs))
	for _, tx := range txs {
		s.transactions = append(s.transactions, tx)
		s.byID[tx.ID] = tx
	}
	s.sortLocked()

	s.logger.Info("store seeded", "transactions", len(txs))
}

// Create assigns a fresh id, defaults the date to now, appends the record and
// re-sorts the collection date-descending. Input is assumed pre-validated.
func (s *TransactionStore) Create(req models.CreateTransactionRequest) models.Transaction {
	tx := models.Transaction{
		ID:           uuid.NewString(),
		Date:         time.Now().UTC(),
		CustomerName: req.CustomerName,
		Amount:       req.Amount,
		Currency:     req.Currency,
	}
	if req.Date != nil {
		tx.Date = req.Date.UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = append(s.transactions, tx)
	s.byID[tx.ID] = tx
	s.sortLocked()

	s.logger.Debug("transaction created",
		"transaction_id", tx.ID,
		"amount", tx.Amount,
		"currency", tx.Currency,
	)

	return tx
}

// List returns a copy of the full collection in date-descending order.
func (s *TransactionStore) List() []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// Get looks a transaction up by id.
func (s *TransactionStore) Get(id string) (models.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.byID[id]
	return tx, ok
}

func (s *TransactionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transactions)
}

// ComputeAnalytics sums every stored amount and counts the records. Amounts
// are summed as decimals to keep the total exact at two places; the single
// USD label is a known simplification, no conversion happens. O(n) per call,
// fine at demo scale.
func (s *TransactionStore) ComputeAnalytics() models.Analytics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, tx := range s.transactions {
		total = total.Add(decimal.NewFromFloat(tx.Amount))
	}

	return models.Analytics{
		TotalRevenue:     total.Round(2).InexactFloat64(),
		TransactionCount: len(s.transactions),
		Currency:         models.CurrencyUSD,
	}
}

// Stats reports store internals for the admin endpoint.
func (s *TransactionStore) Stats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var newest, oldest time.Time
	if len(s.transactions) > 0 {
		newest = s.transactions[0].Date
		oldest = s.transactions[len(s.transactions)-1].Date
	}

	return map[string]any{
		"transaction_count": len(s.transactions),
		"newest_date":       newest,
		"oldest_date":       oldest,
		"currencies":        models.SupportedCurrencies(),
	}
}

// sortLocked keeps the slice date-descending; ties keep insertion order.
// Callers must hold the write lock.
func (s *TransactionStore) sortLocked() {
	slices.SortStableFunc(s.transactions, func(a, b models.Transaction) int {
		return b.Date.Compare(a.Date)
	})
}
