package models

import (
	"time"

	"github.com/google/uuid"
)

// SeedTransactions returns the sample records the store is loaded with at
// startup so the dashboard has something to show before the first POST.
// Ids are generated per call; dates are fixed so ordering is deterministic.
func SeedTransactions() []Transaction {
	return []Transaction{
		{
			ID:           uuid.NewString(),
			Date:         time.Date(2025, 8, 12, 9, 30, 0, 0, time.UTC),
			CustomerName: "Acme Corp",
			Amount:       1250.00,
			Currency:     CurrencyUSD,
		},
		{
			ID:           uuid.NewString(),
			Date:         time.Date(2025, 8, 14, 14, 5, 0, 0, time.UTC),
			CustomerName: "Globex Ltd",
			Amount:       870.50,
			Currency:     CurrencyEUR,
		},
		{
			ID:           uuid.NewString(),
			Date:         time.Date(2025, 8, 18, 11, 45, 0, 0, time.UTC),
			CustomerName: "Initech",
			Amount:       432.99,
			Currency:     CurrencyGBP,
		},
		{
			ID:           uuid.NewString(),
			Date:         time.Date(2025, 8, 21, 16, 20, 0, 0, time.UTC),
			CustomerName: "Umbrella Retail",
			Amount:       219.95,
			Currency:     CurrencyCAD,
		},
		{
			ID:           uuid.NewString(),
			Date:         time.Date(2025, 8, 25, 8, 10, 0, 0, time.UTC),
			CustomerName: "Wayne Enterprises",
			Amount:       3100.25,
			Currency:     CurrencyAUD,
		},
	}
}
