package models

import "time"

// Currency is the ISO 4217 code of a transaction. Only a fixed set is
// accepted; there is no conversion between them.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyCAD Currency = "CAD"
	CurrencyAUD Currency = "AUD"
)

var supportedCurrencies = []Currency{
	CurrencyUSD,
	CurrencyEUR,
	CurrencyGBP,
	CurrencyCAD,
	CurrencyAUD,
}

func SupportedCurrencies() []Currency {
	out := make([]Currency, len(supportedCurrencies))
	copy(out, supportedCurrencies)
	return out
}

func (c Currency) Supported() bool {
	for _, sc := range supportedCurrencies {
		if c == sc {
			return true
		}
	}
	return false
}

// Transaction is an immutable record of a single sale. Once created it is
// never updated or deleted.
type Transaction struct {
	ID           string    `json:"id"`
	Date         time.Time `json:"date"`
	CustomerName string    `json:"customerName"`
	Amount       float64   `json:"amount"`
	Currency     Currency  `json:"currency"`
}

// CreateTransactionRequest is the decoded body of POST /api/transactions,
// before and after normalization by the validation layer.
type CreateTransactionRequest struct {
	CustomerName string     `json:"customerName"`
	Amount       float64    `json:"amount"`
	Currency     Currency   `json:"currency"`
	Date         *time.Time `json:"date,omitempty"`
}

// Analytics is the aggregate recomputed from all stored transactions.
// Revenue is reported under a fixed USD label; amounts are summed without
// conversion, a known simplification of the demo.
type Analytics struct {
	TotalRevenue     float64  `json:"totalRevenue"`
	TransactionCount int      `json:"transactionCount"`
	Currency         Currency `json:"currency"`
}

type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
}

type AnalyticsResponse struct {
	Analytics Analytics `json:"analytics"`
}
