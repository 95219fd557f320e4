package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
)

// ValidateCreateRequest checks a decoded creation payload and returns its
// normalized form: trimmed customer name, amount rounded to cents
// (half away from zero, so 19.995 becomes 20.00 and 19.994 becomes 19.99).
// Any violation fails the whole request; nothing is partially accepted.
func ValidateCreateRequest(req models.CreateTransactionRequest) (models.CreateTransactionRequest, error) {
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return models.CreateTransactionRequest{}, errors.Validation("customerName must be a non-empty string")
	}

	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		return models.CreateTransactionRequest{}, errors.Validation("amount must be a finite number")
	}
	if req.Amount <= 0 {
		return models.CreateTransactionRequest{}, errors.Validation("amount must be greater than zero")
	}

	amount := decimal.NewFromFloat(req.Amount).Round(2)
	if !amount.IsPositive() {
		return models.CreateTransactionRequest{}, errors.Validation("amount must be at least 0.01")
	}

	if !req.Currency.Supported() {
		return models.CreateTransactionRequest{}, errors.Validation(
			fmt.Sprintf("currency %q is not supported, must be one of: %s", req.Currency, supportedCurrencyList()),
		)
	}

	return models.CreateTransactionRequest{
		CustomerName: name,
		Amount:       amount.InexactFloat64(),
		Currency:     req.Currency,
		Date:         req.Date,
	}, nil
}

func supportedCurrencyList() string {
	codes := models.SupportedCurrencies()
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}
