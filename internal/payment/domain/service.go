package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidResult    = errors.New("invalid_payment_result")
	ErrAmountMismatch   = errors.New("payment_amount_mismatch")
	ErrCurrencyMismatch = errors.New("payment_currency_mismatch")
)

// GatewayResult is the callback payload from the payment collaborator.
type GatewayResult struct {
	BookingID     snowflake.ID    `json:"booking_id"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        Status          `json:"status"`
}

// Service records gateway results and drives the booking state machine and
// commission ledger from them. ApplyResult is idempotent per transaction id.
type Service interface {
	ApplyResult(ctx context.Context, result GatewayResult) (*Payment, error)
	GetByTransaction(ctx context.Context, transactionID string) (*Payment, error)
}
