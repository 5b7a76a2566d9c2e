package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Status mirrors the gateway's terminal result for one transaction.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Valid reports whether s is a known gateway status.
func (s Status) Valid() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Payment is one gateway result applied to a booking. The gateway itself is
// an external collaborator; this is only the recorded outcome.
type Payment struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	BookingID     snowflake.ID    `gorm:"not null;index" json:"booking_id"`
	TransactionID string          `gorm:"type:text;not null;uniqueIndex:ux_payments_transaction" json:"transaction_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency      string          `gorm:"type:text;not null" json:"currency"`
	Status        Status          `gorm:"type:varchar(16);not null" json:"status"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }

// Snapshot returns the audited view of the payment row.
func (p *Payment) Snapshot() map[string]any {
	return map[string]any{
		"id":             p.ID.String(),
		"booking_id":     p.BookingID.String(),
		"transaction_id": p.TransactionID,
		"amount":         p.Amount.String(),
		"currency":       p.Currency,
		"status":         string(p.Status),
	}
}
