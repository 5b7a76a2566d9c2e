package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle of a commission record. Amounts are immutable once
// the record is earned; corrections go through reversal rows.
type Status string

const (
	StatusPending  Status = "pending"
	StatusEarned   Status = "earned"
	StatusReversed Status = "reversed"
)

// Commission is the platform's cut of one paid booking.
type Commission struct {
	ID               snowflake.ID    `gorm:"primaryKey" json:"id"`
	BookingID        snowflake.ID    `gorm:"not null;uniqueIndex:ux_commissions_booking" json:"booking_id"`
	PaymentID        snowflake.ID    `gorm:"not null;index" json:"payment_id"`
	BaseAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"base_amount"`
	CommissionRate   decimal.Decimal `gorm:"type:decimal(6,4);not null" json:"commission_rate"`
	CommissionAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"commission_amount"`
	PlatformFee      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"platform_fee"`
	HotelEarnings    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"hotel_earnings"`
	Currency         string          `gorm:"type:text;not null" json:"currency"`
	Status           Status          `gorm:"type:varchar(16);not null;index" json:"status"`
	PayoutID         *snowflake.ID   `gorm:"index" json:"payout_id,omitempty"`
	CreatedAt        time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Commission) TableName() string { return "commissions" }

// Snapshot returns the audited view of the commission row.
func (c *Commission) Snapshot() map[string]any {
	return map[string]any{
		"id":                c.ID.String(),
		"booking_id":        c.BookingID.String(),
		"payment_id":        c.PaymentID.String(),
		"base_amount":       c.BaseAmount.String(),
		"commission_rate":   c.CommissionRate.String(),
		"commission_amount": c.CommissionAmount.String(),
		"platform_fee":      c.PlatformFee.String(),
		"hotel_earnings":    c.HotelEarnings.String(),
		"currency":          c.Currency,
		"status":            string(c.Status),
		"updated_at":        c.UpdatedAt.Format(time.RFC3339),
	}
}

// Reversal records a correction against an earned commission.
type Reversal struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	CommissionID snowflake.ID    `gorm:"not null;index" json:"commission_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Reason       string          `gorm:"type:text;not null" json:"reason"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Reversal) TableName() string { return "commission_reversals" }
