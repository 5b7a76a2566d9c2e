package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Booking is the central reservation record. Mutated only through the state
// machine; never physically deleted except by administrative purge.
type Booking struct {
	ID                   snowflake.ID    `gorm:"primaryKey" json:"id"`
	HotelID              snowflake.ID    `gorm:"not null;index" json:"hotel_id"`
	RoomID               snowflake.ID    `gorm:"not null;index" json:"room_id"`
	UserID               *snowflake.ID   `gorm:"index" json:"user_id,omitempty"`
	GuestName            string          `gorm:"type:text;not null" json:"guest_name"`
	GuestEmail           string          `gorm:"type:text;not null" json:"guest_email"`
	GuestPhone           string          `gorm:"type:text" json:"guest_phone"`
	CheckIn              time.Time       `gorm:"type:date;not null" json:"check_in"`
	CheckOut             time.Time       `gorm:"type:date;not null" json:"check_out"`
	Nights               int             `gorm:"not null" json:"nights"`
	Adults               int             `gorm:"not null;default:1" json:"adults"`
	Children             int             `gorm:"not null;default:0" json:"children"`
	TotalAmount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Currency             string          `gorm:"type:text;not null;default:'USD'" json:"currency"`
	Status               Status          `gorm:"type:text;not null;index" json:"status"`
	PaymentStatus        PaymentStatus   `gorm:"type:text;not null;default:'unpaid'" json:"payment_status"`
	ConfirmationNumber   string          `gorm:"type:text;not null;uniqueIndex" json:"confirmation_number"`
	CancellationDeadline time.Time       `gorm:"not null" json:"cancellation_deadline"`
	CreatedAt            time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Booking) TableName() string { return "bookings" }

// Snapshot returns the audited view of the booking row.
func (b *Booking) Snapshot() map[string]any {
	snapshot := map[string]any{
		"id":                    b.ID.String(),
		"hotel_id":              b.HotelID.String(),
		"room_id":               b.RoomID.String(),
		"guest_name":            b.GuestName,
		"guest_email":           b.GuestEmail,
		"guest_phone":           b.GuestPhone,
		"check_in":              b.CheckIn.Format("2006-01-02"),
		"check_out":             b.CheckOut.Format("2006-01-02"),
		"nights":                b.Nights,
		"adults":                b.Adults,
		"children":              b.Children,
		"total_amount":          b.TotalAmount.String(),
		"currency":              b.Currency,
		"status":                string(b.Status),
		"payment_status":        string(b.PaymentStatus),
		"confirmation_number":   b.ConfirmationNumber,
		"cancellation_deadline": b.CancellationDeadline.Format(time.RFC3339),
		"updated_at":            b.UpdatedAt.Format(time.RFC3339),
	}
	if b.UserID != nil {
		snapshot["user_id"] = b.UserID.String()
	}
	return snapshot
}

// StatusHistory is one row per status transition, append-only.
type StatusHistory struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	BookingID      snowflake.ID `gorm:"not null;index" json:"booking_id"`
	PreviousStatus Status       `gorm:"type:text;not null" json:"previous_status"`
	NewStatus      Status       `gorm:"type:text;not null" json:"new_status"`
	Reason         string       `gorm:"type:text" json:"reason"`
	ActorType      string       `gorm:"type:text;not null" json:"actor_type"`
	ActorID        *string      `gorm:"type:text" json:"actor_id"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (StatusHistory) TableName() string { return "booking_status_history" }
