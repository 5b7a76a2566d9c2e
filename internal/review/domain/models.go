package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is the moderation state of a review. Only approved reviews feed the
// hotel's rating aggregates.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Review is a guest rating for a hotel.
type Review struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	HotelID   snowflake.ID  `gorm:"not null;index" json:"hotel_id"`
	BookingID *snowflake.ID `gorm:"index" json:"booking_id,omitempty"`
	GuestName string        `gorm:"type:text;not null" json:"guest_name"`
	Rating    int           `gorm:"not null" json:"rating"`
	Comment   string        `gorm:"type:text" json:"comment"`
	Status    Status        `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Review) TableName() string { return "reviews" }

// Snapshot returns the audited view of the review row.
func (r *Review) Snapshot() map[string]any {
	snapshot := map[string]any{
		"id":         r.ID.String(),
		"hotel_id":   r.HotelID.String(),
		"guest_name": r.GuestName,
		"rating":     r.Rating,
		"comment":    r.Comment,
		"status":     string(r.Status),
		"updated_at": r.UpdatedAt.Format(time.RFC3339),
	}
	if r.BookingID != nil {
		snapshot["booking_id"] = r.BookingID.String()
	}
	return snapshot
}
