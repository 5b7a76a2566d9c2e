package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Hotel is the authoritative property record. Rating and ReviewCount are
// aggregates recomputed from approved reviews; RecentBookings is refreshed by
// the background view-refresh job.
type Hotel struct {
	ID             snowflake.ID                `gorm:"primaryKey" json:"id"`
	Name           string                      `gorm:"type:text;not null" json:"name"`
	Description    string                      `gorm:"type:text" json:"description"`
	Address        string                      `gorm:"type:text" json:"address"`
	City           string                      `gorm:"type:text;not null;index" json:"city"`
	Country        string                      `gorm:"type:text;not null;index" json:"country"`
	StarRating     int                         `gorm:"not null;default:0" json:"star_rating"`
	Amenities      datatypes.JSONSlice[string] `gorm:"type:json" json:"amenities"`
	PriceMin       decimal.Decimal             `gorm:"type:decimal(12,2);not null" json:"price_min"`
	PriceMax       decimal.Decimal             `gorm:"type:decimal(12,2);not null" json:"price_max"`
	Featured       bool                        `gorm:"not null;default:false" json:"featured"`
	Active         bool                        `gorm:"not null;default:true;index" json:"active"`
	Rating         float64                     `gorm:"not null;default:0" json:"rating"`
	ReviewCount    int                         `gorm:"not null;default:0" json:"review_count"`
	RecentBookings int                         `gorm:"not null;default:0" json:"recent_bookings"`
	CreatedAt      time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Hotel) TableName() string { return "hotels" }

// Snapshot returns the audited view of the hotel row.
func (h *Hotel) Snapshot() map[string]any {
	return map[string]any{
		"id":           h.ID.String(),
		"name":         h.Name,
		"description":  h.Description,
		"address":      h.Address,
		"city":         h.City,
		"country":      h.Country,
		"star_rating":  h.StarRating,
		"amenities":    []string(h.Amenities),
		"price_min":    h.PriceMin.String(),
		"price_max":    h.PriceMax.String(),
		"featured":     h.Featured,
		"active":       h.Active,
		"rating":       h.Rating,
		"review_count": h.ReviewCount,
		"updated_at":   h.UpdatedAt.Format(time.RFC3339),
	}
}

// Room is a bookable room type within a hotel. TotalQuantity is the
// authoritative inventory count the availability ledger is capped against.
type Room struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	HotelID       snowflake.ID    `gorm:"not null;index" json:"hotel_id"`
	RoomNumber    string          `gorm:"type:text;not null" json:"room_number"`
	RoomType      string          `gorm:"type:text;not null" json:"room_type"`
	Rate          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"rate"`
	MaxOccupancy  int             `gorm:"not null;default:2" json:"max_occupancy"`
	TotalQuantity int             `gorm:"not null;default:1" json:"total_quantity"`
	Active        bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Room) TableName() string { return "rooms" }

// Snapshot returns the audited view of the room row.
func (r *Room) Snapshot() map[string]any {
	return map[string]any{
		"id":             r.ID.String(),
		"hotel_id":       r.HotelID.String(),
		"room_number":    r.RoomNumber,
		"room_type":      r.RoomType,
		"rate":           r.Rate.String(),
		"max_occupancy":  r.MaxOccupancy,
		"total_quantity": r.TotalQuantity,
		"active":         r.Active,
		"updated_at":     r.UpdatedAt.Format(time.RFC3339),
	}
}
