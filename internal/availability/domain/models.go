package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// RoomAvailability is one night of inventory for one room type. Rows exist
// only for (room, date) pairs that have seen a booking event and always hold
// available + booked == the room's total quantity at reservation time.
type RoomAvailability struct {
	ID        snowflake.ID    `gorm:"primaryKey" json:"id"`
	RoomID    snowflake.ID    `gorm:"not null;uniqueIndex:ux_room_availability_room_date,priority:1" json:"room_id"`
	Date      time.Time       `gorm:"type:date;not null;uniqueIndex:ux_room_availability_room_date,priority:2" json:"date"`
	Available int             `gorm:"not null" json:"available"`
	Booked    int             `gorm:"not null" json:"booked"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (RoomAvailability) TableName() string { return "room_availability" }

// Nights expands [checkIn, checkOut) into per-night dates at UTC midnight.
func Nights(checkIn, checkOut time.Time) []time.Time {
	start := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(checkOut.Year(), checkOut.Month(), checkOut.Day(), 0, 0, 0, 0, time.UTC)

	var nights []time.Time
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		nights = append(nights, d)
	}
	return nights
}
