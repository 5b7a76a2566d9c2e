package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	hoteldomain "github.com/stayhive/stayhive/internal/hotel/domain"
	"gorm.io/gorm"
)

// Ledger maintains per-(room, date) inventory counters. Reserve and Release
// run inside the caller's booking transaction; either all nights adjust or the
// transaction rolls back.
type Ledger interface {
	Reserve(ctx context.Context, tx *gorm.DB, room *hoteldomain.Room, checkIn, checkOut time.Time) error
	Release(ctx context.Context, tx *gorm.DB, roomID snowflake.ID, checkIn, checkOut time.Time) error
	ListForRoom(ctx context.Context, roomID snowflake.ID, from, to time.Time) ([]*RoomAvailability, error)
}

var (
	// ErrNoAvailability is returned when a night has no remaining inventory.
	// Confirmation is rejected outright rather than clamping counters, so the
	// ledger can never oversell.
	ErrNoAvailability = errors.New("no_availability")
)
