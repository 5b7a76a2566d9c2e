package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// TryReserve atomically takes one unit for the night. Returns the number
	// of rows updated: zero means the row is missing or sold out.
	TryReserve(ctx context.Context, db *gorm.DB, roomID snowflake.ID, date time.Time) (int64, error)
	// Release returns one unit for the night; the guard never lets booked go
	// below zero.
	Release(ctx context.Context, db *gorm.DB, roomID snowflake.ID, date time.Time) (int64, error)
	Insert(ctx context.Context, db *gorm.DB, row *RoomAvailability) error
	Exists(ctx context.Context, db *gorm.DB, roomID snowflake.ID, date time.Time) (bool, error)
	ListForRoom(ctx context.Context, db *gorm.DB, roomID snowflake.ID, from, to time.Time) ([]*RoomAvailability, error)
}
