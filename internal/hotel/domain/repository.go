package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertHotel(ctx context.Context, db *gorm.DB, hotel *Hotel) error
	UpdateHotel(ctx context.Context, db *gorm.DB, hotel *Hotel) error
	FindHotel(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Hotel, error)
	InsertRoom(ctx context.Context, db *gorm.DB, room *Room) error
	FindRoom(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Room, error)
	UpdateRatingAggregates(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, rating float64, reviewCount int) error
	RefreshRecentBookings(ctx context.Context, db *gorm.DB, since time.Time) (int64, error)
}
