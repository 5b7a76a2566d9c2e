package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Aggregate is the rolled-up rating view over approved reviews.
type Aggregate struct {
	Rating      float64
	ReviewCount int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, review *Review) error
	Find(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Review, error)
	Update(ctx context.Context, db *gorm.DB, review *Review) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	AggregateForHotel(ctx context.Context, db *gorm.DB, hotelID snowflake.ID) (Aggregate, error)
}
