package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, booking *Booking) error
	Update(ctx context.Context, db *gorm.DB, booking *Booking) error
	Find(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Booking, error)
	// FindForUpdate locks the booking row for the duration of the transaction
	// so concurrent transitions on the same booking serialize.
	FindForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Booking, error)
	FindByConfirmation(ctx context.Context, db *gorm.DB, confirmationNumber string) (*Booking, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	InsertHistory(ctx context.Context, db *gorm.DB, row *StatusHistory) error
	ListHistory(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) ([]StatusHistory, error)
}
