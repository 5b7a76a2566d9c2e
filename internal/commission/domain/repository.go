package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/stayhive/stayhive/internal/booking/domain"
	"gorm.io/gorm"
)

// BackfillCandidate is a paid booking that has no commission record yet.
type BackfillCandidate struct {
	bookingdomain.Booking `gorm:"embedded"`

	PaymentID snowflake.ID `gorm:"column:payment_id"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, commission *Commission) error
	Find(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Commission, error)
	FindByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (*Commission, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status) error
	InsertReversal(ctx context.Context, db *gorm.DB, reversal *Reversal) error
	MissingForPaidBookings(ctx context.Context, db *gorm.DB, limit int) ([]BackfillCandidate, error)
}
