package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/stayhive/stayhive/internal/booking/domain"
	"gorm.io/gorm"
)

var (
	ErrCommissionNotFound = errors.New("commission_not_found")
	ErrNotEarned          = errors.New("commission_not_earned")
	ErrAlreadyReversed    = errors.New("commission_already_reversed")
	ErrBookingNotPaid     = errors.New("booking_not_paid")
)

// Service derives commission records from paid bookings. Compute runs inside
// the payment transaction; Recompute is the idempotent backfill entry point.
type Service interface {
	Compute(ctx context.Context, tx *gorm.DB, booking *bookingdomain.Booking, paymentID snowflake.ID) (*Commission, error)
	Recompute(ctx context.Context, bookingID snowflake.ID) (*Commission, error)
	Reverse(ctx context.Context, commissionID snowflake.ID, reason string) (*Commission, error)
	GetByBooking(ctx context.Context, bookingID snowflake.ID) (*Commission, error)
	BackfillMissing(ctx context.Context, batchSize int) (int, error)
}
