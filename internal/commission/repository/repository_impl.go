package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/stayhive/stayhive/internal/booking/domain"
	"github.com/stayhive/stayhive/internal/commission/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, commission *domain.Commission) error {
	return db.WithContext(ctx).Create(commission).Error
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Commission, error) {
	var commission domain.Commission
	if err := db.WithContext(ctx).First(&commission, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &commission, nil
}

func (r *repo) FindByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (*domain.Commission, error) {
	var commission domain.Commission
	if err := db.WithContext(ctx).First(&commission, "booking_id = ?", bookingID).Error; err != nil {
		return nil, err
	}
	return &commission, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.Status) error {
	return db.WithContext(ctx).
		Model(&domain.Commission{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repo) InsertReversal(ctx context.Context, db *gorm.DB, reversal *domain.Reversal) error {
	return db.WithContext(ctx).Create(reversal).Error
}

// MissingForPaidBookings scans confirmed, paid bookings that still lack a
// commission row, joined with their completed payment.
func (r *repo) MissingForPaidBookings(ctx context.Context, db *gorm.DB, limit int) ([]domain.BackfillCandidate, error) {
	stmt := db.WithContext(ctx).
		Table("bookings").
		Select("bookings.*, payments.id AS payment_id").
		Joins("JOIN payments ON payments.booking_id = bookings.id AND payments.status = ?", "completed").
		Joins("LEFT JOIN commissions ON commissions.booking_id = bookings.id").
		Where("bookings.status IN ?", []bookingdomain.Status{
			bookingdomain.StatusConfirmed,
			bookingdomain.StatusCompleted,
		}).
		Where("bookings.payment_status = ?", bookingdomain.PaymentStatusPaid).
		Where("commissions.id IS NULL").
		Order("bookings.created_at asc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}

	var candidates []domain.BackfillCandidate
	if err := stmt.Find(&candidates).Error; err != nil {
		return nil, err
	}
	return candidates, nil
}
