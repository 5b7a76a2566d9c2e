package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/stayhive/stayhive/internal/booking/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, booking *domain.Booking) error {
	return db.WithContext(ctx).Create(booking).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, booking *domain.Booking) error {
	return db.WithContext(ctx).Save(booking).Error
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Booking, error) {
	var booking domain.Booking
	if err := db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repo) FindForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Booking, error) {
	var booking domain.Booking
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&booking, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repo) FindByConfirmation(ctx context.Context, db *gorm.DB, confirmationNumber string) (*domain.Booking, error) {
	var booking domain.Booking
	err := db.WithContext(ctx).
		First(&booking, "confirmation_number = ?", strings.TrimSpace(confirmationNumber)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Booking{}, "id = ?", id).Error
}

func (r *repo) InsertHistory(ctx context.Context, db *gorm.DB, row *domain.StatusHistory) error {
	return db.WithContext(ctx).Create(row).Error
}

func (r *repo) ListHistory(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) ([]domain.StatusHistory, error) {
	var rows []domain.StatusHistory
	err := db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at asc, id asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
