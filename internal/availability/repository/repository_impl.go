package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stayhive/stayhive/internal/availability/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) TryReserve(ctx context.Context, db *gorm.DB, roomID snowflake.ID, date time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE room_availability
		 SET booked = booked + 1, available = available - 1, updated_at = ?
		 WHERE room_id = ? AND date = ? AND available >= 1`,
		time.Now().UTC(),
		roomID,
		date,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) Release(ctx context.Context, db *gorm.DB, roomID snowflake.ID, date time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE room_availability
		 SET booked = booked - 1, available = available + 1, updated_at = ?
		 WHERE room_id = ? AND date = ? AND booked >= 1`,
		time.Now().UTC(),
		roomID,
		date,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, row *domain.RoomAvailability) error {
	return db.WithContext(ctx).Create(row).Error
}

func (r *repo) Exists(ctx context.Context, db *gorm.DB, roomID snowflake.ID, date time.Time) (bool, error) {
	var row domain.RoomAvailability
	err := db.WithContext(ctx).
		Select("id").
		Where("room_id = ? AND date = ?", roomID, date).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repo) ListForRoom(ctx context.Context, db *gorm.DB, roomID snowflake.ID, from, to time.Time) ([]*domain.RoomAvailability, error) {
	var rows []*domain.RoomAvailability
	err := db.WithContext(ctx).
		Where("room_id = ? AND date >= ? AND date < ?", roomID, from, to).
		Order("date asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
