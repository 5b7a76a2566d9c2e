package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stayhive/stayhive/internal/hotel/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertHotel(ctx context.Context, db *gorm.DB, hotel *domain.Hotel) error {
	return db.WithContext(ctx).Create(hotel).Error
}

func (r *repo) UpdateHotel(ctx context.Context, db *gorm.DB, hotel *domain.Hotel) error {
	return db.WithContext(ctx).Save(hotel).Error
}

func (r *repo) FindHotel(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Hotel, error) {
	var hotel domain.Hotel
	if err := db.WithContext(ctx).First(&hotel, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrHotelNotFound
		}
		return nil, err
	}
	return &hotel, nil
}

func (r *repo) InsertRoom(ctx context.Context, db *gorm.DB, room *domain.Room) error {
	return db.WithContext(ctx).Create(room).Error
}

func (r *repo) FindRoom(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Room, error) {
	var room domain.Room
	if err := db.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (r *repo) UpdateRatingAggregates(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, rating float64, reviewCount int) error {
	return db.WithContext(ctx).Model(&domain.Hotel{}).
		Where("id = ?", hotelID).
		Updates(map[string]any{
			"rating":       rating,
			"review_count": reviewCount,
			"updated_at":   time.Now().UTC(),
		}).Error
}

// RefreshRecentBookings recomputes the popularity counter from confirmed
// bookings since the given instant. Used by the background view-refresh job.
func (r *repo) RefreshRecentBookings(ctx context.Context, db *gorm.DB, since time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE hotels SET recent_bookings = (
			SELECT COUNT(*) FROM bookings b
			WHERE b.hotel_id = hotels.id
			  AND b.status = ?
			  AND b.created_at >= ?
		)`,
		"confirmed",
		since.UTC(),
	)
	return res.RowsAffected, res.Error
}
