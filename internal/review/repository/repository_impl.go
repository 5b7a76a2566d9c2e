package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/stayhive/stayhive/internal/review/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, review *domain.Review) error {
	return db.WithContext(ctx).Create(review).Error
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Review, error) {
	var review domain.Review
	if err := db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, review *domain.Review) error {
	return db.WithContext(ctx).Save(review).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Review{}, "id = ?", id).Error
}

func (r *repo) AggregateForHotel(ctx context.Context, db *gorm.DB, hotelID snowflake.ID) (domain.Aggregate, error) {
	var agg struct {
		Rating      *float64
		ReviewCount int
	}
	err := db.WithContext(ctx).
		Model(&domain.Review{}).
		Select("AVG(rating) AS rating, COUNT(*) AS review_count").
		Where("hotel_id = ? AND status = ?", hotelID, domain.StatusApproved).
		Scan(&agg).Error
	if err != nil {
		return domain.Aggregate{}, err
	}

	out := domain.Aggregate{ReviewCount: agg.ReviewCount}
	if agg.Rating != nil {
		out.Rating = *agg.Rating
	}
	return out, nil
}
