package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	hoteldomain "github.com/stayhive/stayhive/internal/hotel/domain"
	"github.com/stayhive/stayhive/internal/search/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) UpsertEntry(ctx context.Context, tx *gorm.DB, entry *domain.IndexEntry) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "hotel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name_vector",
			"description_vector",
			"location_vector",
			"amenities_vector",
			"combined_vector",
			"searchable_text",
			"keyword_tags",
			"price_range",
			"quality_score",
			"updated_at",
		}),
	}).Create(entry).Error
}

func (r *repo) FindEntry(ctx context.Context, db *gorm.DB, hotelID snowflake.ID) (*domain.IndexEntry, error) {
	var entry domain.IndexEntry
	if err := db.WithContext(ctx).First(&entry, "hotel_id = ?", hotelID).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repo) ListCandidates(ctx context.Context, db *gorm.DB, filter domain.CandidateFilter) ([]domain.Candidate, error) {
	stmt := db.WithContext(ctx).
		Table("hotels").
		Select(`hotels.*,
			search_index.price_range,
			search_index.quality_score,
			search_index.name_vector,
			search_index.description_vector,
			search_index.location_vector,
			search_index.amenities_vector,
			search_index.combined_vector`).
		Joins("JOIN search_index ON search_index.hotel_id = hotels.id").
		Where("hotels.active = ?", true)

	if city := strings.TrimSpace(filter.City); city != "" {
		stmt = stmt.Where("LOWER(hotels.city) = ?", strings.ToLower(city))
	}
	if country := strings.TrimSpace(filter.Country); country != "" {
		stmt = stmt.Where("LOWER(hotels.country) = ?", strings.ToLower(country))
	}
	if filter.PriceMin != nil {
		stmt = stmt.Where("hotels.price_max >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		stmt = stmt.Where("hotels.price_min <= ?", *filter.PriceMax)
	}
	if filter.StarRating != nil {
		stmt = stmt.Where("hotels.star_rating >= ?", *filter.StarRating)
	}
	if filter.PriceRange != "" {
		stmt = stmt.Where("search_index.price_range = ?", filter.PriceRange)
	}
	for _, token := range filter.TextTokens {
		stmt = stmt.Where("search_index.searchable_text LIKE ?", "%"+token+"%")
	}

	// A hotel stays in the result set when at least one of its active rooms
	// has no sold-out night inside the requested stay. Nights with no ledger
	// row are open by definition.
	if filter.CheckIn != nil && filter.CheckOut != nil {
		stmt = stmt.Where(`EXISTS (
			SELECT 1 FROM rooms
			WHERE rooms.hotel_id = hotels.id AND rooms.active = ?
			AND NOT EXISTS (
				SELECT 1 FROM room_availability
				WHERE room_availability.room_id = rooms.id
				AND room_availability.date >= ? AND room_availability.date < ?
				AND room_availability.available < 1
			)
		)`, true, filter.CheckIn.UTC(), filter.CheckOut.UTC())
	}

	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	var candidates []domain.Candidate
	if err := stmt.Find(&candidates).Error; err != nil {
		return nil, err
	}
	return candidates, nil
}

// StaleHotels returns active hotels whose index entry is missing or older
// than the hotel row.
func (r *repo) StaleHotels(ctx context.Context, db *gorm.DB, limit int) ([]hoteldomain.Hotel, error) {
	stmt := db.WithContext(ctx).
		Model(&hoteldomain.Hotel{}).
		Joins("LEFT JOIN search_index ON search_index.hotel_id = hotels.id").
		Where("hotels.active = ?", true).
		Where("search_index.hotel_id IS NULL OR search_index.updated_at < hotels.updated_at").
		Order("hotels.updated_at asc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}

	var hotels []hoteldomain.Hotel
	if err := stmt.Find(&hotels).Error; err != nil {
		return nil, err
	}
	return hotels, nil
}

func (r *repo) InsertAnalytics(ctx context.Context, db *gorm.DB, record *domain.AnalyticsRecord) error {
	return db.WithContext(ctx).Create(record).Error
}
