package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	hoteldomain "github.com/stayhive/stayhive/internal/hotel/domain"
	"gorm.io/gorm"
)

// Candidate is one hotel joined with its index entry, scanned for ranking.
type Candidate struct {
	hoteldomain.Hotel `gorm:"embedded"`

	PriceRange        PriceRange `gorm:"column:price_range"`
	QualityScore      float64    `gorm:"column:quality_score"`
	NameVector        string     `gorm:"column:name_vector"`
	DescriptionVector string     `gorm:"column:description_vector"`
	LocationVector    string     `gorm:"column:location_vector"`
	AmenitiesVector   string     `gorm:"column:amenities_vector"`
	CombinedVector    string     `gorm:"column:combined_vector"`
}

// CandidateFilter is the SQL-pushable part of a query. Text matching beyond
// the coarse LIKE prefilter and composite ranking happen in the service.
type CandidateFilter struct {
	City       string
	Country    string
	PriceMin   *string
	PriceMax   *string
	StarRating *int
	PriceRange PriceRange
	TextTokens []string
	CheckIn    *time.Time
	CheckOut   *time.Time
	Limit      int
}

// Repository persists index entries and analytics rows and scans candidates.
type Repository interface {
	UpsertEntry(ctx context.Context, tx *gorm.DB, entry *IndexEntry) error
	FindEntry(ctx context.Context, db *gorm.DB, hotelID snowflake.ID) (*IndexEntry, error)
	ListCandidates(ctx context.Context, db *gorm.DB, filter CandidateFilter) ([]Candidate, error)
	StaleHotels(ctx context.Context, db *gorm.DB, limit int) ([]hoteldomain.Hotel, error)
	InsertAnalytics(ctx context.Context, db *gorm.DB, record *AnalyticsRecord) error
}
