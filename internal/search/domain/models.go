package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// IndexEntry is the derived search document for one hotel. Every field is a
// pure function of the hotel row, so reindexing is idempotent.
type IndexEntry struct {
	HotelID           snowflake.ID                `gorm:"primaryKey" json:"hotel_id"`
	NameVector        string                      `gorm:"type:text;not null" json:"name_vector"`
	DescriptionVector string                      `gorm:"type:text;not null" json:"description_vector"`
	LocationVector    string                      `gorm:"type:text;not null" json:"location_vector"`
	AmenitiesVector   string                      `gorm:"type:text;not null" json:"amenities_vector"`
	CombinedVector    string                      `gorm:"type:text;not null" json:"combined_vector"`
	SearchableText    string                      `gorm:"type:text;not null" json:"searchable_text"`
	KeywordTags       datatypes.JSONSlice[string] `gorm:"type:json" json:"keyword_tags"`
	PriceRange        PriceRange                  `gorm:"type:varchar(16);not null;index" json:"price_range"`
	QualityScore      float64                     `gorm:"not null;default:0" json:"quality_score"`
	UpdatedAt         time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (IndexEntry) TableName() string { return "search_index" }

// PriceRange buckets a hotel by its minimum nightly price.
type PriceRange string

const (
	PriceRangeBudget   PriceRange = "budget"
	PriceRangeMidRange PriceRange = "mid-range"
	PriceRangeUpscale  PriceRange = "upscale"
	PriceRangeLuxury   PriceRange = "luxury"
)

// Complexity classifies a query for analytics.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// QueryType distinguishes pure filter queries from free-text ones.
type QueryType string

const (
	QueryTypeFiltered QueryType = "filtered"
	QueryTypeFullText QueryType = "fulltext"
)

// AnalyticsRecord is one row per executed search, cache hits included.
type AnalyticsRecord struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	QueryType   QueryType    `gorm:"type:varchar(16);not null" json:"query_type"`
	QueryText   string       `gorm:"type:text" json:"query_text"`
	DurationMS  int64        `gorm:"not null;default:0" json:"duration_ms"`
	CacheHit    bool         `gorm:"not null;default:false" json:"cache_hit"`
	ResultCount int          `gorm:"not null;default:0" json:"result_count"`
	Complexity  Complexity   `gorm:"type:varchar(16);not null" json:"complexity"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (AnalyticsRecord) TableName() string { return "search_analytics" }
