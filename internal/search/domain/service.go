package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	hoteldomain "github.com/stayhive/stayhive/internal/hotel/domain"
	"gorm.io/gorm"
)

var (
	// ErrSearchUnavailable masks infrastructure failures behind a user-safe message.
	ErrSearchUnavailable = errors.New("search_unavailable")
	// ErrInvalidQuery rejects malformed filter combinations.
	ErrInvalidQuery = errors.New("invalid_query")
)

// SortKey selects an explicit ordering for filtered queries. Empty means the
// default composite ordering.
type SortKey string

const (
	SortDefault    SortKey = ""
	SortPriceAsc   SortKey = "price_asc"
	SortPriceDesc  SortKey = "price_desc"
	SortRating     SortKey = "rating"
	SortPopularity SortKey = "popularity"
)

// Query is the filter/free-text shape accepted by the query engine.
type Query struct {
	Text       string           `json:"text"`
	City       string           `json:"city"`
	Country    string           `json:"country"`
	PriceMin   *decimal.Decimal `json:"price_min"`
	PriceMax   *decimal.Decimal `json:"price_max"`
	StarRating *int             `json:"star_rating"`
	Amenities  []string         `json:"amenities"`
	PriceRange PriceRange       `json:"price_range"`
	CheckIn    *time.Time       `json:"check_in"`
	CheckOut   *time.Time       `json:"check_out"`
	SortBy     SortKey          `json:"sort_by"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
}

// Hit is one ranked result.
type Hit struct {
	Hotel        hoteldomain.Hotel `json:"hotel"`
	PriceRange   PriceRange        `json:"price_range"`
	QualityScore float64           `json:"quality_score"`
	Score        float64           `json:"score"`
}

// Meta reports per-query performance data alongside the results.
type Meta struct {
	QueryType   QueryType  `json:"query_type"`
	DurationMS  int64      `json:"duration_ms"`
	CacheHit    bool       `json:"cache_hit"`
	ResultCount int        `json:"result_count"`
	Complexity  Complexity `json:"complexity"`
	Page        int        `json:"page"`
	PageSize    int        `json:"page_size"`
}

// Result is the ranked page plus its metadata.
type Result struct {
	Hits []Hit `json:"hits"`
	Meta Meta  `json:"meta"`
}

// Maintainer keeps the search index in lockstep with hotel data. ReindexHotel
// runs inside the caller's transaction so index content is never older than
// the hotel row a reader can observe.
type Maintainer interface {
	ReindexHotel(ctx context.Context, tx *gorm.DB, hotel *hoteldomain.Hotel) error
	ReindexByID(ctx context.Context, hotelID snowflake.ID) error
	ReindexStale(ctx context.Context, batchSize int) (int, error)
}

// Service executes ranked search queries.
type Service interface {
	Search(ctx context.Context, q Query) (*Result, error)
}
