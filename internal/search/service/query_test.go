package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	availabilitydomain "github.com/stayhive/stayhive/internal/availability/domain"
	"github.com/stayhive/stayhive/internal/config"
	hoteldomain "github.com/stayhive/stayhive/internal/hotel/domain"
	"github.com/stayhive/stayhive/internal/search/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

func setupQueryService(t *testing.T) (*searchEnv, domain.Service) {
	t.Helper()
	env := setupSearchEnv(t)
	svc := NewService(Params{
		Config: config.Config{SearchCacheTTL: 5 * time.Minute},
		DB:     env.db,
		Log:    zap.NewNop(),
		GenID:  env.node,
		Repo:   env.repo,
		Clock:  env.clk,
	})
	return env, svc
}

func (e *searchEnv) indexHotel(t *testing.T, hotel *hoteldomain.Hotel) {
	t.Helper()
	require.NoError(t, e.maintainer.ReindexHotel(context.Background(), nil, hotel))
}

func TestClassifyComplexity(t *testing.T) {
	assert.Equal(t, domain.ComplexitySimple, classify(domain.Query{City: "Lisbon"}))

	price := decimal.NewFromInt(100)
	assert.Equal(t, domain.ComplexitySimple, classify(domain.Query{PriceMin: &price}))

	assert.Equal(t, domain.ComplexityModerate, classify(domain.Query{Text: "rooftop pool"}))
	assert.Equal(t, domain.ComplexityModerate, classify(domain.Query{
		Amenities: []string{"wifi"},
		PriceMin:  &price,
	}))

	in := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	out := in.AddDate(0, 0, 2)
	assert.Equal(t, domain.ComplexityComplex, classify(domain.Query{
		Text:    "rooftop pool",
		CheckIn: &in, CheckOut: &out,
	}))
	assert.Equal(t, domain.ComplexityComplex, classify(domain.Query{
		Amenities: []string{"wifi"},
		CheckIn:   &in, CheckOut: &out,
		PriceRange: domain.PriceRangeBudget,
	}))
}

func TestSearchValidation(t *testing.T) {
	_, svc := setupQueryService(t)
	ctx := context.Background()

	lo := decimal.NewFromInt(300)
	hi := decimal.NewFromInt(100)
	_, err := svc.Search(ctx, domain.Query{PriceMin: &lo, PriceMax: &hi})
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)

	in := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.Search(ctx, domain.Query{CheckIn: &in})
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)

	out := in.AddDate(0, 0, -1)
	_, err = svc.Search(ctx, domain.Query{CheckIn: &in, CheckOut: &out})
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)

	_, err = svc.Search(ctx, domain.Query{SortBy: domain.SortKey("weird")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestSearchFiltersByCity(t *testing.T) {
	env, svc := setupQueryService(t)
	ctx := context.Background()

	lisbon := env.seedHotel(t, "Lisbon Central", 120, 4.2)
	env.indexHotel(t, lisbon)

	porto := env.seedHotel(t, "Porto Riverside", 110, 4.6)
	porto.City = "Porto"
	require.NoError(t, env.db.Save(porto).Error)
	env.indexHotel(t, porto)

	result, err := svc.Search(ctx, domain.Query{City: "lisbon"})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, lisbon.ID, result.Hits[0].Hotel.ID)
	assert.Equal(t, domain.QueryTypeFiltered, result.Meta.QueryType)
	assert.False(t, result.Meta.CacheHit)
}

func TestSearchExcludesInactiveHotels(t *testing.T) {
	env, svc := setupQueryService(t)

	hotel := env.seedHotel(t, "Shutting Down", 120, 4.0)
	env.indexHotel(t, hotel)
	require.NoError(t, env.db.Model(hotel).Update("active", false).Error)

	result, err := svc.Search(context.Background(), domain.Query{City: "Lisbon"})
	require.NoError(t, err)
	assert.Empty(t, result.Hits)
}

func TestSearchFullTextRanksByRelevance(t *testing.T) {
	env, svc := setupQueryService(t)
	ctx := context.Background()

	// "rooftop" in the name weighs 4; in the description only 1.
	byName := env.seedHotel(t, "Rooftop Palace", 150, 3.0)
	env.indexHotel(t, byName)

	byDescription := env.seedHotel(t, "City Stay", 150, 3.0)
	byDescription.Description = "Famous rooftop terrace"
	require.NoError(t, env.db.Save(byDescription).Error)
	env.indexHotel(t, byDescription)

	unrelated := env.seedHotel(t, "Quiet Annex", 150, 3.0)
	unrelated.Description = "Garden courtyard"
	require.NoError(t, env.db.Save(unrelated).Error)
	env.indexHotel(t, unrelated)

	result, err := svc.Search(ctx, domain.Query{Text: "Rooftop"})
	require.NoError(t, err)
	require.Len(t, result.Hits, 2)
	assert.Equal(t, byName.ID, result.Hits[0].Hotel.ID)
	assert.Equal(t, byDescription.ID, result.Hits[1].Hotel.ID)
	assert.Greater(t, result.Hits[0].Score, result.Hits[1].Score)
	assert.Equal(t, domain.QueryTypeFullText, result.Meta.QueryType)
}

func TestSearchCompositeRankingBoosts(t *testing.T) {
	env, svc := setupQueryService(t)
	ctx := context.Background()

	plain := env.seedHotel(t, "Plain Stay", 120, 4.0)
	env.indexHotel(t, plain)

	featured := env.seedHotel(t, "Featured Stay", 120, 4.0)
	featured.Featured = true
	require.NoError(t, env.db.Save(featured).Error)
	env.indexHotel(t, featured)

	result, err := svc.Search(ctx, domain.Query{City: "Lisbon"})
	require.NoError(t, err)
	require.Len(t, result.Hits, 2)
	assert.Equal(t, featured.ID, result.Hits[0].Hotel.ID)
	assert.InDelta(t, result.Hits[1].Score*1.2, result.Hits[0].Score, 0.001)
}

func TestSearchAmenityFilter(t *testing.T) {
	env, svc := setupQueryService(t)

	withSpa := env.seedHotel(t, "Spa Resort", 220, 4.5)
	withSpa.Amenities = datatypes.NewJSONSlice([]string{"WiFi", "Spa"})
	require.NoError(t, env.db.Save(withSpa).Error)
	env.indexHotel(t, withSpa)

	withoutSpa := env.seedHotel(t, "Basic Rooms", 220, 4.5)
	env.indexHotel(t, withoutSpa)

	result, err := svc.Search(context.Background(), domain.Query{Amenities: []string{"Spa", "WiFi"}})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, withSpa.ID, result.Hits[0].Hotel.ID)
}

func TestSearchPriceRangeFilter(t *testing.T) {
	env, svc := setupQueryService(t)

	budget := env.seedHotel(t, "Budget Beds", 50, 3.8)
	env.indexHotel(t, budget)
	luxury := env.seedHotel(t, "Luxury Towers", 500, 4.9)
	env.indexHotel(t, luxury)

	result, err := svc.Search(context.Background(), domain.Query{PriceRange: domain.PriceRangeLuxury})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, luxury.ID, result.Hits[0].Hotel.ID)
	assert.Equal(t, domain.PriceRangeLuxury, result.Hits[0].PriceRange)
}

func TestSearchSortByPrice(t *testing.T) {
	env, svc := setupQueryService(t)

	cheap := env.seedHotel(t, "Cheap Sleep", 60, 3.0)
	env.indexHotel(t, cheap)
	pricey := env.seedHotel(t, "Pricey Suites", 380, 4.8)
	env.indexHotel(t, pricey)

	result, err := svc.Search(context.Background(), domain.Query{SortBy: domain.SortPriceAsc})
	require.NoError(t, err)
	require.Len(t, result.Hits, 2)
	assert.Equal(t, cheap.ID, result.Hits[0].Hotel.ID)

	result, err = svc.Search(context.Background(), domain.Query{SortBy: domain.SortPriceDesc})
	require.NoError(t, err)
	assert.Equal(t, pricey.ID, result.Hits[0].Hotel.ID)
}

func TestSearchPagination(t *testing.T) {
	env, svc := setupQueryService(t)
	for i := 0; i < 5; i++ {
		hotel := env.seedHotel(t, "Hotel", 100, 4.0)
		env.indexHotel(t, hotel)
	}

	first, err := svc.Search(context.Background(), domain.Query{City: "Lisbon", PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, first.Hits, 2)
	assert.Equal(t, 1, first.Meta.Page)

	third, err := svc.Search(context.Background(), domain.Query{City: "Lisbon", Page: 3, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, third.Hits, 1)

	beyond, err := svc.Search(context.Background(), domain.Query{City: "Lisbon", Page: 9, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, beyond.Hits)
}

func TestSearchCacheHitAndExpiry(t *testing.T) {
	env, svc := setupQueryService(t)
	hotel := env.seedHotel(t, "Cached Stay", 130, 4.1)
	env.indexHotel(t, hotel)

	q := domain.Query{City: "Lisbon"}

	first, err := svc.Search(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, first.Meta.CacheHit)

	second, err := svc.Search(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, second.Meta.CacheHit)
	assert.Len(t, second.Hits, 1)

	// New hotels stay invisible until the entry expires.
	late := env.seedHotel(t, "Late Arrival", 130, 4.1)
	env.indexHotel(t, late)

	stale, err := svc.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, stale.Hits, 1)

	env.clk.Advance(6 * time.Minute)
	fresh, err := svc.Search(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, fresh.Meta.CacheHit)
	assert.Len(t, fresh.Hits, 2)
}

func TestSearchDateRangeExcludesSoldOutHotels(t *testing.T) {
	env, svc := setupQueryService(t)
	ctx := context.Background()

	open := env.seedHotel(t, "Open Hotel", 100, 4.0)
	env.indexHotel(t, open)
	openRoom := &hoteldomain.Room{
		ID: env.node.Generate(), HotelID: open.ID, RoomNumber: "1",
		RoomType: "double", Rate: decimal.NewFromInt(100), TotalQuantity: 2, Active: true,
	}
	require.NoError(t, env.db.Create(openRoom).Error)

	soldOut := env.seedHotel(t, "Full Hotel", 100, 4.0)
	env.indexHotel(t, soldOut)
	fullRoom := &hoteldomain.Room{
		ID: env.node.Generate(), HotelID: soldOut.ID, RoomNumber: "1",
		RoomType: "double", Rate: decimal.NewFromInt(100), TotalQuantity: 1, Active: true,
	}
	require.NoError(t, env.db.Create(fullRoom).Error)

	night := time.Date(2026, 7, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, env.db.Create(&availabilitydomain.RoomAvailability{
		ID:     env.node.Generate(),
		RoomID: fullRoom.ID,
		Date:   night,
		Booked: 1,
		Price:  decimal.NewFromInt(100),
	}).Error)

	in := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	out := time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)
	result, err := svc.Search(ctx, domain.Query{CheckIn: &in, CheckOut: &out})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, open.ID, result.Hits[0].Hotel.ID)

	// Outside the sold-out night both hotels are bookable.
	in2 := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	out2 := in2.AddDate(0, 0, 2)
	result, err = svc.Search(ctx, domain.Query{CheckIn: &in2, CheckOut: &out2})
	require.NoError(t, err)
	assert.Len(t, result.Hits, 2)
}

func TestSearchWritesAnalytics(t *testing.T) {
	env, svc := setupQueryService(t)
	hotel := env.seedHotel(t, "Analytics Inn", 140, 4.3)
	env.indexHotel(t, hotel)

	_, err := svc.Search(context.Background(), domain.Query{Text: "analytics inn"})
	require.NoError(t, err)

	var records []domain.AnalyticsRecord
	require.NoError(t, env.db.Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, domain.QueryTypeFullText, records[0].QueryType)
	assert.Equal(t, "analytics inn", records[0].QueryText)
	assert.Equal(t, 1, records[0].ResultCount)
	assert.Equal(t, domain.ComplexityModerate, records[0].Complexity)
}
