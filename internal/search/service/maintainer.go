package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stayhive/stayhive/internal/clock"
	hoteldomain "github.com/stayhive/stayhive/internal/hotel/domain"
	"github.com/stayhive/stayhive/internal/search/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	priceMidRange = decimal.NewFromInt(100)
	priceUpscale  = decimal.NewFromInt(200)
	priceLuxury   = decimal.NewFromInt(400)
)

// MaintainerParams defines maintainer dependencies.
type MaintainerParams struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Repo      domain.Repository
	HotelRepo hoteldomain.Repository
	Clock     clock.Clock
}

type maintainer struct {
	db        *gorm.DB
	log       *zap.Logger
	repo      domain.Repository
	hotelRepo hoteldomain.Repository
	clock     clock.Clock
}

// NewMaintainer builds the index maintainer.
func NewMaintainer(p MaintainerParams) domain.Maintainer {
	return &maintainer{
		db:        p.DB,
		log:       p.Log.Named("search.maintainer"),
		repo:      p.Repo,
		hotelRepo: p.HotelRepo,
		clock:     p.Clock,
	}
}

// ReindexHotel derives the index entry from the hotel row and upserts it
// inside the caller's transaction.
func (m *maintainer) ReindexHotel(ctx context.Context, tx *gorm.DB, hotel *hoteldomain.Hotel) error {
	if tx == nil {
		tx = m.db
	}
	entry := m.buildEntry(hotel)
	if err := m.repo.UpsertEntry(ctx, tx, entry); err != nil {
		return fmt.Errorf("upsert index entry: %w", err)
	}
	return nil
}

func (m *maintainer) ReindexByID(ctx context.Context, hotelID snowflake.ID) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hotel, err := m.hotelRepo.FindHotel(ctx, tx, hotelID)
		if err != nil {
			return err
		}
		return m.ReindexHotel(ctx, tx, hotel)
	})
}

// ReindexStale refreshes up to batchSize hotels whose index entry is missing
// or out of date. Each hotel commits independently so one failure does not
// roll back the batch.
func (m *maintainer) ReindexStale(ctx context.Context, batchSize int) (int, error) {
	hotels, err := m.repo.StaleHotels(ctx, m.db, batchSize)
	if err != nil {
		return 0, fmt.Errorf("list stale hotels: %w", err)
	}

	reindexed := 0
	for i := range hotels {
		if err := ctx.Err(); err != nil {
			return reindexed, err
		}
		hotel := &hotels[i]
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return m.ReindexHotel(ctx, tx, hotel)
		})
		if err != nil {
			m.log.Warn("reindex failed",
				zap.String("hotel_id", hotel.ID.String()),
				zap.Error(err),
			)
			continue
		}
		reindexed++
	}
	return reindexed, nil
}

func (m *maintainer) buildEntry(hotel *hoteldomain.Hotel) *domain.IndexEntry {
	nameTokens := tokenize(hotel.Name)
	descriptionTokens := tokenize(hotel.Description)
	locationTokens := tokenize(hotel.Address + " " + hotel.City + " " + hotel.Country)
	amenityTokens := tokenize(strings.Join(hotel.Amenities, " "))
	combined := dedupe(concat(nameTokens, descriptionTokens, locationTokens, amenityTokens))

	priceRange := PriceRangeFor(hotel.PriceMin)
	tags := dedupe(concat(
		amenityTokens,
		tokenize(hotel.City),
		tokenize(hotel.Country),
		[]string{string(priceRange)},
	))

	return &domain.IndexEntry{
		HotelID:           hotel.ID,
		NameVector:        strings.Join(nameTokens, " "),
		DescriptionVector: strings.Join(descriptionTokens, " "),
		LocationVector:    strings.Join(locationTokens, " "),
		AmenitiesVector:   strings.Join(amenityTokens, " "),
		CombinedVector:    strings.Join(combined, " "),
		SearchableText:    strings.Join(combined, " "),
		KeywordTags:       datatypes.NewJSONSlice(tags),
		PriceRange:        priceRange,
		QualityScore:      QualityScore(hotel.Rating),
		UpdatedAt:         m.clock.Now(),
	}
}

// PriceRangeFor buckets a minimum nightly price into a category.
func PriceRangeFor(priceMin decimal.Decimal) domain.PriceRange {
	switch {
	case priceMin.LessThan(priceMidRange):
		return domain.PriceRangeBudget
	case priceMin.LessThan(priceUpscale):
		return domain.PriceRangeMidRange
	case priceMin.LessThan(priceLuxury):
		return domain.PriceRangeUpscale
	default:
		return domain.PriceRangeLuxury
	}
}

// QualityScore maps a 0-5 rating onto the 0-100 ranking scale.
func QualityScore(rating float64) float64 {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return rating / 5 * 100
}

// tokenize lowercases, strips punctuation and splits on whitespace, keeping
// first-seen order so repeated runs produce identical vectors.
func tokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return dedupe(strings.Fields(b.String()))
}

func concat(lists ...[]string) []string {
	var out []string
	for _, list := range lists {
		out = append(out, list...)
	}
	return out
}

func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}
