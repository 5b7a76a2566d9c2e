package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stayhive/stayhive/internal/cache"
	"github.com/stayhive/stayhive/internal/clock"
	"github.com/stayhive/stayhive/internal/config"
	"github.com/stayhive/stayhive/internal/observability/metrics"
	"github.com/stayhive/stayhive/internal/search/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
	candidateLimit  = 200

	maxReviewCountSignal = 100
	recentVolumeBoostMin = 10
)

// Params defines query engine dependencies.
type Params struct {
	fx.In

	Config  config.Config
	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Clock   clock.Clock
	Metrics *metrics.Metrics `optional:"true"`
}

type service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	clock   clock.Clock
	metrics *metrics.Metrics
	cache   cache.Cache[string, []domain.Hit]
}

// NewService builds the query engine with its process-local result cache.
// The cache has no cross-instance invalidation; staleness is bounded by the
// configured TTL.
func NewService(p Params) domain.Service {
	ttl := p.Config.SearchCacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &service{
		db:      p.DB,
		log:     p.Log.Named("search.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		clock:   p.Clock,
		metrics: p.Metrics,
		cache:   cache.NewTTLCache[string, []domain.Hit](ttl, p.Clock),
	}
}

func (s *service) Search(ctx context.Context, q domain.Query) (*domain.Result, error) {
	normalize(&q)
	if err := validate(q); err != nil {
		return nil, err
	}

	textTokens := tokenize(q.Text)
	queryType := domain.QueryTypeFiltered
	if len(textTokens) > 0 {
		queryType = domain.QueryTypeFullText
	}

	start := time.Now()
	key := cacheKey(q)

	if hits, ok := s.cache.Get(key); ok {
		result := s.finish(ctx, q, queryType, hits, true, time.Since(start))
		return result, nil
	}

	candidates, err := s.repo.ListCandidates(ctx, s.db, domain.CandidateFilter{
		City:       q.City,
		Country:    q.Country,
		PriceMin:   decimalString(q.PriceMin),
		PriceMax:   decimalString(q.PriceMax),
		StarRating: q.StarRating,
		PriceRange: q.PriceRange,
		TextTokens: textTokens,
		CheckIn:    q.CheckIn,
		CheckOut:   q.CheckOut,
		Limit:      candidateLimit,
	})
	if err != nil {
		s.log.Error("candidate scan failed", zap.Error(err))
		return nil, domain.ErrSearchUnavailable
	}

	candidates = filterAmenities(candidates, q.Amenities)
	hits := rank(candidates, textTokens, q.SortBy)
	hits = page(hits, q.Page, q.PageSize)

	s.cache.Set(key, hits)
	result := s.finish(ctx, q, queryType, hits, false, time.Since(start))
	return result, nil
}

// finish assembles the result and emits the per-query analytics record and
// metrics. Analytics failures never fail the search.
func (s *service) finish(ctx context.Context, q domain.Query, queryType domain.QueryType, hits []domain.Hit, cacheHit bool, elapsed time.Duration) *domain.Result {
	complexity := classify(q)
	meta := domain.Meta{
		QueryType:   queryType,
		DurationMS:  elapsed.Milliseconds(),
		CacheHit:    cacheHit,
		ResultCount: len(hits),
		Complexity:  complexity,
		Page:        q.Page,
		PageSize:    q.PageSize,
	}

	s.metrics.RecordSearchQuery(ctx, string(queryType), cacheHit, elapsed)

	record := &domain.AnalyticsRecord{
		ID:          s.genID.Generate(),
		QueryType:   queryType,
		QueryText:   strings.TrimSpace(q.Text),
		DurationMS:  meta.DurationMS,
		CacheHit:    cacheHit,
		ResultCount: len(hits),
		Complexity:  complexity,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.InsertAnalytics(ctx, s.db, record); err != nil {
		s.log.Warn("analytics write failed", zap.Error(err))
	}

	return &domain.Result{Hits: hits, Meta: meta}
}

func normalize(q *domain.Query) {
	q.Text = strings.TrimSpace(q.Text)
	q.City = strings.TrimSpace(q.City)
	q.Country = strings.TrimSpace(q.Country)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	for i, amenity := range q.Amenities {
		q.Amenities[i] = strings.ToLower(strings.TrimSpace(amenity))
	}
}

func validate(q domain.Query) error {
	if q.PriceMin != nil && q.PriceMax != nil && q.PriceMin.GreaterThan(*q.PriceMax) {
		return fmt.Errorf("%w: price_min exceeds price_max", domain.ErrInvalidQuery)
	}
	if (q.CheckIn == nil) != (q.CheckOut == nil) {
		return fmt.Errorf("%w: date range requires both check_in and check_out", domain.ErrInvalidQuery)
	}
	if q.CheckIn != nil && !q.CheckIn.Before(*q.CheckOut) {
		return fmt.Errorf("%w: check_in must precede check_out", domain.ErrInvalidQuery)
	}
	switch q.SortBy {
	case domain.SortDefault, domain.SortPriceAsc, domain.SortPriceDesc, domain.SortRating, domain.SortPopularity:
	default:
		return fmt.Errorf("%w: unknown sort key %q", domain.ErrInvalidQuery, q.SortBy)
	}
	return nil
}

// classify applies the weighted complexity heuristic: free text 3, amenities
// 2, date range 2, price filter 1.
func classify(q domain.Query) domain.Complexity {
	score := 0
	if strings.TrimSpace(q.Text) != "" {
		score += 3
	}
	if len(q.Amenities) > 0 {
		score += 2
	}
	if q.CheckIn != nil && q.CheckOut != nil {
		score += 2
	}
	if q.PriceMin != nil || q.PriceMax != nil || q.PriceRange != "" {
		score++
	}
	switch {
	case score >= 5:
		return domain.ComplexityComplex
	case score >= 3:
		return domain.ComplexityModerate
	default:
		return domain.ComplexitySimple
	}
}

func cacheKey(q domain.Query) string {
	payload, _ := json.Marshal(q)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func decimalString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func filterAmenities(candidates []domain.Candidate, required []string) []domain.Candidate {
	if len(required) == 0 {
		return candidates
	}
	out := candidates[:0]
	for _, c := range candidates {
		have := make(map[string]struct{}, len(c.Hotel.Amenities))
		for _, amenity := range c.Hotel.Amenities {
			have[strings.ToLower(amenity)] = struct{}{}
		}
		matched := true
		for _, want := range required {
			if _, ok := have[want]; !ok {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, c)
		}
	}
	return out
}

// rank scores and orders candidates. Free-text queries rank by relevance,
// explicit sort keys order directly, everything else uses the composite
// score.
func rank(candidates []domain.Candidate, textTokens []string, sortBy domain.SortKey) []domain.Hit {
	hits := make([]domain.Hit, 0, len(candidates))
	for _, c := range candidates {
		hit := domain.Hit{
			Hotel:        c.Hotel,
			PriceRange:   c.PriceRange,
			QualityScore: c.QualityScore,
		}
		if len(textTokens) > 0 {
			hit.Score = relevance(c, textTokens)
		} else {
			hit.Score = composite(c)
		}
		hits = append(hits, hit)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		switch sortBy {
		case domain.SortPriceAsc:
			return a.Hotel.PriceMin.LessThan(b.Hotel.PriceMin)
		case domain.SortPriceDesc:
			return a.Hotel.PriceMin.GreaterThan(b.Hotel.PriceMin)
		case domain.SortRating:
			return a.Hotel.Rating > b.Hotel.Rating
		case domain.SortPopularity:
			return a.Hotel.RecentBookings > b.Hotel.RecentBookings
		default:
			return a.Score > b.Score
		}
	})
	return hits
}

// relevance weighs token matches by field: name 4, location 3, amenities 2,
// description 1.
func relevance(c domain.Candidate, tokens []string) float64 {
	score := 0.0
	for _, token := range tokens {
		if strings.Contains(c.NameVector, token) {
			score += 4
		}
		if strings.Contains(c.LocationVector, token) {
			score += 3
		}
		if strings.Contains(c.AmenitiesVector, token) {
			score += 2
		}
		if strings.Contains(c.DescriptionVector, token) {
			score += 1
		}
	}
	return score
}

// composite blends rating (30%), capped review count (20%), popularity (25%)
// and quality score (25%), then applies the featured and recent-volume
// boosts.
func composite(c domain.Candidate) float64 {
	ratingScore := c.Hotel.Rating / 5 * 100
	reviewScore := float64(c.Hotel.ReviewCount)
	if reviewScore > maxReviewCountSignal {
		reviewScore = maxReviewCountSignal
	}
	popularityScore := float64(c.Hotel.RecentBookings) * 2
	if popularityScore > 100 {
		popularityScore = 100
	}

	score := 0.30*ratingScore + 0.20*reviewScore + 0.25*popularityScore + 0.25*c.QualityScore
	if c.Hotel.Featured {
		score *= 1.2
	}
	if c.Hotel.RecentBookings >= recentVolumeBoostMin {
		score *= 1.1
	}
	return score
}

func page(hits []domain.Hit, pageNum, pageSize int) []domain.Hit {
	offset := (pageNum - 1) * pageSize
	if offset >= len(hits) {
		return []domain.Hit{}
	}
	end := offset + pageSize
	if end > len(hits) {
		end = len(hits)
	}
	return hits[offset:end]
}
