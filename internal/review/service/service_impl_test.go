package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	auditdomain "github.com/stayhive/stayhive/internal/audit/domain"
	auditrepository "github.com/stayhive/stayhive/internal/audit/repository"
	auditservice "github.com/stayhive/stayhive/internal/audit/service"
	"github.com/stayhive/stayhive/internal/clock"
	hoteldomain "github.com/stayhive/stayhive/internal/hotel/domain"
	hotelrepository "github.com/stayhive/stayhive/internal/hotel/repository"
	"github.com/stayhive/stayhive/internal/review/repository"
	searchdomain "github.com/stayhive/stayhive/internal/search/domain"
	searchrepository "github.com/stayhive/stayhive/internal/search/repository"
	searchservice "github.com/stayhive/stayhive/internal/search/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stayhive/stayhive/internal/review/domain"
)

type reviewEnv struct {
	db         *gorm.DB
	svc        domain.Service
	searchRepo searchdomain.Repository
	node       *snowflake.Node
	hotel      *hoteldomain.Hotel
}

func setupReviewService(t *testing.T) *reviewEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&hoteldomain.Hotel{},
		&domain.Review{},
		&searchdomain.IndexEntry{},
		&auditdomain.Entry{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))

	auditSvc := auditservice.NewService(auditservice.Params{
		DB: db, Log: log, GenID: node, Repo: auditrepository.Provide(),
	})
	searchRepo := searchrepository.Provide()
	maintainer := searchservice.NewMaintainer(searchservice.MaintainerParams{
		DB:        db,
		Log:       log,
		Repo:      searchRepo,
		HotelRepo: hotelrepository.Provide(),
		Clock:     clk,
	})
	svc := NewService(Params{
		DB:         db,
		Log:        log,
		GenID:      node,
		Repo:       repository.Provide(),
		HotelRepo:  hotelrepository.Provide(),
		AuditSvc:   auditSvc,
		Maintainer: maintainer,
	})

	hotel := &hoteldomain.Hotel{
		ID:       node.Generate(),
		Name:     "Harborview Inn",
		City:     "Lisbon",
		Country:  "Portugal",
		PriceMin: decimal.NewFromInt(120),
		PriceMax: decimal.NewFromInt(260),
		Active:   true,
	}
	require.NoError(t, db.Create(hotel).Error)

	return &reviewEnv{db: db, svc: svc, searchRepo: searchRepo, node: node, hotel: hotel}
}

func (e *reviewEnv) submit(t *testing.T, rating int) *domain.Review {
	t.Helper()
	review, err := e.svc.Submit(context.Background(), domain.SubmitRequest{
		HotelID:   e.hotel.ID,
		GuestName: "Ana Ferreira",
		Rating:    rating,
		Comment:   "Lovely stay",
	})
	require.NoError(t, err)
	return review
}

func (e *reviewEnv) reloadHotel(t *testing.T) *hoteldomain.Hotel {
	t.Helper()
	var hotel hoteldomain.Hotel
	require.NoError(t, e.db.First(&hotel, "id = ?", e.hotel.ID).Error)
	return &hotel
}

func TestSubmitReview(t *testing.T) {
	env := setupReviewService(t)
	review := env.submit(t, 4)

	assert.Equal(t, domain.StatusPending, review.Status)

	// Pending reviews do not move the hotel aggregates.
	hotel := env.reloadHotel(t)
	assert.Equal(t, 0.0, hotel.Rating)
	assert.Equal(t, 0, hotel.ReviewCount)
}

func TestSubmitReviewValidation(t *testing.T) {
	env := setupReviewService(t)
	ctx := context.Background()

	for _, rating := range []int{0, 6, -1} {
		_, err := env.svc.Submit(ctx, domain.SubmitRequest{HotelID: env.hotel.ID, Rating: rating})
		assert.ErrorIs(t, err, domain.ErrInvalidRating, "rating %d", rating)
	}

	_, err := env.svc.Submit(ctx, domain.SubmitRequest{HotelID: env.node.Generate(), Rating: 4})
	assert.ErrorIs(t, err, hoteldomain.ErrHotelNotFound)
}

func TestApprovePropagatesAggregates(t *testing.T) {
	env := setupReviewService(t)
	ctx := context.Background()

	first := env.submit(t, 5)
	second := env.submit(t, 4)

	_, err := env.svc.Approve(ctx, first.ID)
	require.NoError(t, err)
	_, err = env.svc.Approve(ctx, second.ID)
	require.NoError(t, err)

	hotel := env.reloadHotel(t)
	assert.Equal(t, 4.5, hotel.Rating)
	assert.Equal(t, 2, hotel.ReviewCount)

	// The index entry tracks the new rating in the same transaction.
	entry, err := env.searchRepo.FindEntry(ctx, env.db, env.hotel.ID)
	require.NoError(t, err)
	assert.Equal(t, 90.0, entry.QualityScore)
}

func TestRejectedReviewsDoNotCount(t *testing.T) {
	env := setupReviewService(t)
	ctx := context.Background()

	approved := env.submit(t, 2)
	rejected := env.submit(t, 5)

	_, err := env.svc.Approve(ctx, approved.ID)
	require.NoError(t, err)
	_, err = env.svc.Reject(ctx, rejected.ID)
	require.NoError(t, err)

	hotel := env.reloadHotel(t)
	assert.Equal(t, 2.0, hotel.Rating)
	assert.Equal(t, 1, hotel.ReviewCount)
}

func TestApproveIdempotent(t *testing.T) {
	env := setupReviewService(t)
	ctx := context.Background()
	review := env.submit(t, 4)

	_, err := env.svc.Approve(ctx, review.ID)
	require.NoError(t, err)
	auditBefore := countAudit(t, env.db)

	again, err := env.svc.Approve(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, again.Status)
	assert.Equal(t, auditBefore, countAudit(t, env.db))
}

func countAudit(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&auditdomain.Entry{}).Count(&count).Error)
	return count
}

func TestDeleteReviewRecomputesAggregates(t *testing.T) {
	env := setupReviewService(t)
	ctx := context.Background()

	keep := env.submit(t, 5)
	drop := env.submit(t, 1)
	_, err := env.svc.Approve(ctx, keep.ID)
	require.NoError(t, err)
	_, err = env.svc.Approve(ctx, drop.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, env.reloadHotel(t).Rating)

	require.NoError(t, env.svc.Delete(ctx, drop.ID))

	hotel := env.reloadHotel(t)
	assert.Equal(t, 5.0, hotel.Rating)
	assert.Equal(t, 1, hotel.ReviewCount)

	// Deleting the last approved review zeroes the aggregates.
	require.NoError(t, env.svc.Delete(ctx, keep.ID))
	hotel = env.reloadHotel(t)
	assert.Equal(t, 0.0, hotel.Rating)
	assert.Equal(t, 0, hotel.ReviewCount)
}

func TestModerateUnknownReview(t *testing.T) {
	env := setupReviewService(t)

	_, err := env.svc.Approve(context.Background(), env.node.Generate())
	assert.ErrorIs(t, err, domain.ErrReviewNotFound)
	err = env.svc.Delete(context.Background(), env.node.Generate())
	assert.ErrorIs(t, err, domain.ErrReviewNotFound)
}
