package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/stayhive/stayhive/internal/audit/domain"
	bookingdomain "github.com/stayhive/stayhive/internal/booking/domain"
	"github.com/stayhive/stayhive/internal/clock"
	commissiondomain "github.com/stayhive/stayhive/internal/commission/domain"
	"github.com/stayhive/stayhive/internal/config"
	hoteldomain "github.com/stayhive/stayhive/internal/hotel/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type auditStub struct {
	mu          sync.Mutex
	purgeCalls  int
	purgeCutoff time.Time
	purgeErr    error
}

func (a *auditStub) Record(ctx context.Context, tx *gorm.DB, op auditdomain.Operation, table, recordID string, oldValues, newValues map[string]any) error {
	return nil
}

func (a *auditStub) List(ctx context.Context, req auditdomain.ListRequest) (auditdomain.ListResponse, error) {
	return auditdomain.ListResponse{}, nil
}

func (a *auditStub) Purge(ctx context.Context, olderThan time.Time, batchSize int) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.purgeCalls++
	a.purgeCutoff = olderThan
	return 0, a.purgeErr
}

type maintainerStub struct {
	mu         sync.Mutex
	staleCalls int
	staleErr   error
}

func (m *maintainerStub) ReindexHotel(ctx context.Context, tx *gorm.DB, hotel *hoteldomain.Hotel) error {
	return nil
}

func (m *maintainerStub) ReindexByID(ctx context.Context, hotelID snowflake.ID) error {
	return nil
}

func (m *maintainerStub) ReindexStale(ctx context.Context, batchSize int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staleCalls++
	return 0, m.staleErr
}

type commissionStub struct {
	mu            sync.Mutex
	backfillCalls int
	backfillErr   error
}

func (c *commissionStub) Compute(ctx context.Context, tx *gorm.DB, booking *bookingdomain.Booking, paymentID snowflake.ID) (*commissiondomain.Commission, error) {
	return nil, nil
}

func (c *commissionStub) Recompute(ctx context.Context, bookingID snowflake.ID) (*commissiondomain.Commission, error) {
	return nil, nil
}

func (c *commissionStub) Reverse(ctx context.Context, commissionID snowflake.ID, reason string) (*commissiondomain.Commission, error) {
	return nil, nil
}

func (c *commissionStub) GetByBooking(ctx context.Context, bookingID snowflake.ID) (*commissiondomain.Commission, error) {
	return nil, nil
}

func (c *commissionStub) BackfillMissing(ctx context.Context, batchSize int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.backfillCalls++
	return 0, c.backfillErr
}

type hotelRepoStub struct {
	mu           sync.Mutex
	refreshCalls int
	refreshSince time.Time
}

func (h *hotelRepoStub) InsertHotel(ctx context.Context, db *gorm.DB, hotel *hoteldomain.Hotel) error {
	return nil
}

func (h *hotelRepoStub) UpdateHotel(ctx context.Context, db *gorm.DB, hotel *hoteldomain.Hotel) error {
	return nil
}

func (h *hotelRepoStub) FindHotel(ctx context.Context, db *gorm.DB, id snowflake.ID) (*hoteldomain.Hotel, error) {
	return nil, hoteldomain.ErrHotelNotFound
}

func (h *hotelRepoStub) InsertRoom(ctx context.Context, db *gorm.DB, room *hoteldomain.Room) error {
	return nil
}

func (h *hotelRepoStub) FindRoom(ctx context.Context, db *gorm.DB, id snowflake.ID) (*hoteldomain.Room, error) {
	return nil, hoteldomain.ErrRoomNotFound
}

func (h *hotelRepoStub) UpdateRatingAggregates(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, rating float64, reviewCount int) error {
	return nil
}

func (h *hotelRepoStub) RefreshRecentBookings(ctx context.Context, db *gorm.DB, since time.Time) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.refreshCalls++
	h.refreshSince = since
	return 0, nil
}

type schedulerFixture struct {
	scheduler  *Scheduler
	audit      *auditStub
	maintainer *maintainerStub
	commission *commissionStub
	hotels     *hotelRepoStub
	clk        *clock.FakeClock
}

func setupScheduler(t *testing.T, cfg Config) *schedulerFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	f := &schedulerFixture{
		audit:      &auditStub{},
		maintainer: &maintainerStub{},
		commission: &commissionStub{},
		hotels:     &hotelRepoStub{},
		clk:        clock.NewFakeClock(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)),
	}
	f.scheduler, err = New(Params{
		DB:            db,
		Log:           zap.NewNop(),
		Clock:         f.clk,
		AuditSvc:      f.audit,
		Maintainer:    f.maintainer,
		CommissionSvc: f.commission,
		HotelRepo:     f.hotels,
		AppConfig:     config.Config{AuditRetention: 90 * 24 * time.Hour},
		Config:        cfg,
	})
	require.NoError(t, err)
	return f
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Params{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunOnceRunsEveryJob(t *testing.T) {
	f := setupScheduler(t, Config{RecentWindow: 7 * 24 * time.Hour})

	require.NoError(t, f.scheduler.RunOnce(context.Background()))

	assert.Equal(t, 1, f.audit.purgeCalls)
	assert.Equal(t, 1, f.maintainer.staleCalls)
	assert.Equal(t, 1, f.commission.backfillCalls)
	assert.Equal(t, 1, f.hotels.refreshCalls)

	// Cutoffs derive from the injected clock.
	assert.Equal(t, f.clk.Now().Add(-90*24*time.Hour), f.audit.purgeCutoff)
	assert.Equal(t, f.clk.Now().Add(-7*24*time.Hour), f.hotels.refreshSince)
}

func TestRunOnceHonorsAllowlist(t *testing.T) {
	f := setupScheduler(t, Config{EnabledJobs: []string{"audit_purge", "view_refresh"}})

	require.NoError(t, f.scheduler.RunOnce(context.Background()))

	assert.Equal(t, 1, f.audit.purgeCalls)
	assert.Equal(t, 1, f.hotels.refreshCalls)
	assert.Equal(t, 0, f.maintainer.staleCalls)
	assert.Equal(t, 0, f.commission.backfillCalls)
}

func TestRunOnceJoinsJobErrors(t *testing.T) {
	f := setupScheduler(t, Config{})
	f.audit.purgeErr = errors.New("purge boom")
	f.commission.backfillErr = errors.New("backfill boom")

	err := f.scheduler.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit_purge")
	assert.Contains(t, err.Error(), "commission_backfill")

	// A failing job never stops the others.
	assert.Equal(t, 1, f.maintainer.staleCalls)
	assert.Equal(t, 1, f.hotels.refreshCalls)
}

func TestRunOnceTreatsTimeoutAsSoftFailure(t *testing.T) {
	f := setupScheduler(t, Config{})
	f.maintainer.staleErr = context.DeadlineExceeded

	assert.NoError(t, f.scheduler.RunOnce(context.Background()))
	assert.Equal(t, 1, f.maintainer.staleCalls)
}
