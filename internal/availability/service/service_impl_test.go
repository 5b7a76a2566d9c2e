package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stayhive/stayhive/internal/availability/domain"
	"github.com/stayhive/stayhive/internal/availability/repository"
	hoteldomain "github.com/stayhive/stayhive/internal/hotel/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupLedger(t *testing.T) (domain.Ledger, *gorm.DB, *hoteldomain.Room) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.RoomAvailability{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	room := &hoteldomain.Room{
		ID:            node.Generate(),
		HotelID:       node.Generate(),
		Rate:          decimal.NewFromInt(90),
		TotalQuantity: 3,
	}

	ledger := NewLedger(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return ledger, db, room
}

func day(d int) time.Time {
	return time.Date(2026, 4, d, 0, 0, 0, 0, time.UTC)
}

func TestNightsExpansion(t *testing.T) {
	nights := domain.Nights(day(10), day(13))
	require.Len(t, nights, 3)
	assert.Equal(t, day(10), nights[0])
	assert.Equal(t, day(12), nights[2])

	// Timestamps collapse onto UTC midnights.
	nights = domain.Nights(
		time.Date(2026, 4, 10, 15, 30, 0, 0, time.UTC),
		time.Date(2026, 4, 11, 9, 0, 0, 0, time.UTC),
	)
	require.Len(t, nights, 1)
	assert.Equal(t, day(10), nights[0])

	assert.Empty(t, domain.Nights(day(10), day(10)))
}

func TestReserveCreatesRowsOnFirstTouch(t *testing.T) {
	ledger, db, room := setupLedger(t)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Reserve(ctx, tx, room, day(10), day(12))
	})
	require.NoError(t, err)

	rows, err := ledger.ListForRoom(ctx, room.ID, day(10), day(12))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, room.TotalQuantity-1, row.Available)
		assert.Equal(t, 1, row.Booked)
		assert.True(t, row.Price.Equal(room.Rate))
	}
}

func TestReserveExhaustsInventory(t *testing.T) {
	ledger, db, room := setupLedger(t)
	ctx := context.Background()

	for i := 0; i < room.TotalQuantity; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			return ledger.Reserve(ctx, tx, room, day(10), day(11))
		})
		require.NoError(t, err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Reserve(ctx, tx, room, day(10), day(11))
	})
	assert.ErrorIs(t, err, domain.ErrNoAvailability)

	rows, err := ledger.ListForRoom(ctx, room.ID, day(10), day(11))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].Available)
	assert.Equal(t, room.TotalQuantity, rows[0].Booked)
}

func TestReserveZeroQuantityRoom(t *testing.T) {
	ledger, db, room := setupLedger(t)
	room.TotalQuantity = 0

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Reserve(context.Background(), tx, room, day(10), day(11))
	})
	assert.ErrorIs(t, err, domain.ErrNoAvailability)
}

func TestReleaseRestoresCounters(t *testing.T) {
	ledger, db, room := setupLedger(t)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Reserve(ctx, tx, room, day(10), day(12))
	})
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		return ledger.Release(ctx, tx, room.ID, day(10), day(12))
	})
	require.NoError(t, err)

	rows, err := ledger.ListForRoom(ctx, room.ID, day(10), day(12))
	require.NoError(t, err)
	for _, row := range rows {
		assert.Equal(t, room.TotalQuantity, row.Available)
		assert.Equal(t, 0, row.Booked)
	}
}

func TestReleaseNeverGoesNegative(t *testing.T) {
	ledger, db, room := setupLedger(t)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Reserve(ctx, tx, room, day(10), day(11))
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		err = db.Transaction(func(tx *gorm.DB) error {
			return ledger.Release(ctx, tx, room.ID, day(10), day(11))
		})
		require.NoError(t, err)
	}

	rows, err := ledger.ListForRoom(ctx, room.ID, day(10), day(11))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, room.TotalQuantity, rows[0].Available)
	assert.Equal(t, 0, rows[0].Booked)
}

func TestReleaseMissingRowIsHarmless(t *testing.T) {
	ledger, db, room := setupLedger(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Release(context.Background(), tx, room.ID, day(20), day(22))
	})
	assert.NoError(t, err)
}
