package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stayhive/stayhive/internal/availability/domain"
	hoteldomain "github.com/stayhive/stayhive/internal/hotel/domain"
	"github.com/stayhive/stayhive/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Ledger struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func NewLedger(p Params) domain.Ledger {
	return &Ledger{
		db:    p.DB,
		log:   p.Log.Named("availability.ledger"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

// Reserve takes one unit of the room for every night of the stay. Each night
// is a conditional decrement checked against remaining inventory; the first
// sold-out night aborts with ErrNoAvailability and the surrounding
// transaction rolls the earlier nights back.
func (l *Ledger) Reserve(ctx context.Context, tx *gorm.DB, room *hoteldomain.Room, checkIn, checkOut time.Time) error {
	if room == nil || room.TotalQuantity < 1 {
		return domain.ErrNoAvailability
	}

	for _, night := range domain.Nights(checkIn, checkOut) {
		if err := l.reserveNight(ctx, tx, room, night); err != nil {
			return err
		}
	}
	return nil
}

func (l *Ledger) reserveNight(ctx context.Context, tx *gorm.DB, room *hoteldomain.Room, night time.Time) error {
	rows, err := l.repo.TryReserve(ctx, tx, room.ID, night)
	if err != nil {
		return fmt.Errorf("reserve night %s: %w", night.Format("2006-01-02"), err)
	}
	if rows > 0 {
		return nil
	}

	exists, err := l.repo.Exists(ctx, tx, room.ID, night)
	if err != nil {
		return err
	}
	if exists {
		// Row present but available == 0.
		return domain.ErrNoAvailability
	}

	row := &domain.RoomAvailability{
		ID:        l.genID.Generate(),
		RoomID:    room.ID,
		Date:      night,
		Available: room.TotalQuantity - 1,
		Booked:    1,
		Price:     room.Rate,
	}
	if err := l.repo.Insert(ctx, tx, row); err != nil {
		if db.IsDuplicateKeyErr(err) {
			// Lost the insert race; the winner holds the row now, so retry
			// the conditional decrement once.
			rows, retryErr := l.repo.TryReserve(ctx, tx, room.ID, night)
			if retryErr != nil {
				return retryErr
			}
			if rows == 0 {
				return domain.ErrNoAvailability
			}
			return nil
		}
		return err
	}
	return nil
}

// Release returns one unit for every night of the stay. The floor guard means
// a release against an already-empty counter updates nothing; that indicates
// ledger drift and is logged rather than hidden.
func (l *Ledger) Release(ctx context.Context, tx *gorm.DB, roomID snowflake.ID, checkIn, checkOut time.Time) error {
	for _, night := range domain.Nights(checkIn, checkOut) {
		rows, err := l.repo.Release(ctx, tx, roomID, night)
		if err != nil {
			return fmt.Errorf("release night %s: %w", night.Format("2006-01-02"), err)
		}
		if rows == 0 {
			l.log.Warn("ledger release had no effect",
				zap.String("room_id", roomID.String()),
				zap.Time("date", night),
			)
		}
	}
	return nil
}

func (l *Ledger) ListForRoom(ctx context.Context, roomID snowflake.ID, from, to time.Time) ([]*domain.RoomAvailability, error) {
	return l.repo.ListForRoom(ctx, l.db, roomID, from, to)
}
