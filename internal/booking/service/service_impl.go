package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/stayhive/stayhive/internal/audit/domain"
	availabilitydomain "github.com/stayhive/stayhive/internal/availability/domain"
	"github.com/stayhive/stayhive/internal/booking/domain"
	"github.com/stayhive/stayhive/internal/clock"
	"github.com/stayhive/stayhive/internal/config"
	hoteldomain "github.com/stayhive/stayhive/internal/hotel/domain"
	"github.com/stayhive/stayhive/internal/observability/metrics"
	"github.com/stayhive/stayhive/internal/requestmeta"
	"github.com/stayhive/stayhive/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	confirmationAttempts = 5
	cancellationWindow   = 24 * time.Hour
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Cfg       config.Config
	Clock     clock.Clock
	Repo      domain.Repository
	HotelRepo hoteldomain.Repository
	Ledger    availabilitydomain.Ledger
	AuditSvc  auditdomain.Service
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	cfg       config.Config
	clock     clock.Clock
	repo      domain.Repository
	hotelRepo hoteldomain.Repository
	ledger    availabilitydomain.Ledger
	auditSvc  auditdomain.Service
	metrics   *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("booking.service"),
		genID:     p.GenID,
		cfg:       p.Cfg,
		clock:     p.Clock,
		repo:      p.Repo,
		hotelRepo: p.HotelRepo,
		ledger:    p.Ledger,
		auditSvc:  p.AuditSvc,
		metrics:   p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Booking, error) {
	checkIn := truncateDate(req.CheckIn)
	checkOut := truncateDate(req.CheckOut)
	today := truncateDate(s.clock.Now())

	if !checkIn.Before(checkOut) {
		return nil, domain.ErrInvalidDates
	}
	if checkIn.Before(today) {
		return nil, domain.ErrCheckInPast
	}
	if req.Adults < 1 || req.Adults+req.Children > domain.MaxPartySize {
		return nil, domain.ErrInvalidPartySize
	}
	if !req.TotalAmount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	nights := int(checkOut.Sub(checkIn).Hours() / 24)

	var booking *domain.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hotel, err := s.hotelRepo.FindHotel(ctx, tx, req.HotelID)
		if err != nil {
			return err
		}
		if !hotel.Active {
			return domain.ErrHotelInactive
		}

		room, err := s.hotelRepo.FindRoom(ctx, tx, req.RoomID)
		if err != nil {
			return err
		}
		if req.Adults+req.Children > room.MaxOccupancy {
			return domain.ErrOverCapacity
		}
		if err := s.checkAmount(room.Rate, nights, req.TotalAmount); err != nil {
			return err
		}

		currency := strings.ToUpper(strings.TrimSpace(req.Currency))
		if currency == "" {
			currency = "USD"
		}

		booking = &domain.Booking{
			ID:                   s.genID.Generate(),
			HotelID:              req.HotelID,
			RoomID:               req.RoomID,
			UserID:               req.UserID,
			GuestName:            strings.TrimSpace(req.GuestName),
			GuestEmail:           strings.TrimSpace(req.GuestEmail),
			GuestPhone:           strings.TrimSpace(req.GuestPhone),
			CheckIn:              checkIn,
			CheckOut:             checkOut,
			Nights:               nights,
			Adults:               req.Adults,
			Children:             req.Children,
			TotalAmount:          req.TotalAmount,
			Currency:             currency,
			Status:               domain.StatusPending,
			PaymentStatus:        domain.PaymentStatusUnpaid,
			CancellationDeadline: checkIn.Add(-cancellationWindow),
		}

		if err := s.insertWithConfirmation(ctx, tx, booking); err != nil {
			return err
		}
		return s.auditSvc.Record(ctx, tx, auditdomain.OperationInsert, booking.TableName(), booking.ID.String(), nil, booking.Snapshot())
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("confirmation_number", booking.ConfirmationNumber),
		zap.Int("nights", booking.Nights),
	)
	return booking, nil
}

// insertWithConfirmation retries the insert on confirmation-number collisions,
// regenerating the suffix each attempt.
func (s *Service) insertWithConfirmation(ctx context.Context, tx *gorm.DB, booking *domain.Booking) error {
	for attempt := 0; attempt < confirmationAttempts; attempt++ {
		number, err := newConfirmationNumber(s.clock.Now())
		if err != nil {
			return err
		}
		booking.ConfirmationNumber = number

		err = s.repo.Insert(ctx, tx, booking)
		if err == nil {
			return nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return err
		}
	}
	return domain.ErrConfirmationExhausted
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Booking, error) {
	return s.repo.Find(ctx, s.db, id)
}

func (s *Service) GetByConfirmation(ctx context.Context, confirmationNumber string) (*domain.Booking, error) {
	return s.repo.FindByConfirmation(ctx, s.db, confirmationNumber)
}

func (s *Service) Confirm(ctx context.Context, id snowflake.ID) (*domain.Booking, error) {
	return s.Transition(ctx, id, domain.StatusConfirmed, "")
}

func (s *Service) Cancel(ctx context.Context, id snowflake.ID, reason string) (*domain.Booking, error) {
	booking, err := s.repo.Find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if s.clock.Now().After(booking.CancellationDeadline) {
		return nil, domain.ErrCancelDeadlinePassed
	}
	return s.Transition(ctx, id, domain.StatusCancelled, reason)
}

func (s *Service) Transition(ctx context.Context, id snowflake.ID, next domain.Status, reason string) (*domain.Booking, error) {
	var booking *domain.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		booking, err = s.TransitionTx(ctx, tx, id, next, reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// TransitionTx applies one state-machine edge inside the given transaction.
// The booking row is locked first so concurrent transitions serialize, and
// ledger adjustments are keyed off the previous status so a transition can
// never double-apply.
func (s *Service) TransitionTx(ctx context.Context, tx *gorm.DB, id snowflake.ID, next domain.Status, reason string) (*domain.Booking, error) {
	if !next.Valid() {
		return nil, domain.ErrInvalidTransition
	}

	booking, err := s.repo.FindForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	previous := booking.Status
	if !previous.CanTransitionTo(next) {
		return nil, domain.ErrInvalidTransition
	}

	switch {
	case previous != domain.StatusConfirmed && next == domain.StatusConfirmed:
		room, err := s.hotelRepo.FindRoom(ctx, tx, booking.RoomID)
		if err != nil {
			return nil, err
		}
		if err := s.ledger.Reserve(ctx, tx, room, booking.CheckIn, booking.CheckOut); err != nil {
			if err == availabilitydomain.ErrNoAvailability {
				s.metrics.RecordOversellRejection(ctx)
			}
			return nil, err
		}
	case previous == domain.StatusConfirmed && next == domain.StatusCancelled:
		if err := s.ledger.Release(ctx, tx, booking.RoomID, booking.CheckIn, booking.CheckOut); err != nil {
			return nil, err
		}
	}

	before := booking.Snapshot()
	booking.Status = next
	if next == domain.StatusPaymentFailed {
		booking.PaymentStatus = domain.PaymentStatusFailed
	}
	if next == domain.StatusCancelled && booking.PaymentStatus == domain.PaymentStatusPaid {
		booking.PaymentStatus = domain.PaymentStatusRefunded
	}
	if err := s.repo.Update(ctx, tx, booking); err != nil {
		return nil, err
	}

	actorType, actorID := requestmeta.ActorFromContext(ctx)
	if actorType == "" {
		actorType = string(auditdomain.ActorTypeSystem)
	}
	history := &domain.StatusHistory{
		ID:             s.genID.Generate(),
		BookingID:      booking.ID,
		PreviousStatus: previous,
		NewStatus:      next,
		Reason:         strings.TrimSpace(reason),
		ActorType:      actorType,
		CreatedAt:      time.Now().UTC(),
	}
	if actorID != "" {
		history.ActorID = &actorID
	}
	if err := s.repo.InsertHistory(ctx, tx, history); err != nil {
		return nil, err
	}

	if err := s.auditSvc.Record(ctx, tx, auditdomain.OperationUpdate, booking.TableName(), booking.ID.String(), before, booking.Snapshot()); err != nil {
		return nil, err
	}

	s.metrics.RecordBookingTransition(ctx, string(previous), string(next))
	s.log.Info("booking transitioned",
		zap.String("booking_id", booking.ID.String()),
		zap.String("from", string(previous)),
		zap.String("to", string(next)),
	)
	return booking, nil
}

// MarkPaid flips the payment status inside the caller's transaction.
func (s *Service) MarkPaid(ctx context.Context, tx *gorm.DB, id snowflake.ID) error {
	booking, err := s.repo.FindForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}
	if booking.PaymentStatus == domain.PaymentStatusPaid {
		return nil
	}
	before := booking.Snapshot()
	booking.PaymentStatus = domain.PaymentStatusPaid
	if err := s.repo.Update(ctx, tx, booking); err != nil {
		return err
	}
	return s.auditSvc.Record(ctx, tx, auditdomain.OperationUpdate, booking.TableName(), booking.ID.String(), before, booking.Snapshot())
}

// Purge hard-deletes a booking, reversing ledger effects for confirmed stays.
func (s *Service) Purge(ctx context.Context, id snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.repo.FindForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if booking.Status == domain.StatusConfirmed {
			if err := s.ledger.Release(ctx, tx, booking.RoomID, booking.CheckIn, booking.CheckOut); err != nil {
				return err
			}
		}
		if err := s.repo.Delete(ctx, tx, booking.ID); err != nil {
			return err
		}
		return s.auditSvc.Record(ctx, tx, auditdomain.OperationDelete, booking.TableName(), booking.ID.String(), booking.Snapshot(), nil)
	})
}

func (s *Service) History(ctx context.Context, id snowflake.ID) ([]domain.StatusHistory, error) {
	return s.repo.ListHistory(ctx, s.db, id)
}

// checkAmount rejects totals that deviate from rate*nights beyond the
// configured tolerance, a sanity check against pricing errors upstream.
func (s *Service) checkAmount(rate decimal.Decimal, nights int, total decimal.Decimal) error {
	expected := rate.Mul(decimal.NewFromInt(int64(nights)))
	if !expected.IsPositive() {
		return domain.ErrInvalidAmount
	}
	tolerance := expected.Mul(s.cfg.RateTolerance)
	if total.Sub(expected).Abs().GreaterThan(tolerance) {
		return domain.ErrAmountMismatch
	}
	return nil
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
