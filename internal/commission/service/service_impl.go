package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/stayhive/stayhive/internal/audit/domain"
	bookingdomain "github.com/stayhive/stayhive/internal/booking/domain"
	"github.com/stayhive/stayhive/internal/commission/domain"
	"github.com/stayhive/stayhive/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config   config.Config
	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	AuditSvc auditdomain.Service
}

type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	repo            domain.Repository
	auditSvc        auditdomain.Service
	commissionRate  decimal.Decimal
	platformFeeRate decimal.Decimal
}

func NewService(p Params) domain.Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("commission.service"),
		genID:           p.GenID,
		repo:            p.Repo,
		auditSvc:        p.AuditSvc,
		commissionRate:  p.Config.CommissionRate,
		platformFeeRate: p.Config.PlatformFeeRate,
	}
}

// Compute derives the commission for a paid booking inside the caller's
// transaction. A second call for the same booking returns the existing
// record untouched.
func (s *Service) Compute(ctx context.Context, tx *gorm.DB, booking *bookingdomain.Booking, paymentID snowflake.ID) (*domain.Commission, error) {
	if tx == nil {
		tx = s.db
	}

	existing, err := s.repo.FindByBooking(ctx, tx, booking.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	base := booking.TotalAmount
	commissionAmount := base.Mul(s.commissionRate).Round(2)
	platformFee := base.Mul(s.platformFeeRate).Round(2)

	commission := &domain.Commission{
		ID:               s.genID.Generate(),
		BookingID:        booking.ID,
		PaymentID:        paymentID,
		BaseAmount:       base,
		CommissionRate:   s.commissionRate,
		CommissionAmount: commissionAmount,
		PlatformFee:      platformFee,
		HotelEarnings:    base.Sub(commissionAmount).Sub(platformFee),
		Currency:         booking.Currency,
		Status:           domain.StatusEarned,
	}
	if err := s.repo.Insert(ctx, tx, commission); err != nil {
		return nil, fmt.Errorf("insert commission: %w", err)
	}
	if err := s.auditSvc.Record(ctx, tx, auditdomain.OperationInsert,
		commission.TableName(), commission.ID.String(), nil, commission.Snapshot()); err != nil {
		return nil, err
	}
	return commission, nil
}

// Recompute is the repair entry point for one booking. It is a no-op when the
// commission already exists.
func (s *Service) Recompute(ctx context.Context, bookingID snowflake.ID) (*domain.Commission, error) {
	var commission *domain.Commission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking bookingdomain.Booking
		if err := tx.WithContext(ctx).First(&booking, "id = ?", bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bookingdomain.ErrNotFound
			}
			return err
		}
		if booking.PaymentStatus != bookingdomain.PaymentStatusPaid {
			return domain.ErrBookingNotPaid
		}

		var paymentID snowflake.ID
		row := tx.WithContext(ctx).
			Table("payments").
			Select("id").
			Where("booking_id = ? AND status = ?", bookingID, "completed").
			Limit(1).
			Row()
		if err := row.Scan(&paymentID); err != nil {
			return domain.ErrBookingNotPaid
		}

		var err error
		commission, err = s.Compute(ctx, tx, &booking, paymentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return commission, nil
}

// Reverse flags an earned commission as reversed via an explicit reversal
// row. The original amounts stay untouched.
func (s *Service) Reverse(ctx context.Context, commissionID snowflake.ID, reason string) (*domain.Commission, error) {
	var commission *domain.Commission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.repo.Find(ctx, tx, commissionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrCommissionNotFound
			}
			return err
		}
		switch found.Status {
		case domain.StatusReversed:
			return domain.ErrAlreadyReversed
		case domain.StatusEarned:
		default:
			return domain.ErrNotEarned
		}

		before := found.Snapshot()
		reversal := &domain.Reversal{
			ID:           s.genID.Generate(),
			CommissionID: found.ID,
			Amount:       found.CommissionAmount,
			Reason:       reason,
		}
		if err := s.repo.InsertReversal(ctx, tx, reversal); err != nil {
			return err
		}
		if err := s.repo.UpdateStatus(ctx, tx, found.ID, domain.StatusReversed); err != nil {
			return err
		}
		found.Status = domain.StatusReversed
		if err := s.auditSvc.Record(ctx, tx, auditdomain.OperationUpdate,
			found.TableName(), found.ID.String(), before, found.Snapshot()); err != nil {
			return err
		}
		commission = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return commission, nil
}

func (s *Service) GetByBooking(ctx context.Context, bookingID snowflake.ID) (*domain.Commission, error) {
	commission, err := s.repo.FindByBooking(ctx, s.db, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCommissionNotFound
		}
		return nil, err
	}
	return commission, nil
}

// BackfillMissing computes commissions for paid bookings that lack one. Each
// booking commits independently.
func (s *Service) BackfillMissing(ctx context.Context, batchSize int) (int, error) {
	candidates, err := s.repo.MissingForPaidBookings(ctx, s.db, batchSize)
	if err != nil {
		return 0, fmt.Errorf("scan paid bookings: %w", err)
	}

	computed := 0
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return computed, err
		}
		candidate := candidates[i]
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			_, err := s.Compute(ctx, tx, &candidate.Booking, candidate.PaymentID)
			return err
		})
		if err != nil {
			s.log.Warn("commission backfill failed",
				zap.String("booking_id", candidate.Booking.ID.String()),
				zap.Error(err),
			)
			continue
		}
		computed++
	}
	return computed, nil
}
