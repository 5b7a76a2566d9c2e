package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/stayhive/stayhive/internal/audit/domain"
	bookingdomain "github.com/stayhive/stayhive/internal/booking/domain"
	commissiondomain "github.com/stayhive/stayhive/internal/commission/domain"
	"github.com/stayhive/stayhive/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Repo          domain.Repository
	BookingSvc    bookingdomain.Service
	CommissionSvc commissiondomain.Service
	AuditSvc      auditdomain.Service
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	repo          domain.Repository
	bookingSvc    bookingdomain.Service
	commissionSvc commissiondomain.Service
	auditSvc      auditdomain.Service
}

func NewService(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("payment.service"),
		genID:         p.GenID,
		repo:          p.Repo,
		bookingSvc:    p.BookingSvc,
		commissionSvc: p.CommissionSvc,
		auditSvc:      p.AuditSvc,
	}
}

// ApplyResult records the gateway outcome and drives the booking transition
// plus commission computation in one transaction. Replayed transaction ids
// return the stored payment without side effects.
func (s *Service) ApplyResult(ctx context.Context, result domain.GatewayResult) (*domain.Payment, error) {
	if err := validate(result); err != nil {
		return nil, err
	}

	var payment *domain.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByTransaction(ctx, tx, result.TransactionID)
		if err == nil {
			payment = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		booking, err := s.bookingSvc.Get(ctx, result.BookingID)
		if err != nil {
			return err
		}
		if result.Status == domain.StatusCompleted {
			if !result.Amount.Equal(booking.TotalAmount) {
				return domain.ErrAmountMismatch
			}
			if !strings.EqualFold(result.Currency, booking.Currency) {
				return domain.ErrCurrencyMismatch
			}
		}

		payment = &domain.Payment{
			ID:            s.genID.Generate(),
			BookingID:     result.BookingID,
			TransactionID: result.TransactionID,
			Amount:        result.Amount,
			Currency:      strings.ToUpper(result.Currency),
			Status:        result.Status,
		}
		if err := s.repo.Insert(ctx, tx, payment); err != nil {
			return err
		}
		if err := s.auditSvc.Record(ctx, tx, auditdomain.OperationInsert,
			payment.TableName(), payment.ID.String(), nil, payment.Snapshot()); err != nil {
			return err
		}

		if result.Status == domain.StatusFailed {
			_, err := s.bookingSvc.TransitionTx(ctx, tx, booking.ID,
				bookingdomain.StatusPaymentFailed, "payment failed: "+result.TransactionID)
			return err
		}

		confirmed, err := s.bookingSvc.TransitionTx(ctx, tx, booking.ID,
			bookingdomain.StatusConfirmed, "payment completed: "+result.TransactionID)
		if err != nil {
			return err
		}
		if err := s.bookingSvc.MarkPaid(ctx, tx, confirmed.ID); err != nil {
			return err
		}
		_, err = s.commissionSvc.Compute(ctx, tx, confirmed, payment.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *Service) GetByTransaction(ctx context.Context, transactionID string) (*domain.Payment, error) {
	return s.repo.FindByTransaction(ctx, s.db, transactionID)
}

func validate(result domain.GatewayResult) error {
	if result.BookingID == 0 {
		return domain.ErrInvalidResult
	}
	if strings.TrimSpace(result.TransactionID) == "" {
		return domain.ErrInvalidResult
	}
	if !result.Status.Valid() {
		return domain.ErrInvalidResult
	}
	if result.Status == domain.StatusCompleted && !result.Amount.IsPositive() {
		return domain.ErrInvalidResult
	}
	return nil
}
