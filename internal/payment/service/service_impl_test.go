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
	availabilitydomain "github.com/stayhive/stayhive/internal/availability/domain"
	availabilityrepository "github.com/stayhive/stayhive/internal/availability/repository"
	availabilityservice "github.com/stayhive/stayhive/internal/availability/service"
	bookingdomain "github.com/stayhive/stayhive/internal/booking/domain"
	bookingrepository "github.com/stayhive/stayhive/internal/booking/repository"
	bookingservice "github.com/stayhive/stayhive/internal/booking/service"
	"github.com/stayhive/stayhive/internal/clock"
	commissiondomain "github.com/stayhive/stayhive/internal/commission/domain"
	commissionrepository "github.com/stayhive/stayhive/internal/commission/repository"
	commissionservice "github.com/stayhive/stayhive/internal/commission/service"
	"github.com/stayhive/stayhive/internal/config"
	hoteldomain "github.com/stayhive/stayhive/internal/hotel/domain"
	hotelrepository "github.com/stayhive/stayhive/internal/hotel/repository"
	"github.com/stayhive/stayhive/internal/payment/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stayhive/stayhive/internal/payment/domain"
)

type paymentEnv struct {
	db         *gorm.DB
	svc        domain.Service
	bookingSvc bookingdomain.Service
	ledger     availabilitydomain.Ledger
	node       *snowflake.Node
	hotel      *hoteldomain.Hotel
	room       *hoteldomain.Room
}

func setupPaymentService(t *testing.T) *paymentEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&hoteldomain.Hotel{},
		&hoteldomain.Room{},
		&bookingdomain.Booking{},
		&bookingdomain.StatusHistory{},
		&availabilitydomain.RoomAvailability{},
		&domain.Payment{},
		&commissiondomain.Commission{},
		&commissiondomain.Reversal{},
		&auditdomain.Entry{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	auditSvc := auditservice.NewService(auditservice.Params{
		DB: db, Log: log, GenID: node, Repo: auditrepository.Provide(),
	})
	ledger := availabilityservice.NewLedger(availabilityservice.Params{
		DB: db, Log: log, GenID: node, Repo: availabilityrepository.Provide(),
	})
	bookingSvc := bookingservice.NewService(bookingservice.Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Cfg:       config.Config{RateTolerance: decimal.NewFromFloat(0.01)},
		Clock:     clk,
		Repo:      bookingrepository.Provide(),
		HotelRepo: hotelrepository.Provide(),
		Ledger:    ledger,
		AuditSvc:  auditSvc,
	})
	commissionSvc := commissionservice.NewService(commissionservice.Params{
		Config: config.Config{
			CommissionRate:  decimal.NewFromFloat(0.05),
			PlatformFeeRate: decimal.NewFromFloat(0.02),
		},
		DB:       db,
		Log:      log,
		GenID:    node,
		Repo:     commissionrepository.Provide(),
		AuditSvc: auditSvc,
	})
	svc := NewService(Params{
		DB:            db,
		Log:           log,
		GenID:         node,
		Repo:          repository.Provide(),
		BookingSvc:    bookingSvc,
		CommissionSvc: commissionSvc,
		AuditSvc:      auditSvc,
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
	room := &hoteldomain.Room{
		ID:            node.Generate(),
		HotelID:       hotel.ID,
		RoomNumber:    "204",
		RoomType:      "double",
		Rate:          decimal.NewFromInt(150),
		MaxOccupancy:  4,
		TotalQuantity: 2,
		Active:        true,
	}
	require.NoError(t, db.Create(room).Error)

	return &paymentEnv{
		db:         db,
		svc:        svc,
		bookingSvc: bookingSvc,
		ledger:     ledger,
		node:       node,
		hotel:      hotel,
		room:       room,
	}
}

func (e *paymentEnv) createBooking(t *testing.T) *bookingdomain.Booking {
	t.Helper()
	checkIn := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	booking, err := e.bookingSvc.Create(context.Background(), bookingdomain.CreateRequest{
		HotelID:     e.hotel.ID,
		RoomID:      e.room.ID,
		GuestName:   "Ana Ferreira",
		GuestEmail:  "ana@example.com",
		CheckIn:     checkIn,
		CheckOut:    checkIn.AddDate(0, 0, 2),
		Adults:      2,
		TotalAmount: decimal.NewFromInt(300),
		Currency:    "USD",
	})
	require.NoError(t, err)
	return booking
}

func TestApplyResultCompleted(t *testing.T) {
	env := setupPaymentService(t)
	ctx := context.Background()
	booking := env.createBooking(t)

	payment, err := env.svc.ApplyResult(ctx, domain.GatewayResult{
		BookingID:     booking.ID,
		TransactionID: "txn-1001",
		Amount:        booking.TotalAmount,
		Currency:      "usd",
		Status:        domain.StatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, payment.Status)
	assert.Equal(t, "USD", payment.Currency)

	// One gateway success drives booking, ledger and commission together.
	reloaded, err := env.bookingSvc.Get(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, bookingdomain.StatusConfirmed, reloaded.Status)
	assert.Equal(t, bookingdomain.PaymentStatusPaid, reloaded.PaymentStatus)

	rows, err := env.ledger.ListForRoom(ctx, env.room.ID, booking.CheckIn, booking.CheckOut)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, 1, row.Booked)
	}

	var commission commissiondomain.Commission
	require.NoError(t, env.db.First(&commission, "booking_id = ?", booking.ID).Error)
	assert.True(t, commission.CommissionAmount.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, payment.ID, commission.PaymentID)
}

func TestApplyResultIdempotent(t *testing.T) {
	env := setupPaymentService(t)
	ctx := context.Background()
	booking := env.createBooking(t)

	result := domain.GatewayResult{
		BookingID:     booking.ID,
		TransactionID: "txn-2002",
		Amount:        booking.TotalAmount,
		Currency:      "USD",
		Status:        domain.StatusCompleted,
	}

	first, err := env.svc.ApplyResult(ctx, result)
	require.NoError(t, err)
	second, err := env.svc.ApplyResult(ctx, result)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var payments, commissions, history int64
	require.NoError(t, env.db.Model(&domain.Payment{}).Count(&payments).Error)
	require.NoError(t, env.db.Model(&commissiondomain.Commission{}).Count(&commissions).Error)
	require.NoError(t, env.db.Model(&bookingdomain.StatusHistory{}).Count(&history).Error)
	assert.Equal(t, int64(1), payments)
	assert.Equal(t, int64(1), commissions)
	assert.Equal(t, int64(1), history)
}

func TestApplyResultFailed(t *testing.T) {
	env := setupPaymentService(t)
	ctx := context.Background()
	booking := env.createBooking(t)

	payment, err := env.svc.ApplyResult(ctx, domain.GatewayResult{
		BookingID:     booking.ID,
		TransactionID: "txn-3003",
		Amount:        booking.TotalAmount,
		Currency:      "USD",
		Status:        domain.StatusFailed,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, payment.Status)

	reloaded, err := env.bookingSvc.Get(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, bookingdomain.StatusPaymentFailed, reloaded.Status)
	assert.Equal(t, bookingdomain.PaymentStatusFailed, reloaded.PaymentStatus)

	// No inventory moves on failure.
	rows, err := env.ledger.ListForRoom(ctx, env.room.ID, booking.CheckIn, booking.CheckOut)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestApplyResultAmountMismatch(t *testing.T) {
	env := setupPaymentService(t)
	booking := env.createBooking(t)

	_, err := env.svc.ApplyResult(context.Background(), domain.GatewayResult{
		BookingID:     booking.ID,
		TransactionID: "txn-4004",
		Amount:        decimal.NewFromInt(299),
		Currency:      "USD",
		Status:        domain.StatusCompleted,
	})
	assert.ErrorIs(t, err, domain.ErrAmountMismatch)

	// The mismatch leaves the booking untouched and records no payment.
	reloaded, err := env.bookingSvc.Get(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, bookingdomain.StatusPending, reloaded.Status)

	var count int64
	require.NoError(t, env.db.Model(&domain.Payment{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestApplyResultCurrencyMismatch(t *testing.T) {
	env := setupPaymentService(t)
	booking := env.createBooking(t)

	_, err := env.svc.ApplyResult(context.Background(), domain.GatewayResult{
		BookingID:     booking.ID,
		TransactionID: "txn-5005",
		Amount:        booking.TotalAmount,
		Currency:      "EUR",
		Status:        domain.StatusCompleted,
	})
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)
}

func TestApplyResultValidation(t *testing.T) {
	env := setupPaymentService(t)
	ctx := context.Background()

	_, err := env.svc.ApplyResult(ctx, domain.GatewayResult{
		TransactionID: "txn-6006",
		Status:        domain.StatusCompleted,
		Amount:        decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidResult)

	_, err = env.svc.ApplyResult(ctx, domain.GatewayResult{
		BookingID: env.node.Generate(),
		Status:    domain.StatusCompleted,
		Amount:    decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidResult)

	_, err = env.svc.ApplyResult(ctx, domain.GatewayResult{
		BookingID:     env.node.Generate(),
		TransactionID: "txn-7007",
		Status:        domain.Status("chargeback"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidResult)

	_, err = env.svc.ApplyResult(ctx, domain.GatewayResult{
		BookingID:     env.node.Generate(),
		TransactionID: "txn-8008",
		Status:        domain.StatusCompleted,
		Amount:        decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidResult)
}

func TestApplyResultUnknownBooking(t *testing.T) {
	env := setupPaymentService(t)

	_, err := env.svc.ApplyResult(context.Background(), domain.GatewayResult{
		BookingID:     env.node.Generate(),
		TransactionID: "txn-9009",
		Amount:        decimal.NewFromInt(100),
		Currency:      "USD",
		Status:        domain.StatusCompleted,
	})
	assert.ErrorIs(t, err, bookingdomain.ErrNotFound)
}

func TestGetByTransaction(t *testing.T) {
	env := setupPaymentService(t)
	booking := env.createBooking(t)

	created, err := env.svc.ApplyResult(context.Background(), domain.GatewayResult{
		BookingID:     booking.ID,
		TransactionID: "txn-lookup",
		Amount:        booking.TotalAmount,
		Currency:      "USD",
		Status:        domain.StatusCompleted,
	})
	require.NoError(t, err)

	found, err := env.svc.GetByTransaction(context.Background(), "txn-lookup")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}
