package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateRequest struct {
	HotelID    snowflake.ID    `json:"hotel_id"`
	RoomID     snowflake.ID    `json:"room_id"`
	UserID     *snowflake.ID   `json:"user_id,omitempty"`
	GuestName  string          `json:"guest_name"`
	GuestEmail string          `json:"guest_email"`
	GuestPhone string          `json:"guest_phone"`
	CheckIn    time.Time       `json:"check_in"`
	CheckOut   time.Time       `json:"check_out"`
	Adults     int             `json:"adults"`
	Children   int             `json:"children"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency   string          `json:"currency"`
}

// Service is the booking state machine. Every mutation validates invariants
// and commits the booking row, ledger adjustment, status history, and audit
// entry as one atomic unit.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	Get(ctx context.Context, id snowflake.ID) (*Booking, error)
	GetByConfirmation(ctx context.Context, confirmationNumber string) (*Booking, error)
	Confirm(ctx context.Context, id snowflake.ID) (*Booking, error)
	Cancel(ctx context.Context, id snowflake.ID, reason string) (*Booking, error)
	Transition(ctx context.Context, id snowflake.ID, next Status, reason string) (*Booking, error)
	// TransitionTx runs one transition inside an existing transaction so
	// collaborators (payment intake) can compose larger atomic units.
	TransitionTx(ctx context.Context, tx *gorm.DB, id snowflake.ID, next Status, reason string) (*Booking, error)
	MarkPaid(ctx context.Context, tx *gorm.DB, id snowflake.ID) error
	// Purge hard-deletes a booking and reverses any ledger effects. Admin only.
	Purge(ctx context.Context, id snowflake.ID) error
	History(ctx context.Context, id snowflake.ID) ([]StatusHistory, error)
}

var (
	ErrNotFound             = errors.New("booking_not_found")
	ErrInvalidDates         = errors.New("invalid_dates")
	ErrCheckInPast          = errors.New("check_in_past")
	ErrInvalidPartySize     = errors.New("invalid_party_size")
	ErrOverCapacity         = errors.New("over_capacity")
	ErrHotelInactive        = errors.New("hotel_inactive")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrAmountMismatch       = errors.New("amount_mismatch")
	ErrInvalidTransition    = errors.New("invalid_transition")
	ErrCancelDeadlinePassed = errors.New("cancellation_deadline_passed")
	ErrConfirmationExhausted = errors.New("confirmation_number_exhausted")
)

// MaxPartySize caps adults plus children on one booking.
const MaxPartySize = 10
