package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrReviewNotFound = errors.New("review_not_found")
	ErrInvalidRating  = errors.New("invalid_rating")
	ErrInvalidStatus  = errors.New("invalid_status")
)

// SubmitRequest creates a pending review.
type SubmitRequest struct {
	HotelID   snowflake.ID  `json:"hotel_id"`
	BookingID *snowflake.ID `json:"booking_id,omitempty"`
	GuestName string        `json:"guest_name"`
	Rating    int           `json:"rating"`
	Comment   string        `json:"comment"`
}

// Service moderates reviews. Every status change recomputes the hotel's
// rating aggregates and its search index entry in the same transaction.
type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*Review, error)
	Get(ctx context.Context, id snowflake.ID) (*Review, error)
	Approve(ctx context.Context, id snowflake.ID) (*Review, error)
	Reject(ctx context.Context, id snowflake.ID) (*Review, error)
	Delete(ctx context.Context, id snowflake.ID) error
}
