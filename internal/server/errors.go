package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/stayhive/stayhive/internal/audit/domain"
	availabilitydomain "github.com/stayhive/stayhive/internal/availability/domain"
	bookingdomain "github.com/stayhive/stayhive/internal/booking/domain"
	commissiondomain "github.com/stayhive/stayhive/internal/commission/domain"
	hoteldomain "github.com/stayhive/stayhive/internal/hotel/domain"
	paymentdomain "github.com/stayhive/stayhive/internal/payment/domain"
	reviewdomain "github.com/stayhive/stayhive/internal/review/domain"
	searchdomain "github.com/stayhive/stayhive/internal/search/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrRateLimited    = errors.New("rate_limited")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: strings.ReplaceAll(code, "_", " "),
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, searchdomain.ErrSearchUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "search_unavailable",
			Message: "search is temporarily unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, bookingdomain.ErrInvalidDates),
		errors.Is(err, bookingdomain.ErrCheckInPast),
		errors.Is(err, bookingdomain.ErrInvalidPartySize),
		errors.Is(err, bookingdomain.ErrOverCapacity),
		errors.Is(err, bookingdomain.ErrHotelInactive),
		errors.Is(err, bookingdomain.ErrInvalidAmount),
		errors.Is(err, bookingdomain.ErrAmountMismatch),
		errors.Is(err, bookingdomain.ErrInvalidTransition),
		errors.Is(err, bookingdomain.ErrCancelDeadlinePassed),
		errors.Is(err, hoteldomain.ErrInvalidName),
		errors.Is(err, hoteldomain.ErrInvalidLocation),
		errors.Is(err, hoteldomain.ErrInvalidStarRating),
		errors.Is(err, hoteldomain.ErrInvalidPriceRange),
		errors.Is(err, hoteldomain.ErrInvalidOccupancy),
		errors.Is(err, hoteldomain.ErrInvalidQuantity),
		errors.Is(err, hoteldomain.ErrInvalidRate),
		errors.Is(err, hoteldomain.ErrInvalidRoomNumber),
		errors.Is(err, reviewdomain.ErrInvalidRating),
		errors.Is(err, reviewdomain.ErrInvalidStatus),
		errors.Is(err, searchdomain.ErrInvalidQuery),
		errors.Is(err, paymentdomain.ErrInvalidResult),
		errors.Is(err, paymentdomain.ErrAmountMismatch),
		errors.Is(err, paymentdomain.ErrCurrencyMismatch),
		errors.Is(err, commissiondomain.ErrBookingNotPaid),
		errors.Is(err, commissiondomain.ErrNotEarned),
		errors.Is(err, auditdomain.ErrInvalidTable),
		errors.Is(err, auditdomain.ErrInvalidRecordID),
		errors.Is(err, auditdomain.ErrInvalidOperation),
		errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, auditdomain.ErrInvalidTimeRange):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, availabilitydomain.ErrNoAvailability),
		errors.Is(err, bookingdomain.ErrConfirmationExhausted),
		errors.Is(err, commissiondomain.ErrAlreadyReversed):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, bookingdomain.ErrNotFound),
		errors.Is(err, hoteldomain.ErrHotelNotFound),
		errors.Is(err, hoteldomain.ErrRoomNotFound),
		errors.Is(err, reviewdomain.ErrReviewNotFound),
		errors.Is(err, commissiondomain.ErrCommissionNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if field, ok := strings.CutPrefix(code, "invalid_"); ok {
		return field
	}
	return "request"
}
