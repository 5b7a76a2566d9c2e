package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	paymentdomain "github.com/stayhive/stayhive/internal/payment/domain"
)

type paymentResultRequest struct {
	BookingID     string          `json:"booking_id" binding:"required"`
	TransactionID string          `json:"transaction_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status" binding:"required"`
}

func (s *Server) ApplyPaymentResult(c *gin.Context) {
	var req paymentResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	bookingID, err := snowflake.ParseString(strings.TrimSpace(req.BookingID))
	if err != nil {
		AbortWithError(c, newValidationError("booking_id", "invalid_booking_id", "invalid booking_id"))
		return
	}

	applied, err := s.paymentSvc.ApplyResult(c.Request.Context(), paymentdomain.GatewayResult{
		BookingID:     bookingID,
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Status:        paymentdomain.Status(strings.ToLower(strings.TrimSpace(req.Status))),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": applied})
}
