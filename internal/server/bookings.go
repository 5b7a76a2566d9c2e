package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	bookingdomain "github.com/stayhive/stayhive/internal/booking/domain"
)

type createBookingRequest struct {
	HotelID     string          `json:"hotel_id" binding:"required"`
	RoomID      string          `json:"room_id" binding:"required"`
	UserID      string          `json:"user_id"`
	GuestName   string          `json:"guest_name" binding:"required"`
	GuestEmail  string          `json:"guest_email" binding:"required"`
	GuestPhone  string          `json:"guest_phone"`
	CheckIn     string          `json:"check_in" binding:"required"`
	CheckOut    string          `json:"check_out" binding:"required"`
	Adults      int             `json:"adults"`
	Children    int             `json:"children"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
}

func (s *Server) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	hotelID, err := snowflake.ParseString(strings.TrimSpace(req.HotelID))
	if err != nil {
		AbortWithError(c, newValidationError("hotel_id", "invalid_hotel_id", "invalid hotel_id"))
		return
	}
	roomID, err := snowflake.ParseString(strings.TrimSpace(req.RoomID))
	if err != nil {
		AbortWithError(c, newValidationError("room_id", "invalid_room_id", "invalid room_id"))
		return
	}
	var userID *snowflake.ID
	if trimmed := strings.TrimSpace(req.UserID); trimmed != "" {
		parsed, err := snowflake.ParseString(trimmed)
		if err != nil {
			AbortWithError(c, newValidationError("user_id", "invalid_user_id", "invalid user_id"))
			return
		}
		userID = &parsed
	}
	checkIn, err := parseDate("check_in", req.CheckIn)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	checkOut, err := parseDate("check_out", req.CheckOut)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	booking, err := s.bookingSvc.Create(c.Request.Context(), bookingdomain.CreateRequest{
		HotelID:     hotelID,
		RoomID:      roomID,
		UserID:      userID,
		GuestName:   req.GuestName,
		GuestEmail:  req.GuestEmail,
		GuestPhone:  req.GuestPhone,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Adults:      req.Adults,
		Children:    req.Children,
		TotalAmount: req.TotalAmount,
		Currency:    req.Currency,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": booking})
}

func (s *Server) GetBooking(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	booking, err := s.bookingSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": booking})
}

func (s *Server) GetBookingByConfirmation(c *gin.Context) {
	number := strings.TrimSpace(c.Param("number"))
	if number == "" {
		AbortWithError(c, newValidationError("number", "invalid_number", "missing confirmation number"))
		return
	}

	booking, err := s.bookingSvc.GetByConfirmation(c.Request.Context(), number)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": booking})
}

func (s *Server) ConfirmBooking(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	booking, err := s.bookingSvc.Confirm(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": booking})
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) CancelBooking(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req cancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	booking, err := s.bookingSvc.Cancel(c.Request.Context(), id, strings.TrimSpace(req.Reason))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": booking})
}

func (s *Server) GetBookingHistory(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	history, err := s.bookingSvc.History(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": history})
}

func (s *Server) PurgeBooking(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.bookingSvc.Purge(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
