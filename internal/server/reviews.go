package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	reviewdomain "github.com/stayhive/stayhive/internal/review/domain"
)

type submitReviewRequest struct {
	HotelID   string `json:"hotel_id" binding:"required"`
	BookingID string `json:"booking_id"`
	GuestName string `json:"guest_name" binding:"required"`
	Rating    int    `json:"rating" binding:"required"`
	Comment   string `json:"comment"`
}

func (s *Server) SubmitReview(c *gin.Context) {
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	hotelID, err := snowflake.ParseString(strings.TrimSpace(req.HotelID))
	if err != nil {
		AbortWithError(c, newValidationError("hotel_id", "invalid_hotel_id", "invalid hotel_id"))
		return
	}
	var bookingID *snowflake.ID
	if trimmed := strings.TrimSpace(req.BookingID); trimmed != "" {
		parsed, err := snowflake.ParseString(trimmed)
		if err != nil {
			AbortWithError(c, newValidationError("booking_id", "invalid_booking_id", "invalid booking_id"))
			return
		}
		bookingID = &parsed
	}

	review, err := s.reviewSvc.Submit(c.Request.Context(), reviewdomain.SubmitRequest{
		HotelID:   hotelID,
		BookingID: bookingID,
		GuestName: req.GuestName,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": review})
}

func (s *Server) GetReview(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	review, err := s.reviewSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": review})
}

func (s *Server) ApproveReview(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	review, err := s.reviewSvc.Approve(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": review})
}

func (s *Server) RejectReview(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	review, err := s.reviewSvc.Reject(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": review})
}

func (s *Server) DeleteReview(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.reviewSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
