package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	hoteldomain "github.com/stayhive/stayhive/internal/hotel/domain"
)

func (s *Server) CreateHotel(c *gin.Context) {
	var req hoteldomain.CreateHotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	created, err := s.hotelSvc.CreateHotel(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": created})
}

func (s *Server) UpdateHotel(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req hoteldomain.UpdateHotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.hotelSvc.UpdateHotel(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (s *Server) GetHotel(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	found, err := s.hotelSvc.GetHotel(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": found})
}

func (s *Server) CreateRoom(c *gin.Context) {
	hotelID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req hoteldomain.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.HotelID = hotelID

	created, err := s.hotelSvc.CreateRoom(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": created})
}
