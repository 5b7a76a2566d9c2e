package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type CreateHotelRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Address     string          `json:"address"`
	City        string          `json:"city"`
	Country     string          `json:"country"`
	StarRating  int             `json:"star_rating"`
	Amenities   []string        `json:"amenities"`
	PriceMin    decimal.Decimal `json:"price_min"`
	PriceMax    decimal.Decimal `json:"price_max"`
	Featured    bool            `json:"featured"`
}

type UpdateHotelRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Address     *string          `json:"address"`
	City        *string          `json:"city"`
	Country     *string          `json:"country"`
	StarRating  *int             `json:"star_rating"`
	Amenities   *[]string        `json:"amenities"`
	PriceMin    *decimal.Decimal `json:"price_min"`
	PriceMax    *decimal.Decimal `json:"price_max"`
	Featured    *bool            `json:"featured"`
	Active      *bool            `json:"active"`
}

type CreateRoomRequest struct {
	HotelID       snowflake.ID    `json:"hotel_id"`
	RoomNumber    string          `json:"room_number"`
	RoomType      string          `json:"room_type"`
	Rate          decimal.Decimal `json:"rate"`
	MaxOccupancy  int             `json:"max_occupancy"`
	TotalQuantity int             `json:"total_quantity"`
}

type Service interface {
	CreateHotel(ctx context.Context, req CreateHotelRequest) (*Hotel, error)
	UpdateHotel(ctx context.Context, id snowflake.ID, req UpdateHotelRequest) (*Hotel, error)
	GetHotel(ctx context.Context, id snowflake.ID) (*Hotel, error)
	CreateRoom(ctx context.Context, req CreateRoomRequest) (*Room, error)
	GetRoom(ctx context.Context, id snowflake.ID) (*Room, error)
}

var (
	ErrHotelNotFound      = errors.New("hotel_not_found")
	ErrRoomNotFound       = errors.New("room_not_found")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidLocation    = errors.New("invalid_location")
	ErrInvalidStarRating  = errors.New("invalid_star_rating")
	ErrInvalidPriceRange  = errors.New("invalid_price_range")
	ErrInvalidOccupancy   = errors.New("invalid_occupancy")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
	ErrInvalidRate        = errors.New("invalid_rate")
	ErrInvalidRoomNumber  = errors.New("invalid_room_number")
)
