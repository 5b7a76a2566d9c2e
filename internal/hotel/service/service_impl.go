package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/stayhive/stayhive/internal/audit/domain"
	"github.com/stayhive/stayhive/internal/hotel/domain"
	searchdomain "github.com/stayhive/stayhive/internal/search/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	AuditSvc   auditdomain.Service
	Maintainer searchdomain.Maintainer
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	auditSvc   auditdomain.Service
	maintainer searchdomain.Maintainer
}

func NewService(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("hotel.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		auditSvc:   p.AuditSvc,
		maintainer: p.Maintainer,
	}
}

func (s *Service) CreateHotel(ctx context.Context, req domain.CreateHotelRequest) (*domain.Hotel, error) {
	if err := validateHotelFields(req.Name, req.City, req.Country, req.StarRating, req.PriceMin, req.PriceMax); err != nil {
		return nil, err
	}

	hotel := &domain.Hotel{
		ID:          s.genID.Generate(),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Address:     strings.TrimSpace(req.Address),
		City:        strings.TrimSpace(req.City),
		Country:     strings.TrimSpace(req.Country),
		StarRating:  req.StarRating,
		Amenities:   datatypes.NewJSONSlice(normalizeAmenities(req.Amenities)),
		PriceMin:    req.PriceMin,
		PriceMax:    req.PriceMax,
		Featured:    req.Featured,
		Active:      true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertHotel(ctx, tx, hotel); err != nil {
			return err
		}
		if err := s.maintainer.ReindexHotel(ctx, tx, hotel); err != nil {
			return err
		}
		return s.auditSvc.Record(ctx, tx, auditdomain.OperationInsert, hotel.TableName(), hotel.ID.String(), nil, hotel.Snapshot())
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("hotel created", zap.String("hotel_id", hotel.ID.String()), zap.String("city", hotel.City))
	return hotel, nil
}

func (s *Service) UpdateHotel(ctx context.Context, id snowflake.ID, req domain.UpdateHotelRequest) (*domain.Hotel, error) {
	var updated *domain.Hotel

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hotel, err := s.repo.FindHotel(ctx, tx, id)
		if err != nil {
			return err
		}
		before := hotel.Snapshot()

		if req.Name != nil {
			hotel.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			hotel.Description = strings.TrimSpace(*req.Description)
		}
		if req.Address != nil {
			hotel.Address = strings.TrimSpace(*req.Address)
		}
		if req.City != nil {
			hotel.City = strings.TrimSpace(*req.City)
		}
		if req.Country != nil {
			hotel.Country = strings.TrimSpace(*req.Country)
		}
		if req.StarRating != nil {
			hotel.StarRating = *req.StarRating
		}
		if req.Amenities != nil {
			hotel.Amenities = datatypes.NewJSONSlice(normalizeAmenities(*req.Amenities))
		}
		if req.PriceMin != nil {
			hotel.PriceMin = *req.PriceMin
		}
		if req.PriceMax != nil {
			hotel.PriceMax = *req.PriceMax
		}
		if req.Featured != nil {
			hotel.Featured = *req.Featured
		}
		if req.Active != nil {
			hotel.Active = *req.Active
		}

		if err := validateHotelFields(hotel.Name, hotel.City, hotel.Country, hotel.StarRating, hotel.PriceMin, hotel.PriceMax); err != nil {
			return err
		}

		if err := s.repo.UpdateHotel(ctx, tx, hotel); err != nil {
			return err
		}
		if err := s.maintainer.ReindexHotel(ctx, tx, hotel); err != nil {
			return err
		}
		if err := s.auditSvc.Record(ctx, tx, auditdomain.OperationUpdate, hotel.TableName(), hotel.ID.String(), before, hotel.Snapshot()); err != nil {
			return err
		}
		updated = hotel
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) GetHotel(ctx context.Context, id snowflake.ID) (*domain.Hotel, error) {
	return s.repo.FindHotel(ctx, s.db, id)
}

func (s *Service) CreateRoom(ctx context.Context, req domain.CreateRoomRequest) (*domain.Room, error) {
	if strings.TrimSpace(req.RoomNumber) == "" {
		return nil, domain.ErrInvalidRoomNumber
	}
	if !req.Rate.IsPositive() {
		return nil, domain.ErrInvalidRate
	}
	if req.MaxOccupancy < 1 {
		return nil, domain.ErrInvalidOccupancy
	}
	if req.TotalQuantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	room := &domain.Room{
		ID:            s.genID.Generate(),
		HotelID:       req.HotelID,
		RoomNumber:    strings.TrimSpace(req.RoomNumber),
		RoomType:      strings.TrimSpace(req.RoomType),
		Rate:          req.Rate,
		MaxOccupancy:  req.MaxOccupancy,
		TotalQuantity: req.TotalQuantity,
		Active:        true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.repo.FindHotel(ctx, tx, req.HotelID); err != nil {
			return err
		}
		if err := s.repo.InsertRoom(ctx, tx, room); err != nil {
			return err
		}
		return s.auditSvc.Record(ctx, tx, auditdomain.OperationInsert, room.TableName(), room.ID.String(), nil, room.Snapshot())
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (s *Service) GetRoom(ctx context.Context, id snowflake.ID) (*domain.Room, error) {
	return s.repo.FindRoom(ctx, s.db, id)
}

func validateHotelFields(name, city, country string, stars int, priceMin, priceMax decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return domain.ErrInvalidName
	}
	if strings.TrimSpace(city) == "" || strings.TrimSpace(country) == "" {
		return domain.ErrInvalidLocation
	}
	if stars < 1 || stars > 5 {
		return domain.ErrInvalidStarRating
	}
	if priceMin.IsNegative() || priceMax.LessThan(priceMin) {
		return domain.ErrInvalidPriceRange
	}
	return nil
}

func normalizeAmenities(amenities []string) []string {
	out := make([]string, 0, len(amenities))
	seen := map[string]struct{}{}
	for _, amenity := range amenities {
		normalized := strings.ToLower(strings.TrimSpace(amenity))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
