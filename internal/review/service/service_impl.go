package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/stayhive/stayhive/internal/audit/domain"
	hoteldomain "github.com/stayhive/stayhive/internal/hotel/domain"
	"github.com/stayhive/stayhive/internal/review/domain"
	searchdomain "github.com/stayhive/stayhive/internal/search/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	HotelRepo  hoteldomain.Repository
	AuditSvc   auditdomain.Service
	Maintainer searchdomain.Maintainer
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	hotelRepo  hoteldomain.Repository
	auditSvc   auditdomain.Service
	maintainer searchdomain.Maintainer
}

func NewService(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("review.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		hotelRepo:  p.HotelRepo,
		auditSvc:   p.AuditSvc,
		maintainer: p.Maintainer,
	}
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) (*domain.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, domain.ErrInvalidRating
	}

	review := &domain.Review{
		ID:        s.genID.Generate(),
		HotelID:   req.HotelID,
		BookingID: req.BookingID,
		GuestName: strings.TrimSpace(req.GuestName),
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
		Status:    domain.StatusPending,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.hotelRepo.FindHotel(ctx, tx, req.HotelID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return hoteldomain.ErrHotelNotFound
			}
			return err
		}
		if err := s.repo.Insert(ctx, tx, review); err != nil {
			return err
		}
		return s.auditSvc.Record(ctx, tx, auditdomain.OperationInsert,
			review.TableName(), review.ID.String(), nil, review.Snapshot())
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Review, error) {
	review, err := s.repo.Find(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

func (s *Service) Approve(ctx context.Context, id snowflake.ID) (*domain.Review, error) {
	return s.moderate(ctx, id, domain.StatusApproved)
}

func (s *Service) Reject(ctx context.Context, id snowflake.ID) (*domain.Review, error) {
	return s.moderate(ctx, id, domain.StatusRejected)
}

// moderate flips the review status and propagates the change through the
// hotel aggregates into the search index, all in one transaction.
func (s *Service) moderate(ctx context.Context, id snowflake.ID, next domain.Status) (*domain.Review, error) {
	var review *domain.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.repo.Find(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrReviewNotFound
			}
			return err
		}
		if found.Status == next {
			review = found
			return nil
		}

		before := found.Snapshot()
		found.Status = next
		if err := s.repo.Update(ctx, tx, found); err != nil {
			return err
		}
		if err := s.auditSvc.Record(ctx, tx, auditdomain.OperationUpdate,
			found.TableName(), found.ID.String(), before, found.Snapshot()); err != nil {
			return err
		}
		if err := s.propagate(ctx, tx, found.HotelID); err != nil {
			return err
		}
		review = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.repo.Find(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrReviewNotFound
			}
			return err
		}
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		if err := s.auditSvc.Record(ctx, tx, auditdomain.OperationDelete,
			found.TableName(), found.ID.String(), found.Snapshot(), nil); err != nil {
			return err
		}
		return s.propagate(ctx, tx, found.HotelID)
	})
}

// propagate recomputes the hotel's rating aggregates from approved reviews
// and rewrites its index entry so rating and quality score never diverge.
func (s *Service) propagate(ctx context.Context, tx *gorm.DB, hotelID snowflake.ID) error {
	agg, err := s.repo.AggregateForHotel(ctx, tx, hotelID)
	if err != nil {
		return err
	}
	rating := math.Round(agg.Rating*100) / 100

	if err := s.hotelRepo.UpdateRatingAggregates(ctx, tx, hotelID, rating, agg.ReviewCount); err != nil {
		return err
	}
	hotel, err := s.hotelRepo.FindHotel(ctx, tx, hotelID)
	if err != nil {
		return err
	}
	return s.maintainer.ReindexHotel(ctx, tx, hotel)
}
