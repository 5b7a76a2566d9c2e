package service

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stayhive/stayhive/internal/audit/domain"
	"github.com/stayhive/stayhive/internal/requestmeta"
	"github.com/stayhive/stayhive/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// volatileFields are stripped from update snapshots before the change check;
// an update touching only these produces no audit entry.
var volatileFields = map[string]struct{}{
	"updated_at": {},
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, tx *gorm.DB, op domain.Operation, table, recordID string, oldValues, newValues map[string]any) error {
	table = strings.TrimSpace(table)
	if table == "" {
		return domain.ErrInvalidTable
	}
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return domain.ErrInvalidRecordID
	}
	switch op {
	case domain.OperationInsert, domain.OperationUpdate, domain.OperationDelete:
	default:
		return domain.ErrInvalidOperation
	}

	oldSnapshot := stripVolatile(oldValues)
	newSnapshot := stripVolatile(newValues)
	if op == domain.OperationUpdate && reflect.DeepEqual(oldSnapshot, newSnapshot) {
		return nil
	}

	actorType, actorID := requestmeta.ActorFromContext(ctx)
	if actorType == "" {
		actorType = string(domain.ActorTypeSystem)
	}

	entry := &domain.Entry{
		ID:        s.genID.Generate(),
		Table:     table,
		RecordID:  recordID,
		Operation: op,
		OldValues: datatypes.JSONMap(oldSnapshot),
		NewValues: datatypes.JSONMap(newSnapshot),
		ActorType: actorType,
		CreatedAt: time.Now().UTC(),
	}
	if actorID != "" {
		entry.ActorID = &actorID
	}
	if ip := requestmeta.IPAddressFromContext(ctx); ip != "" {
		entry.IPAddress = &ip
	}
	if ua := requestmeta.UserAgentFromContext(ctx); ua != "" {
		entry.UserAgent = &ua
	}

	if tx == nil {
		tx = s.db
	}
	if err := s.repo.Insert(ctx, tx, entry); err != nil {
		s.log.Warn("failed to write audit entry",
			zap.String("table", table),
			zap.String("record_id", recordID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return domain.ListResponse{}, domain.ErrInvalidTimeRange
	}

	var cursor *domain.Cursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidPageToken
		}
		createdAt, err := time.Parse(time.RFC3339, decoded.CreatedAt)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
		if err != nil || id == 0 {
			return domain.ListResponse{}, domain.ErrInvalidPageToken
		}
		cursor = &domain.Cursor{ID: id, CreatedAt: createdAt}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 250 {
		pageSize = 250
	}

	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Table:     req.Table,
		RecordID:  req.RecordID,
		Operation: req.Operation,
		ActorType: req.ActorType,
		StartAt:   req.StartAt,
		EndAt:     req.EndAt,
		Cursor:    cursor,
		Limit:     pageSize,
	})
	if err != nil {
		return domain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(item *domain.Entry) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	entries := make([]domain.Entry, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		entries = append(entries, *item)
	}

	resp := domain.ListResponse{Entries: entries}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

// Purge deletes entries older than the retention cutoff in bounded batches.
func (s *Service) Purge(ctx context.Context, olderThan time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 500
	}

	var total int64
	for {
		deleted, err := s.repo.DeleteOlderThan(ctx, s.db, olderThan, batchSize)
		if err != nil {
			return total, err
		}
		total += deleted
		if deleted < int64(batchSize) {
			break
		}
		if err := ctx.Err(); err != nil {
			return total, err
		}
	}

	if total > 0 {
		s.log.Info("audit retention purge completed",
			zap.Int64("deleted", total),
			zap.Time("cutoff", olderThan),
		)
	}
	return total, nil
}

func stripVolatile(values map[string]any) map[string]any {
	if values == nil {
		return nil
	}
	out := make(map[string]any, len(values))
	for key, value := range values {
		if _, ok := volatileFields[key]; ok {
			continue
		}
		out[key] = value
	}
	return out
}
