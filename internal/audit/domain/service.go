package domain

import (
	"context"
	"errors"
	"time"

	"github.com/stayhive/stayhive/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListRequest struct {
	pagination.Pagination
	Table     string
	RecordID  string
	Operation string
	ActorType string
	StartAt   *time.Time
	EndAt     *time.Time
}

type ListResponse struct {
	pagination.PageInfo
	Entries []Entry `json:"entries"`
}

// Service appends immutable audit entries. Record participates in the
// caller's transaction so a rolled-back mutation leaves no trace.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, op Operation, table, recordID string, oldValues, newValues map[string]any) error
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Purge(ctx context.Context, olderThan time.Time, batchSize int) (int64, error)
}

var (
	ErrInvalidTable     = errors.New("invalid_table")
	ErrInvalidRecordID  = errors.New("invalid_record_id")
	ErrInvalidOperation = errors.New("invalid_operation")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
)
