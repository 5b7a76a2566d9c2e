package repository

import (
	"context"
	"strings"
	"time"

	"github.com/stayhive/stayhive/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.Entry) error {
	if entry == nil {
		return nil
	}
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Entry, error) {
	var entries []*domain.Entry
	stmt := db.WithContext(ctx).Model(&domain.Entry{})

	if table := strings.TrimSpace(filter.Table); table != "" {
		stmt = stmt.Where("table_name = ?", table)
	}
	if recordID := strings.TrimSpace(filter.RecordID); recordID != "" {
		stmt = stmt.Where("record_id = ?", recordID)
	}
	if operation := strings.TrimSpace(filter.Operation); operation != "" {
		stmt = stmt.Where("operation = ?", operation)
	}
	if actorType := strings.TrimSpace(filter.ActorType); actorType != "" {
		stmt = stmt.Where("actor_type = ?", actorType)
	}
	if filter.StartAt != nil {
		stmt = stmt.Where("created_at >= ?", filter.StartAt.UTC())
	}
	if filter.EndAt != nil {
		stmt = stmt.Where("created_at <= ?", filter.EndAt.UTC())
	}
	if filter.Cursor != nil {
		stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt,
			filter.Cursor.CreatedAt,
			filter.Cursor.ID,
		)
	}

	stmt = stmt.Order("created_at desc, id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}

	if err := stmt.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteOlderThan removes at most limit expired entries per call so retention
// never holds long locks. The nested derived table keeps MySQL happy about
// deleting from the table it selects from.
func (r *repo) DeleteOlderThan(ctx context.Context, db *gorm.DB, cutoff time.Time, limit int) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`DELETE FROM audit_logs WHERE id IN (
			SELECT id FROM (
				SELECT id FROM audit_logs WHERE created_at < ? ORDER BY created_at ASC LIMIT ?
			) AS purge_batch
		)`,
		cutoff.UTC(),
		limit,
	)
	return res.RowsAffected, res.Error
}
