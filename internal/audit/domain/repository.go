package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Cursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type ListFilter struct {
	Table     string
	RecordID  string
	Operation string
	ActorType string
	StartAt   *time.Time
	EndAt     *time.Time
	Cursor    *Cursor
	Limit     int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *Entry) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Entry, error)
	DeleteOlderThan(ctx context.Context, db *gorm.DB, cutoff time.Time, limit int) (int64, error)
}
