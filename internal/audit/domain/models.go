package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Operation classifies the mutation an audit entry records.
type Operation string

const (
	OperationInsert Operation = "insert"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// ActorType identifies who performed a mutation.
type ActorType string

const (
	ActorTypeGuest  ActorType = "guest"
	ActorTypeUser   ActorType = "user"
	ActorTypeAdmin  ActorType = "admin"
	ActorTypeSystem ActorType = "system"
)

// Entry is an immutable record of one mutation to a tracked entity.
type Entry struct {
	ID        snowflake.ID       `gorm:"primaryKey" json:"id"`
	Table     string             `gorm:"column:table_name;type:text;not null;index" json:"table_name"`
	RecordID  string             `gorm:"type:text;not null;index" json:"record_id"`
	Operation Operation          `gorm:"type:text;not null" json:"operation"`
	OldValues datatypes.JSONMap  `json:"old_values"`
	NewValues datatypes.JSONMap  `json:"new_values"`
	ActorType string             `gorm:"type:text;not null" json:"actor_type"`
	ActorID   *string            `gorm:"type:text" json:"actor_id"`
	IPAddress *string            `gorm:"type:text" json:"ip_address"`
	UserAgent *string            `gorm:"type:text" json:"user_agent"`
	CreatedAt time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

// TableName sets the database table name.
func (Entry) TableName() string { return "audit_logs" }
