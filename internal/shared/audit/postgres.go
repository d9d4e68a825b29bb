package audit

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSink appends entries to the audit_entries table. Workflow
// repositories write their entries transactionally themselves; this sink
// serves writers without a surrounding transaction, such as authorization
// denials.
type GormSink struct {
	db *gorm.DB
}

func NewGormSink(db *gorm.DB) *GormSink {
	return &GormSink{db: db}
}

func (s *GormSink) Append(ctx context.Context, entry Entry) error {
	row := entryModel{
		EntryID:     strings.TrimSpace(entry.EntryID),
		ActorID:     strings.TrimSpace(entry.ActorID),
		ActorRole:   strings.TrimSpace(entry.ActorRole),
		Action:      strings.TrimSpace(entry.Action),
		EntityType:  strings.TrimSpace(entry.EntityType),
		EntityID:    strings.TrimSpace(entry.EntityID),
		PriorStatus: entry.PriorStatus,
		NewStatus:   entry.NewStatus,
		Reason:      strings.TrimSpace(entry.Reason),
		OccurredAt:  entry.OccurredAt.UTC(),
	}
	if row.EntryID == "" {
		row.EntryID = uuid.NewString()
	}
	if row.OccurredAt.IsZero() {
		row.OccurredAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

type entryModel struct {
	EntryID     string    `gorm:"column:entry_id;primaryKey"`
	ActorID     string    `gorm:"column:actor_id"`
	ActorRole   string    `gorm:"column:actor_role"`
	Action      string    `gorm:"column:action"`
	EntityType  string    `gorm:"column:entity_type"`
	EntityID    string    `gorm:"column:entity_id"`
	PriorStatus string    `gorm:"column:prior_status"`
	NewStatus   string    `gorm:"column:new_status"`
	Reason      string    `gorm:"column:reason"`
	OccurredAt  time.Time `gorm:"column:occurred_at"`
}

func (entryModel) TableName() string {
	return "audit_entries"
}
