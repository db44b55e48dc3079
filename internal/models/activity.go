package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is one audit entry for a roster or event change, such as a
// jury being added or the active event being reset.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    uint              `gorm:"not null" json:"actor_id"`
	ActorRole  string            `gorm:"size:32;not null;index" json:"actor_role"`
	Action     string            `gorm:"size:64;not null;index" json:"action"`
	EntityType string            `gorm:"size:32;not null;index:idx_activity_entity,priority:1" json:"entity_type"`
	EntityID   string            `gorm:"size:64;index:idx_activity_entity,priority:2" json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
}

// TableName pins the audit table name.
func (ActivityLog) TableName() string {
	return "activity_logs"
}
