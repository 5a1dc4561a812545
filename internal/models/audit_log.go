package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog captures signup and resource mutation events for later review.
type AuditLog struct {
	ID         uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorID    uint           `gorm:"not null;index" json:"actorId"`
	Action     string         `gorm:"size:100;not null" json:"action"`
	TargetType string         `gorm:"size:50;not null" json:"targetType"`
	TargetID   uint           `gorm:"not null" json:"targetId"`
	Metadata   datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"createdAt"`
}
