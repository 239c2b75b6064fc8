package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog is the durable compliance record for authorization events,
// denials, and emergency-access overrides.
type AuditLog struct {
	ID           string         `gorm:"primaryKey;type:uuid" json:"id"`
	EventType    string         `gorm:"not null;index" json:"event_type"`
	Category     AuditCategory  `gorm:"not null;index" json:"category"`
	Action       string         `gorm:"not null" json:"action"`
	ResourceType string         `gorm:"index" json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	ActorID      *uint          `gorm:"index" json:"actor_id,omitempty"`
	OldValue     datatypes.JSON `json:"old_value,omitempty"`
	NewValue     datatypes.JSON `json:"new_value,omitempty"`
	Success      bool           `gorm:"not null" json:"success"`
	Reason       string         `json:"reason,omitempty"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
