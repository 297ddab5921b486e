// internal/models/analytics.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalyticsEvent is an append-only fact about a project. Rows are never updated.
type AnalyticsEvent struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProjectID uuid.UUID  `json:"project_id" gorm:"type:uuid;not null;index"`
	UserID    *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid"`
	Event     EventKind  `json:"event" gorm:"type:varchar(40);not null;index"`
	Metadata  JSONB      `json:"metadata,omitempty" gorm:"type:jsonb"`
	IPAddress string     `json:"ip_address,omitempty" gorm:"size:45"`
	UserAgent string     `json:"user_agent,omitempty" gorm:"type:text"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
}

func (AnalyticsEvent) TableName() string {
	return "analytics"
}
