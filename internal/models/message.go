// internal/models/message.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProjectID   uuid.UUID  `json:"project_id" gorm:"type:uuid;not null;index"`
	SenderType  SenderType `json:"sender_type" gorm:"type:varchar(20);not null"`
	SenderEmail string     `json:"sender_email" gorm:"size:255;not null"`
	SenderName  string     `json:"sender_name,omitempty" gorm:"size:255"`
	Content     string     `json:"content" gorm:"type:text;not null"`
	IsRead      bool       `json:"is_read" gorm:"default:false"`
	CreatedAt   time.Time  `json:"created_at"`
}
