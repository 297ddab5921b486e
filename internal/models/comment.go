// internal/models/comment.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID          uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProjectID   uuid.UUID        `json:"project_id" gorm:"type:uuid;not null;index"`
	FileID      *uuid.UUID       `json:"file_id,omitempty" gorm:"type:uuid;index"`
	AuthorEmail string           `json:"author_email" gorm:"size:255;not null"`
	AuthorName  string           `json:"author_name,omitempty" gorm:"size:255"`
	Content     string           `json:"content" gorm:"type:text;not null"`
	Timestamp   *int             `json:"timestamp,omitempty"`
	Position    *CommentPosition `json:"position,omitempty" gorm:"type:jsonb"`
	IsResolved  bool             `json:"is_resolved" gorm:"default:false"`
	ParentID    *uuid.UUID       `json:"parent_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt   time.Time        `json:"created_at"`

	Replies []Comment `json:"replies,omitempty" gorm:"-"`
}

// CommentPosition anchors a comment spatially on an image or a PDF page.
type CommentPosition struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Page *int    `json:"page,omitempty"`
}

func (p CommentPosition) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *CommentPosition) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	return json.Unmarshal(bytes, p)
}

func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}
