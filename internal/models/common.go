// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleFreelancer      Role = "freelancer"
	RoleSuperFreelancer Role = "superfreelancer"
	RoleClient          Role = "client"
	// RoleGuest is a preview visitor identified only by the email they typed in.
	RoleGuest Role = "guest"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleFreelancer, RoleSuperFreelancer, RoleClient, RoleGuest:
		return true
	}
	return false
}

// IsFreelancer reports whether the role may own projects.
func (r Role) IsFreelancer() bool {
	switch r {
	case RoleFreelancer, RoleSuperFreelancer:
		return true
	case RoleAdmin, RoleClient, RoleGuest:
		return false
	}
	return false
}

type ProjectStatus string

const (
	ProjectStatusDraft     ProjectStatus = "draft"
	ProjectStatusPreview   ProjectStatus = "preview"
	ProjectStatusApproved  ProjectStatus = "approved"
	ProjectStatusPaid      ProjectStatus = "paid"
	ProjectStatusDelivered ProjectStatus = "delivered"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusPreview, ProjectStatusApproved,
		ProjectStatusPaid, ProjectStatusDelivered, ProjectStatusCancelled:
		return true
	}
	return false
}

type FileType string

const (
	FileTypeVideo FileType = "video"
	FileTypeAudio FileType = "audio"
	FileTypeImage FileType = "image"
	FileTypePDF   FileType = "pdf"
	FileTypeOther FileType = "other"
)

// FileTypeFromMime maps a MIME type onto the coarse file type used for preview rules.
func FileTypeFromMime(mime string) FileType {
	switch {
	case mime == "application/pdf":
		return FileTypePDF
	case len(mime) >= 6 && mime[:6] == "video/":
		return FileTypeVideo
	case len(mime) >= 6 && mime[:6] == "audio/":
		return FileTypeAudio
	case len(mime) >= 6 && mime[:6] == "image/":
		return FileTypeImage
	default:
		return FileTypeOther
	}
}

// TimeBased reports whether files of this type carry a playback timeline.
func (t FileType) TimeBased() bool {
	return t == FileTypeVideo || t == FileTypeAudio
}

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusSucceeded  PaymentStatus = "succeeded"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

type EventKind string

const (
	EventView                EventKind = "view"
	EventPlay                EventKind = "play"
	EventPause               EventKind = "pause"
	EventComment             EventKind = "comment"
	EventApprove             EventKind = "approve"
	EventPaymentSucceeded    EventKind = "payment_succeeded"
	EventPreviewLimitReached EventKind = "preview_limit_reached"
	EventStatusChange        EventKind = "status_change"
)

func (k EventKind) Valid() bool {
	switch k {
	case EventView, EventPlay, EventPause, EventComment, EventApprove,
		EventPaymentSucceeded, EventPreviewLimitReached, EventStatusChange:
		return true
	}
	return false
}

// ViewerReportable lists the kinds an unauthenticated preview viewer may submit.
func (k EventKind) ViewerReportable() bool {
	return k == EventView || k == EventPlay || k == EventPause
}

type SenderType string

const (
	SenderTypeFreelancer SenderType = "freelancer"
	SenderTypeClient     SenderType = "client"
)
