// internal/models/file.go
package models

import (
	"github.com/google/uuid"
)

type File struct {
	BaseModel
	ProjectID     uuid.UUID `json:"project_id" gorm:"type:uuid;not null;index"`
	Filename      string    `json:"filename" gorm:"size:255;not null"`
	OriginalName  string    `json:"original_name" gorm:"size:255;not null"`
	FileType      FileType  `json:"file_type" gorm:"type:varchar(20);not null"`
	MimeType      string    `json:"mime_type" gorm:"size:100"`
	FileSize      int64     `json:"file_size" gorm:"not null"`
	FilePath      string    `json:"-" gorm:"type:text;not null"`
	PreviewPath   *string   `json:"-" gorm:"type:text"`
	ThumbnailPath *string   `json:"-" gorm:"type:text"`
	Duration      *int      `json:"duration,omitempty"`
	IsPreview     bool      `json:"is_preview" gorm:"default:false"`
	DownloadCount int       `json:"download_count" gorm:"default:0"`
	Metadata      JSONB     `json:"metadata,omitempty" gorm:"type:jsonb"`

	// HasPreview is filled in for API responses so clients know a rendition exists.
	HasPreview bool `json:"has_preview" gorm:"-"`
}

func (f *File) PreviewAvailable() bool {
	return f.PreviewPath != nil && *f.PreviewPath != ""
}
