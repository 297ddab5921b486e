// internal/models/project.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Project struct {
	BaseModel
	FreelancerID    uuid.UUID       `json:"freelancer_id" gorm:"type:uuid;not null;index"`
	Title           string          `json:"title" gorm:"size:255;not null"`
	Description     string          `json:"description,omitempty" gorm:"type:text"`
	ClientEmail     string          `json:"client_email" gorm:"size:255;not null;index"`
	ClientName      string          `json:"client_name,omitempty" gorm:"size:255"`
	Status          ProjectStatus   `json:"status" gorm:"type:varchar(20);not null;default:'draft';index"`
	Price           decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	CommissionRate  decimal.Decimal `json:"commission_rate" gorm:"type:decimal(5,2);not null"`
	Tags            pq.StringArray  `json:"tags" gorm:"type:text[]"`
	Deadline        *time.Time      `json:"deadline,omitempty"`
	PreviewSettings PreviewSettings `json:"preview_settings" gorm:"type:jsonb"`
	PaymentIntentID *string         `json:"payment_intent_id,omitempty" gorm:"size:255"`
	DeliveryEmail   string          `json:"delivery_email,omitempty" gorm:"size:255"`

	// Relationships
	Freelancer *User     `json:"freelancer,omitempty" gorm:"foreignKey:FreelancerID"`
	Files      []File    `json:"files,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Payments   []Payment `json:"payments,omitempty" gorm:"foreignKey:ProjectID"`
}

// PreviewSettings configures how a project is shown before payment.
type PreviewSettings struct {
	Watermark     bool `json:"watermark"`
	TimeLimit     *int `json:"time_limit,omitempty"`
	DownloadLimit *int `json:"download_limit,omitempty"`
}

func (p PreviewSettings) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *PreviewSettings) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case nil:
		*p = PreviewSettings{}
		return nil
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	return json.Unmarshal(bytes, p)
}

// PaymentAttempted reports whether checkout has been started, after which
// price and commission rate are frozen.
func (p *Project) PaymentAttempted() bool {
	return p.PaymentIntentID != nil && *p.PaymentIntentID != ""
}

// IsClient compares an email against the project's client email, ignoring case
// and surrounding whitespace.
func (p *Project) IsClient(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	return strings.EqualFold(email, strings.TrimSpace(p.ClientEmail))
}
