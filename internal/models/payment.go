// internal/models/payment.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Payment struct {
	BaseModel
	ProjectID         uuid.UUID       `json:"project_id" gorm:"type:uuid;not null;index"`
	FreelancerID      uuid.UUID       `json:"freelancer_id" gorm:"type:uuid;not null;index"`
	Amount            decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Commission        decimal.Decimal `json:"commission" gorm:"type:decimal(10,2);not null"`
	NetAmount         decimal.Decimal `json:"net_amount" gorm:"type:decimal(10,2);not null"`
	CommissionRate    decimal.Decimal `json:"commission_rate" gorm:"type:decimal(5,2);not null"`
	ProviderReference string          `json:"provider_reference" gorm:"size:255;not null;uniqueIndex"`
	Status            PaymentStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ClientEmail       string          `json:"client_email" gorm:"size:255;not null"`
	Metadata          JSONB           `json:"metadata,omitempty" gorm:"type:jsonb"`
}
