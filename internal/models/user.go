// internal/models/user.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Email           string          `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash    string          `json:"-" gorm:"size:255;not null"`
	FirstName       string          `json:"first_name" gorm:"size:100"`
	LastName        string          `json:"last_name" gorm:"size:100"`
	ProfileImageURL string          `json:"profile_image_url,omitempty" gorm:"size:500"`
	Role            Role            `json:"role" gorm:"type:varchar(20);not null;default:'freelancer'"`
	Subdomain       *string         `json:"subdomain,omitempty" gorm:"uniqueIndex;size:63"`
	IsActive        bool            `json:"is_active" gorm:"default:true"`
	IsVerified      bool            `json:"is_verified" gorm:"default:false"`
	CommissionRate  decimal.Decimal `json:"commission_rate" gorm:"type:decimal(5,2);not null;default:10.00"`
	TotalEarnings   decimal.Decimal `json:"total_earnings" gorm:"type:decimal(12,2);not null;default:0"`
	LastLoginAt     *time.Time      `json:"last_login_at"`

	// Relationships
	Projects []Project `json:"projects,omitempty" gorm:"foreignKey:FreelancerID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}
