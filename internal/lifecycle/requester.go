package lifecycle

import (
	"strings"

	"github.com/google/uuid"

	"github.com/javajoker/payhub-backend/internal/models"
)

// Requester identifies whoever is calling an operation. Authenticated users
// carry a UserID and Role; preview visitors carry only an Email and RoleGuest.
type Requester struct {
	UserID *uuid.UUID
	Role   models.Role
	Email  string
}

// Guest builds a requester for an unauthenticated preview visitor.
func Guest(email string) Requester {
	return Requester{Role: models.RoleGuest, Email: strings.TrimSpace(email)}
}

// Owns reports whether the requester is the freelancer who owns the project.
func (r Requester) Owns(p *models.Project) bool {
	if r.UserID == nil || p == nil {
		return false
	}
	switch r.Role {
	case models.RoleFreelancer, models.RoleSuperFreelancer:
		return *r.UserID == p.FreelancerID
	case models.RoleAdmin, models.RoleClient, models.RoleGuest:
		return false
	}
	return false
}

func (r Requester) IsAdmin() bool {
	switch r.Role {
	case models.RoleAdmin:
		return r.UserID != nil
	case models.RoleFreelancer, models.RoleSuperFreelancer, models.RoleClient, models.RoleGuest:
		return false
	}
	return false
}

// SenderType classifies the requester for project messages.
func (r Requester) SenderType(p *models.Project) (models.SenderType, bool) {
	if r.Owns(p) {
		return models.SenderTypeFreelancer, true
	}
	if p.IsClient(r.Email) {
		return models.SenderTypeClient, true
	}
	return "", false
}
