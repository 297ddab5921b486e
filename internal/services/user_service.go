// internal/services/user_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/javajoker/payhub-backend/internal/errs"
	"github.com/javajoker/payhub-backend/internal/models"
	"github.com/javajoker/payhub-backend/internal/repository"
	"github.com/javajoker/payhub-backend/internal/utils"
)

type UserService struct {
	repo repository.Repository
}

type UpdateUserProfileRequest struct {
	FirstName       *string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName        *string `json:"last_name,omitempty" validate:"omitempty,max=100"`
	ProfileImageURL *string `json:"profile_image_url,omitempty" validate:"omitempty,url,max=500"`
	// An empty subdomain clears it.
	Subdomain *string `json:"subdomain,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,strong_password"`
}

// Storefront is the public page of a freelancer reached through their subdomain.
type Storefront struct {
	ID              uuid.UUID `json:"id"`
	DisplayName     string    `json:"display_name"`
	FirstName       string    `json:"first_name,omitempty"`
	LastName        string    `json:"last_name,omitempty"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	Subdomain       string    `json:"subdomain"`
}

func NewUserService(repo repository.Repository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.repo.Users().Get(ctx, userID)
}

func (s *UserService) GetStorefront(ctx context.Context, subdomain string) (*Storefront, error) {
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	if !utils.IsValidSubdomain(subdomain) {
		return nil, errs.NotFound("storefront")
	}

	user, err := s.repo.Users().GetBySubdomain(ctx, subdomain)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.NotFound("storefront")
		}
		return nil, err
	}
	if !user.Role.IsFreelancer() {
		return nil, errs.NotFound("storefront")
	}

	return &Storefront{
		ID:              user.ID,
		DisplayName:     user.DisplayName(),
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		ProfileImageURL: user.ProfileImageURL,
		Subdomain:       *user.Subdomain,
	}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateUserProfileRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, errs.Validation(err.Error())
	}

	changes := repository.UserChanges{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		ProfileImageURL: req.ProfileImageURL,
	}
	if req.Subdomain != nil {
		subdomain := strings.ToLower(strings.TrimSpace(*req.Subdomain))
		if subdomain != "" && !utils.IsValidSubdomain(subdomain) {
			return nil, errs.Validation("subdomain must be 3-63 lowercase letters, digits or hyphens and not reserved")
		}
		changes.Subdomain = &subdomain
	}

	user, err := s.repo.Users().Update(ctx, userID, changes)
	if errs.IsAlreadyExists(err) {
		return nil, errs.AlreadyExists("subdomain is already taken")
	}
	return user, err
}

func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return errs.Validation(err.Error())
	}

	user, err := s.repo.Users().Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.CheckPassword(req.CurrentPassword); err != nil {
		return errs.Unauthorized("current password is incorrect")
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = s.repo.Users().Update(ctx, userID, repository.UserChanges{PasswordHash: &user.PasswordHash})
	return err
}
