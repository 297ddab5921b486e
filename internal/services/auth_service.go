// internal/services/auth_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/payhub-backend/internal/config"
	"github.com/javajoker/payhub-backend/internal/errs"
	"github.com/javajoker/payhub-backend/internal/models"
	"github.com/javajoker/payhub-backend/internal/repository"
	"github.com/javajoker/payhub-backend/internal/utils"
)

type AuthService struct {
	repo repository.Repository
	cfg  *config.Config
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email     string      `json:"email" validate:"required,email"`
	Password  string      `json:"password" validate:"required,strong_password"`
	FirstName string      `json:"first_name,omitempty" validate:"max=100"`
	LastName  string      `json:"last_name,omitempty" validate:"max=100"`
	Role      models.Role `json:"role,omitempty" validate:"omitempty,oneof=freelancer client"`
	Subdomain string      `json:"subdomain,omitempty" validate:"omitempty,subdomain"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

func NewAuthService(repo repository.Repository, cfg *config.Config) *AuthService {
	return &AuthService{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, errs.Validation(err.Error())
	}

	role := req.Role
	if role == "" {
		role = models.RoleFreelancer
	}

	user := &models.User{
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Role:           role,
		IsActive:       true,
		CommissionRate: decimal.NewFromFloat(s.cfg.Payment.DefaultCommissionRate).Round(2),
		TotalEarnings:  decimal.Zero,
	}
	if req.Subdomain != "" {
		subdomain := strings.ToLower(req.Subdomain)
		user.Subdomain = &subdomain
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.Users().Create(ctx, user); err != nil {
		if errs.IsAlreadyExists(err) {
			return nil, errs.AlreadyExists("an account with this email or subdomain already exists")
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("User registered")

	return s.issueTokens(user)
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, errs.Validation(err.Error())
	}

	user, err := s.repo.Users().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.Unauthorized("invalid email or password")
		}
		return nil, err
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, errs.Unauthorized("invalid email or password")
	}
	if !user.IsActive {
		return nil, errs.Forbidden("account is disabled")
	}

	now := time.Now()
	if err := s.repo.Users().TouchLogin(ctx, user.ID, now); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to record login time")
	}
	user.LastLoginAt = &now

	return s.issueTokens(user)
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	userID, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errs.Unauthorized("invalid refresh token")
	}

	user, err := s.repo.Users().Get(ctx, userID)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.Unauthorized("invalid refresh token")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, errs.Forbidden("account is disabled")
	}

	return s.issueTokens(user)
}

func (s *AuthService) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.repo.Users().Get(ctx, userID)
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(user.ID, user.Email, string(user.Role), s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.cfg.JWT.AccessTokenTTL * 3600, // Convert hours to seconds
	}, nil
}
