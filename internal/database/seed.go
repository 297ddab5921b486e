// internal/database/seed.go
package database

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/payhub-backend/internal/config"
	"github.com/javajoker/payhub-backend/internal/models"
	"github.com/javajoker/payhub-backend/internal/repository"
	"github.com/javajoker/payhub-backend/internal/utils"
)

// SeedInitialData creates the platform administrator if none exists.
func SeedInitialData(ctx context.Context, repo repository.Repository, admin config.AdminConfig, defaultRate float64) error {
	logrus.Info("Seeding initial data...")

	role := models.RoleAdmin
	_, total, err := repo.Users().List(ctx, &role, utils.PaginationParams{Page: 1, Limit: 1})
	if err != nil {
		return fmt.Errorf("failed to look up admin user: %w", err)
	}
	if total > 0 {
		return nil
	}

	user := &models.User{
		Email:          admin.Email,
		FirstName:      "System",
		LastName:       "Administrator",
		Role:           models.RoleAdmin,
		IsActive:       true,
		IsVerified:     true,
		CommissionRate: decimal.NewFromFloat(defaultRate).Round(2),
		TotalEarnings:  decimal.Zero,
	}
	if err := user.SetPassword(admin.Password); err != nil {
		return fmt.Errorf("failed to set admin password: %w", err)
	}
	if err := repo.Users().Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logrus.WithField("email", admin.Email).Info("Default admin user created successfully")
	return nil
}
