// internal/services/admin_service.go
package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/javajoker/payhub-backend/internal/errs"
	"github.com/javajoker/payhub-backend/internal/lifecycle"
	"github.com/javajoker/payhub-backend/internal/models"
	"github.com/javajoker/payhub-backend/internal/repository"
	"github.com/javajoker/payhub-backend/internal/utils"
)

type AdminService struct {
	repo repository.Repository
}

type AdminDashboardStats struct {
	TotalUsers        int64                          `json:"total_users"`
	TotalProjects     int64                          `json:"total_projects"`
	ProjectsByStatus  map[models.ProjectStatus]int64 `json:"projects_by_status"`
	SucceededPayments int64                          `json:"succeeded_payments"`
	TotalRevenue      decimal.Decimal                `json:"total_revenue"`
	CommissionEarned  decimal.Decimal                `json:"commission_earned"`
	FreelancerPayouts decimal.Decimal                `json:"freelancer_payouts"`
}

type AdminUserFilter struct {
	utils.PaginationParams
	Role *models.Role `json:"role,omitempty"`
}

type UpdateUserRoleRequest struct {
	Role models.Role `json:"role" validate:"required,oneof=admin freelancer superfreelancer client"`
}

type UpdateCommissionRequest struct {
	CommissionRate decimal.Decimal `json:"commission_rate"`
}

type UpdateUserStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

var dashboardStatuses = []models.ProjectStatus{
	models.ProjectStatusDraft,
	models.ProjectStatusPreview,
	models.ProjectStatusApproved,
	models.ProjectStatusPaid,
	models.ProjectStatusDelivered,
	models.ProjectStatusCancelled,
}

func NewAdminService(repo repository.Repository) *AdminService {
	return &AdminService{repo: repo}
}

// GetDashboardStats gathers platform totals concurrently.
func (s *AdminService) GetDashboardStats(ctx context.Context) (*AdminDashboardStats, error) {
	stats := &AdminDashboardStats{ProjectsByStatus: make(map[models.ProjectStatus]int64, len(dashboardStatuses))}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := s.repo.Users().Count(gctx)
		stats.TotalUsers = count
		return err
	})
	g.Go(func() error {
		count, err := s.repo.Projects().Count(gctx)
		stats.TotalProjects = count
		return err
	})
	g.Go(func() error {
		summary, err := s.repo.Payments().Summarize(gctx, nil)
		if err != nil {
			return err
		}
		stats.SucceededPayments = summary.Count
		stats.TotalRevenue = summary.Gross
		stats.CommissionEarned = summary.Commission
		stats.FreelancerPayouts = summary.Net
		return nil
	})
	for _, status := range dashboardStatuses {
		status := status
		g.Go(func() error {
			filter := repository.ProjectFilter{
				PaginationParams: utils.PaginationParams{Page: 1, Limit: 1},
				Status:           &status,
			}
			_, total, err := s.repo.Projects().List(gctx, filter)
			if err != nil {
				return err
			}
			mu.Lock()
			stats.ProjectsByStatus[status] = total
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *AdminService) ListUsers(ctx context.Context, filter AdminUserFilter) ([]models.User, int64, error) {
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, 0, errs.Validation("unknown role " + string(*filter.Role))
	}
	return s.repo.Users().List(ctx, filter.Role, filter.PaginationParams)
}

func (s *AdminService) ListProjects(ctx context.Context, filter repository.ProjectFilter) ([]models.Project, int64, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, 0, errs.Validation("unknown status " + string(*filter.Status))
	}
	return s.repo.Projects().List(ctx, filter)
}

func (s *AdminService) UpdateUserRole(ctx context.Context, admin lifecycle.Requester, userID uuid.UUID, req *UpdateUserRoleRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, errs.Validation(err.Error())
	}
	if admin.UserID != nil && *admin.UserID == userID && req.Role != models.RoleAdmin {
		return nil, errs.Forbidden("admins cannot remove their own admin role")
	}

	user, err := s.repo.Users().Update(ctx, userID, repository.UserChanges{Role: &req.Role})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"admin_id": admin.UserID,
		"user_id":  userID,
		"role":     req.Role,
	}).Info("User role changed")
	return user, nil
}

// UpdateUserCommission changes a freelancer's default rate. Existing projects
// keep the rate they were created with.
func (s *AdminService) UpdateUserCommission(ctx context.Context, admin lifecycle.Requester, userID uuid.UUID, req *UpdateCommissionRequest) (*models.User, error) {
	rate := req.CommissionRate.Round(2)
	if err := lifecycle.ValidateCommissionRate(rate); err != nil {
		return nil, err
	}

	user, err := s.repo.Users().Update(ctx, userID, repository.UserChanges{CommissionRate: &rate})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"admin_id": admin.UserID,
		"user_id":  userID,
		"rate":     rate.StringFixed(2),
	}).Info("User commission rate changed")
	return user, nil
}

func (s *AdminService) UpdateUserStatus(ctx context.Context, admin lifecycle.Requester, userID uuid.UUID, req *UpdateUserStatusRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, errs.Validation(err.Error())
	}
	if admin.UserID != nil && *admin.UserID == userID && !*req.IsActive {
		return nil, errs.Forbidden("admins cannot disable their own account")
	}
	return s.repo.Users().Update(ctx, userID, repository.UserChanges{IsActive: req.IsActive})
}
