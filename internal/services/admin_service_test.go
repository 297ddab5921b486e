package services

import (
	"github.com/javajoker/payhub-backend/internal/errs"
	"github.com/javajoker/payhub-backend/internal/models"
	"github.com/javajoker/payhub-backend/internal/repository"
)

func (s *ServiceTestSuite) TestDashboardStats() {
	s.createProject("10")
	paid, _ := s.approvedProject("100")
	s.pay(paid, "pi_stats")
	s.publishedProject("40")

	stats, err := s.admin.GetDashboardStats(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), stats.TotalUsers)
	s.Equal(int64(3), stats.TotalProjects)
	s.Equal(int64(1), stats.ProjectsByStatus[models.ProjectStatusDraft])
	s.Equal(int64(1), stats.ProjectsByStatus[models.ProjectStatusPaid])
	s.Equal(int64(1), stats.ProjectsByStatus[models.ProjectStatusPreview])
	s.Equal(int64(0), stats.ProjectsByStatus[models.ProjectStatusCancelled])
	s.Equal(int64(1), stats.SucceededPayments)
	s.True(stats.TotalRevenue.Equal(dec("100")))
	s.True(stats.CommissionEarned.Equal(dec("15")))
	s.True(stats.FreelancerPayouts.Equal(dec("85")))
}

func (s *ServiceTestSuite) TestAdminUserManagement() {
	admin := s.createUser("admin@example.com", models.RoleAdmin, "0")
	adminReq := s.owner
	adminReq.UserID, adminReq.Role = &admin.ID, admin.Role

	user, err := s.admin.UpdateUserRole(s.ctx, adminReq, s.freelancer.ID, &UpdateUserRoleRequest{Role: models.RoleSuperFreelancer})
	s.Require().NoError(err)
	s.Equal(models.RoleSuperFreelancer, user.Role)

	_, err = s.admin.UpdateUserRole(s.ctx, adminReq, admin.ID, &UpdateUserRoleRequest{Role: models.RoleClient})
	s.ErrorIs(err, errs.ErrForbidden)

	_, err = s.admin.UpdateUserRole(s.ctx, adminReq, s.freelancer.ID, &UpdateUserRoleRequest{Role: "emperor"})
	s.ErrorIs(err, errs.ErrValidation)

	_, err = s.admin.UpdateUserCommission(s.ctx, adminReq, s.freelancer.ID, &UpdateCommissionRequest{CommissionRate: dec("120")})
	s.ErrorIs(err, errs.ErrValidation)

	role := models.RoleAdmin
	admins, total, err := s.admin.ListUsers(s.ctx, AdminUserFilter{Role: &role})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal(admin.ID, admins[0].ID)

	s.createProject("10")
	projects, total, err := s.admin.ListProjects(s.ctx, repository.ProjectFilter{})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Len(projects, 1)
}
