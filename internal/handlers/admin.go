// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/payhub-backend/internal/i18n"
	"github.com/javajoker/payhub-backend/internal/models"
	"github.com/javajoker/payhub-backend/internal/services"
	"github.com/javajoker/payhub-backend/internal/utils"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// GET /admin/dashboard
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}

// GET /admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	filter := services.AdminUserFilter{PaginationParams: utils.GetPaginationParams(c)}
	if raw := c.Query("role"); raw != "" {
		role := models.Role(raw)
		if !role.Valid() {
			utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "role"), nil)
			return
		}
		filter.Role = &role
	}

	users, total, err := h.adminService.ListUsers(c.Request.Context(), filter)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(users, total, filter.PaginationParams))
}

// GET /admin/projects
func (h *AdminHandler) ListProjects(c *gin.Context) {
	filter, ok := parseProjectFilter(c)
	if !ok {
		return
	}

	projects, total, err := h.adminService.ListProjects(c.Request.Context(), filter)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(projects, total, filter.PaginationParams))
}

// PUT /admin/users/:id/role
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	userID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateUserRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.adminService.UpdateUserRole(c.Request.Context(), requesterFromContext(c), userID, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}

// PUT /admin/users/:id/commission
func (h *AdminHandler) UpdateUserCommission(c *gin.Context) {
	userID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateCommissionRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.adminService.UpdateUserCommission(c.Request.Context(), requesterFromContext(c), userID, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}

// PUT /admin/users/:id/status
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	userID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateUserStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.adminService.UpdateUserStatus(c.Request.Context(), requesterFromContext(c), userID, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}
