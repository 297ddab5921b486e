// internal/handlers/project.go
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/payhub-backend/internal/i18n"
	"github.com/javajoker/payhub-backend/internal/lifecycle"
	"github.com/javajoker/payhub-backend/internal/models"
	"github.com/javajoker/payhub-backend/internal/repository"
	"github.com/javajoker/payhub-backend/internal/services"
	"github.com/javajoker/payhub-backend/internal/utils"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// parseProjectFilter reads pagination and the optional status filter,
// answering 400 for an unknown status.
func parseProjectFilter(c *gin.Context) (repository.ProjectFilter, bool) {
	filter := repository.ProjectFilter{PaginationParams: utils.GetPaginationParams(c)}
	if raw := c.Query("status"); raw != "" {
		status := models.ProjectStatus(raw)
		if !status.Valid() {
			utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "status"), nil)
			return filter, false
		}
		filter.Status = &status
	}
	return filter, true
}

// POST /projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req services.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), requesterFromContext(c), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, project)
}

// GET /projects
func (h *ProjectHandler) ListMyProjects(c *gin.Context) {
	filter, ok := parseProjectFilter(c)
	if !ok {
		return
	}

	projects, total, err := h.projectService.ListMyProjects(c.Request.Context(), requesterFromContext(c), filter)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(projects, total, filter.PaginationParams))
}

// GET /projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.projectService.GetProject(c.Request.Context(), requesterFromContext(c), projectID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, view)
}

// PUT /projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	projectID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), requesterFromContext(c), projectID, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessMessageResponse(c, project, i18n.KeyProjectUpdated)
}

// DELETE /projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	projectID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(c.Request.Context(), requesterFromContext(c), projectID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessMessageResponse(c, gin.H{"id": projectID}, i18n.KeyProjectDeleted)
}

// POST /projects/:id/publish
func (h *ProjectHandler) Publish(c *gin.Context) {
	h.transition(c, h.projectService.Publish, i18n.KeyProjectPublished)
}

// POST /projects/:id/approve
func (h *ProjectHandler) Approve(c *gin.Context) {
	h.transition(c, h.projectService.Approve, i18n.KeyProjectApproved)
}

// POST /projects/:id/deliver
func (h *ProjectHandler) Deliver(c *gin.Context) {
	h.transition(c, h.projectService.Deliver, i18n.KeyProjectDelivered)
}

// POST /projects/:id/cancel
func (h *ProjectHandler) Cancel(c *gin.Context) {
	h.transition(c, h.projectService.Cancel, i18n.KeyProjectCancelled)
}

func (h *ProjectHandler) transition(c *gin.Context, apply func(context.Context, lifecycle.Requester, uuid.UUID) (*models.Project, error), messageKey string) {
	projectID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	project, err := apply(c.Request.Context(), requesterFromContext(c), projectID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessMessageResponse(c, project, messageKey)
}
