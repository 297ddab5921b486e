// internal/handlers/comment.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/payhub-backend/internal/services"
	"github.com/javajoker/payhub-backend/internal/utils"
)

type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// POST /projects/:id/comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	projectID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), requesterFromContext(c), projectID, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, comment)
}

// GET /projects/:id/comments
func (h *CommentHandler) ListComments(c *gin.Context) {
	projectID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	comments, err := h.commentService.ListComments(c.Request.Context(), requesterFromContext(c), projectID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, comments)
}

// PUT /comments/:id/resolve
func (h *CommentHandler) SetResolved(c *gin.Context) {
	commentID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Resolved *bool `json:"resolved" validate:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.SetResolved(c.Request.Context(), requesterFromContext(c), commentID, *req.Resolved)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, comment)
}
