// internal/handlers/message.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/payhub-backend/internal/services"
	"github.com/javajoker/payhub-backend/internal/utils"
)

type MessageHandler struct {
	messageService *services.MessageService
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
	}
}

// POST /projects/:id/messages
func (h *MessageHandler) Send(c *gin.Context) {
	projectID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	message, err := h.messageService.Send(c.Request.Context(), requesterFromContext(c), projectID, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, message)
}

// GET /projects/:id/messages
func (h *MessageHandler) List(c *gin.Context) {
	projectID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	messages, err := h.messageService.List(c.Request.Context(), requesterFromContext(c), projectID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, messages)
}

// PUT /projects/:id/messages/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	projectID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	updated, err := h.messageService.MarkRead(c.Request.Context(), requesterFromContext(c), projectID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"marked_read": updated})
}
