package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/payhub-backend/internal/i18n"
	"github.com/javajoker/payhub-backend/internal/lifecycle"
	"github.com/javajoker/payhub-backend/internal/models"
	"github.com/javajoker/payhub-backend/internal/services"
	"github.com/javajoker/payhub-backend/internal/utils"
)

// ClientEmailHeader identifies a preview visitor that has no account.
const ClientEmailHeader = "X-Client-Email"

// requesterFromContext builds the caller's identity. Authenticated callers come
// from the JWT claims set by the auth middleware; everyone else is a guest
// known only by the email they present.
func requesterFromContext(c *gin.Context) lifecycle.Requester {
	if userID, ok := utils.GetUserIDFromContext(c); ok {
		role, _ := utils.GetRoleFromContext(c)
		return lifecycle.Requester{
			UserID: &userID,
			Role:   models.Role(role),
			Email:  utils.GetUserEmailFromContext(c),
		}
	}

	email := c.GetHeader(ClientEmailHeader)
	if email == "" {
		email = c.Query("email")
	}
	return lifecycle.Guest(email)
}

func clientInfo(c *gin.Context) services.ClientInfo {
	return services.ClientInfo{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// bindJSON decodes and validates the request body, answering 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)

	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}
