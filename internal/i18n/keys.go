// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess       = "success"
	KeyInternalError = "error.internal"

	// Error kinds
	KeyErrNotFound          = "error.not_found"
	KeyErrForbidden         = "error.forbidden"
	KeyErrUnauthorized      = "error.unauthorized"
	KeyErrConflict          = "error.conflict"
	KeyErrAlreadyExists     = "error.already_exists"
	KeyErrInvalidTransition = "error.invalid_transition"
	KeyErrPaymentAnomaly    = "error.payment_anomaly"
	KeyErrPreviewLocked     = "error.preview_unavailable"
	KeyErrLimitReached      = "error.limit_reached"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthAccountDisabled    = "auth.account_disabled"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// Users
	KeyUserNotFound       = "user.not_found"
	KeyUserProfileUpdated = "user.profile_updated"

	// Roles
	KeyAdminAccessDenied  = "admin.access_denied"
	KeyFreelancerRequired = "freelancer.required"

	// Projects
	KeyProjectNotFound  = "project.not_found"
	KeyProjectCreated   = "project.created"
	KeyProjectUpdated   = "project.updated"
	KeyProjectDeleted   = "project.deleted"
	KeyProjectPublished = "project.published"
	KeyProjectApproved  = "project.approved"
	KeyProjectDelivered = "project.delivered"
	KeyProjectCancelled = "project.cancelled"

	// Files
	KeyFileNotFound = "file.not_found"
	KeyFileUploaded = "file.uploaded"
	KeyFileTooLarge = "file.too_large"
	KeyFileRequired = "file.required"

	// Comments
	KeyCommentNotFound = "comment.not_found"

	// Payments
	KeyPaymentReceived      = "payment.received"
	KeyPaymentWebhookFailed = "payment.webhook_failed"

	// Notifications
	KeyNotificationNotFound = "notification.not_found"

	// Validation
	KeyValidationInvalid = "validation.invalid"
	KeyValidationFailed  = "validation.failed"

	// Rate limiting
	KeyRateLimitExceeded = "rate_limit.exceeded"
)
