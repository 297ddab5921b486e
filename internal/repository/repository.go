// internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/javajoker/payhub-backend/internal/models"
	"github.com/javajoker/payhub-backend/internal/utils"
)

// Repository groups the stores used by the services. WithTransaction runs fn
// against a Repository bound to a single database transaction; any error
// returned by fn rolls back every write made through it.
type Repository interface {
	Users() UserRepository
	Projects() ProjectRepository
	Files() FileRepository
	Comments() CommentRepository
	Payments() PaymentRepository
	Analytics() AnalyticsRepository
	Messages() MessageRepository
	Notifications() NotificationRepository
	AuditLogs() AuditLogRepository

	WithTransaction(ctx context.Context, fn func(tx Repository) error) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, changes UserChanges) (*models.User, error)
	AddEarnings(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	List(ctx context.Context, role *models.Role, params utils.PaginationParams) ([]models.User, int64, error)
	Count(ctx context.Context) (int64, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, filter ProjectFilter) ([]models.Project, int64, error)
	List(ctx context.Context, filter ProjectFilter) ([]models.Project, int64, error)
	// CompareAndSetStatus moves the project from expected to next only if its
	// stored status still equals expected, returning a Conflict error otherwise.
	CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected, next models.ProjectStatus) (*models.Project, error)
	Update(ctx context.Context, id uuid.UUID, changes ProjectChanges) (*models.Project, error)
	SetPaymentIntent(ctx context.Context, id uuid.UUID, intentID string) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type FileRepository interface {
	Create(ctx context.Context, file *models.File) error
	Get(ctx context.Context, id uuid.UUID) (*models.File, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.File, error)
	CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
	SetPreviewPath(ctx context.Context, id uuid.UUID, path string) error
	// IncrementDownloads bumps the download counter unless it already reached
	// limit (nil means unlimited). It reports whether the increment happened.
	IncrementDownloads(ctx context.Context, id uuid.UUID, limit *int) (bool, error)
	DeleteByProject(ctx context.Context, projectID uuid.UUID) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	Get(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	// ListByProject returns comments oldest first.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Comment, error)
	SetResolved(ctx context.Context, id uuid.UUID, resolved bool) (*models.Comment, error)
}

type PaymentRepository interface {
	// Create fails with an AlreadyExists error when the provider reference is taken.
	Create(ctx context.Context, payment *models.Payment) error
	GetByProviderReference(ctx context.Context, reference string) (*models.Payment, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, params utils.PaginationParams) ([]models.Payment, int64, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Payment, error)
	CountSucceededByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
	Summarize(ctx context.Context, freelancerID *uuid.UUID) (PaymentSummary, error)
}

type AnalyticsRepository interface {
	Append(ctx context.Context, event *models.AnalyticsEvent) error
	// ListByProject returns events newest first.
	ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]models.AnalyticsEvent, error)
	CountByKind(ctx context.Context, projectID uuid.UUID) (map[models.EventKind]int64, error)
}

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Message, error)
	MarkRead(ctx context.Context, projectID uuid.UUID, reader models.SenderType) (int64, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
}

type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// ProjectFilter narrows project listings.
type ProjectFilter struct {
	utils.PaginationParams
	Status *models.ProjectStatus
}

// ProjectChanges holds a partial project update; nil fields are left untouched.
type ProjectChanges struct {
	Title           *string
	Description     *string
	ClientEmail     *string
	ClientName      *string
	Price           *decimal.Decimal
	CommissionRate  *decimal.Decimal
	Tags            []string
	Deadline        *time.Time
	PreviewSettings *models.PreviewSettings
	DeliveryEmail   *string
}

// TouchesPricing reports whether the update changes price or commission rate.
func (c ProjectChanges) TouchesPricing() bool {
	return c.Price != nil || c.CommissionRate != nil
}

func (c ProjectChanges) Empty() bool {
	return c.Title == nil && c.Description == nil && c.ClientEmail == nil && c.ClientName == nil &&
		c.Price == nil && c.CommissionRate == nil && c.Tags == nil && c.Deadline == nil &&
		c.PreviewSettings == nil && c.DeliveryEmail == nil
}

// UserChanges holds a partial user update; nil fields are left untouched.
type UserChanges struct {
	FirstName       *string
	LastName        *string
	ProfileImageURL *string
	Subdomain       *string
	Role            *models.Role
	CommissionRate  *decimal.Decimal
	IsActive        *bool
	PasswordHash    *string
}

// PaymentSummary aggregates succeeded payments.
type PaymentSummary struct {
	Count      int64           `json:"count"`
	Gross      decimal.Decimal `json:"gross"`
	Commission decimal.Decimal `json:"commission"`
	Net        decimal.Decimal `json:"net"`
}
