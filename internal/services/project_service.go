// internal/services/project_service.go
package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/payhub-backend/internal/errs"
	"github.com/javajoker/payhub-backend/internal/lifecycle"
	"github.com/javajoker/payhub-backend/internal/models"
	"github.com/javajoker/payhub-backend/internal/repository"
	"github.com/javajoker/payhub-backend/internal/utils"
)

type ProjectService struct {
	repo                repository.Repository
	store               ObjectStore
	analyticsService    *AnalyticsService
	notificationService *NotificationService
}

type CreateProjectRequest struct {
	Title           string                  `json:"title" validate:"required,min=1,max=255"`
	Description     string                  `json:"description,omitempty" validate:"max=5000"`
	ClientEmail     string                  `json:"client_email" validate:"required,email"`
	ClientName      string                  `json:"client_name,omitempty" validate:"max=255"`
	Price           decimal.Decimal         `json:"price"`
	Deadline        *time.Time              `json:"deadline,omitempty"`
	Tags            []string                `json:"tags,omitempty" validate:"max=20,dive,min=1,max=50"`
	PreviewSettings *models.PreviewSettings `json:"preview_settings,omitempty"`
	DeliveryEmail   string                  `json:"delivery_email,omitempty" validate:"omitempty,email"`
}

type UpdateProjectRequest struct {
	Title           *string                 `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description     *string                 `json:"description,omitempty" validate:"omitempty,max=5000"`
	ClientEmail     *string                 `json:"client_email,omitempty" validate:"omitempty,email"`
	ClientName      *string                 `json:"client_name,omitempty" validate:"omitempty,max=255"`
	Price           *decimal.Decimal        `json:"price,omitempty"`
	CommissionRate  *decimal.Decimal        `json:"commission_rate,omitempty"`
	Deadline        *time.Time              `json:"deadline,omitempty"`
	Tags            []string                `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
	PreviewSettings *models.PreviewSettings `json:"preview_settings,omitempty"`
	DeliveryEmail   *string                 `json:"delivery_email,omitempty" validate:"omitempty,email"`
}

// ProjectView is a project as seen by a particular requester.
type ProjectView struct {
	*models.Project
	Access string `json:"access"`
}

func NewProjectService(repo repository.Repository, store ObjectStore, analyticsService *AnalyticsService, notificationService *NotificationService) *ProjectService {
	return &ProjectService{
		repo:                repo,
		store:               store,
		analyticsService:    analyticsService,
		notificationService: notificationService,
	}
}

func (s *ProjectService) CreateProject(ctx context.Context, r lifecycle.Requester, req *CreateProjectRequest) (*models.Project, error) {
	if r.UserID == nil || !r.Role.IsFreelancer() {
		return nil, errs.Forbidden("only freelancers can create projects")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, errs.Validation(err.Error())
	}
	if err := lifecycle.ValidatePrice(req.Price); err != nil {
		return nil, err
	}

	freelancer, err := s.repo.Users().Get(ctx, *r.UserID)
	if err != nil {
		return nil, err
	}
	if !freelancer.IsActive {
		return nil, errs.Forbidden("account is disabled")
	}

	settings := models.PreviewSettings{Watermark: true}
	if req.PreviewSettings != nil {
		if err := validatePreviewSettings(*req.PreviewSettings); err != nil {
			return nil, err
		}
		settings = *req.PreviewSettings
	}

	project := &models.Project{
		FreelancerID:    freelancer.ID,
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		ClientEmail:     strings.ToLower(strings.TrimSpace(req.ClientEmail)),
		ClientName:      req.ClientName,
		Status:          models.ProjectStatusDraft,
		Price:           req.Price,
		CommissionRate:  freelancer.CommissionRate,
		Tags:            req.Tags,
		Deadline:        req.Deadline,
		PreviewSettings: settings,
		DeliveryEmail:   req.DeliveryEmail,
	}

	if err := s.repo.Projects().Create(ctx, project); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"project_id":    project.ID,
		"freelancer_id": project.FreelancerID,
	}).Info("Project created")

	return project, nil
}

// GetProject returns the project for its owner, an admin, or a client whose
// email currently grants access to it.
func (s *ProjectService) GetProject(ctx context.Context, r lifecycle.Requester, id uuid.UUID) (*ProjectView, error) {
	project, err := s.repo.Projects().Get(ctx, id)
	if err != nil {
		return nil, err
	}

	access := lifecycle.ResolveAccess(project, r)
	if access == lifecycle.AccessNone && !r.IsAdmin() {
		return nil, errs.Forbidden("you do not have access to this project")
	}

	files, err := s.repo.Files().ListByProject(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range files {
		files[i].HasPreview = files[i].PreviewAvailable()
	}
	project.Files = files

	return &ProjectView{Project: project, Access: access.String()}, nil
}

func (s *ProjectService) ListMyProjects(ctx context.Context, r lifecycle.Requester, filter repository.ProjectFilter) ([]models.Project, int64, error) {
	if r.UserID == nil || !r.Role.IsFreelancer() {
		return nil, 0, errs.Forbidden("only freelancers have projects")
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, 0, errs.Validation("unknown status " + string(*filter.Status))
	}
	return s.repo.Projects().ListByFreelancer(ctx, *r.UserID, filter)
}

// UpdateProject applies a partial update. Price and commission rate are
// rejected with a Conflict once checkout has started; only admins may change
// the commission rate.
func (s *ProjectService) UpdateProject(ctx context.Context, r lifecycle.Requester, id uuid.UUID, req *UpdateProjectRequest) (*models.Project, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, errs.Validation(err.Error())
	}

	project, err := s.repo.Projects().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.Owns(project) && !r.IsAdmin() {
		return nil, errs.Forbidden("only the owning freelancer can update this project")
	}
	if req.CommissionRate != nil && !r.IsAdmin() {
		return nil, errs.Forbidden("commission rate is set by the platform")
	}
	if lifecycle.IsTerminal(project.Status) {
		return nil, errs.PreconditionFailed("a " + string(project.Status) + " project can no longer be edited")
	}
	// The client approves a specific price for a specific address.
	if !awaitingApproval(project.Status) {
		if req.ClientEmail != nil && !project.IsClient(*req.ClientEmail) {
			return nil, errs.PreconditionFailed("the client email is fixed once the project is approved")
		}
		if req.Price != nil && !req.Price.Equal(project.Price) {
			return nil, errs.PreconditionFailed("the price is fixed once the project is approved")
		}
	}

	changes := repository.ProjectChanges{
		Title:           req.Title,
		Description:     req.Description,
		ClientName:      req.ClientName,
		Price:           req.Price,
		CommissionRate:  req.CommissionRate,
		Tags:            req.Tags,
		Deadline:        req.Deadline,
		PreviewSettings: req.PreviewSettings,
		DeliveryEmail:   req.DeliveryEmail,
	}
	if req.ClientEmail != nil {
		email := strings.ToLower(strings.TrimSpace(*req.ClientEmail))
		changes.ClientEmail = &email
	}
	if changes.Price != nil {
		if err := lifecycle.ValidatePrice(*changes.Price); err != nil {
			return nil, err
		}
	}
	if changes.CommissionRate != nil {
		if err := lifecycle.ValidateCommissionRate(*changes.CommissionRate); err != nil {
			return nil, err
		}
	}
	if changes.PreviewSettings != nil {
		if err := validatePreviewSettings(*changes.PreviewSettings); err != nil {
			return nil, err
		}
	}
	if changes.Empty() {
		return project, nil
	}
	if changes.TouchesPricing() && project.PaymentAttempted() {
		return nil, errs.Conflict("price and commission rate are locked once payment has started")
	}

	return s.repo.Projects().Update(ctx, id, changes)
}

func awaitingApproval(status models.ProjectStatus) bool {
	return status == models.ProjectStatusDraft || status == models.ProjectStatusPreview
}

// DeleteProject removes a project with its files. Projects with a succeeded
// payment are kept for the earnings record.
func (s *ProjectService) DeleteProject(ctx context.Context, r lifecycle.Requester, id uuid.UUID) error {
	project, err := s.repo.Projects().Get(ctx, id)
	if err != nil {
		return err
	}
	if !r.Owns(project) && !r.IsAdmin() {
		return errs.Forbidden("only the owning freelancer can delete this project")
	}

	var keys []string
	err = s.repo.WithTransaction(ctx, func(tx repository.Repository) error {
		paid, err := tx.Payments().CountSucceededByProject(ctx, id)
		if err != nil {
			return err
		}
		if paid > 0 {
			return errs.Conflict("a project with a completed payment cannot be deleted")
		}

		files, err := tx.Files().ListByProject(ctx, id)
		if err != nil {
			return err
		}
		for _, f := range files {
			keys = append(keys, f.FilePath)
			if f.PreviewAvailable() {
				keys = append(keys, *f.PreviewPath)
			}
			if f.ThumbnailPath != nil {
				keys = append(keys, *f.ThumbnailPath)
			}
		}

		if err := tx.Files().DeleteByProject(ctx, id); err != nil {
			return err
		}
		return tx.Projects().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	DeleteAll(ctx, s.store, keys)
	logrus.WithField("project_id", id).Info("Project deleted")
	return nil
}

func (s *ProjectService) Publish(ctx context.Context, r lifecycle.Requester, id uuid.UUID) (*models.Project, error) {
	return s.transition(ctx, r, id, lifecycle.EventPublish)
}

// Approve is called by the client from the preview page.
func (s *ProjectService) Approve(ctx context.Context, r lifecycle.Requester, id uuid.UUID) (*models.Project, error) {
	return s.transition(ctx, r, id, lifecycle.EventApprove)
}

func (s *ProjectService) Deliver(ctx context.Context, r lifecycle.Requester, id uuid.UUID) (*models.Project, error) {
	return s.transition(ctx, r, id, lifecycle.EventDeliver)
}

func (s *ProjectService) Cancel(ctx context.Context, r lifecycle.Requester, id uuid.UUID) (*models.Project, error) {
	return s.transition(ctx, r, id, lifecycle.EventCancel)
}

// transition authorizes the event, checks the state machine and applies the
// move with a compare-and-set on the status read here. A concurrent writer
// makes the CAS fail with Conflict.
func (s *ProjectService) transition(ctx context.Context, r lifecycle.Requester, id uuid.UUID, event lifecycle.Event) (*models.Project, error) {
	project, err := s.repo.Projects().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.AuthorizeEvent(event, project, r); err != nil {
		return nil, err
	}

	from := project.Status
	next, err := lifecycle.Next(from, event)
	if err != nil {
		return nil, err
	}

	if event == lifecycle.EventPublish {
		count, err := s.repo.Files().CountByProject(ctx, id)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, errs.PreconditionFailed("upload at least one file before publishing")
		}
	}

	updated, err := s.repo.Projects().CompareAndSetStatus(ctx, id, from, next)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"project_id": id,
		"event":      event,
		"from":       from,
		"to":         next,
	}).Info("Project status changed")

	s.analyticsService.recordStatusChange(ctx, updated, from, r)

	switch event {
	case lifecycle.EventApprove:
		s.analyticsService.Record(ctx, &models.AnalyticsEvent{
			ProjectID: id,
			Event:     models.EventApprove,
			Metadata:  models.JSONB{"client_email": r.Email},
		})
		s.notificationService.NotifyApproval(ctx, updated)
	case lifecycle.EventDeliver:
		s.notificationService.NotifyDelivered(ctx, updated)
	case lifecycle.EventPublish, lifecycle.EventCancel, lifecycle.EventPaymentSucceeded:
	}

	return updated, nil
}

func validatePreviewSettings(settings models.PreviewSettings) error {
	if settings.TimeLimit != nil && *settings.TimeLimit <= 0 {
		return errs.Validation("preview time limit must be a positive number of seconds")
	}
	if settings.DownloadLimit != nil && *settings.DownloadLimit < 0 {
		return errs.Validation("download limit cannot be negative")
	}
	return nil
}
