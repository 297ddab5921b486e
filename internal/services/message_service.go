// internal/services/message_service.go
package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/javajoker/payhub-backend/internal/errs"
	"github.com/javajoker/payhub-backend/internal/lifecycle"
	"github.com/javajoker/payhub-backend/internal/models"
	"github.com/javajoker/payhub-backend/internal/repository"
	"github.com/javajoker/payhub-backend/internal/utils"
)

// MessageService keeps the per-project thread between freelancer and client.
type MessageService struct {
	repo repository.Repository
}

type SendMessageRequest struct {
	SenderName string `json:"sender_name,omitempty" validate:"max=255"`
	Content    string `json:"content" validate:"required,min=1,max=5000"`
}

func NewMessageService(repo repository.Repository) *MessageService {
	return &MessageService{repo: repo}
}

func (s *MessageService) Send(ctx context.Context, r lifecycle.Requester, projectID uuid.UUID, req *SendMessageRequest) (*models.Message, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, errs.Validation(err.Error())
	}

	project, senderType, err := s.participant(ctx, r, projectID)
	if err != nil {
		return nil, err
	}

	senderEmail := r.Email
	if senderType == models.SenderTypeFreelancer && senderEmail == "" {
		owner, err := s.repo.Users().Get(ctx, project.FreelancerID)
		if err != nil {
			return nil, err
		}
		senderEmail = owner.Email
	}

	message := &models.Message{
		ProjectID:   projectID,
		SenderType:  senderType,
		SenderEmail: strings.ToLower(strings.TrimSpace(senderEmail)),
		SenderName:  req.SenderName,
		Content:     strings.TrimSpace(req.Content),
	}
	if message.Content == "" {
		return nil, errs.Validation("message content is required")
	}
	if err := s.repo.Messages().Create(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// List returns the thread oldest first.
func (s *MessageService) List(ctx context.Context, r lifecycle.Requester, projectID uuid.UUID) ([]models.Message, error) {
	if _, _, err := s.participant(ctx, r, projectID); err != nil {
		return nil, err
	}
	return s.repo.Messages().ListByProject(ctx, projectID)
}

// MarkRead marks the other party's messages as read and returns how many changed.
func (s *MessageService) MarkRead(ctx context.Context, r lifecycle.Requester, projectID uuid.UUID) (int64, error) {
	_, senderType, err := s.participant(ctx, r, projectID)
	if err != nil {
		return 0, err
	}
	return s.repo.Messages().MarkRead(ctx, projectID, senderType)
}

// participant resolves which side of the thread the requester is on. Clients
// join once the project has left draft.
func (s *MessageService) participant(ctx context.Context, r lifecycle.Requester, projectID uuid.UUID) (*models.Project, models.SenderType, error) {
	project, err := s.repo.Projects().Get(ctx, projectID)
	if err != nil {
		return nil, "", err
	}

	senderType, ok := r.SenderType(project)
	if !ok {
		return nil, "", errs.Forbidden("you are not part of this project")
	}
	if senderType == models.SenderTypeClient && lifecycle.ResolveAccess(project, r) == lifecycle.AccessNone {
		return nil, "", errs.Forbidden("this project is not shared with you")
	}
	return project, senderType, nil
}
