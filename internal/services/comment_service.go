// internal/services/comment_service.go
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

type CommentService struct {
	repo                repository.Repository
	analyticsService    *AnalyticsService
	notificationService *NotificationService
}

type CreateCommentRequest struct {
	FileID     *uuid.UUID              `json:"file_id,omitempty"`
	AuthorName string                  `json:"author_name,omitempty" validate:"max=255"`
	Content    string                  `json:"content" validate:"required,min=1,max=5000"`
	Timestamp  *int                    `json:"timestamp,omitempty" validate:"omitempty,min=0"`
	Position   *models.CommentPosition `json:"position,omitempty"`
	ParentID   *uuid.UUID              `json:"parent_id,omitempty"`
}

func NewCommentService(repo repository.Repository, analyticsService *AnalyticsService, notificationService *NotificationService) *CommentService {
	return &CommentService{
		repo:                repo,
		analyticsService:    analyticsService,
		notificationService: notificationService,
	}
}

// CreateComment adds a comment or a reply. The author is the requester: the
// owning freelancer or the project's client while the project is visible to them.
func (s *CommentService) CreateComment(ctx context.Context, r lifecycle.Requester, projectID uuid.UUID, req *CreateCommentRequest) (*models.Comment, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, errs.Validation(err.Error())
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, errs.Validation("comment content is required")
	}

	project, err := s.repo.Projects().Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if lifecycle.ResolveAccess(project, r) == lifecycle.AccessNone {
		return nil, errs.Forbidden("you do not have access to this project")
	}

	authorEmail := r.Email
	if r.Owns(project) && authorEmail == "" {
		owner, err := s.repo.Users().Get(ctx, project.FreelancerID)
		if err != nil {
			return nil, err
		}
		authorEmail = owner.Email
	}

	comment := &models.Comment{
		ProjectID:   projectID,
		FileID:      req.FileID,
		AuthorEmail: strings.ToLower(strings.TrimSpace(authorEmail)),
		AuthorName:  req.AuthorName,
		Content:     strings.TrimSpace(req.Content),
		Timestamp:   req.Timestamp,
		Position:    req.Position,
		ParentID:    req.ParentID,
	}

	if err := s.validateAnchor(ctx, project, comment); err != nil {
		return nil, err
	}
	if err := s.validateParent(ctx, project, comment); err != nil {
		return nil, err
	}

	if err := s.repo.Comments().Create(ctx, comment); err != nil {
		return nil, err
	}

	s.analyticsService.Record(ctx, &models.AnalyticsEvent{
		ProjectID: projectID,
		UserID:    r.UserID,
		Event:     models.EventComment,
		Metadata:  models.JSONB{"comment_id": comment.ID.String(), "author_email": comment.AuthorEmail},
	})
	s.notificationService.NotifyComment(ctx, project, comment)

	return comment, nil
}

// ListComments returns top-level comments oldest first, each carrying its
// replies oldest first.
func (s *CommentService) ListComments(ctx context.Context, r lifecycle.Requester, projectID uuid.UUID) ([]models.Comment, error) {
	project, err := s.repo.Projects().Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if lifecycle.ResolveAccess(project, r) == lifecycle.AccessNone {
		return nil, errs.Forbidden("you do not have access to this project")
	}

	comments, err := s.repo.Comments().ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return threadComments(comments), nil
}

// SetResolved marks a comment resolved or open. Owner only.
func (s *CommentService) SetResolved(ctx context.Context, r lifecycle.Requester, commentID uuid.UUID, resolved bool) (*models.Comment, error) {
	comment, err := s.repo.Comments().Get(ctx, commentID)
	if err != nil {
		return nil, err
	}
	project, err := s.repo.Projects().Get(ctx, comment.ProjectID)
	if err != nil {
		return nil, err
	}
	if !r.Owns(project) {
		return nil, errs.Forbidden("only the owning freelancer can resolve comments")
	}
	return s.repo.Comments().SetResolved(ctx, commentID, resolved)
}

func (s *CommentService) validateAnchor(ctx context.Context, project *models.Project, c *models.Comment) error {
	if c.Timestamp != nil && c.Position != nil {
		return errs.Validation("a comment is anchored to a timestamp or a position, not both")
	}
	if c.FileID == nil {
		if c.Timestamp != nil || c.Position != nil {
			return errs.Validation("an anchored comment needs a file_id")
		}
		return nil
	}

	file, err := s.repo.Files().Get(ctx, *c.FileID)
	if err != nil {
		return err
	}
	if file.ProjectID != project.ID {
		return errs.Validation("file does not belong to this project")
	}

	if c.Timestamp != nil {
		if !file.FileType.TimeBased() {
			return errs.Validation("timestamps can only anchor video or audio comments")
		}
		if file.Duration != nil && *c.Timestamp > *file.Duration {
			return errs.Validation("timestamp is beyond the end of the file")
		}
	}
	if c.Position != nil {
		if file.FileType != models.FileTypeImage && file.FileType != models.FileTypePDF {
			return errs.Validation("positions can only anchor image or PDF comments")
		}
		if c.Position.X < 0 || c.Position.Y < 0 {
			return errs.Validation("position coordinates cannot be negative")
		}
		if c.Position.Page != nil && *c.Position.Page < 1 {
			return errs.Validation("page numbers start at 1")
		}
	}
	return nil
}

// validateParent keeps threads two levels deep: replies must point at a
// top-level comment of the same project.
func (s *CommentService) validateParent(ctx context.Context, project *models.Project, c *models.Comment) error {
	if c.ParentID == nil {
		return nil
	}

	parent, err := s.repo.Comments().Get(ctx, *c.ParentID)
	if err != nil {
		if errs.IsNotFound(err) {
			return errs.Validation("parent comment does not exist")
		}
		return err
	}
	if parent.ProjectID != project.ID {
		return errs.Validation("parent comment belongs to another project")
	}
	if parent.IsReply() {
		return errs.Validation("replies cannot be nested")
	}
	return nil
}

// threadComments groups a flat, oldest-first list into top-level comments
// with their direct replies.
func threadComments(flat []models.Comment) []models.Comment {
	replies := make(map[uuid.UUID][]models.Comment)
	for _, c := range flat {
		if c.ParentID != nil {
			replies[*c.ParentID] = append(replies[*c.ParentID], c)
		}
	}

	threads := make([]models.Comment, 0, len(flat))
	for _, c := range flat {
		if c.ParentID != nil {
			continue
		}
		c.Replies = replies[c.ID]
		if c.Replies == nil {
			c.Replies = []models.Comment{}
		}
		threads = append(threads, c)
	}
	return threads
}
