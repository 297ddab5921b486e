// internal/services/analytics_service.go
package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/payhub-backend/internal/errs"
	"github.com/javajoker/payhub-backend/internal/lifecycle"
	"github.com/javajoker/payhub-backend/internal/models"
	"github.com/javajoker/payhub-backend/internal/repository"
	"github.com/javajoker/payhub-backend/internal/utils"
)

const analyticsWriteTimeout = 5 * time.Second

// AnalyticsService appends project analytics. Writes made on behalf of other
// operations are fire-and-forget: they never block or fail the caller.
type AnalyticsService struct {
	repo    repository.Repository
	pending sync.WaitGroup
}

// ClientInfo carries request metadata stored with viewer events.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

type TrackEventRequest struct {
	Event    models.EventKind       `json:"event" validate:"required"`
	FileID   *uuid.UUID             `json:"file_id,omitempty"`
	Position *float64               `json:"position,omitempty" validate:"omitempty,min=0"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type PlaybackReportRequest struct {
	FileID   uuid.UUID `json:"file_id" validate:"required"`
	Position float64   `json:"position" validate:"min=0"`
}

type PlaybackStatus struct {
	LimitReached bool `json:"limit_reached"`
	TimeLimit    *int `json:"time_limit,omitempty"`
}

type ProjectAnalytics struct {
	ProjectID uuid.UUID                  `json:"project_id"`
	Counts    map[models.EventKind]int64 `json:"counts"`
	Recent    []models.AnalyticsEvent    `json:"recent"`
}

func NewAnalyticsService(repo repository.Repository) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

// Record appends an event in the background. Failures are logged.
func (s *AnalyticsService) Record(ctx context.Context, event *models.AnalyticsEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), analyticsWriteTimeout)
		defer cancel()

		if err := s.repo.Analytics().Append(writeCtx, event); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"project_id": event.ProjectID,
				"event":      event.Event,
			}).Warn("Failed to record analytics event")
		}
	}()
}

// Wait blocks until background writes started so far have finished.
func (s *AnalyticsService) Wait() {
	s.pending.Wait()
}

func (s *AnalyticsService) recordStatusChange(ctx context.Context, project *models.Project, from models.ProjectStatus, r lifecycle.Requester) {
	s.Record(ctx, &models.AnalyticsEvent{
		ProjectID: project.ID,
		UserID:    r.UserID,
		Event:     models.EventStatusChange,
		Metadata:  models.JSONB{"from": string(from), "to": string(project.Status)},
	})
}

// Track stores a viewer-reported event (view, play, pause). The requester must
// be able to see the project's files.
func (s *AnalyticsService) Track(ctx context.Context, r lifecycle.Requester, projectID uuid.UUID, req *TrackEventRequest, info ClientInfo) error {
	if err := utils.ValidateStruct(req); err != nil {
		return errs.Validation(err.Error())
	}
	if !req.Event.ViewerReportable() {
		return errs.Validation("event " + string(req.Event) + " cannot be reported by viewers")
	}

	project, err := s.repo.Projects().Get(ctx, projectID)
	if err != nil {
		return err
	}
	if lifecycle.ResolveAccess(project, r) == lifecycle.AccessNone {
		return errs.Forbidden("you do not have access to this project")
	}

	metadata := models.JSONB{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	if req.FileID != nil {
		metadata["file_id"] = req.FileID.String()
	}
	if req.Position != nil {
		metadata["position"] = *req.Position
	}
	if r.Email != "" {
		metadata["viewer_email"] = r.Email
	}

	return s.repo.Analytics().Append(ctx, &models.AnalyticsEvent{
		ProjectID: projectID,
		UserID:    r.UserID,
		Event:     req.Event,
		Metadata:  metadata,
		IPAddress: info.IPAddress,
		UserAgent: info.UserAgent,
	})
}

// ReportPlayback checks a preview viewer's playback position against the
// project's time limit and emits preview_limit_reached when it is hit.
func (s *AnalyticsService) ReportPlayback(ctx context.Context, r lifecycle.Requester, projectID uuid.UUID, req *PlaybackReportRequest, info ClientInfo) (*PlaybackStatus, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, errs.Validation(err.Error())
	}

	project, err := s.repo.Projects().Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	file, err := s.repo.Files().Get(ctx, req.FileID)
	if err != nil {
		return nil, err
	}
	if file.ProjectID != project.ID {
		return nil, errs.NotFound("file")
	}

	access := lifecycle.ResolveAccess(project, r)
	if access == lifecycle.AccessNone {
		return nil, errs.Forbidden("you do not have access to this project")
	}

	status := &PlaybackStatus{TimeLimit: project.PreviewSettings.TimeLimit}
	if !file.FileType.TimeBased() || !lifecycle.PlaybackLimitReached(project.PreviewSettings, access, req.Position) {
		return status, nil
	}

	status.LimitReached = true
	s.Record(ctx, &models.AnalyticsEvent{
		ProjectID: project.ID,
		UserID:    r.UserID,
		Event:     models.EventPreviewLimitReached,
		Metadata: models.JSONB{
			"file_id":      file.ID.String(),
			"position":     req.Position,
			"time_limit":   *project.PreviewSettings.TimeLimit,
			"viewer_email": r.Email,
		},
		IPAddress: info.IPAddress,
		UserAgent: info.UserAgent,
	})
	return status, nil
}

// ProjectSummary returns per-kind counts and the latest events. Owner only.
func (s *AnalyticsService) ProjectSummary(ctx context.Context, r lifecycle.Requester, projectID uuid.UUID, limit int) (*ProjectAnalytics, error) {
	project, err := s.repo.Projects().Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !r.Owns(project) && !r.IsAdmin() {
		return nil, errs.Forbidden("only the project owner can view analytics")
	}

	counts, err := s.repo.Analytics().CountByKind(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	recent, err := s.repo.Analytics().ListByProject(ctx, projectID, limit)
	if err != nil {
		return nil, err
	}

	return &ProjectAnalytics{ProjectID: projectID, Counts: counts, Recent: recent}, nil
}
