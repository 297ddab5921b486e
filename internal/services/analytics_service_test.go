package services

import (
	"github.com/javajoker/payhub-backend/internal/errs"
	"github.com/javajoker/payhub-backend/internal/models"
)

func (s *ServiceTestSuite) TestTrackViewerEvents() {
	project, video := s.publishedProject("100")
	info := ClientInfo{IPAddress: "203.0.113.9", UserAgent: "test"}

	s.Require().NoError(s.analytics.Track(s.ctx, s.client, project.ID, &TrackEventRequest{Event: models.EventView}, info))
	s.Require().NoError(s.analytics.Track(s.ctx, s.client, project.ID, &TrackEventRequest{
		Event: models.EventPlay, FileID: &video.ID,
	}, info))

	err := s.analytics.Track(s.ctx, s.stranger, project.ID, &TrackEventRequest{Event: models.EventView}, info)
	s.ErrorIs(err, errs.ErrForbidden)

	err = s.analytics.Track(s.ctx, s.client, project.ID, &TrackEventRequest{Event: models.EventPaymentSucceeded}, info)
	s.ErrorIs(err, errs.ErrValidation)

	summary, err := s.analytics.ProjectSummary(s.ctx, s.owner, project.ID, 10)
	s.Require().NoError(err)
	s.Equal(int64(1), summary.Counts[models.EventView])
	s.Equal(int64(1), summary.Counts[models.EventPlay])
	s.NotEmpty(summary.Recent)

	_, err = s.analytics.ProjectSummary(s.ctx, s.client, project.ID, 10)
	s.ErrorIs(err, errs.ErrForbidden)
}

func (s *ServiceTestSuite) TestPlaybackLimit() {
	project := s.createProject("100")
	limit := 30
	_, err := s.projects.UpdateProject(s.ctx, s.owner, project.ID, &UpdateProjectRequest{
		PreviewSettings: &models.PreviewSettings{Watermark: true, TimeLimit: &limit},
	})
	s.Require().NoError(err)
	video := s.upload(project.ID, "cut.mp4", "video/mp4")
	_, err = s.projects.Publish(s.ctx, s.owner, project.ID)
	s.Require().NoError(err)

	status, err := s.analytics.ReportPlayback(s.ctx, s.client, project.ID, &PlaybackReportRequest{FileID: video.ID, Position: 12}, ClientInfo{})
	s.Require().NoError(err)
	s.False(status.LimitReached)

	status, err = s.analytics.ReportPlayback(s.ctx, s.client, project.ID, &PlaybackReportRequest{FileID: video.ID, Position: 30}, ClientInfo{})
	s.Require().NoError(err)
	s.True(status.LimitReached)
	s.Equal(30, *status.TimeLimit)

	status, err = s.analytics.ReportPlayback(s.ctx, s.owner, project.ID, &PlaybackReportRequest{FileID: video.ID, Position: 90}, ClientInfo{})
	s.Require().NoError(err)
	s.False(status.LimitReached)

	s.Equal(int64(1), s.eventCount(project.ID, models.EventPreviewLimitReached))
}
