package services

import (
	"github.com/google/uuid"

	"github.com/javajoker/payhub-backend/internal/errs"
	"github.com/javajoker/payhub-backend/internal/models"
)

func intPtr(i int) *int { return &i }

func (s *ServiceTestSuite) TestCommentThreads() {
	project, video := s.publishedProject("100")

	first, err := s.comments.CreateComment(s.ctx, s.client, project.ID, &CreateCommentRequest{
		FileID: &video.ID, Content: "Cut the intro", Timestamp: intPtr(12), AuthorName: "Client",
	})
	s.Require().NoError(err)
	second, err := s.comments.CreateComment(s.ctx, s.client, project.ID, &CreateCommentRequest{
		Content: "Overall looks great",
	})
	s.Require().NoError(err)
	reply, err := s.comments.CreateComment(s.ctx, s.owner, project.ID, &CreateCommentRequest{
		Content: "Will do", ParentID: &first.ID,
	})
	s.Require().NoError(err)
	s.Equal(s.freelancer.Email, reply.AuthorEmail)

	_, err = s.comments.CreateComment(s.ctx, s.client, project.ID, &CreateCommentRequest{
		Content: "Thanks", ParentID: &reply.ID,
	})
	s.ErrorIs(err, errs.ErrValidation)

	threads, err := s.comments.ListComments(s.ctx, s.client, project.ID)
	s.Require().NoError(err)
	s.Require().Len(threads, 2)
	s.Equal(first.ID, threads[0].ID)
	s.Require().Len(threads[0].Replies, 1)
	s.Equal(reply.ID, threads[0].Replies[0].ID)
	s.Equal(second.ID, threads[1].ID)
	s.Empty(threads[1].Replies)

	s.Equal(int64(3), s.eventCount(project.ID, models.EventComment))

	// Only the client's two comments notify the freelancer.
	notifications, err := s.notifications.List(s.ctx, s.freelancer.ID, true)
	s.Require().NoError(err)
	s.Len(notifications, 2)
}

func (s *ServiceTestSuite) TestCommentAnchors() {
	project, video := s.publishedProject("100")
	image := s.upload(project.ID, "still.png", "image/png")

	_, err := s.comments.CreateComment(s.ctx, s.client, project.ID, &CreateCommentRequest{
		FileID: &image.ID, Content: "Here", Timestamp: intPtr(3),
	})
	s.ErrorIs(err, errs.ErrValidation)

	_, err = s.comments.CreateComment(s.ctx, s.client, project.ID, &CreateCommentRequest{
		FileID: &video.ID, Content: "Both", Timestamp: intPtr(3), Position: &models.CommentPosition{X: 1, Y: 1},
	})
	s.ErrorIs(err, errs.ErrValidation)

	_, err = s.comments.CreateComment(s.ctx, s.client, project.ID, &CreateCommentRequest{
		Content: "Floating", Timestamp: intPtr(3),
	})
	s.ErrorIs(err, errs.ErrValidation)

	comment, err := s.comments.CreateComment(s.ctx, s.client, project.ID, &CreateCommentRequest{
		FileID: &image.ID, Content: "Brighter here", Position: &models.CommentPosition{X: 0.4, Y: 0.6},
	})
	s.Require().NoError(err)
	s.Equal(0.4, comment.Position.X)

	other := s.createProject("100")
	foreign := s.upload(other.ID, "other.mp4", "video/mp4")
	_, err = s.comments.CreateComment(s.ctx, s.client, project.ID, &CreateCommentRequest{
		FileID: &foreign.ID, Content: "Wrong file", Timestamp: intPtr(1),
	})
	s.ErrorIs(err, errs.ErrValidation)

	_, err = s.comments.CreateComment(s.ctx, s.client, project.ID, &CreateCommentRequest{
		Content: "Orphan", ParentID: func() *uuid.UUID { id := uuid.New(); return &id }(),
	})
	s.ErrorIs(err, errs.ErrValidation)
}

func (s *ServiceTestSuite) TestCommentAccessAndResolve() {
	project := s.createProject("100")

	_, err := s.comments.CreateComment(s.ctx, s.client, project.ID, &CreateCommentRequest{Content: "Early"})
	s.ErrorIs(err, errs.ErrForbidden)

	s.upload(project.ID, "cut.mp4", "video/mp4")
	_, err = s.projects.Publish(s.ctx, s.owner, project.ID)
	s.Require().NoError(err)

	comment, err := s.comments.CreateComment(s.ctx, s.client, project.ID, &CreateCommentRequest{Content: "Now"})
	s.Require().NoError(err)

	_, err = s.comments.SetResolved(s.ctx, s.client, comment.ID, true)
	s.ErrorIs(err, errs.ErrForbidden)

	resolved, err := s.comments.SetResolved(s.ctx, s.owner, comment.ID, true)
	s.Require().NoError(err)
	s.True(resolved.IsResolved)

	_, err = s.comments.ListComments(s.ctx, s.stranger, project.ID)
	s.ErrorIs(err, errs.ErrForbidden)
}
