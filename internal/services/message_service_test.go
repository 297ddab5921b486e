package services

import (
	"github.com/javajoker/payhub-backend/internal/errs"
	"github.com/javajoker/payhub-backend/internal/models"
)

func (s *ServiceTestSuite) TestMessageThread() {
	project, _ := s.publishedProject("100")

	msg, err := s.messages.Send(s.ctx, s.client, project.ID, &SendMessageRequest{Content: "Any update?"})
	s.Require().NoError(err)
	s.Equal(models.SenderTypeClient, msg.SenderType)

	reply, err := s.messages.Send(s.ctx, s.owner, project.ID, &SendMessageRequest{Content: "Tomorrow"})
	s.Require().NoError(err)
	s.Equal(models.SenderTypeFreelancer, reply.SenderType)

	_, err = s.messages.Send(s.ctx, s.stranger, project.ID, &SendMessageRequest{Content: "hi"})
	s.ErrorIs(err, errs.ErrForbidden)

	thread, err := s.messages.List(s.ctx, s.owner, project.ID)
	s.Require().NoError(err)
	s.Require().Len(thread, 2)
	s.Equal(msg.ID, thread[0].ID)

	marked, err := s.messages.MarkRead(s.ctx, s.owner, project.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), marked)
}

func (s *ServiceTestSuite) TestClientCannotMessageDraft() {
	project := s.createProject("100")

	_, err := s.messages.Send(s.ctx, s.client, project.ID, &SendMessageRequest{Content: "hello"})
	s.ErrorIs(err, errs.ErrForbidden)
}
