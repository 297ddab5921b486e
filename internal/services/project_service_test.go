package services

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/javajoker/payhub-backend/internal/errs"
	"github.com/javajoker/payhub-backend/internal/lifecycle"
	"github.com/javajoker/payhub-backend/internal/models"
	"github.com/javajoker/payhub-backend/internal/repository"
)

func (s *ServiceTestSuite) TestCreateProjectUsesFreelancerRate() {
	project := s.createProject("250")

	s.Equal(models.ProjectStatusDraft, project.Status)
	s.True(project.CommissionRate.Equal(dec("15")))
	s.Equal(clientEmail, project.ClientEmail)
	s.True(project.PreviewSettings.Watermark)
}

func (s *ServiceTestSuite) TestCreateProjectRejectsClientsAndBadPrices() {
	_, err := s.projects.CreateProject(s.ctx, s.client, &CreateProjectRequest{
		Title: "x", ClientEmail: clientEmail, Price: dec("10"),
	})
	s.ErrorIs(err, errs.ErrForbidden)

	_, err = s.projects.CreateProject(s.ctx, s.owner, &CreateProjectRequest{
		Title: "x", ClientEmail: clientEmail, Price: dec("0"),
	})
	s.ErrorIs(err, errs.ErrValidation)

	_, err = s.projects.CreateProject(s.ctx, s.owner, &CreateProjectRequest{
		Title: "x", ClientEmail: "not-an-email", Price: dec("10"),
	})
	s.ErrorIs(err, errs.ErrValidation)
}

func (s *ServiceTestSuite) TestPublishRequiresAFile() {
	project := s.createProject("100")

	_, err := s.projects.Publish(s.ctx, s.owner, project.ID)
	s.ErrorIs(err, errs.ErrInvalidTransition)
	s.Equal(models.ProjectStatusDraft, s.status(project.ID))

	s.upload(project.ID, "poster.png", "image/png")
	published, err := s.projects.Publish(s.ctx, s.owner, project.ID)
	s.Require().NoError(err)
	s.Equal(models.ProjectStatusPreview, published.Status)
	s.Equal(int64(1), s.eventCount(project.ID, models.EventStatusChange))
}

func (s *ServiceTestSuite) TestApproveOnDraftIsInvalidTransition() {
	project := s.createProject("100")

	_, err := s.projects.Approve(s.ctx, s.client, project.ID)
	s.ErrorIs(err, errs.ErrInvalidTransition)
	s.Equal(models.ProjectStatusDraft, s.status(project.ID))
}

func (s *ServiceTestSuite) TestEventsRequireTheRightActor() {
	project, _ := s.publishedProject("100")

	_, err := s.projects.Approve(s.ctx, s.stranger, project.ID)
	s.ErrorIs(err, errs.ErrForbidden)

	_, err = s.projects.Cancel(s.ctx, s.client, project.ID)
	s.ErrorIs(err, errs.ErrForbidden)

	other := s.createUser("other@example.com", models.RoleFreelancer, "10")
	_, err = s.projects.Cancel(s.ctx, lifecycle.Requester{UserID: &other.ID, Role: other.Role}, project.ID)
	s.ErrorIs(err, errs.ErrForbidden)

	s.Equal(models.ProjectStatusPreview, s.status(project.ID))
}

func (s *ServiceTestSuite) TestApproveMatchesEmailIgnoringCase() {
	project, _ := s.publishedProject("100")

	approved, err := s.projects.Approve(s.ctx, lifecycle.Guest("  CLIENT@example.com "), project.ID)
	s.Require().NoError(err)
	s.Equal(models.ProjectStatusApproved, approved.Status)
	s.Equal(int64(1), s.eventCount(project.ID, models.EventApprove))

	notifications, err := s.notifications.List(s.ctx, s.freelancer.ID, true)
	s.Require().NoError(err)
	s.Require().Len(notifications, 1)
	s.Equal(NotificationApproval, notifications[0].Type)
}

func (s *ServiceTestSuite) TestCancelIsAbsorbing() {
	project, _ := s.publishedProject("100")

	cancelled, err := s.projects.Cancel(s.ctx, s.owner, project.ID)
	s.Require().NoError(err)
	s.Equal(models.ProjectStatusCancelled, cancelled.Status)

	_, err = s.projects.Publish(s.ctx, s.owner, project.ID)
	s.ErrorIs(err, errs.ErrInvalidTransition)
	_, err = s.projects.Approve(s.ctx, s.client, project.ID)
	s.ErrorIs(err, errs.ErrInvalidTransition)
	_, err = s.projects.Cancel(s.ctx, s.owner, project.ID)
	s.ErrorIs(err, errs.ErrInvalidTransition)
	_, err = s.projects.Deliver(s.ctx, s.owner, project.ID)
	s.ErrorIs(err, errs.ErrInvalidTransition)

	s.Equal(models.ProjectStatusCancelled, s.status(project.ID))
}

func (s *ServiceTestSuite) TestPaidProjectCannotBeCancelled() {
	project, _ := s.approvedProject("100")
	s.pay(project, "pi_paid")

	_, err := s.projects.Cancel(s.ctx, s.owner, project.ID)
	s.ErrorIs(err, errs.ErrInvalidTransition)
	s.Equal(models.ProjectStatusPaid, s.status(project.ID))
}

func (s *ServiceTestSuite) TestConcurrentApproveHasOneWinner() {
	project, _ := s.publishedProject("100")

	const racers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []error
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.projects.Approve(s.ctx, s.client, project.ID)
			mu.Lock()
			results = append(results, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		// Losers either lost the CAS or read the status after the winner.
		s.True(errs.IsConflict(err) || errs.IsInvalidTransition(err), "unexpected error %v", err)
	}
	s.Equal(1, wins)
	s.Equal(models.ProjectStatusApproved, s.status(project.ID))
	s.Equal(int64(1), s.eventCount(project.ID, models.EventApprove))
}

func (s *ServiceTestSuite) TestGetProjectAccess() {
	project := s.createProject("100")
	s.upload(project.ID, "cut.mp4", "video/mp4")

	view, err := s.projects.GetProject(s.ctx, s.owner, project.ID)
	s.Require().NoError(err)
	s.Equal("full", view.Access)
	s.Len(view.Files, 1)

	_, err = s.projects.GetProject(s.ctx, s.client, project.ID)
	s.ErrorIs(err, errs.ErrForbidden)

	_, err = s.projects.Publish(s.ctx, s.owner, project.ID)
	s.Require().NoError(err)

	view, err = s.projects.GetProject(s.ctx, s.client, project.ID)
	s.Require().NoError(err)
	s.Equal("preview", view.Access)

	_, err = s.projects.GetProject(s.ctx, s.stranger, project.ID)
	s.ErrorIs(err, errs.ErrForbidden)

	_, err = s.projects.GetProject(s.ctx, s.owner, uuid.New())
	s.ErrorIs(err, errs.ErrNotFound)
}

func (s *ServiceTestSuite) TestUpdateProjectPricingLock() {
	project, _ := s.approvedProject("100")

	title := "Brand film v2"
	updated, err := s.projects.UpdateProject(s.ctx, s.owner, project.ID, &UpdateProjectRequest{Title: &title})
	s.Require().NoError(err)
	s.Equal(title, updated.Title)

	price := dec("150")
	_, err = s.projects.UpdateProject(s.ctx, s.owner, project.ID, &UpdateProjectRequest{Price: &price})
	s.ErrorIs(err, errs.ErrInvalidTransition)

	same := dec("100.00")
	_, err = s.projects.UpdateProject(s.ctx, s.owner, project.ID, &UpdateProjectRequest{Price: &same})
	s.NoError(err)

	_, err = s.payments.CreateCheckout(s.ctx, s.client, project.ID)
	s.Require().NoError(err)

	admin := s.createUser("admin@example.com", models.RoleAdmin, "0")
	rate := dec("5")
	_, err = s.projects.UpdateProject(s.ctx, lifecycle.Requester{UserID: &admin.ID, Role: admin.Role}, project.ID, &UpdateProjectRequest{CommissionRate: &rate})
	s.ErrorIs(err, errs.ErrConflict)

	stored, err := s.repo.Projects().Get(s.ctx, project.ID)
	s.Require().NoError(err)
	s.True(stored.Price.Equal(dec("100")))
}

func (s *ServiceTestSuite) TestApprovedProjectKeepsItsClient() {
	project, video := s.approvedProject("100")

	other := "other@example.com"
	price := dec("900")
	_, err := s.projects.UpdateProject(s.ctx, s.owner, project.ID, &UpdateProjectRequest{ClientEmail: &other, Price: &price})
	s.ErrorIs(err, errs.ErrInvalidTransition)
	_, err = s.projects.UpdateProject(s.ctx, s.owner, project.ID, &UpdateProjectRequest{ClientEmail: &other})
	s.ErrorIs(err, errs.ErrInvalidTransition)

	same := "Client@Example.com"
	_, err = s.projects.UpdateProject(s.ctx, s.owner, project.ID, &UpdateProjectRequest{ClientEmail: &same})
	s.NoError(err)

	_, err = s.payments.CreateCheckout(s.ctx, lifecycle.Guest(other), project.ID)
	s.ErrorIs(err, errs.ErrForbidden)

	checkout, err := s.payments.CreateCheckout(s.ctx, s.client, project.ID)
	s.Require().NoError(err)
	s.True(checkout.Amount.Equal(dec("100")))

	s.pay(project, "pi_client")
	download, err := s.files.Retrieve(s.ctx, s.client, video.ID, "")
	s.Require().NoError(err)
	s.Equal(lifecycle.RenditionOriginal, download.Rendition)
}

func (s *ServiceTestSuite) TestClientCanChangeBeforeApproval() {
	project, _ := s.publishedProject("100")

	other := "other@example.com"
	price := dec("120")
	updated, err := s.projects.UpdateProject(s.ctx, s.owner, project.ID, &UpdateProjectRequest{ClientEmail: &other, Price: &price})
	s.Require().NoError(err)
	s.Equal(other, updated.ClientEmail)
	s.True(updated.Price.Equal(price))

	_, err = s.projects.Approve(s.ctx, s.client, project.ID)
	s.ErrorIs(err, errs.ErrForbidden)
	_, err = s.projects.Approve(s.ctx, lifecycle.Guest(other), project.ID)
	s.NoError(err)
}

func (s *ServiceTestSuite) TestTerminalProjectsAreReadOnly() {
	project := s.createProject("100")
	_, err := s.projects.Cancel(s.ctx, s.owner, project.ID)
	s.Require().NoError(err)

	title := "Too late"
	_, err = s.projects.UpdateProject(s.ctx, s.owner, project.ID, &UpdateProjectRequest{Title: &title})
	s.ErrorIs(err, errs.ErrInvalidTransition)

	_, err = s.files.Upload(s.ctx, s.owner, project.ID, &UploadInput{
		OriginalName: "late.mp4",
		ContentType:  "video/mp4",
		Size:         4,
		Body:         bytes.NewReader([]byte("late")),
	})
	s.ErrorIs(err, errs.ErrInvalidTransition)
}

func (s *ServiceTestSuite) TestOnlyAdminsChangeCommission() {
	project := s.createProject("100")
	rate := dec("5")

	_, err := s.projects.UpdateProject(s.ctx, s.owner, project.ID, &UpdateProjectRequest{CommissionRate: &rate})
	s.ErrorIs(err, errs.ErrForbidden)

	admin := s.createUser("admin@example.com", models.RoleAdmin, "0")
	updated, err := s.projects.UpdateProject(s.ctx, lifecycle.Requester{UserID: &admin.ID, Role: admin.Role}, project.ID, &UpdateProjectRequest{CommissionRate: &rate})
	s.Require().NoError(err)
	s.True(updated.CommissionRate.Equal(rate))
}

func (s *ServiceTestSuite) TestDeleteProjectRemovesFiles() {
	project := s.createProject("100")
	file := s.upload(project.ID, "cut.mp4", "video/mp4")
	stored := filepath.Join(s.cfg.Storage.LocalDir, filepath.FromSlash(file.FilePath))
	s.FileExists(stored)

	s.Require().NoError(s.projects.DeleteProject(s.ctx, s.owner, project.ID))

	_, err := s.repo.Projects().Get(s.ctx, project.ID)
	s.ErrorIs(err, errs.ErrNotFound)
	_, err = os.Stat(stored)
	s.True(os.IsNotExist(err))
}

func (s *ServiceTestSuite) TestDeleteProjectWithPaymentIsRejected() {
	project, _ := s.approvedProject("100")
	s.pay(project, "pi_keep")

	err := s.projects.DeleteProject(s.ctx, s.owner, project.ID)
	s.ErrorIs(err, errs.ErrConflict)
	s.Equal(models.ProjectStatusPaid, s.status(project.ID))
}

func (s *ServiceTestSuite) TestListMyProjectsFiltersByStatus() {
	s.createProject("10")
	s.publishedProject("20")

	other := s.createUser("other@example.com", models.RoleFreelancer, "10")
	_, err := s.projects.CreateProject(s.ctx, lifecycle.Requester{UserID: &other.ID, Role: other.Role}, &CreateProjectRequest{
		Title: "Not mine", ClientEmail: clientEmail, Price: dec("10"),
	})
	s.Require().NoError(err)

	all, total, err := s.projects.ListMyProjects(s.ctx, s.owner, repository.ProjectFilter{})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(all, 2)

	status := models.ProjectStatusPreview
	previews, total, err := s.projects.ListMyProjects(s.ctx, s.owner, repository.ProjectFilter{Status: &status})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal(models.ProjectStatusPreview, previews[0].Status)
}
