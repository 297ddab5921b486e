package services

import (
	"sync"

	"github.com/google/uuid"

	"github.com/javajoker/payhub-backend/internal/errs"
	"github.com/javajoker/payhub-backend/internal/models"
)

func (s *ServiceTestSuite) TestPaymentFreezesCommission() {
	project, _ := s.approvedProject("100.00")

	payment := s.pay(project, "pi_commission")

	s.True(payment.Amount.Equal(dec("100.00")))
	s.True(payment.Commission.Equal(dec("15.00")))
	s.True(payment.NetAmount.Equal(dec("85.00")))
	s.True(payment.CommissionRate.Equal(dec("15")))
	s.Equal(models.PaymentStatusSucceeded, payment.Status)
	s.Equal(clientEmail, payment.ClientEmail)
	s.Equal(models.ProjectStatusPaid, s.status(project.ID))

	freelancer, err := s.repo.Users().Get(s.ctx, s.freelancer.ID)
	s.Require().NoError(err)
	s.True(freelancer.TotalEarnings.Equal(dec("85.00")))

	// Raising the default rate later does not touch the recorded split.
	rate := dec("30")
	_, err = s.admin.UpdateUserCommission(s.ctx, s.owner, s.freelancer.ID, &UpdateCommissionRequest{CommissionRate: rate})
	s.Require().NoError(err)
	stored, err := s.repo.Payments().GetByProviderReference(s.ctx, "pi_commission")
	s.Require().NoError(err)
	s.True(stored.Commission.Equal(dec("15.00")))
}

func (s *ServiceTestSuite) TestPaymentIsIdempotentByReference() {
	project, _ := s.approvedProject("100")

	first := s.pay(project, "pi_once")
	second := s.pay(project, "pi_once")
	s.Equal(first.ID, second.ID)

	payments, err := s.repo.Payments().ListByProject(s.ctx, project.ID)
	s.Require().NoError(err)
	s.Len(payments, 1)

	freelancer, err := s.repo.Users().Get(s.ctx, s.freelancer.ID)
	s.Require().NoError(err)
	s.True(freelancer.TotalEarnings.Equal(dec("85")))
	s.Equal(int64(1), s.eventCount(project.ID, models.EventPaymentSucceeded))
}

func (s *ServiceTestSuite) TestConcurrentDuplicateCallbacksRecordOnePayment() {
	project, _ := s.approvedProject("100")

	var wg sync.WaitGroup
	ids := make([]uuid.UUID, 5)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payment, err := s.payments.HandlePaymentSucceeded(s.ctx, PaymentConfirmation{
				ProjectID: project.ID, Amount: project.Price, ProviderReference: "pi_dup",
			})
			if s.NoError(err) {
				ids[i] = payment.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		s.Equal(ids[0], id)
	}
	freelancer, err := s.repo.Users().Get(s.ctx, s.freelancer.ID)
	s.Require().NoError(err)
	s.True(freelancer.TotalEarnings.Equal(dec("85")))
}

func (s *ServiceTestSuite) TestPaymentForProjectNotApprovedIsAnomaly() {
	project, _ := s.publishedProject("100")

	_, err := s.payments.HandlePaymentSucceeded(s.ctx, PaymentConfirmation{
		ProjectID: project.ID, Amount: project.Price, ProviderReference: "pi_early",
	})
	s.ErrorIs(err, errs.ErrPaymentAnomaly)
	s.Equal(models.ProjectStatusPreview, s.status(project.ID))

	_, err = s.repo.Payments().GetByProviderReference(s.ctx, "pi_early")
	s.ErrorIs(err, errs.ErrNotFound)

	freelancer, err := s.repo.Users().Get(s.ctx, s.freelancer.ID)
	s.Require().NoError(err)
	s.True(freelancer.TotalEarnings.IsZero())
}

func (s *ServiceTestSuite) TestPaymentAmountMismatchIsAnomaly() {
	project, _ := s.approvedProject("100")

	_, err := s.payments.HandlePaymentSucceeded(s.ctx, PaymentConfirmation{
		ProjectID: project.ID, Amount: dec("99.99"), ProviderReference: "pi_short",
	})
	s.ErrorIs(err, errs.ErrPaymentAnomaly)
	s.Equal(models.ProjectStatusApproved, s.status(project.ID))
}

func (s *ServiceTestSuite) TestWebhookAcknowledgesAnomalies() {
	project, _ := s.publishedProject("100")
	s.provider.confirmation = &PaymentConfirmation{
		ProjectID: project.ID, Amount: project.Price, ProviderReference: "pi_hook",
	}

	s.NoError(s.payments.HandleWebhook(s.ctx, []byte("{}"), "sig"))
	s.Equal(models.ProjectStatusPreview, s.status(project.ID))

	s.provider.confirmation = &PaymentConfirmation{
		ProjectID: uuid.New(), Amount: project.Price, ProviderReference: "pi_unknown",
	}
	s.NoError(s.payments.HandleWebhook(s.ctx, []byte("{}"), "sig"))

	s.provider.confirmation = nil
	s.provider.parseErr = errs.Unauthorized("invalid webhook signature")
	s.ErrorIs(s.payments.HandleWebhook(s.ctx, []byte("{}"), "bad"), errs.ErrUnauthorized)
}

func (s *ServiceTestSuite) TestWebhookRecordsPayment() {
	project, _ := s.approvedProject("100")
	s.provider.confirmation = &PaymentConfirmation{
		ProjectID: project.ID, Amount: dec("100.00"), ProviderReference: "pi_webhook",
	}

	s.Require().NoError(s.payments.HandleWebhook(s.ctx, []byte("{}"), "sig"))
	s.Equal(models.ProjectStatusPaid, s.status(project.ID))

	notifications, err := s.notifications.List(s.ctx, s.freelancer.ID, false)
	s.Require().NoError(err)
	s.Equal(NotificationPayment, notifications[0].Type)
}

func (s *ServiceTestSuite) TestCheckoutRules() {
	project, _ := s.publishedProject("100")

	_, err := s.payments.CreateCheckout(s.ctx, s.client, project.ID)
	s.ErrorIs(err, errs.ErrInvalidTransition)

	_, err = s.projects.Approve(s.ctx, s.client, project.ID)
	s.Require().NoError(err)

	_, err = s.payments.CreateCheckout(s.ctx, s.stranger, project.ID)
	s.ErrorIs(err, errs.ErrForbidden)

	checkout, err := s.payments.CreateCheckout(s.ctx, s.client, project.ID)
	s.Require().NoError(err)
	s.Equal("pi_test_1", checkout.PaymentIntentID)
	s.True(checkout.Amount.Equal(dec("100")))
	s.Equal("usd", checkout.Currency)

	stored, err := s.repo.Projects().Get(s.ctx, project.ID)
	s.Require().NoError(err)
	s.True(stored.PaymentAttempted())
	s.Require().Len(s.provider.intents, 1)
	s.Equal(clientEmail, s.provider.intents[0].ClientEmail)
}

func (s *ServiceTestSuite) TestEarnings() {
	p1, _ := s.approvedProject("100")
	s.pay(p1, "pi_a")
	p2, _ := s.approvedProject("200")
	s.pay(p2, "pi_b")

	earnings, err := s.payments.GetEarnings(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Equal(int64(2), earnings.PaymentCount)
	s.True(earnings.GrossRevenue.Equal(dec("300")))
	s.True(earnings.CommissionPaid.Equal(dec("45")))
	s.True(earnings.TotalEarnings.Equal(dec("255")))

	history, total, err := s.payments.GetPaymentHistory(s.ctx, s.owner, paginationAll())
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(history, 2)

	_, err = s.payments.GetEarnings(s.ctx, s.client)
	s.ErrorIs(err, errs.ErrForbidden)
}

// Two end-to-end runs of the whole lifecycle.
func (s *ServiceTestSuite) TestLifecycleEndToEnd() {
	project, err := s.projects.CreateProject(s.ctx, s.owner, &CreateProjectRequest{
		Title: "Album master", ClientEmail: clientEmail, Price: dec("200"),
	})
	s.Require().NoError(err)
	rate := dec("10")
	admin := s.createUser("admin@example.com", models.RoleAdmin, "0")
	adminReq := s.owner
	adminReq.UserID, adminReq.Role = &admin.ID, admin.Role
	_, err = s.projects.UpdateProject(s.ctx, adminReq, project.ID, &UpdateProjectRequest{CommissionRate: &rate})
	s.Require().NoError(err)

	track := s.upload(project.ID, "master.wav", "audio/wav")
	s.uploadPreview(track.ID, "master-preview.mp3", "audio/mpeg")

	_, err = s.projects.Publish(s.ctx, s.owner, project.ID)
	s.Require().NoError(err)
	_, err = s.projects.Approve(s.ctx, s.client, project.ID)
	s.Require().NoError(err)
	_, err = s.payments.CreateCheckout(s.ctx, s.client, project.ID)
	s.Require().NoError(err)

	project, err = s.repo.Projects().Get(s.ctx, project.ID)
	s.Require().NoError(err)
	payment := s.pay(project, "pi_album")
	s.True(payment.Commission.Equal(dec("20.00")))
	s.True(payment.NetAmount.Equal(dec("180.00")))

	delivered, err := s.projects.Deliver(s.ctx, s.owner, project.ID)
	s.Require().NoError(err)
	s.Equal(models.ProjectStatusDelivered, delivered.Status)

	download, err := s.files.Retrieve(s.ctx, s.client, track.ID, "")
	s.Require().NoError(err)
	s.Equal(track.FilePath, relativeKey(s, download.LocalPath))

	// draft -> preview -> approve on a second project, then cancelled before payment.
	second, _ := s.approvedProject("50")
	_, err = s.projects.Cancel(s.ctx, s.owner, second.ID)
	s.Require().NoError(err)
	_, err = s.payments.HandlePaymentSucceeded(s.ctx, PaymentConfirmation{
		ProjectID: second.ID, Amount: second.Price, ProviderReference: "pi_late",
	})
	s.ErrorIs(err, errs.ErrPaymentAnomaly)
	s.Equal(models.ProjectStatusCancelled, s.status(second.ID))

	// publish, approve, payment, deliver
	s.Equal(int64(4), s.eventCount(project.ID, models.EventStatusChange))
}
