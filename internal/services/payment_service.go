// internal/services/payment_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/javajoker/payhub-backend/internal/config"
	"github.com/javajoker/payhub-backend/internal/errs"
	"github.com/javajoker/payhub-backend/internal/lifecycle"
	"github.com/javajoker/payhub-backend/internal/models"
	"github.com/javajoker/payhub-backend/internal/repository"
	"github.com/javajoker/payhub-backend/internal/utils"
)

const stripePaymentSucceeded = "payment_intent.succeeded"

// PaymentProvider is the external payment processor.
type PaymentProvider interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	// ParseWebhook verifies and decodes a callback. It returns a nil
	// confirmation for event types that do not confirm a payment.
	ParseWebhook(payload []byte, signature string) (*PaymentConfirmation, error)
}

type IntentRequest struct {
	ProjectID   uuid.UUID
	Amount      decimal.Decimal
	Currency    string
	ClientEmail string
	Description string
}

type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

// PaymentConfirmation is what the provider tells us about a settled payment.
type PaymentConfirmation struct {
	ProjectID         uuid.UUID
	Amount            decimal.Decimal
	ProviderReference string
}

type CheckoutResponse struct {
	PaymentIntentID string          `json:"payment_intent_id"`
	ClientSecret    string          `json:"client_secret"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	PublishableKey  string          `json:"publishable_key,omitempty"`
}

type EarningsSummary struct {
	TotalEarnings  decimal.Decimal `json:"total_earnings"`
	GrossRevenue   decimal.Decimal `json:"gross_revenue"`
	CommissionPaid decimal.Decimal `json:"commission_paid"`
	PaymentCount   int64           `json:"payment_count"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	Currency       string          `json:"currency"`
}

type PaymentService struct {
	repo                repository.Repository
	provider            PaymentProvider
	config              *config.Config
	analyticsService    *AnalyticsService
	notificationService *NotificationService
}

func NewPaymentService(repo repository.Repository, provider PaymentProvider, config *config.Config, analyticsService *AnalyticsService, notificationService *NotificationService) *PaymentService {
	return &PaymentService{
		repo:                repo,
		provider:            provider,
		config:              config,
		analyticsService:    analyticsService,
		notificationService: notificationService,
	}
}

// CreateCheckout starts payment for an approved project. Recording the intent
// freezes the project's price and commission rate.
func (s *PaymentService) CreateCheckout(ctx context.Context, r lifecycle.Requester, projectID uuid.UUID) (*CheckoutResponse, error) {
	project, err := s.repo.Projects().Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsClient(r.Email) {
		return nil, errs.Forbidden("email does not match the project's client")
	}
	if project.Status != models.ProjectStatusApproved {
		return nil, errs.PreconditionFailed("checkout is only available for approved projects")
	}

	intent, err := s.provider.CreateIntent(ctx, IntentRequest{
		ProjectID:   project.ID,
		Amount:      project.Price,
		Currency:    s.config.Payment.Currency,
		ClientEmail: project.ClientEmail,
		Description: project.Title,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	if err := s.repo.Projects().SetPaymentIntent(ctx, project.ID, intent.ID); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"project_id":        project.ID,
		"payment_intent_id": intent.ID,
	}).Info("Checkout started")

	return &CheckoutResponse{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          project.Price,
		Currency:        s.config.Payment.Currency,
		PublishableKey:  s.config.Payment.StripePublishableKey,
	}, nil
}

// HandleWebhook verifies a provider callback and applies it. Anomalies are
// logged and acknowledged so the provider does not retry them.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	confirmation, err := s.provider.ParseWebhook(payload, signature)
	if errs.IsPaymentAnomaly(err) {
		logrus.WithError(err).Warn("Payment anomaly in webhook payload")
		return nil
	}
	if err != nil {
		return err
	}
	if confirmation == nil {
		return nil
	}

	_, err = s.HandlePaymentSucceeded(ctx, *confirmation)
	if errs.IsPaymentAnomaly(err) {
		return nil
	}
	return err
}

// HandlePaymentSucceeded records a confirmed payment. It is idempotent by
// provider reference: a repeated confirmation returns the stored payment.
// The status change, the payment row and the earnings increment commit
// together or not at all.
func (s *PaymentService) HandlePaymentSucceeded(ctx context.Context, confirmation PaymentConfirmation) (*models.Payment, error) {
	reference := strings.TrimSpace(confirmation.ProviderReference)
	if reference == "" {
		return nil, errs.Validation("provider reference is required")
	}

	existing, err := s.repo.Payments().GetByProviderReference(ctx, reference)
	if err == nil {
		return existing, nil
	}
	if !errs.IsNotFound(err) {
		return nil, err
	}

	log := logrus.WithFields(logrus.Fields{
		"project_id":         confirmation.ProjectID,
		"provider_reference": reference,
		"amount":             confirmation.Amount.StringFixed(2),
	})

	var (
		payment *models.Payment
		project *models.Project
	)
	err = s.repo.WithTransaction(ctx, func(tx repository.Repository) error {
		p, err := tx.Projects().Get(ctx, confirmation.ProjectID)
		if err != nil {
			if errs.IsNotFound(err) {
				return errs.PaymentAnomaly("payment for unknown project")
			}
			return err
		}
		if p.Status != models.ProjectStatusApproved {
			return errs.PaymentAnomaly("payment for a project in status " + string(p.Status))
		}
		if !confirmation.Amount.Equal(p.Price) {
			return errs.PaymentAnomaly(fmt.Sprintf("confirmed amount %s does not match price %s",
				confirmation.Amount.StringFixed(2), p.Price.StringFixed(2)))
		}

		split, err := lifecycle.ComputeCommission(p.Price, p.CommissionRate)
		if err != nil {
			return err
		}

		to, err := lifecycle.Next(p.Status, lifecycle.EventPaymentSucceeded)
		if err != nil {
			return err
		}
		project, err = tx.Projects().CompareAndSetStatus(ctx, p.ID, p.Status, to)
		if err != nil {
			if errs.IsConflict(err) {
				return errs.PaymentAnomaly("project status changed while recording payment")
			}
			return err
		}

		payment = &models.Payment{
			ProjectID:         p.ID,
			FreelancerID:      p.FreelancerID,
			Amount:            split.Gross,
			Commission:        split.Commission,
			NetAmount:         split.Net,
			CommissionRate:    split.Rate,
			ProviderReference: reference,
			Status:            models.PaymentStatusSucceeded,
			ClientEmail:       p.ClientEmail,
			Metadata:          models.JSONB{"currency": s.config.Payment.Currency},
		}
		if err := tx.Payments().Create(ctx, payment); err != nil {
			return err
		}

		return tx.Users().AddEarnings(ctx, p.FreelancerID, split.Net)
	})

	switch {
	case err == nil:
	case errs.IsAlreadyExists(err):
		// A concurrent delivery of the same callback won the insert.
		return s.repo.Payments().GetByProviderReference(ctx, reference)
	case errs.IsPaymentAnomaly(err):
		// A duplicate delivery that raced the first one sees the project
		// already paid; answer it with the stored payment.
		if existing, lookupErr := s.repo.Payments().GetByProviderReference(ctx, reference); lookupErr == nil {
			return existing, nil
		}
		log.WithError(err).Warn("Payment anomaly, project left unchanged")
		return nil, err
	default:
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"commission": payment.Commission.StringFixed(2),
		"net":        payment.NetAmount.StringFixed(2),
	}).Info("Payment recorded")

	s.analyticsService.Record(ctx, &models.AnalyticsEvent{
		ProjectID: project.ID,
		Event:     models.EventPaymentSucceeded,
		Metadata: models.JSONB{
			"payment_id": payment.ID.String(),
			"amount":     payment.Amount.StringFixed(2),
			"commission": payment.Commission.StringFixed(2),
		},
	})
	s.analyticsService.Record(ctx, &models.AnalyticsEvent{
		ProjectID: project.ID,
		Event:     models.EventStatusChange,
		Metadata:  models.JSONB{"from": string(models.ProjectStatusApproved), "to": string(project.Status)},
	})
	s.notificationService.NotifyPayment(ctx, project, payment)

	return payment, nil
}

func (s *PaymentService) GetEarnings(ctx context.Context, r lifecycle.Requester) (*EarningsSummary, error) {
	if r.UserID == nil || !r.Role.IsFreelancer() {
		return nil, errs.Forbidden("only freelancers have earnings")
	}

	user, err := s.repo.Users().Get(ctx, *r.UserID)
	if err != nil {
		return nil, err
	}
	summary, err := s.repo.Payments().Summarize(ctx, r.UserID)
	if err != nil {
		return nil, err
	}

	return &EarningsSummary{
		TotalEarnings:  user.TotalEarnings,
		GrossRevenue:   summary.Gross,
		CommissionPaid: summary.Commission,
		PaymentCount:   summary.Count,
		CommissionRate: user.CommissionRate,
		Currency:       s.config.Payment.Currency,
	}, nil
}

func (s *PaymentService) GetPaymentHistory(ctx context.Context, r lifecycle.Requester, params utils.PaginationParams) ([]models.Payment, int64, error) {
	if r.UserID == nil || !r.Role.IsFreelancer() {
		return nil, 0, errs.Forbidden("only freelancers have payment history")
	}
	return s.repo.Payments().ListByFreelancer(ctx, *r.UserID, params)
}

// ListProjectPayments is visible to the project owner and admins.
func (s *PaymentService) ListProjectPayments(ctx context.Context, r lifecycle.Requester, projectID uuid.UUID) ([]models.Payment, error) {
	project, err := s.repo.Projects().Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !r.Owns(project) && !r.IsAdmin() {
		return nil, errs.Forbidden("only the owning freelancer can view payments")
	}
	return s.repo.Payments().ListByProject(ctx, projectID)
}

// StripeProvider talks to Stripe payment intents.
type StripeProvider struct {
	webhookSecret string
}

func NewStripeProvider(cfg config.PaymentConfig) *StripeProvider {
	stripe.Key = cfg.StripeSecretKey

	return &StripeProvider{webhookSecret: cfg.StripeWebhookSecret}
}

func (p *StripeProvider) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	// Stripe amounts are in the smallest currency unit
	amountInCents := req.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	params := &stripe.PaymentIntentParams{
		Amount:       stripe.Int64(amountInCents),
		Currency:     stripe.String(req.Currency),
		Description:  stripe.String(req.Description),
		ReceiptEmail: stripe.String(req.ClientEmail),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("project_id", req.ProjectID.String())
	params.SetIdempotencyKey(fmt.Sprintf("checkout-%s-%d", req.ProjectID, amountInCents))

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}

	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}

func (p *StripeProvider) ParseWebhook(payload []byte, signature string) (*PaymentConfirmation, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, errs.Unauthorized("invalid webhook signature")
	}

	if string(event.Type) != stripePaymentSucceeded {
		logrus.WithField("type", event.Type).Debug("Ignoring Stripe event")
		return nil, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, errs.Validation("malformed payment intent payload")
	}

	projectID, err := uuid.Parse(pi.Metadata["project_id"])
	if err != nil {
		return nil, errs.PaymentAnomaly("payment intent " + pi.ID + " has no project_id metadata")
	}

	received := pi.AmountReceived
	if received == 0 {
		received = pi.Amount
	}

	return &PaymentConfirmation{
		ProjectID:         projectID,
		Amount:            decimal.New(received, -2),
		ProviderReference: pi.ID,
	}, nil
}
