// internal/services/notification_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/payhub-backend/internal/config"
	"github.com/javajoker/payhub-backend/internal/models"
	"github.com/javajoker/payhub-backend/internal/repository"
)

const (
	NotificationComment   = "comment"
	NotificationApproval  = "approval"
	NotificationPayment   = "payment"
	NotificationDelivered = "delivered"
)

// NotificationService writes in-app notifications and, when SMTP is enabled,
// mirrors them by email. Callers treat failures as non-fatal.
type NotificationService struct {
	repo   repository.Repository
	config *config.Config
	send   func(to, subject, body string) error
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(repo repository.Repository, config *config.Config) *NotificationService {
	s := &NotificationService{
		repo:   repo,
		config: config,
	}
	s.send = s.sendEmail
	return s
}

func (s *NotificationService) NotifyComment(ctx context.Context, project *models.Project, comment *models.Comment) {
	if !project.IsClient(comment.AuthorEmail) {
		return
	}

	author := comment.AuthorName
	if author == "" {
		author = comment.AuthorEmail
	}

	s.notifyFreelancer(ctx, project, NotificationComment, "commentary", map[string]interface{}{
		"Title":   "New comment on " + project.Title,
		"Author":  author,
		"Project": project.Title,
		"Content": comment.Content,
		"URL":     fmt.Sprintf("%s/projects/%s", s.config.Frontend.BaseURL, project.ID),
	}, models.JSONB{"comment_id": comment.ID.String()})
}

func (s *NotificationService) NotifyApproval(ctx context.Context, project *models.Project) {
	s.notifyFreelancer(ctx, project, NotificationApproval, "approval", map[string]interface{}{
		"Title":   project.Title + " was approved",
		"Client":  clientLabel(project),
		"Project": project.Title,
		"URL":     fmt.Sprintf("%s/projects/%s", s.config.Frontend.BaseURL, project.ID),
	}, nil)
}

func (s *NotificationService) NotifyPayment(ctx context.Context, project *models.Project, payment *models.Payment) {
	s.notifyFreelancer(ctx, project, NotificationPayment, "payment", map[string]interface{}{
		"Title":      "Payment received for " + project.Title,
		"Project":    project.Title,
		"Amount":     formatMoney(payment.Amount),
		"Commission": formatMoney(payment.Commission),
		"Net":        formatMoney(payment.NetAmount),
	}, models.JSONB{"payment_id": payment.ID.String(), "amount": formatMoney(payment.Amount)})
}

// NotifyDelivered emails the client that the final files are ready.
func (s *NotificationService) NotifyDelivered(ctx context.Context, project *models.Project) {
	to := project.DeliveryEmail
	if to == "" {
		to = project.ClientEmail
	}

	body, err := s.render("delivered", map[string]interface{}{
		"Client":  clientLabel(project),
		"Project": project.Title,
		"URL":     fmt.Sprintf("%s/preview/%s", s.config.Frontend.BaseURL, project.ID),
	})
	if err != nil {
		logrus.WithError(err).Warn("Failed to render delivery email")
		return
	}
	if err := s.send(to, "Your files for "+project.Title+" are ready", body); err != nil {
		logrus.WithError(err).WithField("project_id", project.ID).Warn("Failed to send delivery email")
	}
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	return s.repo.Notifications().ListByUser(ctx, userID, unreadOnly)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.repo.Notifications().MarkRead(ctx, notificationID, userID)
}

func (s *NotificationService) notifyFreelancer(ctx context.Context, project *models.Project, kind, templateName string, data map[string]interface{}, metadata models.JSONB) {
	if metadata == nil {
		metadata = models.JSONB{}
	}
	metadata["project_id"] = project.ID.String()

	title, _ := data["Title"].(string)
	body, err := s.render(templateName, data)
	if err != nil {
		logrus.WithError(err).WithField("template", templateName).Warn("Failed to render notification")
		return
	}

	notification := &models.Notification{
		UserID:   project.FreelancerID,
		Type:     kind,
		Title:    title,
		Content:  plainSummary(kind, data),
		Metadata: metadata,
	}
	if err := s.repo.Notifications().Create(ctx, notification); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"project_id": project.ID,
			"type":       kind,
		}).Warn("Failed to store notification")
	}

	if !s.config.Email.Enabled {
		return
	}
	freelancer, err := s.repo.Users().Get(ctx, project.FreelancerID)
	if err != nil {
		logrus.WithError(err).Warn("Failed to load freelancer for notification email")
		return
	}
	if err := s.send(freelancer.Email, title, body); err != nil {
		logrus.WithError(err).WithField("to", freelancer.Email).Warn("Failed to send notification email")
	}
}

func plainSummary(kind string, data map[string]interface{}) string {
	switch kind {
	case NotificationComment:
		return fmt.Sprintf("%v commented: %v", data["Author"], data["Content"])
	case NotificationApproval:
		return fmt.Sprintf("%v approved the preview of %v", data["Client"], data["Project"])
	case NotificationPayment:
		return fmt.Sprintf("Received %v (commission %v, net %v)", data["Amount"], data["Commission"], data["Net"])
	default:
		return fmt.Sprintf("%v", data["Title"])
	}
}

func clientLabel(project *models.Project) string {
	if project.ClientName != "" {
		return project.ClientName
	}
	return project.ClientEmail
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Helper methods
func (s *NotificationService) sendEmail(to, subject, body string) error {
	if !s.config.Email.Enabled || s.config.Email.SMTPHost == "" {
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Debug("Email disabled, skipping")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	from := s.config.Email.FromEmail
	if s.config.Email.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.Email.FromName, s.config.Email.FromEmail)
	}
	to = headerValue(to)
	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, buildMessage(from, to, subject, body))
}

// headerValue keeps user-supplied text on a single header line.
var headerValue = strings.NewReplacer("\r", " ", "\n", " ").Replace

func buildMessage(from, to, subject, body string) []byte {
	return []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		headerValue(from), headerValue(to), headerValue(subject), body))
}

func (s *NotificationService) render(templateType string, data interface{}) (string, error) {
	return s.renderTemplate(s.getEmailTemplate(templateType).Body, data)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"commentary": {
			Subject: "New comment",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<p>{{.Author}} left a comment on "{{.Project}}":</p>
	<blockquote>{{.Content}}</blockquote>
	<a href="{{.URL}}">Open project</a>
</body>
</html>`,
		},
		"approval": {
			Subject: "Preview approved",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Preview approved</h2>
	<p>{{.Client}} approved "{{.Project}}". Payment can now be collected.</p>
	<a href="{{.URL}}">Open project</a>
</body>
</html>`,
		},
		"payment": {
			Subject: "Payment received",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Payment received for "{{.Project}}"</h2>
	<p>Amount: {{.Amount}}<br>Commission: {{.Commission}}<br>Net: {{.Net}}</p>
</body>
</html>`,
		},
		"delivered": {
			Subject: "Files delivered",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<p>Hello {{.Client}},</p>
	<p>The final files for "{{.Project}}" are ready to download.</p>
	<a href="{{.URL}}">Download files</a>
</body>
</html>`,
		},
	}

	if template, exists := templates[templateType]; exists {
		return template
	}

	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Title}}</p>",
	}
}
