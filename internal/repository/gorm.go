// internal/repository/gorm.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/javajoker/payhub-backend/internal/errs"
	"github.com/javajoker/payhub-backend/internal/models"
	"github.com/javajoker/payhub-backend/internal/utils"
)

// GormRepository is the Postgres-backed Repository. The *gorm.DB should be
// opened with TranslateError enabled so unique violations surface as
// gorm.ErrDuplicatedKey.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Users() UserRepository                 { return gormUsers{r.db} }
func (r *GormRepository) Projects() ProjectRepository           { return gormProjects{r.db} }
func (r *GormRepository) Files() FileRepository                 { return gormFiles{r.db} }
func (r *GormRepository) Comments() CommentRepository           { return gormComments{r.db} }
func (r *GormRepository) Payments() PaymentRepository           { return gormPayments{r.db} }
func (r *GormRepository) Analytics() AnalyticsRepository        { return gormAnalytics{r.db} }
func (r *GormRepository) Messages() MessageRepository           { return gormMessages{r.db} }
func (r *GormRepository) Notifications() NotificationRepository { return gormNotifications{r.db} }
func (r *GormRepository) AuditLogs() AuditLogRepository         { return gormAuditLogs{r.db} }

func (r *GormRepository) WithTransaction(ctx context.Context, fn func(tx Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormRepository(tx))
	})
}

func translate(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errs.NotFound(resource)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errs.AlreadyExists(resource + " already exists")
	}
	return fmt.Errorf("%s: %w", resource, err)
}

// Users

type gormUsers struct{ db *gorm.DB }

func (r gormUsers) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(user).Error, "user")
}

func (r gormUsers) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (r gormUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (r gormUsers) GetBySubdomain(ctx context.Context, subdomain string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("subdomain = ? AND is_active = ?", strings.ToLower(subdomain), true).
		First(&user).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (r gormUsers) Update(ctx context.Context, id uuid.UUID, changes UserChanges) (*models.User, error) {
	updates := make(map[string]interface{})
	if changes.FirstName != nil {
		updates["first_name"] = *changes.FirstName
	}
	if changes.LastName != nil {
		updates["last_name"] = *changes.LastName
	}
	if changes.ProfileImageURL != nil {
		updates["profile_image_url"] = *changes.ProfileImageURL
	}
	if changes.Subdomain != nil {
		if *changes.Subdomain == "" {
			updates["subdomain"] = nil
		} else {
			updates["subdomain"] = strings.ToLower(*changes.Subdomain)
		}
	}
	if changes.Role != nil {
		updates["role"] = *changes.Role
	}
	if changes.CommissionRate != nil {
		updates["commission_rate"] = *changes.CommissionRate
	}
	if changes.IsActive != nil {
		updates["is_active"] = *changes.IsActive
	}
	if changes.PasswordHash != nil {
		updates["password_hash"] = *changes.PasswordHash
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, translate(res.Error, "user")
		}
		if res.RowsAffected == 0 {
			return nil, errs.NotFound("user")
		}
	}
	return r.Get(ctx, id)
}

func (r gormUsers) AddEarnings(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		UpdateColumn("total_earnings", gorm.Expr("total_earnings + ?", amount))
	if res.Error != nil {
		return translate(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("user")
	}
	return nil
}

func (r gormUsers) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return translate(r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error, "user")
}

func (r gormUsers) List(ctx context.Context, role *models.Role, params utils.PaginationParams) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if role != nil {
		query = query.Where("role = ?", *role)
	}
	if params.Search != "" {
		term := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", term, term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "email", "total_earnings"})
	query = utils.ApplyPagination(query, params)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, total, nil
}

func (r gormUsers) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error
	return total, err
}

// Projects

type gormProjects struct{ db *gorm.DB }

func (r gormProjects) Create(ctx context.Context, project *models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(project).Error, "project")
}

func (r gormProjects) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, translate(err, "project")
	}
	return &project, nil
}

func (r gormProjects) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, filter ProjectFilter) ([]models.Project, int64, error) {
	return r.list(r.db.WithContext(ctx).Model(&models.Project{}).Where("freelancer_id = ?", freelancerID), filter)
}

func (r gormProjects) List(ctx context.Context, filter ProjectFilter) ([]models.Project, int64, error) {
	return r.list(r.db.WithContext(ctx).Model(&models.Project{}), filter)
}

func (r gormProjects) list(query *gorm.DB, filter ProjectFilter) ([]models.Project, int64, error) {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		term := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(client_email) LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	query = utils.ApplySort(query, filter.PaginationParams, []string{"created_at", "updated_at", "title", "price", "deadline", "status"})
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var projects []models.Project
	if err := query.Find(&projects).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch projects: %w", err)
	}
	return projects, total, nil
}

func (r gormProjects) CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected, next models.ProjectStatus) (*models.Project, error) {
	res := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(map[string]interface{}{"status": next, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, translate(res.Error, "project")
	}
	if res.RowsAffected == 0 {
		current, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, errs.Conflict(fmt.Sprintf("project status changed to %s while expecting %s", current.Status, expected))
	}
	return r.Get(ctx, id)
}

func (r gormProjects) Update(ctx context.Context, id uuid.UUID, changes ProjectChanges) (*models.Project, error) {
	if changes.Empty() {
		return r.Get(ctx, id)
	}

	updates := make(map[string]interface{})
	if changes.Title != nil {
		updates["title"] = *changes.Title
	}
	if changes.Description != nil {
		updates["description"] = *changes.Description
	}
	if changes.ClientEmail != nil {
		updates["client_email"] = *changes.ClientEmail
	}
	if changes.ClientName != nil {
		updates["client_name"] = *changes.ClientName
	}
	if changes.Price != nil {
		updates["price"] = *changes.Price
	}
	if changes.CommissionRate != nil {
		updates["commission_rate"] = *changes.CommissionRate
	}
	if changes.Tags != nil {
		updates["tags"] = pq.StringArray(changes.Tags)
	}
	if changes.Deadline != nil {
		updates["deadline"] = *changes.Deadline
	}
	if changes.PreviewSettings != nil {
		updates["preview_settings"] = *changes.PreviewSettings
	}
	if changes.DeliveryEmail != nil {
		updates["delivery_email"] = *changes.DeliveryEmail
	}

	query := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id)
	if changes.TouchesPricing() {
		query = query.Where("payment_intent_id IS NULL")
	}
	res := query.Updates(updates)
	if res.Error != nil {
		return nil, translate(res.Error, "project")
	}
	if res.RowsAffected == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, errs.Conflict("price and commission rate are locked once payment has started")
	}
	return r.Get(ctx, id)
}

func (r gormProjects) SetPaymentIntent(ctx context.Context, id uuid.UUID, intentID string) error {
	res := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).
		Update("payment_intent_id", intentID)
	if res.Error != nil {
		return translate(res.Error, "project")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("project")
	}
	return nil
}

func (r gormProjects) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Project{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "project")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("project")
	}
	return nil
}

func (r gormProjects) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Project{}).Count(&total).Error
	return total, err
}

// Files

type gormFiles struct{ db *gorm.DB }

func (r gormFiles) Create(ctx context.Context, file *models.File) error {
	if file.ID == uuid.Nil {
		file.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(file).Error, "file")
}

func (r gormFiles) Get(ctx context.Context, id uuid.UUID) (*models.File, error) {
	var file models.File
	if err := r.db.WithContext(ctx).First(&file, "id = ?", id).Error; err != nil {
		return nil, translate(err, "file")
	}
	return &file, nil
}

func (r gormFiles) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.File, error) {
	var files []models.File
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).
		Order("created_at ASC").Find(&files).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch files: %w", err)
	}
	return files, nil
}

func (r gormFiles) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.File{}).Where("project_id = ?", projectID).Count(&total).Error
	return total, err
}

func (r gormFiles) SetPreviewPath(ctx context.Context, id uuid.UUID, path string) error {
	res := r.db.WithContext(ctx).Model(&models.File{}).Where("id = ?", id).Update("preview_path", path)
	if res.Error != nil {
		return translate(res.Error, "file")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("file")
	}
	return nil
}

func (r gormFiles) IncrementDownloads(ctx context.Context, id uuid.UUID, limit *int) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.File{}).Where("id = ?", id)
	if limit != nil {
		query = query.Where("download_count < ?", *limit)
	}
	res := query.UpdateColumn("download_count", gorm.Expr("download_count + 1"))
	if res.Error != nil {
		return false, translate(res.Error, "file")
	}
	return res.RowsAffected > 0, nil
}

func (r gormFiles) DeleteByProject(ctx context.Context, projectID uuid.UUID) error {
	return translate(r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.File{}).Error, "file")
}

// Comments

type gormComments struct{ db *gorm.DB }

func (r gormComments) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(comment).Error, "comment")
}

func (r gormComments) Get(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, translate(err, "comment")
	}
	return &comment, nil
}

func (r gormComments) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).
		Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}
	return comments, nil
}

func (r gormComments) SetResolved(ctx context.Context, id uuid.UUID, resolved bool) (*models.Comment, error) {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("is_resolved", resolved)
	if res.Error != nil {
		return nil, translate(res.Error, "comment")
	}
	if res.RowsAffected == 0 {
		return nil, errs.NotFound("comment")
	}
	return r.Get(ctx, id)
}

// Payments

type gormPayments struct{ db *gorm.DB }

func (r gormPayments) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(payment).Error, "payment")
}

func (r gormPayments) GetByProviderReference(ctx context.Context, reference string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).Where("provider_reference = ?", reference).First(&payment).Error; err != nil {
		return nil, translate(err, "payment")
	}
	return &payment, nil
}

func (r gormPayments) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, params utils.PaginationParams) ([]models.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Payment{}).Where("freelancer_id = ?", freelancerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "amount", "status"})
	query = utils.ApplyPagination(query, params)

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch payments: %w", err)
	}
	return payments, total, nil
}

func (r gormPayments) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).
		Order("created_at ASC").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch payments: %w", err)
	}
	return payments, nil
}

func (r gormPayments) CountSucceededByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("project_id = ? AND status = ?", projectID, models.PaymentStatusSucceeded).
		Count(&total).Error
	return total, err
}

func (r gormPayments) Summarize(ctx context.Context, freelancerID *uuid.UUID) (PaymentSummary, error) {
	query := r.db.WithContext(ctx).Model(&models.Payment{}).Where("status = ?", models.PaymentStatusSucceeded)
	if freelancerID != nil {
		query = query.Where("freelancer_id = ?", *freelancerID)
	}

	var summary PaymentSummary
	err := query.Select("COUNT(*) AS count, " +
		"COALESCE(SUM(amount), 0) AS gross, " +
		"COALESCE(SUM(commission), 0) AS commission, " +
		"COALESCE(SUM(net_amount), 0) AS net").
		Scan(&summary).Error
	if err != nil {
		return PaymentSummary{}, fmt.Errorf("failed to summarize payments: %w", err)
	}
	return summary, nil
}

// Analytics

type gormAnalytics struct{ db *gorm.DB }

func (r gormAnalytics) Append(ctx context.Context, event *models.AnalyticsEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(event).Error, "analytics event")
}

func (r gormAnalytics) ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]models.AnalyticsEvent, error) {
	query := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var events []models.AnalyticsEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch analytics: %w", err)
	}
	return events, nil
}

func (r gormAnalytics) CountByKind(ctx context.Context, projectID uuid.UUID) (map[models.EventKind]int64, error) {
	var rows []struct {
		Event models.EventKind
		Count int64
	}
	if err := r.db.WithContext(ctx).Model(&models.AnalyticsEvent{}).
		Select("event, COUNT(*) AS count").
		Where("project_id = ?", projectID).
		Group("event").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count analytics: %w", err)
	}

	counts := make(map[models.EventKind]int64, len(rows))
	for _, row := range rows {
		counts[row.Event] = row.Count
	}
	return counts, nil
}

// Messages

type gormMessages struct{ db *gorm.DB }

func (r gormMessages) Create(ctx context.Context, message *models.Message) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(message).Error, "message")
}

func (r gormMessages) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).
		Order("created_at ASC").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return messages, nil
}

func (r gormMessages) MarkRead(ctx context.Context, projectID uuid.UUID, reader models.SenderType) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("project_id = ? AND sender_type <> ? AND is_read = ?", projectID, reader, false).
		Update("is_read", true)
	return res.RowsAffected, translate(res.Error, "message")
}

// Notifications

type gormNotifications struct{ db *gorm.DB }

func (r gormNotifications) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(notification).Error, "notification")
}

func (r gormNotifications) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Limit(100).Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return notifications, nil
}

func (r gormNotifications) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return translate(res.Error, "notification")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("notification")
	}
	return nil
}

// Audit logs

type gormAuditLogs struct{ db *gorm.DB }

func (r gormAuditLogs) Create(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(entry).Error, "audit log")
}

var _ Repository = (*GormRepository)(nil)
