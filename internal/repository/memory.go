// internal/repository/memory.go
package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/javajoker/payhub-backend/internal/errs"
	"github.com/javajoker/payhub-backend/internal/models"
	"github.com/javajoker/payhub-backend/internal/utils"
)

// MemoryRepository keeps everything in process memory. It backs the service
// and HTTP tests and the server's in-memory mode. Transactions are serialized
// and a failed transaction restores the state it started from.
type MemoryRepository struct {
	s  *memoryState
	tx bool
}

type memoryState struct {
	mu   sync.Mutex
	txMu sync.Mutex

	next          uint64
	seq           map[uuid.UUID]uint64
	users         map[uuid.UUID]models.User
	projects      map[uuid.UUID]models.Project
	files         map[uuid.UUID]models.File
	comments      map[uuid.UUID]models.Comment
	payments      map[uuid.UUID]models.Payment
	analytics     map[uuid.UUID]models.AnalyticsEvent
	messages      map[uuid.UUID]models.Message
	notifications map[uuid.UUID]models.Notification
	auditLogs     map[uuid.UUID]models.AuditLog
}

type memoryData struct {
	next          uint64
	seq           map[uuid.UUID]uint64
	users         map[uuid.UUID]models.User
	projects      map[uuid.UUID]models.Project
	files         map[uuid.UUID]models.File
	comments      map[uuid.UUID]models.Comment
	payments      map[uuid.UUID]models.Payment
	analytics     map[uuid.UUID]models.AnalyticsEvent
	messages      map[uuid.UUID]models.Message
	notifications map[uuid.UUID]models.Notification
	auditLogs     map[uuid.UUID]models.AuditLog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{s: &memoryState{
		seq:           make(map[uuid.UUID]uint64),
		users:         make(map[uuid.UUID]models.User),
		projects:      make(map[uuid.UUID]models.Project),
		files:         make(map[uuid.UUID]models.File),
		comments:      make(map[uuid.UUID]models.Comment),
		payments:      make(map[uuid.UUID]models.Payment),
		analytics:     make(map[uuid.UUID]models.AnalyticsEvent),
		messages:      make(map[uuid.UUID]models.Message),
		notifications: make(map[uuid.UUID]models.Notification),
		auditLogs:     make(map[uuid.UUID]models.AuditLog),
	}}
}

func (r *MemoryRepository) Users() UserRepository                 { return memUsers{r} }
func (r *MemoryRepository) Projects() ProjectRepository           { return memProjects{r} }
func (r *MemoryRepository) Files() FileRepository                 { return memFiles{r} }
func (r *MemoryRepository) Comments() CommentRepository           { return memComments{r} }
func (r *MemoryRepository) Payments() PaymentRepository           { return memPayments{r} }
func (r *MemoryRepository) Analytics() AnalyticsRepository        { return memAnalytics{r} }
func (r *MemoryRepository) Messages() MessageRepository           { return memMessages{r} }
func (r *MemoryRepository) Notifications() NotificationRepository { return memNotifications{r} }
func (r *MemoryRepository) AuditLogs() AuditLogRepository         { return memAuditLogs{r} }

func (r *MemoryRepository) WithTransaction(ctx context.Context, fn func(tx Repository) error) error {
	if r.tx {
		return fn(r)
	}

	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	r.s.mu.Lock()
	snapshot := r.s.snapshot()
	r.s.mu.Unlock()

	if err := fn(&MemoryRepository{s: r.s, tx: true}); err != nil {
		r.s.mu.Lock()
		r.s.restore(snapshot)
		r.s.mu.Unlock()
		return err
	}
	return nil
}

// lock takes the state lock. Outside a transaction it also waits for any
// running transaction to finish.
func (r *MemoryRepository) lock() func() {
	if r.tx {
		r.s.mu.Lock()
		return r.s.mu.Unlock
	}
	r.s.txMu.Lock()
	r.s.mu.Lock()
	return func() {
		r.s.mu.Unlock()
		r.s.txMu.Unlock()
	}
}

func (s *memoryState) track(id uuid.UUID) {
	s.next++
	s.seq[id] = s.next
}

func (s *memoryState) snapshot() memoryData {
	return memoryData{
		next:          s.next,
		seq:           cloneMap(s.seq),
		users:         cloneMap(s.users),
		projects:      cloneMap(s.projects),
		files:         cloneMap(s.files),
		comments:      cloneMap(s.comments),
		payments:      cloneMap(s.payments),
		analytics:     cloneMap(s.analytics),
		messages:      cloneMap(s.messages),
		notifications: cloneMap(s.notifications),
		auditLogs:     cloneMap(s.auditLogs),
	}
}

func (s *memoryState) restore(d memoryData) {
	s.next = d.next
	s.seq = d.seq
	s.users = d.users
	s.projects = d.projects
	s.files = d.files
	s.comments = d.comments
	s.payments = d.payments
	s.analytics = d.analytics
	s.messages = d.messages
	s.notifications = d.notifications
	s.auditLogs = d.auditLogs
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ordered returns the values sorted by insertion order.
func ordered[V any](s *memoryState, m map[uuid.UUID]V, keep func(V) bool) []V {
	ids := make([]uuid.UUID, 0, len(m))
	for id, v := range m {
		if keep == nil || keep(v) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return s.seq[ids[i]] < s.seq[ids[j]] })

	out := make([]V, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func paginate[V any](items []V, params utils.PaginationParams) []V {
	if params.Order != "asc" {
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
	}
	if params.Limit <= 0 {
		return items
	}
	start := (max(params.Page, 1) - 1) * params.Limit
	if start >= len(items) {
		return []V{}
	}
	return items[start:min(start+params.Limit, len(items))]
}

func stamp(base *models.BaseModel) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	now := time.Now()
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// Users

type memUsers struct{ r *MemoryRepository }

func (m memUsers) Create(ctx context.Context, user *models.User) error {
	defer m.r.lock()()
	s := m.r.s

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return errs.AlreadyExists("user already exists")
		}
		if user.Subdomain != nil && existing.Subdomain != nil && strings.EqualFold(*existing.Subdomain, *user.Subdomain) {
			return errs.AlreadyExists("user already exists")
		}
	}
	stamp(&user.BaseModel)
	if user.Role == "" {
		user.Role = models.RoleFreelancer
	}
	s.users[user.ID] = *user
	s.track(user.ID)
	return nil
}

func (m memUsers) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	defer m.r.lock()()
	user, ok := m.r.s.users[id]
	if !ok {
		return nil, errs.NotFound("user")
	}
	return &user, nil
}

func (m memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	defer m.r.lock()()
	email = strings.TrimSpace(email)
	for _, user := range m.r.s.users {
		if strings.EqualFold(user.Email, email) {
			return &user, nil
		}
	}
	return nil, errs.NotFound("user")
}

func (m memUsers) GetBySubdomain(ctx context.Context, subdomain string) (*models.User, error) {
	defer m.r.lock()()
	for _, user := range m.r.s.users {
		if user.IsActive && user.Subdomain != nil && strings.EqualFold(*user.Subdomain, subdomain) {
			return &user, nil
		}
	}
	return nil, errs.NotFound("user")
}

func (m memUsers) Update(ctx context.Context, id uuid.UUID, changes UserChanges) (*models.User, error) {
	defer m.r.lock()()
	s := m.r.s

	user, ok := s.users[id]
	if !ok {
		return nil, errs.NotFound("user")
	}
	if changes.FirstName != nil {
		user.FirstName = *changes.FirstName
	}
	if changes.LastName != nil {
		user.LastName = *changes.LastName
	}
	if changes.ProfileImageURL != nil {
		user.ProfileImageURL = *changes.ProfileImageURL
	}
	if changes.Subdomain != nil {
		if *changes.Subdomain == "" {
			user.Subdomain = nil
		} else {
			subdomain := strings.ToLower(*changes.Subdomain)
			for otherID, other := range s.users {
				if otherID != id && other.Subdomain != nil && *other.Subdomain == subdomain {
					return nil, errs.AlreadyExists("user already exists")
				}
			}
			user.Subdomain = &subdomain
		}
	}
	if changes.Role != nil {
		user.Role = *changes.Role
	}
	if changes.CommissionRate != nil {
		user.CommissionRate = *changes.CommissionRate
	}
	if changes.IsActive != nil {
		user.IsActive = *changes.IsActive
	}
	if changes.PasswordHash != nil {
		user.PasswordHash = *changes.PasswordHash
	}
	user.UpdatedAt = time.Now()
	s.users[id] = user
	return &user, nil
}

func (m memUsers) AddEarnings(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	defer m.r.lock()()
	user, ok := m.r.s.users[id]
	if !ok {
		return errs.NotFound("user")
	}
	user.TotalEarnings = user.TotalEarnings.Add(amount)
	m.r.s.users[id] = user
	return nil
}

func (m memUsers) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	defer m.r.lock()()
	user, ok := m.r.s.users[id]
	if !ok {
		return errs.NotFound("user")
	}
	user.LastLoginAt = &at
	m.r.s.users[id] = user
	return nil
}

func (m memUsers) List(ctx context.Context, role *models.Role, params utils.PaginationParams) ([]models.User, int64, error) {
	defer m.r.lock()()
	users := ordered(m.r.s, m.r.s.users, func(u models.User) bool {
		if role != nil && u.Role != *role {
			return false
		}
		if params.Search != "" {
			return containsFold(u.Email, params.Search) ||
				containsFold(u.FirstName, params.Search) ||
				containsFold(u.LastName, params.Search)
		}
		return true
	})
	return paginate(users, params), int64(len(users)), nil
}

func (m memUsers) Count(ctx context.Context) (int64, error) {
	defer m.r.lock()()
	return int64(len(m.r.s.users)), nil
}

// Projects

type memProjects struct{ r *MemoryRepository }

func (m memProjects) Create(ctx context.Context, project *models.Project) error {
	defer m.r.lock()()
	stamp(&project.BaseModel)
	if project.Status == "" {
		project.Status = models.ProjectStatusDraft
	}
	stored := *project
	stored.Freelancer, stored.Files, stored.Payments = nil, nil, nil
	m.r.s.projects[project.ID] = stored
	m.r.s.track(project.ID)
	return nil
}

func (m memProjects) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	defer m.r.lock()()
	project, ok := m.r.s.projects[id]
	if !ok {
		return nil, errs.NotFound("project")
	}
	return &project, nil
}

func (m memProjects) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, filter ProjectFilter) ([]models.Project, int64, error) {
	return m.list(filter, func(p models.Project) bool { return p.FreelancerID == freelancerID })
}

func (m memProjects) List(ctx context.Context, filter ProjectFilter) ([]models.Project, int64, error) {
	return m.list(filter, nil)
}

func (m memProjects) list(filter ProjectFilter, scope func(models.Project) bool) ([]models.Project, int64, error) {
	defer m.r.lock()()
	projects := ordered(m.r.s, m.r.s.projects, func(p models.Project) bool {
		if scope != nil && !scope(p) {
			return false
		}
		if filter.Status != nil && p.Status != *filter.Status {
			return false
		}
		if filter.Search != "" {
			return containsFold(p.Title, filter.Search) || containsFold(p.ClientEmail, filter.Search)
		}
		return true
	})
	return paginate(projects, filter.PaginationParams), int64(len(projects)), nil
}

func (m memProjects) CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected, next models.ProjectStatus) (*models.Project, error) {
	defer m.r.lock()()
	project, ok := m.r.s.projects[id]
	if !ok {
		return nil, errs.NotFound("project")
	}
	if project.Status != expected {
		return nil, errs.Conflict("project status changed to " + string(project.Status) + " while expecting " + string(expected))
	}
	project.Status = next
	project.UpdatedAt = time.Now()
	m.r.s.projects[id] = project
	return &project, nil
}

func (m memProjects) Update(ctx context.Context, id uuid.UUID, changes ProjectChanges) (*models.Project, error) {
	defer m.r.lock()()
	project, ok := m.r.s.projects[id]
	if !ok {
		return nil, errs.NotFound("project")
	}
	if changes.TouchesPricing() && project.PaymentAttempted() {
		return nil, errs.Conflict("price and commission rate are locked once payment has started")
	}

	if changes.Title != nil {
		project.Title = *changes.Title
	}
	if changes.Description != nil {
		project.Description = *changes.Description
	}
	if changes.ClientEmail != nil {
		project.ClientEmail = *changes.ClientEmail
	}
	if changes.ClientName != nil {
		project.ClientName = *changes.ClientName
	}
	if changes.Price != nil {
		project.Price = *changes.Price
	}
	if changes.CommissionRate != nil {
		project.CommissionRate = *changes.CommissionRate
	}
	if changes.Tags != nil {
		project.Tags = append([]string(nil), changes.Tags...)
	}
	if changes.Deadline != nil {
		project.Deadline = changes.Deadline
	}
	if changes.PreviewSettings != nil {
		project.PreviewSettings = *changes.PreviewSettings
	}
	if changes.DeliveryEmail != nil {
		project.DeliveryEmail = *changes.DeliveryEmail
	}
	if !changes.Empty() {
		project.UpdatedAt = time.Now()
	}
	m.r.s.projects[id] = project
	return &project, nil
}

func (m memProjects) SetPaymentIntent(ctx context.Context, id uuid.UUID, intentID string) error {
	defer m.r.lock()()
	project, ok := m.r.s.projects[id]
	if !ok {
		return errs.NotFound("project")
	}
	project.PaymentIntentID = &intentID
	m.r.s.projects[id] = project
	return nil
}

func (m memProjects) Delete(ctx context.Context, id uuid.UUID) error {
	defer m.r.lock()()
	if _, ok := m.r.s.projects[id]; !ok {
		return errs.NotFound("project")
	}
	delete(m.r.s.projects, id)
	return nil
}

func (m memProjects) Count(ctx context.Context) (int64, error) {
	defer m.r.lock()()
	return int64(len(m.r.s.projects)), nil
}

// Files

type memFiles struct{ r *MemoryRepository }

func (m memFiles) Create(ctx context.Context, file *models.File) error {
	defer m.r.lock()()
	if _, ok := m.r.s.projects[file.ProjectID]; !ok {
		return errs.NotFound("project")
	}
	stamp(&file.BaseModel)
	m.r.s.files[file.ID] = *file
	m.r.s.track(file.ID)
	return nil
}

func (m memFiles) Get(ctx context.Context, id uuid.UUID) (*models.File, error) {
	defer m.r.lock()()
	file, ok := m.r.s.files[id]
	if !ok {
		return nil, errs.NotFound("file")
	}
	return &file, nil
}

func (m memFiles) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.File, error) {
	defer m.r.lock()()
	return ordered(m.r.s, m.r.s.files, func(f models.File) bool { return f.ProjectID == projectID }), nil
}

func (m memFiles) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	defer m.r.lock()()
	var n int64
	for _, f := range m.r.s.files {
		if f.ProjectID == projectID {
			n++
		}
	}
	return n, nil
}

func (m memFiles) SetPreviewPath(ctx context.Context, id uuid.UUID, path string) error {
	defer m.r.lock()()
	file, ok := m.r.s.files[id]
	if !ok {
		return errs.NotFound("file")
	}
	file.PreviewPath = &path
	m.r.s.files[id] = file
	return nil
}

func (m memFiles) IncrementDownloads(ctx context.Context, id uuid.UUID, limit *int) (bool, error) {
	defer m.r.lock()()
	file, ok := m.r.s.files[id]
	if !ok {
		return false, nil
	}
	if limit != nil && file.DownloadCount >= *limit {
		return false, nil
	}
	file.DownloadCount++
	m.r.s.files[id] = file
	return true, nil
}

func (m memFiles) DeleteByProject(ctx context.Context, projectID uuid.UUID) error {
	defer m.r.lock()()
	for id, f := range m.r.s.files {
		if f.ProjectID == projectID {
			delete(m.r.s.files, id)
		}
	}
	return nil
}

// Comments

type memComments struct{ r *MemoryRepository }

func (m memComments) Create(ctx context.Context, comment *models.Comment) error {
	defer m.r.lock()()
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	stored := *comment
	stored.Replies = nil
	m.r.s.comments[comment.ID] = stored
	m.r.s.track(comment.ID)
	return nil
}

func (m memComments) Get(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	defer m.r.lock()()
	comment, ok := m.r.s.comments[id]
	if !ok {
		return nil, errs.NotFound("comment")
	}
	return &comment, nil
}

func (m memComments) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Comment, error) {
	defer m.r.lock()()
	return ordered(m.r.s, m.r.s.comments, func(c models.Comment) bool { return c.ProjectID == projectID }), nil
}

func (m memComments) SetResolved(ctx context.Context, id uuid.UUID, resolved bool) (*models.Comment, error) {
	defer m.r.lock()()
	comment, ok := m.r.s.comments[id]
	if !ok {
		return nil, errs.NotFound("comment")
	}
	comment.IsResolved = resolved
	m.r.s.comments[id] = comment
	return &comment, nil
}

// Payments

type memPayments struct{ r *MemoryRepository }

func (m memPayments) Create(ctx context.Context, payment *models.Payment) error {
	defer m.r.lock()()
	for _, existing := range m.r.s.payments {
		if existing.ProviderReference == payment.ProviderReference {
			return errs.AlreadyExists("payment already exists")
		}
	}
	stamp(&payment.BaseModel)
	m.r.s.payments[payment.ID] = *payment
	m.r.s.track(payment.ID)
	return nil
}

func (m memPayments) GetByProviderReference(ctx context.Context, reference string) (*models.Payment, error) {
	defer m.r.lock()()
	for _, payment := range m.r.s.payments {
		if payment.ProviderReference == reference {
			return &payment, nil
		}
	}
	return nil, errs.NotFound("payment")
}

func (m memPayments) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, params utils.PaginationParams) ([]models.Payment, int64, error) {
	defer m.r.lock()()
	payments := ordered(m.r.s, m.r.s.payments, func(p models.Payment) bool { return p.FreelancerID == freelancerID })
	return paginate(payments, params), int64(len(payments)), nil
}

func (m memPayments) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Payment, error) {
	defer m.r.lock()()
	return ordered(m.r.s, m.r.s.payments, func(p models.Payment) bool { return p.ProjectID == projectID }), nil
}

func (m memPayments) CountSucceededByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	defer m.r.lock()()
	var n int64
	for _, p := range m.r.s.payments {
		if p.ProjectID == projectID && p.Status == models.PaymentStatusSucceeded {
			n++
		}
	}
	return n, nil
}

func (m memPayments) Summarize(ctx context.Context, freelancerID *uuid.UUID) (PaymentSummary, error) {
	defer m.r.lock()()
	summary := PaymentSummary{Gross: decimal.Zero, Commission: decimal.Zero, Net: decimal.Zero}
	for _, p := range m.r.s.payments {
		if p.Status != models.PaymentStatusSucceeded {
			continue
		}
		if freelancerID != nil && p.FreelancerID != *freelancerID {
			continue
		}
		summary.Count++
		summary.Gross = summary.Gross.Add(p.Amount)
		summary.Commission = summary.Commission.Add(p.Commission)
		summary.Net = summary.Net.Add(p.NetAmount)
	}
	return summary, nil
}

// Analytics

type memAnalytics struct{ r *MemoryRepository }

func (m memAnalytics) Append(ctx context.Context, event *models.AnalyticsEvent) error {
	defer m.r.lock()()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	m.r.s.analytics[event.ID] = *event
	m.r.s.track(event.ID)
	return nil
}

func (m memAnalytics) ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]models.AnalyticsEvent, error) {
	defer m.r.lock()()
	events := ordered(m.r.s, m.r.s.analytics, func(e models.AnalyticsEvent) bool { return e.ProjectID == projectID })
	return paginate(events, utils.PaginationParams{Page: 1, Limit: limit, Order: "desc"}), nil
}

func (m memAnalytics) CountByKind(ctx context.Context, projectID uuid.UUID) (map[models.EventKind]int64, error) {
	defer m.r.lock()()
	counts := make(map[models.EventKind]int64)
	for _, e := range m.r.s.analytics {
		if e.ProjectID == projectID {
			counts[e.Event]++
		}
	}
	return counts, nil
}

// Messages

type memMessages struct{ r *MemoryRepository }

func (m memMessages) Create(ctx context.Context, message *models.Message) error {
	defer m.r.lock()()
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	m.r.s.messages[message.ID] = *message
	m.r.s.track(message.ID)
	return nil
}

func (m memMessages) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Message, error) {
	defer m.r.lock()()
	return ordered(m.r.s, m.r.s.messages, func(msg models.Message) bool { return msg.ProjectID == projectID }), nil
}

func (m memMessages) MarkRead(ctx context.Context, projectID uuid.UUID, reader models.SenderType) (int64, error) {
	defer m.r.lock()()
	var n int64
	for id, msg := range m.r.s.messages {
		if msg.ProjectID == projectID && msg.SenderType != reader && !msg.IsRead {
			msg.IsRead = true
			m.r.s.messages[id] = msg
			n++
		}
	}
	return n, nil
}

// Notifications

type memNotifications struct{ r *MemoryRepository }

func (m memNotifications) Create(ctx context.Context, notification *models.Notification) error {
	defer m.r.lock()()
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	m.r.s.notifications[notification.ID] = *notification
	m.r.s.track(notification.ID)
	return nil
}

func (m memNotifications) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	defer m.r.lock()()
	notifications := ordered(m.r.s, m.r.s.notifications, func(n models.Notification) bool {
		return n.UserID == userID && (!unreadOnly || !n.IsRead)
	})
	return paginate(notifications, utils.PaginationParams{Page: 1, Limit: 100, Order: "desc"}), nil
}

func (m memNotifications) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	defer m.r.lock()()
	notification, ok := m.r.s.notifications[id]
	if !ok || notification.UserID != userID {
		return errs.NotFound("notification")
	}
	notification.IsRead = true
	m.r.s.notifications[id] = notification
	return nil
}

// Audit logs

type memAuditLogs struct{ r *MemoryRepository }

func (m memAuditLogs) Create(ctx context.Context, entry *models.AuditLog) error {
	defer m.r.lock()()
	stamp(&entry.BaseModel)
	m.r.s.auditLogs[entry.ID] = *entry
	m.r.s.track(entry.ID)
	return nil
}

var _ Repository = (*MemoryRepository)(nil)
