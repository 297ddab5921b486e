package lifecycle

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/payhub-backend/internal/errs"
	"github.com/javajoker/payhub-backend/internal/models"
)

var allStatuses = []models.ProjectStatus{
	models.ProjectStatusDraft,
	models.ProjectStatusPreview,
	models.ProjectStatusApproved,
	models.ProjectStatusPaid,
	models.ProjectStatusDelivered,
	models.ProjectStatusCancelled,
}

var allEvents = []Event{EventPublish, EventApprove, EventPaymentSucceeded, EventDeliver, EventCancel}

func TestNextFollowsOnlyTableEdges(t *testing.T) {
	allowed := map[models.ProjectStatus]map[Event]models.ProjectStatus{
		models.ProjectStatusDraft: {
			EventPublish: models.ProjectStatusPreview,
			EventCancel:  models.ProjectStatusCancelled,
		},
		models.ProjectStatusPreview: {
			EventApprove: models.ProjectStatusApproved,
			EventCancel:  models.ProjectStatusCancelled,
		},
		models.ProjectStatusApproved: {
			EventPaymentSucceeded: models.ProjectStatusPaid,
			EventCancel:           models.ProjectStatusCancelled,
		},
		models.ProjectStatusPaid: {
			EventDeliver: models.ProjectStatusDelivered,
		},
	}

	for _, from := range allStatuses {
		for _, event := range allEvents {
			to, err := Next(from, event)
			want, ok := allowed[from][event]
			if ok {
				require.NoError(t, err, "%s --%s-->", from, event)
				assert.Equal(t, want, to)
				continue
			}
			assert.True(t, errs.IsInvalidTransition(err), "%s --%s--> should be rejected", from, event)
			assert.Empty(t, to)
		}
	}
}

func TestCancelledIsAbsorbing(t *testing.T) {
	for _, event := range allEvents {
		_, err := Next(models.ProjectStatusCancelled, event)
		assert.True(t, errs.IsInvalidTransition(err))
	}
	assert.True(t, IsTerminal(models.ProjectStatusCancelled))
	assert.True(t, IsTerminal(models.ProjectStatusDelivered))
	assert.False(t, IsTerminal(models.ProjectStatusPaid))
}

func TestAuthorizeEvent(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	project := &models.Project{FreelancerID: owner, ClientEmail: "Client@Example.com"}

	freelancer := Requester{UserID: &owner, Role: models.RoleFreelancer}
	stranger := Requester{UserID: &other, Role: models.RoleFreelancer}
	admin := Requester{UserID: &other, Role: models.RoleAdmin}
	client := Guest(" client@example.com ")

	assert.NoError(t, AuthorizeEvent(EventPublish, project, freelancer))
	assert.NoError(t, AuthorizeEvent(EventCancel, project, freelancer))
	assert.True(t, errs.IsForbidden(AuthorizeEvent(EventPublish, project, stranger)))
	assert.True(t, errs.IsForbidden(AuthorizeEvent(EventDeliver, project, admin)))
	assert.True(t, errs.IsForbidden(AuthorizeEvent(EventDeliver, project, client)))

	assert.NoError(t, AuthorizeEvent(EventApprove, project, client))
	assert.True(t, errs.IsForbidden(AuthorizeEvent(EventApprove, project, Guest("someone@else.com"))))

	assert.True(t, errs.IsForbidden(AuthorizeEvent(EventPaymentSucceeded, project, freelancer)))
}
