// Package lifecycle holds the project status state machine, the preview access
// decision and commission arithmetic. It has no storage or transport
// dependencies; services combine it with the repository.
package lifecycle

import (
	"github.com/javajoker/payhub-backend/internal/errs"
	"github.com/javajoker/payhub-backend/internal/models"
)

// Event is a request to move a project to another status.
type Event string

const (
	EventPublish          Event = "publish"
	EventApprove          Event = "approve"
	EventPaymentSucceeded Event = "payment_succeeded"
	EventDeliver          Event = "deliver"
	EventCancel           Event = "cancel"
)

// Actor is the party allowed to trigger an event.
type Actor string

const (
	ActorFreelancer      Actor = "freelancer"
	ActorClient          Actor = "client"
	ActorPaymentNotifier Actor = "payment_notifier"
)

type edge struct {
	from  models.ProjectStatus
	event Event
}

var transitions = map[edge]models.ProjectStatus{
	{models.ProjectStatusDraft, EventPublish}:             models.ProjectStatusPreview,
	{models.ProjectStatusPreview, EventApprove}:           models.ProjectStatusApproved,
	{models.ProjectStatusApproved, EventPaymentSucceeded}: models.ProjectStatusPaid,
	{models.ProjectStatusPaid, EventDeliver}:              models.ProjectStatusDelivered,
	{models.ProjectStatusDraft, EventCancel}:              models.ProjectStatusCancelled,
	{models.ProjectStatusPreview, EventCancel}:            models.ProjectStatusCancelled,
	{models.ProjectStatusApproved, EventCancel}:           models.ProjectStatusCancelled,
}

// Next returns the status reached by applying event to from. Any edge missing
// from the table is an InvalidTransition error.
func Next(from models.ProjectStatus, event Event) (models.ProjectStatus, error) {
	to, ok := transitions[edge{from, event}]
	if !ok {
		return "", errs.InvalidTransition(string(from), string(event))
	}
	return to, nil
}

// ActorFor names who may trigger event.
func ActorFor(event Event) Actor {
	switch event {
	case EventPublish, EventDeliver, EventCancel:
		return ActorFreelancer
	case EventApprove:
		return ActorClient
	case EventPaymentSucceeded:
		return ActorPaymentNotifier
	}
	return ""
}

// IsTerminal reports whether no event can leave status.
func IsTerminal(status models.ProjectStatus) bool {
	for e := range transitions {
		if e.from == status {
			return false
		}
	}
	return true
}

// AuthorizeEvent checks that the requester is the actor the event belongs to.
// Payment events never come from a requester and are always rejected here.
func AuthorizeEvent(event Event, project *models.Project, r Requester) error {
	switch ActorFor(event) {
	case ActorFreelancer:
		if !r.Owns(project) {
			return errs.Forbidden("only the owning freelancer can " + string(event) + " this project")
		}
		return nil
	case ActorClient:
		if !project.IsClient(r.Email) {
			return errs.Forbidden("email does not match the project's client")
		}
		return nil
	case ActorPaymentNotifier:
		return errs.Forbidden("payment status is set by the payment provider")
	}
	return errs.Validation("unknown event " + string(event))
}
