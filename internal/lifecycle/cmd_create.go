package lifecycle

import (
	"context"
	"fmt"

	"github.com/cissero/platform/internal/auth"
	"github.com/cissero/platform/internal/domain"
	"github.com/google/uuid"
)

// CreateInput carries a new event. Status is honored only for admins.
type CreateInput struct {
	Title        string               `json:"title"`
	Date         string               `json:"date"`
	Time         string               `json:"time"`
	Participants []domain.Participant `json:"participants"`
	Status       domain.EventStatus   `json:"status,omitempty"`
}

// Create inserts a new event. Admin submissions start Scheduled unless a
// status is given; user submissions start Pending Approval and carry the
// submitter's attribution. Creation is not journaled.
func (e *Engine) Create(ctx context.Context, sess *auth.Session, in CreateInput) (*domain.Event, error) {
	if !sess.IsAdmin() && !sess.IsUser() {
		return nil, domain.ErrUnauthorized("login required to create events")
	}
	if err := domain.ValidateEventFields(in.Title, in.Date, in.Participants); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	ev := domain.Event{
		ID:           uuid.NewString(),
		Title:        in.Title,
		Date:         in.Date,
		Time:         in.Time,
		Participants: withParticipantIDs(in.Participants),
		Revision:     1,
	}

	if sess.IsAdmin() {
		ev.Status = domain.StatusScheduled
		if in.Status != "" {
			if !in.Status.Valid() {
				return nil, domain.ErrValidation(fmt.Sprintf("unknown status %q", in.Status))
			}
			ev.Status = in.Status
		}
	} else {
		u := sess.CurrentUser()
		ev.Status = domain.StatusPendingApproval
		ev.CreatedBy = u.Username
		if u.DisplayName != "" {
			ev.CreatedBy = u.DisplayName
		}
		ev.CreatedByID = u.ID
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.events.Insert(ev); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	e.outbox.Enqueue(domain.NewEventLifecycleDraft(domain.EventCreated, ev))
	e.logger.InfoContext(ctx, "event created",
		"event_id", ev.ID,
		"status", string(ev.Status),
		"by_admin", sess.IsAdmin(),
	)
	return &ev, nil
}

// withParticipantIDs fills in ids for participants submitted without one.
func withParticipantIDs(in []domain.Participant) []domain.Participant {
	out := make([]domain.Participant, len(in))
	for i, p := range in {
		if p.ID == "" {
			p.ID = "p-" + uuid.NewString()[:8]
		}
		out[i] = p
	}
	return out
}
