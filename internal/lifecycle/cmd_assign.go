package lifecycle

import (
	"context"

	"github.com/cissero/platform/internal/domain"
)

// Assign lets the acting admin claim an event that needs one, or a scheduled
// event nobody has claimed yet.
func (e *Engine) Assign(ctx context.Context, id string, actor *domain.AdminUser) (*domain.Event, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized("an admin must be logged in to assign events")
	}

	return e.mutate(ctx, id, domain.ActionUpdate, domain.EventAssigned, func(cur domain.Event) (domain.Event, error) {
		claimable := cur.Status == domain.StatusNeedsAdmin ||
			(cur.Status == domain.StatusScheduled && cur.AssignedTo == "")
		if !claimable {
			return domain.Event{}, domain.ErrInvalidTransition("assign", cur.Status)
		}
		cur.Status = domain.StatusScheduled
		cur.AssignedTo = displayName(actor)
		cur.AssignedAt = e.timestamp()
		return cur, nil
	})
}
