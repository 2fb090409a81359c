package lifecycle

import (
	"context"
	"fmt"

	"github.com/cissero/platform/internal/domain"
)

// Update applies a field patch to any event regardless of status. The patch
// may move the event to any valid status.
func (e *Engine) Update(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, domain.ErrValidation(fmt.Sprintf("unknown status %q", *patch.Status))
	}

	return e.mutate(ctx, id, domain.ActionUpdate, domain.EventUpdated, func(cur domain.Event) (domain.Event, error) {
		next := patch.Apply(cur)
		if patch.Title != nil || patch.Date != nil || patch.Participants != nil {
			if err := domain.ValidateEventFields(next.Title, next.Date, next.Participants); err != nil {
				return domain.Event{}, domain.ErrValidation(err.Error())
			}
		}
		if patch.Participants != nil {
			next.Participants = withParticipantIDs(next.Participants)
		}
		return next, nil
	})
}
