package lifecycle

import (
	"context"

	"github.com/cissero/platform/internal/domain"
)

// Complete closes a Scheduled event.
func (e *Engine) Complete(ctx context.Context, id string) (*domain.Event, error) {
	return e.mutate(ctx, id, domain.ActionUpdate, domain.EventCompleted, func(cur domain.Event) (domain.Event, error) {
		if cur.Status != domain.StatusScheduled {
			return domain.Event{}, domain.ErrInvalidTransition("complete", cur.Status)
		}
		cur.Status = domain.StatusCompleted
		cur.CompletedAt = e.timestamp()
		return cur, nil
	})
}

// RecordWinner stamps the winning participant and settledAt on a Completed
// event. An event is settled at most once; undoing the stamp reopens it.
// It is journaled like any other update.
func (e *Engine) RecordWinner(ctx context.Context, id, winnerID string) (*domain.Event, error) {
	return e.mutate(ctx, id, domain.ActionUpdate, domain.EventUpdated, func(cur domain.Event) (domain.Event, error) {
		if cur.Status != domain.StatusCompleted {
			return domain.Event{}, domain.ErrInvalidTransition("settle", cur.Status)
		}
		if cur.SettledAt != nil {
			return domain.Event{}, domain.ErrConflict("event " + id + " is already settled")
		}
		if winnerID != "" {
			if _, ok := cur.Participant(winnerID); !ok {
				return domain.Event{}, domain.ErrValidation("winner " + winnerID + " is not a participant of event " + id)
			}
		}
		cur.WinnerID = winnerID
		cur.SettledAt = e.timestamp()
		return cur, nil
	})
}
