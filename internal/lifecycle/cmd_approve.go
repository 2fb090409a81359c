package lifecycle

import (
	"context"

	"github.com/cissero/platform/internal/domain"
)

// Approve moves a Pending Approval event to Scheduled. The status check runs
// before the journal write, so a repeated approve fails without side effects.
func (e *Engine) Approve(ctx context.Context, id string) (*domain.Event, error) {
	return e.mutate(ctx, id, domain.ActionApprove, domain.EventApproved, func(cur domain.Event) (domain.Event, error) {
		if cur.Status != domain.StatusPendingApproval {
			return domain.Event{}, domain.ErrInvalidTransition("approve", cur.Status)
		}
		cur.Status = domain.StatusScheduled
		return cur, nil
	})
}
