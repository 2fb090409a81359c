package lifecycle

import (
	"context"

	"github.com/cissero/platform/internal/domain"
)

// Reject moves a Pending Approval event to Rejected and records the reason
// and the rejecting admin.
func (e *Engine) Reject(ctx context.Context, id, reason string, actor *domain.AdminUser) (*domain.Event, error) {
	return e.mutate(ctx, id, domain.ActionReject, domain.EventRejected, func(cur domain.Event) (domain.Event, error) {
		if cur.Status != domain.StatusPendingApproval {
			return domain.Event{}, domain.ErrInvalidTransition("reject", cur.Status)
		}
		cur.Status = domain.StatusRejected
		cur.RejectionReason = reason
		cur.RejectedBy = displayName(actor)
		return cur, nil
	})
}
