package lifecycle

import (
	"context"
	"fmt"

	"github.com/cissero/platform/internal/domain"
)

// Delete removes an event. The journal keeps the full record so Undo can
// bring it back.
func (e *Engine) Delete(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.events.Get(id)
	if cur == nil {
		return domain.ErrNotFound("event", id)
	}

	entry := e.journal.Record(id, *cur, domain.ActionDelete)
	if _, err := e.events.Remove(id); err != nil {
		e.journal.Remove(entry.ID)
		return fmt.Errorf("remove event %s: %w", id, err)
	}

	e.outbox.Enqueue(domain.NewEventLifecycleDraft(domain.EventDeleted, *cur))
	e.logger.InfoContext(ctx, "event deleted", "event_id", id, "status", string(cur.Status))
	return nil
}
