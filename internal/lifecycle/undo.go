package lifecycle

import (
	"context"
	"fmt"

	"github.com/cissero/platform/internal/domain"
)

// Undo reverts the newest surviving journal entry of an event and consumes
// it. A delete entry re-inserts the removed record under its original id at
// the end of the list; any other entry overwrites the current record, or
// re-inserts it if the record is gone. Undo returns (nil, nil) when the
// event has no journal entry left.
func (e *Engine) Undo(ctx context.Context, id string) (*domain.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.journal.MostRecentFor(id)
	if !ok {
		return nil, nil
	}

	restored := entry.PreviousState.Clone()
	cur := e.events.Get(id)

	switch {
	case cur == nil:
		restored.Revision = entry.PreviousState.Revision + 1
		if err := e.events.Insert(restored); err != nil {
			return nil, fmt.Errorf("undo %s: reinsert: %w", entry.Action, err)
		}
	default:
		// A delete entry with a live record means the id was reused; the
		// snapshot still wins.
		restored.Revision = cur.Revision + 1
		if err := e.events.Replace(id, restored); err != nil {
			return nil, fmt.Errorf("undo %s: replace: %w", entry.Action, err)
		}
	}

	e.journal.Remove(entry.ID)

	e.outbox.Enqueue(domain.NewEventLifecycleDraft(domain.EventRestored, restored))
	e.logger.InfoContext(ctx, "event action undone",
		"event_id", id,
		"undone_action", string(entry.Action),
		"status", string(restored.Status),
		"revision", restored.Revision,
	)
	return &restored, nil
}
