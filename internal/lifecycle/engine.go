package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cissero/platform/internal/domain"
	"github.com/cissero/platform/internal/repository"
)

// Engine owns every event state transition. Each mutating operation:
//  1. loads the current record and checks its guard
//  2. writes a journal entry holding the pre-mutation snapshot
//  3. applies the mutation to the event store
//  4. enqueues an outbox notification
//
// Steps 1-3 run under one mutex so no two mutations interleave.
type Engine struct {
	mu      sync.Mutex
	events  repository.EventRepository
	journal repository.JournalRepository
	outbox  domain.Outbox
	logger  *slog.Logger
	now     func() time.Time
}

// NewEngine creates a lifecycle engine over the given store and journal.
func NewEngine(
	events repository.EventRepository,
	journal repository.JournalRepository,
	outbox domain.Outbox,
	logger *slog.Logger,
) *Engine {
	if outbox == nil {
		outbox = domain.DiscardOutbox{}
	}
	return &Engine{
		events:  events,
		journal: journal,
		outbox:  outbox,
		logger:  logger,
		now:     time.Now,
	}
}

// ListFilter narrows List. Zero fields match everything.
type ListFilter struct {
	Status      domain.EventStatus
	Date        string
	CreatedByID string
}

func (f ListFilter) match(e domain.Event) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.Date != "" && e.Date != f.Date {
		return false
	}
	if f.CreatedByID != "" && e.CreatedByID != f.CreatedByID {
		return false
	}
	return true
}

// List returns events in insertion order.
func (e *Engine) List(filter ListFilter) []domain.Event {
	all := e.events.List()
	out := make([]domain.Event, 0, len(all))
	for _, ev := range all {
		if filter.match(ev) {
			out = append(out, ev)
		}
	}
	return out
}

// Get returns one event or NOT_FOUND.
func (e *Engine) Get(id string) (*domain.Event, error) {
	ev := e.events.Get(id)
	if ev == nil {
		return nil, domain.ErrNotFound("event", id)
	}
	return ev, nil
}

// History returns the surviving journal entries of an event, oldest first.
func (e *Engine) History(id string) []domain.HistoryEntry {
	return e.journal.EntriesFor(id)
}

// JournalSize reports how many entries the journal holds and its cap.
func (e *Engine) JournalSize() (int, int) {
	return e.journal.Len(), e.journal.Cap()
}

// transition is the guard-and-build step of a mutation: it receives a copy of
// the current record and returns the next state, or an error to abort before
// anything is written.
type transition func(cur domain.Event) (domain.Event, error)

// mutate runs one journaled replace of the event stored under id.
func (e *Engine) mutate(
	ctx context.Context,
	id string,
	action domain.HistoryAction,
	evtType domain.OutboxEventType,
	build transition,
) (*domain.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.events.Get(id)
	if cur == nil {
		return nil, domain.ErrNotFound("event", id)
	}

	next, err := build(cur.Clone())
	if err != nil {
		return nil, err
	}
	next.ID = cur.ID
	next.Revision = cur.Revision + 1

	entry := e.journal.Record(id, *cur, action)
	if err := e.events.Replace(id, next); err != nil {
		e.journal.Remove(entry.ID)
		return nil, fmt.Errorf("replace event %s: %w", id, err)
	}

	e.outbox.Enqueue(domain.NewEventLifecycleDraft(evtType, next))
	e.logger.InfoContext(ctx, "event transition",
		"event_id", id,
		"action", string(action),
		"from", string(cur.Status),
		"to", string(next.Status),
		"revision", next.Revision,
	)
	return &next, nil
}

func (e *Engine) timestamp() *time.Time {
	t := e.now().UTC()
	return &t
}

// displayName is how an admin is stamped on attribution fields.
func displayName(a *domain.AdminUser) string {
	if a == nil {
		return ""
	}
	if a.Name != "" {
		return a.Name
	}
	return a.Username
}
