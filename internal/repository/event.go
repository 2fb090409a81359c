package repository

import (
	"sync"

	"github.com/cissero/platform/internal/domain"
)

// MemoryEventRepository is an in-memory EventRepository. Records keep their
// insertion order; Replace updates in place.
type MemoryEventRepository struct {
	mu     sync.RWMutex
	events []domain.Event
}

// NewEventRepository creates an EventRepository holding the given events.
func NewEventRepository(seed ...domain.Event) *MemoryEventRepository {
	r := &MemoryEventRepository{events: make([]domain.Event, 0, len(seed))}
	for _, e := range seed {
		r.events = append(r.events, e.Clone())
	}
	return r
}

func (r *MemoryEventRepository) List() []domain.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Event, len(r.events))
	for i, e := range r.events {
		out[i] = e.Clone()
	}
	return out
}

func (r *MemoryEventRepository) Get(id string) *domain.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil
	}
	e := r.events[i].Clone()
	return &e
}

func (r *MemoryEventRepository) Insert(e domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(e.ID) >= 0 {
		return domain.ErrConflict("event " + e.ID + " already exists")
	}
	r.events = append(r.events, e.Clone())
	return nil
}

func (r *MemoryEventRepository) Replace(id string, e domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.ErrNotFound("event", id)
	}
	r.events[i] = e.Clone()
	return nil
}

func (r *MemoryEventRepository) Remove(id string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, domain.ErrNotFound("event", id)
	}
	removed := r.events[i]
	r.events = append(r.events[:i], r.events[i+1:]...)
	return &removed, nil
}

func (r *MemoryEventRepository) CountByStatus() map[domain.EventStatus]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[domain.EventStatus]int, len(domain.AllStatuses()))
	for _, s := range domain.AllStatuses() {
		counts[s] = 0
	}
	for _, e := range r.events {
		counts[e.Status]++
	}
	return counts
}

// indexOf returns the position of id. Caller must hold r.mu.
func (r *MemoryEventRepository) indexOf(id string) int {
	for i := range r.events {
		if r.events[i].ID == id {
			return i
		}
	}
	return -1
}
