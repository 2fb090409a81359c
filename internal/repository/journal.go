package repository

import (
	"sync"
	"time"

	"github.com/cissero/platform/internal/domain"
	"github.com/google/uuid"
)

// DefaultJournalCap bounds the history journal across all events.
const DefaultJournalCap = 100

// MemoryJournal is a size-bounded FIFO of history entries. Eviction drops the
// globally oldest entry, not the oldest of any one event.
type MemoryJournal struct {
	mu      sync.RWMutex
	entries []domain.HistoryEntry
	cap     int
	now     func() time.Time
}

// NewJournal creates a journal holding at most capacity entries. A
// non-positive capacity falls back to DefaultJournalCap.
func NewJournal(capacity int) *MemoryJournal {
	if capacity <= 0 {
		capacity = DefaultJournalCap
	}
	return &MemoryJournal{cap: capacity, now: time.Now}
}

func (j *MemoryJournal) Record(eventID string, previous domain.Event, action domain.HistoryAction) domain.HistoryEntry {
	j.mu.Lock()
	defer j.mu.Unlock()

	entry := domain.HistoryEntry{
		ID:            uuid.NewString(),
		EventID:       eventID,
		PreviousState: previous.Clone(),
		Action:        action,
		Timestamp:     j.now(),
	}
	j.entries = append(j.entries, entry)
	if over := len(j.entries) - j.cap; over > 0 {
		j.entries = append(j.entries[:0], j.entries[over:]...)
	}
	return entry
}

func (j *MemoryJournal) EntriesFor(eventID string) []domain.HistoryEntry {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var out []domain.HistoryEntry
	for _, e := range j.entries {
		if e.EventID == eventID {
			out = append(out, cloneEntry(e))
		}
	}
	return out
}

// MostRecentFor scans from the end so undo is last-in, first-out per event.
func (j *MemoryJournal) MostRecentFor(eventID string) (domain.HistoryEntry, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	for i := len(j.entries) - 1; i >= 0; i-- {
		if j.entries[i].EventID == eventID {
			return cloneEntry(j.entries[i]), true
		}
	}
	return domain.HistoryEntry{}, false
}

func (j *MemoryJournal) Remove(entryID string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	for i := range j.entries {
		if j.entries[i].ID == entryID {
			j.entries = append(j.entries[:i], j.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (j *MemoryJournal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

func (j *MemoryJournal) Cap() int { return j.cap }

func cloneEntry(e domain.HistoryEntry) domain.HistoryEntry {
	e.PreviousState = e.PreviousState.Clone()
	return e
}
