package repository

import (
	"sort"
	"sync"

	"github.com/cissero/platform/internal/domain"
)

// MemoryMessageRepository holds chat lines per event and one private thread per user.
type MemoryMessageRepository struct {
	mu      sync.RWMutex
	chat    map[string][]domain.Message        // eventID -> messages
	private map[string][]domain.PrivateMessage // userID -> thread
}

// NewMessageRepository creates an empty MessageRepository.
func NewMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{
		chat:    make(map[string][]domain.Message),
		private: make(map[string][]domain.PrivateMessage),
	}
}

func (r *MemoryMessageRepository) AppendChat(m domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chat[m.EventID] = append(r.chat[m.EventID], m)
}

func (r *MemoryMessageRepository) ListChat(eventID string, limit int) []domain.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := r.chat[eventID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]domain.Message(nil), msgs...)
}

func (r *MemoryMessageRepository) AppendPrivate(m domain.PrivateMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.private[m.UserID] = append(r.private[m.UserID], m)
}

func (r *MemoryMessageRepository) ListPrivate(userID string) []domain.PrivateMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.PrivateMessage(nil), r.private[userID]...)
}

func (r *MemoryMessageRepository) MarkRead(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	thread := r.private[userID]
	for i := range thread {
		if !thread[i].FromAdmin && !thread[i].Read {
			thread[i].Read = true
			n++
		}
	}
	return n
}

func (r *MemoryMessageRepository) Threads() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.private))
	for id, thread := range r.private {
		if len(thread) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		a := r.private[ids[i]]
		b := r.private[ids[j]]
		return a[len(a)-1].Timestamp.After(b[len(b)-1].Timestamp)
	})
	return ids
}
