package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cissero/platform/internal/domain"
)

// MemoryStore is the in-process Store used when no database is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]memDoc
	now  func() time.Time
}

type memDoc struct {
	data      json.RawMessage
	updatedAt time.Time
}

// NewMemoryStore creates an empty in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]memDoc), now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, collection, id string, dest any) error {
	s.mu.RLock()
	d, ok := s.docs[collection][id]
	s.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound(collection, id)
	}
	if err := json.Unmarshal(d.data, dest); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MemoryStore) Set(_ context.Context, collection, id string, doc any) error {
	data, err := encode(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string]memDoc)
	}
	s.docs[collection][id] = memDoc{data: data, updatedAt: s.now()}
	return nil
}

func (s *MemoryStore) Update(_ context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[collection][id]
	if !ok {
		return domain.ErrNotFound(collection, id)
	}

	var merged map[string]any
	if err := json.Unmarshal(d.data, &merged); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	for k, v := range fields {
		merged[k] = v
	}
	data, err := encode(merged)
	if err != nil {
		return err
	}
	s.docs[collection][id] = memDoc{data: data, updatedAt: s.now()}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs[collection], id)
	return nil
}

func (s *MemoryStore) List(_ context.Context, collection string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type item struct {
		id string
		at time.Time
	}
	items := make([]item, 0, len(s.docs[collection]))
	for id, d := range s.docs[collection] {
		items = append(items, item{id, d.updatedAt})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].at.Equal(items[j].at) {
			return items[i].id < items[j].id
		}
		return items[i].at.After(items[j].at)
	})

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.id
	}
	return ids, nil
}
