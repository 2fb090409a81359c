package repository

import (
	"sync"

	"github.com/cissero/platform/internal/domain"
)

// MemoryPredictionRepository is an append-mostly, in-memory PredictionRepository.
type MemoryPredictionRepository struct {
	mu          sync.RWMutex
	predictions []domain.Prediction
}

// NewPredictionRepository creates an empty PredictionRepository.
func NewPredictionRepository(seed ...domain.Prediction) *MemoryPredictionRepository {
	return &MemoryPredictionRepository{predictions: append([]domain.Prediction(nil), seed...)}
}

func (r *MemoryPredictionRepository) Insert(p domain.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.predictions {
		if existing.ID == p.ID {
			return domain.ErrConflict("prediction " + p.ID + " already exists")
		}
	}
	r.predictions = append(r.predictions, p)
	return nil
}

func (r *MemoryPredictionRepository) Update(p domain.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.predictions {
		if r.predictions[i].ID == p.ID {
			r.predictions[i] = p
			return nil
		}
	}
	return domain.ErrNotFound("prediction", p.ID)
}

func (r *MemoryPredictionRepository) List() []domain.Prediction {
	return r.filter(func(domain.Prediction) bool { return true })
}

func (r *MemoryPredictionRepository) ListByEvent(eventID string) []domain.Prediction {
	return r.filter(func(p domain.Prediction) bool { return p.EventID == eventID })
}

func (r *MemoryPredictionRepository) ListByUser(userID string) []domain.Prediction {
	return r.filter(func(p domain.Prediction) bool { return p.UserID == userID })
}

func (r *MemoryPredictionRepository) filter(keep func(domain.Prediction) bool) []domain.Prediction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Prediction
	for _, p := range r.predictions {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
