package repository

import (
	"strings"
	"sync"

	"github.com/cissero/platform/internal/domain"
)

// MemoryUserRepository is an in-memory UserRepository.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users []domain.User
}

// NewUserRepository creates a UserRepository holding the given users.
func NewUserRepository(seed ...domain.User) *MemoryUserRepository {
	return &MemoryUserRepository{users: append([]domain.User(nil), seed...)}
}

func (r *MemoryUserRepository) List() []domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.User(nil), r.users...)
}

func (r *MemoryUserRepository) FindByID(id string) *domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ID == id {
			return &u
		}
	}
	return nil
}

// FindByUsername matches case-insensitively.
func (r *MemoryUserRepository) FindByUsername(username string) *domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			return &u
		}
	}
	return nil
}

func (r *MemoryUserRepository) Insert(u domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.ID == u.ID {
			return domain.ErrConflict("user " + u.ID + " already exists")
		}
		if strings.EqualFold(existing.Username, u.Username) {
			return domain.ErrConflict("username already taken")
		}
	}
	r.users = append(r.users, u)
	return nil
}

func (r *MemoryUserRepository) Update(u domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if r.users[i].ID == u.ID {
			r.users[i] = u
			return nil
		}
	}
	return domain.ErrNotFound("user", u.ID)
}

func (r *MemoryUserRepository) TotalBalance() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int64
	for _, u := range r.users {
		total += u.Balance
	}
	return total
}
