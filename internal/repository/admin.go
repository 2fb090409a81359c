package repository

import (
	"strings"
	"sync"

	"github.com/cissero/platform/internal/domain"
)

// MemoryAdminRepository is an in-memory AdminRepository.
type MemoryAdminRepository struct {
	mu     sync.RWMutex
	admins []domain.AdminUser
}

// NewAdminRepository creates an AdminRepository holding the given admins.
func NewAdminRepository(seed ...domain.AdminUser) *MemoryAdminRepository {
	r := &MemoryAdminRepository{}
	for _, a := range seed {
		r.admins = append(r.admins, a.Clone())
	}
	return r
}

func (r *MemoryAdminRepository) List() []domain.AdminUser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.AdminUser, len(r.admins))
	for i, a := range r.admins {
		out[i] = a.Clone()
	}
	return out
}

func (r *MemoryAdminRepository) FindByID(id string) *domain.AdminUser {
	return r.find(func(a *domain.AdminUser) bool { return a.ID == id })
}

// FindByUsername matches case-insensitively.
func (r *MemoryAdminRepository) FindByUsername(username string) *domain.AdminUser {
	return r.find(func(a *domain.AdminUser) bool { return strings.EqualFold(a.Username, username) })
}

// FindByEmail matches case-insensitively.
func (r *MemoryAdminRepository) FindByEmail(email string) *domain.AdminUser {
	return r.find(func(a *domain.AdminUser) bool { return strings.EqualFold(a.Email, email) })
}

func (r *MemoryAdminRepository) Insert(a domain.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.admins {
		if r.admins[i].ID == a.ID {
			return domain.ErrConflict("admin " + a.ID + " already exists")
		}
	}
	r.admins = append(r.admins, a.Clone())
	return nil
}

func (r *MemoryAdminRepository) Update(a domain.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.admins {
		if r.admins[i].ID == a.ID {
			r.admins[i] = a.Clone()
			return nil
		}
	}
	return domain.ErrNotFound("admin", a.ID)
}

func (r *MemoryAdminRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.admins {
		if r.admins[i].ID == id {
			r.admins = append(r.admins[:i], r.admins[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound("admin", id)
}

func (r *MemoryAdminRepository) find(match func(*domain.AdminUser) bool) *domain.AdminUser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.admins {
		if match(&r.admins[i]) {
			a := r.admins[i].Clone()
			return &a
		}
	}
	return nil
}
