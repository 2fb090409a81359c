package repository

import "github.com/cissero/platform/internal/domain"

// Snapshot is the initial content of a Store.
type Snapshot struct {
	Events      []domain.Event
	Admins      []domain.AdminUser
	Users       []domain.User
	Predictions []domain.Prediction
}

// Store owns every in-memory collection of the process. It is built once at
// startup and handed to services; tests build a fresh one each.
type Store struct {
	Events      EventRepository
	Journal     JournalRepository
	Admins      AdminRepository
	Users       UserRepository
	Predictions PredictionRepository
	Messages    MessageRepository
}

// NewMemoryStore creates a Store seeded from snap.
func NewMemoryStore(snap Snapshot, journalCap int) *Store {
	return &Store{
		Events:      NewEventRepository(snap.Events...),
		Journal:     NewJournal(journalCap),
		Admins:      NewAdminRepository(snap.Admins...),
		Users:       NewUserRepository(snap.Users...),
		Predictions: NewPredictionRepository(snap.Predictions...),
		Messages:    NewMessageRepository(),
	}
}
