package repository

import (
	"github.com/cissero/platform/internal/domain"
)

// EventRepository owns the ordered collection of events. Only the lifecycle
// engine mutates it.
type EventRepository interface {
	// List returns copies of all events in insertion order.
	List() []domain.Event

	// Get returns a copy of the event, or nil if absent.
	Get(id string) *domain.Event

	// Insert appends an event. Fails with CONFLICT if the id is taken.
	Insert(e domain.Event) error

	// Replace overwrites the event stored under id in place.
	Replace(id string, e domain.Event) error

	// Remove deletes the event and returns the removed record.
	Remove(id string) (*domain.Event, error)

	// CountByStatus tallies events per lifecycle status.
	CountByStatus() map[domain.EventStatus]int
}

// JournalRepository is the size-capped history of pre-mutation snapshots.
type JournalRepository interface {
	// Record appends an entry, evicting the oldest entries beyond the cap.
	Record(eventID string, previous domain.Event, action domain.HistoryAction) domain.HistoryEntry

	// EntriesFor returns the entries of one event, oldest first.
	EntriesFor(eventID string) []domain.HistoryEntry

	// MostRecentFor returns the newest surviving entry for the event.
	MostRecentFor(eventID string) (domain.HistoryEntry, bool)

	// Remove deletes one entry by id.
	Remove(entryID string) bool

	Len() int
	Cap() int
}

// AdminRepository provides access to admin console accounts.
type AdminRepository interface {
	List() []domain.AdminUser
	FindByID(id string) *domain.AdminUser
	FindByUsername(username string) *domain.AdminUser
	FindByEmail(email string) *domain.AdminUser
	Insert(a domain.AdminUser) error
	Update(a domain.AdminUser) error
	Delete(id string) error
}

// UserRepository provides access to prediction participants.
type UserRepository interface {
	List() []domain.User
	FindByID(id string) *domain.User
	FindByUsername(username string) *domain.User
	Insert(u domain.User) error
	Update(u domain.User) error

	// TotalBalance sums the balances of all users.
	TotalBalance() int64
}

// PredictionRepository provides access to predictions.
type PredictionRepository interface {
	Insert(p domain.Prediction) error
	Update(p domain.Prediction) error
	List() []domain.Prediction
	ListByEvent(eventID string) []domain.Prediction
	ListByUser(userID string) []domain.Prediction
}

// MessageRepository holds event chat and private admin threads.
type MessageRepository interface {
	AppendChat(m domain.Message)

	// ListChat returns the last limit messages of an event, oldest first.
	// limit <= 0 returns all.
	ListChat(eventID string, limit int) []domain.Message

	AppendPrivate(m domain.PrivateMessage)
	ListPrivate(userID string) []domain.PrivateMessage

	// MarkRead flags every user-authored message in the thread as read.
	MarkRead(userID string) int

	// Threads lists user ids with at least one private message, newest activity first.
	Threads() []string
}
