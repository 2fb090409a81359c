// Package seed loads the fixed startup data of a fresh process.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/cissero/platform/internal/domain"
	"github.com/cissero/platform/internal/repository"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/crypto/bcrypt"
)

//go:embed seed.toml
var defaultSeed []byte

type file struct {
	Admins      []adminRow      `toml:"admins"`
	Users       []userRow       `toml:"users"`
	Events      []eventRow      `toml:"events"`
	Predictions []predictionRow `toml:"predictions"`
}

type adminRow struct {
	ID          string   `toml:"id"`
	Username    string   `toml:"username"`
	Email       string   `toml:"email"`
	Name        string   `toml:"name"`
	Role        string   `toml:"role"`
	Permissions []string `toml:"permissions"`
	Active      bool     `toml:"active"`
	Password    string   `toml:"password"`
}

type userRow struct {
	ID          string `toml:"id"`
	Username    string `toml:"username"`
	DisplayName string `toml:"display_name"`
	Balance     int64  `toml:"balance"`
	Password    string `toml:"password"`
}

type eventRow struct {
	ID              string               `toml:"id"`
	Title           string               `toml:"title"`
	Date            string               `toml:"date"`
	Time            string               `toml:"time"`
	Status          string               `toml:"status"`
	Participants    []domain.Participant `toml:"participants"`
	CreatedBy       string               `toml:"created_by"`
	CreatedByID     string               `toml:"created_by_id"`
	AssignedTo      string               `toml:"assigned_to"`
	RejectionReason string               `toml:"rejection_reason"`
	RejectedBy      string               `toml:"rejected_by"`
}

type predictionRow struct {
	ID            string `toml:"id"`
	EventID       string `toml:"event_id"`
	UserID        string `toml:"user_id"`
	ParticipantID string `toml:"participant_id"`
	Amount        int64  `toml:"amount"`
}

// Load reads the seed at path, or the embedded default when path is empty,
// and hashes its passwords with the given bcrypt cost.
func Load(path string, cost int) (repository.Snapshot, error) {
	data := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return repository.Snapshot{}, fmt.Errorf("read seed: %w", err)
		}
		data = b
	}
	return Parse(data, cost)
}

// Parse decodes TOML seed data into a store snapshot.
func Parse(data []byte, cost int) (repository.Snapshot, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return repository.Snapshot{}, fmt.Errorf("decode seed: %w", err)
	}

	now := time.Now().UTC()
	var snap repository.Snapshot

	for _, a := range f.Admins {
		role := domain.AdminRole(a.Role)
		if !role.Valid() {
			return snap, fmt.Errorf("admin %s: unknown role %q", a.ID, a.Role)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), cost)
		if err != nil {
			return snap, fmt.Errorf("admin %s: hash password: %w", a.ID, err)
		}
		snap.Admins = append(snap.Admins, domain.AdminUser{
			ID:           a.ID,
			Username:     a.Username,
			Email:        a.Email,
			Name:         a.Name,
			Role:         role,
			Permissions:  a.Permissions,
			Active:       a.Active,
			PasswordHash: string(hash),
			CreatedAt:    now,
		})
	}

	for _, u := range f.Users {
		if u.Balance < 0 {
			return snap, fmt.Errorf("user %s: negative balance", u.ID)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
		if err != nil {
			return snap, fmt.Errorf("user %s: hash password: %w", u.ID, err)
		}
		snap.Users = append(snap.Users, domain.User{
			ID:           u.ID,
			Username:     u.Username,
			DisplayName:  u.DisplayName,
			Balance:      u.Balance,
			PasswordHash: string(hash),
			JoinedAt:     now,
			LastActive:   now,
		})
	}

	for _, e := range f.Events {
		status := domain.EventStatus(e.Status)
		if !status.Valid() {
			return snap, fmt.Errorf("event %s: unknown status %q", e.ID, e.Status)
		}
		ev := domain.Event{
			ID:              e.ID,
			Title:           e.Title,
			Date:            e.Date,
			Time:            e.Time,
			Status:          status,
			Participants:    e.Participants,
			CreatedBy:       e.CreatedBy,
			CreatedByID:     e.CreatedByID,
			AssignedTo:      e.AssignedTo,
			RejectionReason: e.RejectionReason,
			RejectedBy:      e.RejectedBy,
		}
		if ev.AssignedTo != "" {
			ev.AssignedAt = &now
		}
		if status == domain.StatusCompleted {
			ev.CompletedAt = &now
		}
		snap.Events = append(snap.Events, ev)
	}

	for _, p := range f.Predictions {
		snap.Predictions = append(snap.Predictions, domain.Prediction{
			ID:            p.ID,
			EventID:       p.EventID,
			UserID:        p.UserID,
			ParticipantID: p.ParticipantID,
			Amount:        p.Amount,
			Timestamp:     now,
			Status:        domain.PredictionActive,
		})
	}

	return snap, nil
}
