package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.\-]{3,32}$`)
)

// MinParticipants is the smallest participant list an event can be saved with.
const MinParticipants = 2

// MaxChatLength bounds a single chat or private message.
const MaxChatLength = 500

// ValidateEmail checks if an email address is valid.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateUsername checks length and character set of a login name.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-32 letters, digits, '.', '_' or '-'")
	}
	return nil
}

// ValidatePositiveAmount checks that a points amount is positive.
func ValidatePositiveAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", amount)
	}
	return nil
}

// ValidateEventFields checks the fields a client must supply before an event
// can be created or saved.
func ValidateEventFields(title, date string, participants []Participant) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if date != "" {
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			return fmt.Errorf("date must be YYYY-MM-DD")
		}
	}
	if len(participants) < MinParticipants {
		return fmt.Errorf("at least %d participants are required", MinParticipants)
	}
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("participant name is required")
		}
		if p.ID != "" && seen[p.ID] {
			return fmt.Errorf("duplicate participant id %s", p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

// ValidateMessageText checks a chat or private message body.
func ValidateMessageText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("message text is required")
	}
	if len(text) > MaxChatLength {
		return fmt.Errorf("message exceeds %d characters", MaxChatLength)
	}
	return nil
}
