package domain

import "time"

// Message is one line of an event's public chat.
type Message struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// PrivateMessage is one message in a user's thread with the admin team.
type PrivateMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	FromAdmin bool      `json:"fromAdmin"`
	AdminName string    `json:"adminName,omitempty"`
	Text      string    `json:"text"`
	Read      bool      `json:"read"`
	Timestamp time.Time `json:"timestamp"`
}

// Thread summarizes a user's private conversation for the admin inbox.
type Thread struct {
	UserID      string         `json:"userId"`
	Username    string         `json:"username"`
	Unread      int            `json:"unread"`
	LastMessage PrivateMessage `json:"lastMessage"`
}
