package domain

import "time"

// User is a prediction participant holding a points balance.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"displayName"`
	Balance      int64     `json:"balance"`
	PasswordHash string    `json:"-"`
	JoinedAt     time.Time `json:"joinedAt"`
	LastActive   time.Time `json:"lastActive"`
}

// PredictionStatus is the settlement state of a prediction.
type PredictionStatus string

const (
	PredictionActive   PredictionStatus = "active"
	PredictionWon      PredictionStatus = "won"
	PredictionLost     PredictionStatus = "lost"
	PredictionRefunded PredictionStatus = "refunded"
)

// Prediction is a user's point wager on a participant within a Scheduled event.
type Prediction struct {
	ID            string           `json:"id"`
	EventID       string           `json:"eventId"`
	UserID        string           `json:"userId"`
	ParticipantID string           `json:"participantId"`
	Amount        int64            `json:"amount"`
	Payout        int64            `json:"payout,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
	Status        PredictionStatus `json:"status"`
}

// Settlement summarizes the outcome of settling one event.
type Settlement struct {
	EventID  string `json:"eventId"`
	WinnerID string `json:"winnerId,omitempty"`
	Pool     int64  `json:"pool"`
	Winners  int    `json:"winners"`
	Losers   int    `json:"losers"`
	Refunded int    `json:"refunded"`
	PaidOut  int64  `json:"paidOut"`
}
