package domain

import (
	"time"
)

// EventStatus is the lifecycle state of an Event.
type EventStatus string

const (
	StatusPendingApproval EventStatus = "Pending Approval"
	StatusScheduled       EventStatus = "Scheduled"
	StatusNeedsAdmin      EventStatus = "Needs Admin"
	StatusCompleted       EventStatus = "Completed"
	StatusRejected        EventStatus = "Rejected"
)

// AllStatuses returns every event status in display order.
func AllStatuses() []EventStatus {
	return []EventStatus{StatusPendingApproval, StatusScheduled, StatusNeedsAdmin, StatusCompleted, StatusRejected}
}

// Valid reports whether s is a known status.
func (s EventStatus) Valid() bool {
	switch s {
	case StatusPendingApproval, StatusScheduled, StatusNeedsAdmin, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no lifecycle operation leads out of s.
func (s EventStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// Participant is one side of an event (a streamer or team).
type Participant struct {
	ID   string `json:"id" toml:"id"`
	Name string `json:"name" toml:"name"`
}

// Event is a scheduled prediction opportunity between participants.
type Event struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Date            string        `json:"date"` // YYYY-MM-DD
	Time            string        `json:"time"`
	Status          EventStatus   `json:"status"`
	Participants    []Participant `json:"participants"`
	CreatedBy       string        `json:"createdBy,omitempty"`
	CreatedByID     string        `json:"createdById,omitempty"`
	AssignedTo      string        `json:"assignedTo,omitempty"`
	AssignedAt      *time.Time    `json:"assignedAt,omitempty"`
	RejectionReason string        `json:"rejectionReason,omitempty"`
	RejectedBy      string        `json:"rejectedBy,omitempty"`
	CompletedAt     *time.Time    `json:"completedAt,omitempty"`
	WinnerID        string        `json:"winnerId,omitempty"`
	SettledAt       *time.Time    `json:"settledAt,omitempty"`
	Revision        int64         `json:"revision"`
}

// Clone returns a deep copy of the event.
func (e Event) Clone() Event {
	c := e
	if e.Participants != nil {
		c.Participants = make([]Participant, len(e.Participants))
		copy(c.Participants, e.Participants)
	}
	if e.AssignedAt != nil {
		t := *e.AssignedAt
		c.AssignedAt = &t
	}
	if e.CompletedAt != nil {
		t := *e.CompletedAt
		c.CompletedAt = &t
	}
	if e.SettledAt != nil {
		t := *e.SettledAt
		c.SettledAt = &t
	}
	return c
}

// Participant returns the participant with the given id.
func (e Event) Participant(id string) (Participant, bool) {
	for _, p := range e.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// Day parses Date as a calendar day. Time of day is ignored.
func (e Event) Day() (time.Time, error) {
	return time.Parse(time.DateOnly, e.Date)
}

// EventPatch carries the fields of an update. Nil fields are left unchanged.
type EventPatch struct {
	Title           *string        `json:"title,omitempty"`
	Date            *string        `json:"date,omitempty"`
	Time            *string        `json:"time,omitempty"`
	Status          *EventStatus   `json:"status,omitempty"`
	Participants    *[]Participant `json:"participants,omitempty"`
	AssignedTo      *string        `json:"assignedTo,omitempty"`
	AssignedAt      *time.Time     `json:"assignedAt,omitempty"`
	RejectionReason *string        `json:"rejectionReason,omitempty"`
	CompletedAt     *time.Time     `json:"completedAt,omitempty"`
}

// Apply returns a copy of e with the patch applied.
func (p EventPatch) Apply(e Event) Event {
	out := e.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Date != nil {
		out.Date = *p.Date
	}
	if p.Time != nil {
		out.Time = *p.Time
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Participants != nil {
		out.Participants = append([]Participant(nil), (*p.Participants)...)
	}
	if p.AssignedTo != nil {
		out.AssignedTo = *p.AssignedTo
	}
	if p.AssignedAt != nil {
		t := *p.AssignedAt
		out.AssignedAt = &t
	}
	if p.RejectionReason != nil {
		out.RejectionReason = *p.RejectionReason
	}
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

// HistoryAction names the kind of mutation a journal entry precedes.
type HistoryAction string

const (
	ActionUpdate  HistoryAction = "update"
	ActionDelete  HistoryAction = "delete"
	ActionApprove HistoryAction = "approve"
	ActionReject  HistoryAction = "reject"
)

// HistoryEntry is a pre-mutation snapshot of an event.
type HistoryEntry struct {
	ID            string        `json:"id"`
	EventID       string        `json:"eventId"`
	PreviousState Event         `json:"previousState"`
	Action        HistoryAction `json:"action"`
	Timestamp     time.Time     `json:"timestamp"`
}
