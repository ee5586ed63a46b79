package domain

import "time"

type InterestStatus string

const (
	StatusInterested InterestStatus = "INTERESTED"
	StatusGoing      InterestStatus = "GOING"
	StatusNotGoing   InterestStatus = "NOT_GOING"
)

// ParseInterestStatus resolves a requested status. An empty value means
// INTERESTED; anything outside the enum reports false.
func ParseInterestStatus(s string) (InterestStatus, bool) {
	switch InterestStatus(s) {
	case "":
		return StatusInterested, true
	case StatusInterested, StatusGoing, StatusNotGoing:
		return InterestStatus(s), true
	}
	return "", false
}

// Interest is a user's relationship with an event. There is at most one per
// (UserID, EventID).
type Interest struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	EventID   string         `json:"event_id"`
	Status    InterestStatus `json:"status"`
	Event     *Event         `json:"event,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type InterestOutcome struct {
	Interest   Interest `json:"interest"`
	EventTitle string   `json:"event_title"`
	Created    bool     `json:"-"`
}

// InterestRef points at an interest either through the event it belongs to or
// by its own id. Exactly one of the two is expected.
type InterestRef struct {
	EventID    string
	InterestID string
}
