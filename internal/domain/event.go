package domain

import "time"

const (
	FormatOnline   = "online"
	FormatInPerson = "in-person"

	DateToday     = "today"
	DateTomorrow  = "tomorrow"
	DateThisWeek  = "this-week"
	DateThisMonth = "this-month"

	DefaultPageSize = 10
	MaxPageSize     = 50
)

type Event struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Description    string     `json:"description"`
	Date           time.Time  `json:"date"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	Location       string     `json:"location,omitempty"`
	Address        string     `json:"address,omitempty"`
	City           string     `json:"city,omitempty"`
	State          string     `json:"state,omitempty"`
	Online         bool       `json:"online"`
	MeetingURL     string     `json:"meeting_url,omitempty"`
	ImageURL       string     `json:"image_url,omitempty"`
	Website        string     `json:"website,omitempty"`
	MaxAttendees   *int       `json:"max_attendees,omitempty"`
	Price          *float64   `json:"price,omitempty"`
	Currency       string     `json:"currency,omitempty"`
	Published      bool       `json:"published"`
	OrganizerID    string     `json:"organizer_id"`
	Organizer      *User      `json:"organizer,omitempty"`
	Categories     []Category `json:"categories"`
	AttendeeCount  int64      `json:"attendee_count"`
	ViewerInterest *Interest  `json:"user_interest,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// HasRoomFor reports whether one more GOING attendee fits, given the number of
// other users already GOING. Events without a cap always have room.
func (e Event) HasRoomFor(going int64) bool {
	return e.MaxAttendees == nil || going < int64(*e.MaxAttendees)
}

func (e Event) IsOrganizedBy(userID string) bool {
	return userID != "" && e.OrganizerID == userID
}

// EventDraft is the input for creating an event.
type EventDraft struct {
	Title        string
	Description  string
	Date         time.Time
	EndDate      *time.Time
	Location     string
	Address      string
	City         string
	State        string
	Online       bool
	MeetingURL   string
	ImageURL     string
	Website      string
	MaxAttendees *int
	Price        *float64
	Published    *bool
	CategoryIDs  []string
}

// EventPatch holds the fields to change on an event; nil fields are left alone.
// The Clear flags remove the matching optional value. A nil CategoryIDs keeps
// the current categories, while a non-nil (possibly empty) slice replaces all
// of them.
type EventPatch struct {
	Title             *string
	Description       *string
	Date              *time.Time
	EndDate           *time.Time
	ClearEndDate      bool
	Location          *string
	Address           *string
	City              *string
	State             *string
	Online            *bool
	MeetingURL        *string
	ImageURL          *string
	Website           *string
	MaxAttendees      *int
	ClearMaxAttendees bool
	Price             *float64
	ClearPrice        bool
	Published         *bool
	CategoryIDs       []string
}

func (p EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.EndDate != nil {
		e.EndDate = p.EndDate
	} else if p.ClearEndDate {
		e.EndDate = nil
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Address != nil {
		e.Address = *p.Address
	}
	if p.City != nil {
		e.City = *p.City
	}
	if p.State != nil {
		e.State = *p.State
	}
	if p.Online != nil {
		e.Online = *p.Online
	}
	if p.MeetingURL != nil {
		e.MeetingURL = *p.MeetingURL
	}
	if p.ImageURL != nil {
		e.ImageURL = *p.ImageURL
	}
	if p.Website != nil {
		e.Website = *p.Website
	}
	if p.MaxAttendees != nil {
		e.MaxAttendees = p.MaxAttendees
	} else if p.ClearMaxAttendees {
		e.MaxAttendees = nil
	}
	if p.Price != nil {
		e.Price = p.Price
	} else if p.ClearPrice {
		e.Price = nil
	}
	if p.Published != nil {
		e.Published = *p.Published
	}
}

type EventFilter struct {
	Page         int
	Limit        int
	Search       string
	CategorySlug string
	Format       string
	DateRange    string
}

// Normalize clamps paging values to sane bounds.
func (f EventFilter) Normalize() EventFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	return f
}

func (f EventFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Window returns the date range the filter selects relative to now. Without a
// named range only upcoming events are selected and the upper bound is nil.
// The upper bound is exclusive.
func (f EventFilter) Window(now time.Time) (time.Time, *time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)

	var from, to time.Time
	switch f.DateRange {
	case DateToday:
		from, to = today, tomorrow
	case DateTomorrow:
		from, to = tomorrow, tomorrow.AddDate(0, 0, 1)
	case DateThisWeek:
		// Through the end of Sunday.
		daysLeft := (7 - int(today.Weekday())) % 7
		from, to = today, today.AddDate(0, 0, daysLeft+1)
	case DateThisMonth:
		from, to = today, time.Date(today.Year(), today.Month()+1, 1, 0, 0, 0, 0, now.Location())
	default:
		return now, nil
	}

	return from, &to
}

type Pagination struct {
	TotalEvents   int64 `json:"totalEvents"`
	TotalPages    int   `json:"totalPages"`
	CurrentPage   int   `json:"currentPage"`
	EventsPerPage int   `json:"eventsPerPage"`
	HasNextPage   bool  `json:"hasNextPage"`
	HasPrevPage   bool  `json:"hasPrevPage"`
}

func NewPagination(total int64, f EventFilter) Pagination {
	pages := int((total + int64(f.Limit) - 1) / int64(f.Limit))

	return Pagination{
		TotalEvents:   total,
		TotalPages:    pages,
		CurrentPage:   f.Page,
		EventsPerPage: f.Limit,
		HasNextPage:   f.Page < pages,
		HasPrevPage:   f.Page > 1,
	}
}

type EventPage struct {
	Events     []Event    `json:"events"`
	Pagination Pagination `json:"pagination"`
}
