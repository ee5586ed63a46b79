package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/technest/technest-api/internal/domain"
)

const maxSearchLen = 100

type CreateEventRequest struct {
	Title        string     `json:"title" form:"title"`
	Description  string     `json:"description" form:"description"`
	Date         time.Time  `json:"date" form:"date"`
	EndDate      *time.Time `json:"end_date" form:"end_date"`
	Location     string     `json:"location" form:"location"`
	Address      string     `json:"address" form:"address"`
	City         string     `json:"city" form:"city"`
	State        string     `json:"state" form:"state"`
	Online       bool       `json:"online" form:"online"`
	MeetingURL   string     `json:"meeting_url" form:"meeting_url"`
	ImageURL     string     `json:"image_url" form:"image_url"`
	Website      string     `json:"website" form:"website"`
	MaxAttendees *int       `json:"max_attendees" form:"max_attendees"`
	Price        *float64   `json:"price" form:"price"`
	Published    *bool      `json:"published" form:"published"`
	CategoryIDs  []string   `json:"category_ids" form:"category_ids"`
}

func (req *CreateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required),
		validation.Field(&req.Date, validation.Required),
	)
}

func (req *CreateEventRequest) ToDraft() domain.EventDraft {
	return domain.EventDraft{
		Title:        req.Title,
		Description:  req.Description,
		Date:         req.Date,
		EndDate:      req.EndDate,
		Location:     req.Location,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		Online:       req.Online,
		MeetingURL:   req.MeetingURL,
		ImageURL:     req.ImageURL,
		Website:      req.Website,
		MaxAttendees: req.MaxAttendees,
		Price:        req.Price,
		Published:    req.Published,
		CategoryIDs:  req.CategoryIDs,
	}
}

// UpdateEventRequest only changes the fields present in the body. A present
// category_ids array, even an empty one, replaces all categories. end_date,
// max_attendees and price are removed by sending null.
type UpdateEventRequest struct {
	Title        *string             `json:"title"`
	Description  *string             `json:"description"`
	Date         *time.Time          `json:"date"`
	EndDate      Nullable[time.Time] `json:"end_date" swaggertype:"string"`
	Location     *string             `json:"location"`
	Address      *string             `json:"address"`
	City         *string             `json:"city"`
	State        *string             `json:"state"`
	Online       *bool               `json:"online"`
	MeetingURL   *string             `json:"meeting_url"`
	ImageURL     *string             `json:"image_url"`
	Website      *string             `json:"website"`
	MaxAttendees Nullable[int]       `json:"max_attendees" swaggertype:"integer"`
	Price        Nullable[float64]   `json:"price" swaggertype:"number"`
	Published    *bool               `json:"published"`
	CategoryIDs  []string            `json:"category_ids"`
}

func (req *UpdateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.NilOrNotEmpty),
		validation.Field(&req.Date, validation.NilOrNotEmpty),
	)
}

func (req *UpdateEventRequest) ToPatch() domain.EventPatch {
	return domain.EventPatch{
		Title:             req.Title,
		Description:       req.Description,
		Date:              req.Date,
		EndDate:           req.EndDate.Value,
		ClearEndDate:      req.EndDate.Cleared(),
		Location:          req.Location,
		Address:           req.Address,
		City:              req.City,
		State:             req.State,
		Online:            req.Online,
		MeetingURL:        req.MeetingURL,
		ImageURL:          req.ImageURL,
		Website:           req.Website,
		MaxAttendees:      req.MaxAttendees.Value,
		ClearMaxAttendees: req.MaxAttendees.Cleared(),
		Price:             req.Price.Value,
		ClearPrice:        req.Price.Cleared(),
		Published:         req.Published,
		CategoryIDs:       req.CategoryIDs,
	}
}

type ListEventsQuery struct {
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
	Search   string `form:"search"`
	Category string `form:"category"`
	Format   string `form:"format"`
	Date     string `form:"date"`
}

func (q *ListEventsQuery) Validate() error {
	return validation.ValidateStruct(
		q,
		validation.Field(&q.Page, validation.Min(0)),
		validation.Field(&q.Limit, validation.Min(0)),
		validation.Field(&q.Search, validation.RuneLength(0, maxSearchLen)),
		validation.Field(&q.Format, validation.In(domain.FormatOnline, domain.FormatInPerson)),
		validation.Field(&q.Date, validation.In(
			domain.DateToday, domain.DateTomorrow, domain.DateThisWeek, domain.DateThisMonth,
		)),
	)
}

func (q *ListEventsQuery) ToFilter() domain.EventFilter {
	return domain.EventFilter{
		Page:         q.Page,
		Limit:        q.Limit,
		Search:       q.Search,
		CategorySlug: q.Category,
		Format:       q.Format,
		DateRange:    q.Date,
	}
}
