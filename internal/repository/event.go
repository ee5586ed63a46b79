package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/technest/technest-api/internal/domain"
	"github.com/technest/technest-api/internal/repository/dao"
)

var (
	ErrEventNotFound   = dao.ErrEventNotFound
	ErrEventSlugExists = dao.ErrEventSlugExists
	ErrOrganizerAbsent = dao.ErrOrganizerAbsent
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	FindByID(ctx context.Context, id string) (dao.Event, error)
	FindBySlug(ctx context.Context, slug string) (dao.Event, error)
	Update(ctx context.Context, event dao.Event, categoryIDs []string) (dao.Event, error)
	Delete(ctx context.Context, id string) error
	FindPublished(ctx context.Context, q dao.EventQuery) ([]dao.EventWithCount, int64, error)
	FindByOrganizer(ctx context.Context, organizerID string) ([]dao.EventWithCount, error)
	CountInterests(ctx context.Context, eventID string) (int64, error)
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

// Create stores the event linked to categoryIDs; ids that match no category are ignored.
func (r *EventRepository) Create(ctx context.Context, event domain.Event, categoryIDs []string) (domain.Event, error) {
	toInsert := r.domainToDao(event)
	for _, id := range categoryIDs {
		toInsert.Categories = append(toInsert.Categories, dao.Category{ID: id})
	}

	created, err := r.dao.Insert(ctx, toInsert)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return eventToDomain(created), nil
}

func (r *EventRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	exists, err := r.dao.SlugExists(ctx, slug)
	if err != nil {
		return false, fmt.Errorf("r.dao.SlugExists -> %w", err)
	}

	return exists, nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.withCount(ctx, found)
}

func (r *EventRepository) FindBySlug(ctx context.Context, slug string) (domain.Event, error) {
	found, err := r.dao.FindBySlug(ctx, slug)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindBySlug -> %w", err)
	}

	return r.withCount(ctx, found)
}

// Update persists the event's mutable fields. A nil categoryIDs leaves the
// category links untouched; any other value replaces them.
func (r *EventRepository) Update(ctx context.Context, event domain.Event, categoryIDs []string) (domain.Event, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(event), categoryIDs)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.withCount(ctx, updated)
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

// FindPublished returns the requested page of published events and the total
// number of matching events. The filter must already be normalized.
func (r *EventRepository) FindPublished(ctx context.Context, filter domain.EventFilter, now time.Time) ([]domain.Event, int64, error) {
	from, to := filter.Window(now)

	q := dao.EventQuery{
		Search:       filter.Search,
		CategorySlug: filter.CategorySlug,
		From:         from,
		To:           to,
		Offset:       filter.Offset(),
		Limit:        filter.Limit,
	}
	switch filter.Format {
	case domain.FormatOnline:
		online := true
		q.Online = &online
	case domain.FormatInPerson:
		online := false
		q.Online = &online
	}

	found, total, err := r.dao.FindPublished(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.FindPublished -> %w", err)
	}

	return countedToDomain(found), total, nil
}

func (r *EventRepository) FindByOrganizer(ctx context.Context, organizerID string) ([]domain.Event, error) {
	found, err := r.dao.FindByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByOrganizer -> %w", err)
	}

	return countedToDomain(found), nil
}

func (r *EventRepository) withCount(ctx context.Context, e dao.Event) (domain.Event, error) {
	count, err := r.dao.CountInterests(ctx, e.ID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.CountInterests -> %w", err)
	}

	event := eventToDomain(e)
	event.AttendeeCount = count

	return event, nil
}

func (r *EventRepository) domainToDao(e domain.Event) dao.Event {
	return dao.Event{
		ID:           e.ID,
		Title:        e.Title,
		Slug:         e.Slug,
		Description:  e.Description,
		Date:         e.Date,
		EndDate:      e.EndDate,
		Location:     e.Location,
		Address:      e.Address,
		City:         e.City,
		State:        e.State,
		Online:       e.Online,
		MeetingURL:   e.MeetingURL,
		ImageURL:     e.ImageURL,
		Website:      e.Website,
		MaxAttendees: e.MaxAttendees,
		Price:        e.Price,
		Currency:     e.Currency,
		Published:    e.Published,
		OrganizerID:  e.OrganizerID,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func countedToDomain(found []dao.EventWithCount) []domain.Event {
	events := make([]domain.Event, 0, len(found))
	for _, f := range found {
		event := eventToDomain(f.Event)
		event.AttendeeCount = f.InterestCount
		events = append(events, event)
	}

	return events
}

func eventToDomain(e dao.Event) domain.Event {
	event := domain.Event{
		ID:           e.ID,
		Title:        e.Title,
		Slug:         e.Slug,
		Description:  e.Description,
		Date:         e.Date,
		EndDate:      e.EndDate,
		Location:     e.Location,
		Address:      e.Address,
		City:         e.City,
		State:        e.State,
		Online:       e.Online,
		MeetingURL:   e.MeetingURL,
		ImageURL:     e.ImageURL,
		Website:      e.Website,
		MaxAttendees: e.MaxAttendees,
		Price:        e.Price,
		Currency:     e.Currency,
		Published:    e.Published,
		OrganizerID:  e.OrganizerID,
		Categories:   categoriesToDomain(e.Categories),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if e.Organizer.ID != "" {
		organizer := userToDomain(e.Organizer)
		event.Organizer = &organizer
	}

	return event
}
