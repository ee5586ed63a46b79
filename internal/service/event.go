package service

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/technest/technest-api/internal/domain"
	"github.com/technest/technest-api/internal/repository"
)

const maxTitleLen = 200

var (
	errMaxAttendeesTooLow = errors.New("must be at least 1")
	errEndBeforeStart     = errors.New("must not be before the start date")
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event, categoryIDs []string) (domain.Event, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	FindByID(ctx context.Context, id string) (domain.Event, error)
	FindBySlug(ctx context.Context, slug string) (domain.Event, error)
	Update(ctx context.Context, event domain.Event, categoryIDs []string) (domain.Event, error)
	Delete(ctx context.Context, id string) error
	FindPublished(ctx context.Context, filter domain.EventFilter, now time.Time) ([]domain.Event, int64, error)
	FindByOrganizer(ctx context.Context, organizerID string) ([]domain.Event, error)
}

type UserReader interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
}

type CategoryReader interface {
	FindByIDs(ctx context.Context, ids []string) ([]domain.Category, error)
}

type InterestReader interface {
	FindByUserAndEvent(ctx context.Context, userID, eventID string) (domain.Interest, error)
}

// EventDefaults fills fields a draft leaves empty.
type EventDefaults struct {
	City     string
	State    string
	Currency string
}

type EventService struct {
	repo       EventRepository
	users      UserReader
	categories CategoryReader
	interests  InterestReader
	policy     Policy
	defaults   EventDefaults
	sanitizer  *bluemonday.Policy
	now        func() time.Time
}

func NewEventService(
	repo EventRepository,
	users UserReader,
	categories CategoryReader,
	interests InterestReader,
	policy Policy,
	defaults EventDefaults,
) *EventService {
	return &EventService{
		repo:       repo,
		users:      users,
		categories: categories,
		interests:  interests,
		policy:     policy,
		defaults:   defaults,
		sanitizer:  bluemonday.UGCPolicy(),
		now:        time.Now,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, identity *domain.Identity, draft domain.EventDraft) (domain.Event, error) {
	if identity == nil {
		return domain.Event{}, ErrUnauthenticated
	}
	if !s.policy.MayOrganize(identity) {
		return domain.Event{}, ErrForbidden
	}

	event := s.draftToEvent(draft)
	if err := validateEvent(event); err != nil {
		return domain.Event{}, err
	}

	organizer, err := s.users.FindByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.Event{}, ErrOrganizerNotFound
		}

		return domain.Event{}, internalErr("s.users.FindByID", err)
	}
	event.OrganizerID = organizer.ID

	categoryIDs, err := s.knownCategoryIDs(ctx, draft.CategoryIDs)
	if err != nil {
		return domain.Event{}, err
	}

	base := Slugify(event.Title)
	for i := 0; i < maxSlugCandidates; i++ {
		event.Slug, err = freeSlug(ctx, s.repo, base)
		if err != nil {
			return domain.Event{}, internalErr("freeSlug", err)
		}

		created, err := s.repo.Create(ctx, event, categoryIDs)
		switch {
		case err == nil:
			zap.L().Info("event created",
				zap.String("event_id", created.ID),
				zap.String("slug", created.Slug),
				zap.String("organizer_id", created.OrganizerID),
			)
			return created, nil
		case errors.Is(err, repository.ErrEventSlugExists):
			// taken between the check and the insert
			continue
		case errors.Is(err, repository.ErrOrganizerAbsent):
			return domain.Event{}, ErrOrganizerNotFound
		default:
			return domain.Event{}, internalErr("s.repo.Create", err)
		}
	}

	return domain.Event{}, internalErr("s.repo.Create", errSlugExhausted)
}

// UpdateEvent applies patch to the event. Only its organizer or an admin may.
func (s *EventService) UpdateEvent(
	ctx context.Context, identity *domain.Identity, eventID string, patch domain.EventPatch,
) (domain.Event, error) {
	event, err := s.manageable(ctx, identity, eventID)
	if err != nil {
		return domain.Event{}, err
	}

	patch.Apply(&event)
	if patch.Description != nil {
		event.Description = s.sanitizer.Sanitize(event.Description)
	}
	if err := validateEvent(event); err != nil {
		return domain.Event{}, err
	}

	var categoryIDs []string
	if patch.CategoryIDs != nil {
		categoryIDs, err = s.knownCategoryIDs(ctx, patch.CategoryIDs)
		if err != nil {
			return domain.Event{}, err
		}
	}

	updated, err := s.repo.Update(ctx, event, categoryIDs)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Event{}, ErrNotFound
		}

		return domain.Event{}, internalErr("s.repo.Update", err)
	}

	return updated, nil
}

// DeleteEvent removes the event with its category links and interests.
func (s *EventService) DeleteEvent(ctx context.Context, identity *domain.Identity, eventID string) error {
	event, err := s.manageable(ctx, identity, eventID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, event.ID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return ErrNotFound
		}

		return internalErr("s.repo.Delete", err)
	}

	zap.L().Info("event deleted", zap.String("event_id", event.ID), zap.String("by", identity.UserID))

	return nil
}

// ListEvents returns one page of upcoming published events matching filter.
func (s *EventService) ListEvents(ctx context.Context, filter domain.EventFilter) (domain.EventPage, error) {
	filter = filter.Normalize()

	events, total, err := s.repo.FindPublished(ctx, filter, s.now())
	if err != nil {
		return domain.EventPage{}, internalErr("s.repo.FindPublished", err)
	}

	return domain.EventPage{
		Events:     events,
		Pagination: domain.NewPagination(total, filter),
	}, nil
}

// GetEventBySlug returns the event and, for a signed-in viewer, their interest in
// it. Unpublished events are only visible to those who may manage them.
func (s *EventService) GetEventBySlug(ctx context.Context, identity *domain.Identity, slug string) (domain.Event, error) {
	event, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Event{}, ErrNotFound
		}

		return domain.Event{}, internalErr("s.repo.FindBySlug", err)
	}

	if !s.policy.MayView(identity, event) {
		return domain.Event{}, ErrNotFound
	}

	if identity == nil {
		return event, nil
	}

	interest, err := s.interests.FindByUserAndEvent(ctx, identity.UserID, event.ID)
	switch {
	case err == nil:
		event.ViewerInterest = &interest
	case !errors.Is(err, repository.ErrInterestNotFound):
		return domain.Event{}, internalErr("s.interests.FindByUserAndEvent", err)
	}

	return event, nil
}

// EventIDForSlug resolves a slug to the id the mutating operations take.
func (s *EventService) EventIDForSlug(ctx context.Context, slug string) (string, error) {
	event, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return "", ErrNotFound
		}

		return "", internalErr("s.repo.FindBySlug", err)
	}

	return event.ID, nil
}

func (s *EventService) manageable(ctx context.Context, identity *domain.Identity, eventID string) (domain.Event, error) {
	if identity == nil {
		return domain.Event{}, ErrUnauthenticated
	}

	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Event{}, ErrNotFound
		}

		return domain.Event{}, internalErr("s.repo.FindByID", err)
	}

	if !s.policy.MayManage(identity, event) {
		return domain.Event{}, ErrForbidden
	}

	return event, nil
}

// knownCategoryIDs drops ids that match no stored category. The result is
// non-nil so that an empty selection still clears the event's categories.
func (s *EventService) knownCategoryIDs(ctx context.Context, ids []string) ([]string, error) {
	known := make([]string, 0, len(ids))
	if len(ids) == 0 {
		return known, nil
	}

	categories, err := s.categories.FindByIDs(ctx, ids)
	if err != nil {
		return nil, internalErr("s.categories.FindByIDs", err)
	}
	for _, c := range categories {
		known = append(known, c.ID)
	}

	return known, nil
}

func (s *EventService) draftToEvent(d domain.EventDraft) domain.Event {
	published := true
	if d.Published != nil {
		published = *d.Published
	}

	event := domain.Event{
		Title:        d.Title,
		Description:  s.sanitizer.Sanitize(d.Description),
		Date:         d.Date,
		EndDate:      d.EndDate,
		Location:     d.Location,
		Address:      d.Address,
		City:         d.City,
		State:        d.State,
		Online:       d.Online,
		MeetingURL:   d.MeetingURL,
		ImageURL:     d.ImageURL,
		Website:      d.Website,
		MaxAttendees: d.MaxAttendees,
		Price:        d.Price,
		Currency:     s.defaults.Currency,
		Published:    published,
	}
	if !event.Online {
		if event.City == "" {
			event.City = s.defaults.City
		}
		if event.State == "" {
			event.State = s.defaults.State
		}
	}

	return event
}

func validateEvent(e domain.Event) error {
	var locationRules, meetingRules []validation.Rule
	if e.Online {
		meetingRules = append(meetingRules, validation.Required)
	} else {
		locationRules = append(locationRules, validation.Required)
	}
	meetingRules = append(meetingRules, is.URL)

	return newValidationError(validation.Errors{
		"title":       validation.Validate(e.Title, validation.Required, validation.RuneLength(1, maxTitleLen)),
		"date":        validation.Validate(e.Date, validation.Required),
		"location":    validation.Validate(e.Location, locationRules...),
		"meeting_url": validation.Validate(e.MeetingURL, meetingRules...),
		"image_url":   validation.Validate(e.ImageURL, is.URL),
		"website":     validation.Validate(e.Website, is.URL),
		"max_attendees": validation.Validate(e.MaxAttendees, validation.By(func(interface{}) error {
			if e.MaxAttendees != nil && *e.MaxAttendees < 1 {
				return errMaxAttendeesTooLow
			}
			return nil
		})),
		"price": validation.Validate(e.Price, validation.Min(0.0)),
		"end_date": validation.Validate(e.EndDate, validation.By(func(interface{}) error {
			if e.EndDate != nil && e.EndDate.Before(e.Date) {
				return errEndBeforeStart
			}
			return nil
		})),
	})
}
