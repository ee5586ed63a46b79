package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/technest/technest-api/internal/domain"
	"github.com/technest/technest-api/internal/repository"
)

// memStore is an in-memory stand-in for the postgres repositories. Each view
// type below exposes the method set one service consumes.
type memStore struct {
	mu sync.Mutex

	seq             int
	users           map[string]domain.User
	events          map[string]domain.Event
	categories      map[string]domain.Category
	eventCategories map[string][]string
	interests       map[string]domain.Interest
}

func newMemStore() *memStore {
	return &memStore{
		users:           map[string]domain.User{},
		events:          map[string]domain.Event{},
		categories:      map[string]domain.Category{},
		eventCategories: map[string][]string{},
		interests:       map[string]domain.Interest{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return prefix + "-" + strconv.Itoa(m.seq)
}

func (m *memStore) Users() *memUsers           { return &memUsers{m} }
func (m *memStore) Events() *memEvents         { return &memEvents{m} }
func (m *memStore) Categories() *memCategories { return &memCategories{m} }
func (m *memStore) Interests() *memInterests   { return &memInterests{m} }

func (m *memStore) addUser(name string, role domain.Role) domain.User {
	u, _ := m.Users().Create(context.Background(), domain.User{
		Name:  name,
		Email: strings.ToLower(name) + "@example.com",
		Role:  role,
	})
	return u
}

func (m *memStore) addEvent(organizerID string, maxAttendees *int) domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := domain.Event{
		ID:           m.nextID("event"),
		Title:        "Event",
		Date:         time.Now().Add(24 * time.Hour),
		Location:     "Rua Augusta",
		MaxAttendees: maxAttendees,
		Published:    true,
		OrganizerID:  organizerID,
	}
	e.Slug = e.ID
	m.events[e.ID] = e

	return e
}

func (m *memStore) addDraftEvent(organizerID string) domain.Event {
	e := m.addEvent(organizerID, nil)

	m.mu.Lock()
	defer m.mu.Unlock()
	e.Published = false
	m.events[e.ID] = e

	return e
}

func (m *memStore) addCategory(name string) domain.Category {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := domain.Category{ID: m.nextID("cat"), Name: name, Slug: Slugify(name)}
	m.categories[c.ID] = c

	return c
}

// event returns the stored row with categories and count, like the gorm repository.
func (m *memStore) event(id string) domain.Event {
	e := m.events[id]
	e.Categories = []domain.Category{}
	for _, cid := range m.eventCategories[id] {
		e.Categories = append(e.Categories, m.categories[cid])
	}
	for _, in := range m.interests {
		if in.EventID == id {
			e.AttendeeCount++
		}
	}
	return e
}

// ===== Users =====

type memUsers struct{ m *memStore }

func (r *memUsers) Create(_ context.Context, user domain.User) (domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, u := range r.m.users {
		if u.Email == user.Email {
			return domain.User{}, repository.ErrUserEmailExists
		}
	}
	user.ID = r.m.nextID("user")
	user.CreatedAt = time.Now()
	r.m.users[user.ID] = user

	return user, nil
}

func (r *memUsers) FindByID(_ context.Context, id string) (domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	u, ok := r.m.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, u := range r.m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (r *memUsers) FindAll(_ context.Context) ([]domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	users := make([]domain.User, 0, len(r.m.users))
	for _, u := range r.m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *memUsers) UpdateName(_ context.Context, id, name string) (domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	u, ok := r.m.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	u.Name = name
	r.m.users[id] = u
	return u, nil
}

func (r *memUsers) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.m.users, id)

	for eid, e := range r.m.events {
		if e.OrganizerID == id {
			r.m.deleteEventLocked(eid)
		}
	}
	for iid, in := range r.m.interests {
		if in.UserID == id {
			delete(r.m.interests, iid)
		}
	}
	return nil
}

// ===== Events =====

type memEvents struct{ m *memStore }

func (r *memEvents) Create(_ context.Context, event domain.Event, categoryIDs []string) (domain.Event, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.users[event.OrganizerID]; !ok {
		return domain.Event{}, repository.ErrOrganizerAbsent
	}
	for _, e := range r.m.events {
		if e.Slug == event.Slug {
			return domain.Event{}, repository.ErrEventSlugExists
		}
	}

	event.ID = r.m.nextID("event")
	event.CreatedAt = time.Now()
	r.m.events[event.ID] = event
	r.m.eventCategories[event.ID] = append([]string(nil), categoryIDs...)

	return r.m.event(event.ID), nil
}

func (r *memEvents) SlugExists(_ context.Context, slug string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, e := range r.m.events {
		if e.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *memEvents) FindByID(_ context.Context, id string) (domain.Event, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.events[id]; !ok {
		return domain.Event{}, repository.ErrEventNotFound
	}
	return r.m.event(id), nil
}

func (r *memEvents) FindBySlug(_ context.Context, slug string) (domain.Event, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for id, e := range r.m.events {
		if e.Slug == slug {
			return r.m.event(id), nil
		}
	}
	return domain.Event{}, repository.ErrEventNotFound
}

func (r *memEvents) Update(_ context.Context, event domain.Event, categoryIDs []string) (domain.Event, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	stored, ok := r.m.events[event.ID]
	if !ok {
		return domain.Event{}, repository.ErrEventNotFound
	}
	event.Slug = stored.Slug
	event.OrganizerID = stored.OrganizerID
	event.Categories = nil
	event.AttendeeCount = 0
	r.m.events[event.ID] = event
	if categoryIDs != nil {
		r.m.eventCategories[event.ID] = append([]string{}, categoryIDs...)
	}

	return r.m.event(event.ID), nil
}

func (r *memEvents) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.events[id]; !ok {
		return repository.ErrEventNotFound
	}
	r.m.deleteEventLocked(id)
	return nil
}

func (m *memStore) deleteEventLocked(id string) {
	delete(m.events, id)
	delete(m.eventCategories, id)
	for iid, in := range m.interests {
		if in.EventID == id {
			delete(m.interests, iid)
		}
	}
}

func (r *memEvents) FindPublished(_ context.Context, filter domain.EventFilter, now time.Time) ([]domain.Event, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	from, to := filter.Window(now)

	var matched []domain.Event
	for id, e := range r.m.events {
		if !e.Published || e.Date.Before(from) || (to != nil && !e.Date.Before(*to)) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(e.Title+" "+e.Description), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Format == domain.FormatOnline && !e.Online || filter.Format == domain.FormatInPerson && e.Online {
			continue
		}
		full := r.m.event(id)
		if filter.CategorySlug != "" && !hasCategory(full, filter.CategorySlug) {
			continue
		}
		matched = append(matched, full)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Date.Before(matched[j].Date) })

	total := int64(len(matched))
	start := min(filter.Offset(), len(matched))
	end := min(start+filter.Limit, len(matched))

	return matched[start:end], total, nil
}

func hasCategory(e domain.Event, slug string) bool {
	for _, c := range e.Categories {
		if c.Slug == slug {
			return true
		}
	}
	return false
}

func (r *memEvents) FindByOrganizer(_ context.Context, organizerID string) ([]domain.Event, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var events []domain.Event
	for id, e := range r.m.events {
		if e.OrganizerID == organizerID {
			events = append(events, r.m.event(id))
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	return events, nil
}

// ===== Categories =====

type memCategories struct{ m *memStore }

func (r *memCategories) FindAll(_ context.Context) ([]domain.Category, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	categories := make([]domain.Category, 0, len(r.m.categories))
	for _, c := range r.m.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (r *memCategories) FindByIDs(_ context.Context, ids []string) ([]domain.Category, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var categories []domain.Category
	for _, id := range ids {
		if c, ok := r.m.categories[id]; ok {
			categories = append(categories, c)
		}
	}
	return categories, nil
}

func (r *memCategories) CreateIfMissing(_ context.Context, category domain.Category) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, c := range r.m.categories {
		if c.Slug == category.Slug || c.Name == category.Name {
			return false, nil
		}
	}
	category.ID = r.m.nextID("cat")
	r.m.categories[category.ID] = category
	return true, nil
}

// ===== Interests =====

type memInterests struct{ m *memStore }

// Upsert holds the store lock across the capacity count and the write, the
// in-memory counterpart of the row lock taken by the postgres implementation.
func (r *memInterests) Upsert(
	_ context.Context, userID, eventID string, status domain.InterestStatus,
) (domain.InterestOutcome, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	event, ok := r.m.events[eventID]
	if !ok {
		return domain.InterestOutcome{}, repository.ErrEventNotFound
	}

	if status == domain.StatusGoing {
		var going int64
		for _, in := range r.m.interests {
			if in.EventID == eventID && in.UserID != userID && in.Status == domain.StatusGoing {
				going++
			}
		}
		if !event.HasRoomFor(going) {
			return domain.InterestOutcome{}, repository.ErrEventFull
		}
	}

	for id, in := range r.m.interests {
		if in.UserID == userID && in.EventID == eventID {
			in.Status = status
			r.m.interests[id] = in
			return domain.InterestOutcome{Interest: in, EventTitle: event.Title}, nil
		}
	}

	in := domain.Interest{
		ID:        r.m.nextID("interest"),
		UserID:    userID,
		EventID:   eventID,
		Status:    status,
		CreatedAt: time.Now(),
	}
	r.m.interests[in.ID] = in

	return domain.InterestOutcome{Interest: in, EventTitle: event.Title, Created: true}, nil
}

func (r *memInterests) FindByUserAndEvent(_ context.Context, userID, eventID string) (domain.Interest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, in := range r.m.interests {
		if in.UserID == userID && in.EventID == eventID {
			return in, nil
		}
	}
	return domain.Interest{}, repository.ErrInterestNotFound
}

func (r *memInterests) FindByUser(_ context.Context, userID string) ([]domain.Interest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var interests []domain.Interest
	for _, in := range r.m.interests {
		if in.UserID == userID {
			event := r.m.event(in.EventID)
			in.Event = &event
			interests = append(interests, in)
		}
	}
	sort.Slice(interests, func(i, j int) bool { return interests[i].CreatedAt.After(interests[j].CreatedAt) })
	return interests, nil
}

func (r *memInterests) DeleteByEvent(_ context.Context, userID, eventID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for id, in := range r.m.interests {
		if in.UserID == userID && in.EventID == eventID {
			delete(r.m.interests, id)
			return nil
		}
	}
	return repository.ErrInterestNotFound
}

func (r *memInterests) DeleteByID(_ context.Context, userID, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	in, ok := r.m.interests[id]
	if !ok || in.UserID != userID {
		return repository.ErrInterestNotFound
	}
	delete(r.m.interests, id)
	return nil
}

func (r *memInterests) count() int {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	return len(r.m.interests)
}
