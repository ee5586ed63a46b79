package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrEventSlugExists = errors.New("event slug already exists")
	ErrOrganizerAbsent = errors.New("organizer does not exist")
)

type Event struct {
	ID string `gorm:"type:uuid;primaryKey"`

	Title        string    `gorm:"not null"`
	Slug         string    `gorm:"unique;not null"`
	Description  string    `gorm:"type:text"`
	Date         time.Time `gorm:"not null;index"`
	EndDate      *time.Time
	Location     string
	Address      string
	City         string
	State        string
	Online       bool `gorm:"not null"`
	MeetingURL   string
	ImageURL     string
	Website      string
	MaxAttendees *int
	Price        *float64
	Currency     string `gorm:"type:varchar(3)"`
	Published    bool   `gorm:"not null;index"`

	OrganizerID string     `gorm:"type:uuid;not null;index"`
	Organizer   User       `gorm:"foreignKey:OrganizerID;constraint:OnDelete:CASCADE"`
	Categories  []Category `gorm:"many2many:event_categories;constraint:OnDelete:CASCADE"`
	Interests   []Interest `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == "" {
		e.ID = newID()
	}
	return nil
}

// EventQuery is the storage-level shape of a listing request. To is exclusive.
type EventQuery struct {
	Search       string
	CategorySlug string
	Online       *bool
	From         time.Time
	To           *time.Time
	Offset       int
	Limit        int
}

// EventWithCount pairs a stored event with the number of interest rows it has.
type EventWithCount struct {
	Event
	InterestCount int64
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

// Insert stores the event and links it to the given, already existing, categories.
func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Omit("Categories.*", "Organizer", "Interests").Create(&event)
	if result.Error != nil {
		switch {
		case isUniqueViolation(result.Error, `unique constraint "uni_events_slug"`):
			return Event{}, ErrEventSlugExists
		case isForeignKeyViolation(result.Error):
			return Event{}, ErrOrganizerAbsent
		}

		return Event{}, result.Error
	}

	return d.FindByID(ctx, event.ID)
}

func (d *EventDAO) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Event{}).Where("slug = ?", slug).Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id string) (Event, error) {
	if !validID(id) {
		return Event{}, ErrEventNotFound
	}

	return d.findOne(ctx, "id = ?", id)
}

func (d *EventDAO) FindBySlug(ctx context.Context, slug string) (Event, error) {
	return d.findOne(ctx, "slug = ?", slug)
}

func (d *EventDAO) findOne(ctx context.Context, query string, arg string) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).
		Preload("Organizer").
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		First(&event, query, arg)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

// Update overwrites the mutable columns of the event. When categoryIDs is non-nil
// the category links are replaced by exactly that set in the same transaction.
func (d *EventDAO) Update(ctx context.Context, event Event, categoryIDs []string) (Event, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Event{ID: event.ID}).
			Select(
				"Title", "Description", "Date", "EndDate", "Location", "Address", "City", "State",
				"Online", "MeetingURL", "ImageURL", "Website", "MaxAttendees", "Price", "Currency",
				"Published", "UpdatedAt",
			).
			Updates(&event)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrEventNotFound
		}

		if categoryIDs == nil {
			return nil
		}

		association := tx.Model(&Event{ID: event.ID}).Association("Categories")
		if len(categoryIDs) == 0 {
			return association.Clear()
		}

		var categories []Category
		if err := tx.Where("id IN ?", categoryIDs).Find(&categories).Error; err != nil {
			return err
		}
		if len(categories) == 0 {
			return association.Clear()
		}

		return association.Replace(categories)
	})
	if err != nil {
		return Event{}, err
	}

	return d.FindByID(ctx, event.ID)
}

// Delete removes the event together with its category links. Interest rows are
// removed by the ON DELETE CASCADE foreign key.
func (d *EventDAO) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrEventNotFound
	}

	result := d.db.WithContext(ctx).Select("Categories").Delete(&Event{ID: id})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

// FindPublished returns one page of published events matching q, ordered by date,
// together with the total number of matches.
func (d *EventDAO) FindPublished(ctx context.Context, q EventQuery) ([]EventWithCount, int64, error) {
	filtered := func() *gorm.DB {
		db := d.db.WithContext(ctx).Model(&Event{}).
			Where("events.published = ?", true).
			Where("events.date >= ?", q.From)

		if q.To != nil {
			db = db.Where("events.date < ?", *q.To)
		}
		if q.Search != "" {
			like := "%" + escapeLike(q.Search) + "%"
			db = db.Where("(events.title ILIKE ? OR events.description ILIKE ?)", like, like)
		}
		if q.CategorySlug != "" {
			db = db.Where(
				`EXISTS (SELECT 1 FROM event_categories ec JOIN categories c ON c.id = ec.category_id
				WHERE ec.event_id = events.id AND c.slug = ?)`,
				q.CategorySlug,
			)
		}
		if q.Online != nil {
			db = db.Where("events.online = ?", *q.Online)
		}

		return db
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []Event
	result := filtered().
		Preload("Organizer").
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Order("events.date ASC").
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&events)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	withCounts, err := d.attachCounts(ctx, events)
	if err != nil {
		return nil, 0, err
	}

	return withCounts, total, nil
}

func (d *EventDAO) FindByOrganizer(ctx context.Context, organizerID string) ([]EventWithCount, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Where("organizer_id = ?", organizerID).
		Order("date ASC").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return d.attachCounts(ctx, events)
}

func (d *EventDAO) CountInterests(ctx context.Context, eventID string) (int64, error) {
	counts, err := d.countInterests(ctx, []string{eventID})
	if err != nil {
		return 0, err
	}

	return counts[eventID], nil
}

func (d *EventDAO) attachCounts(ctx context.Context, events []Event) ([]EventWithCount, error) {
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}

	counts, err := d.countInterests(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]EventWithCount, 0, len(events))
	for _, e := range events {
		out = append(out, EventWithCount{Event: e, InterestCount: counts[e.ID]})
	}

	return out, nil
}

func (d *EventDAO) countInterests(ctx context.Context, eventIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		EventID string
		Total   int64
	}

	result := d.db.WithContext(ctx).Model(&Interest{}).
		Select("event_id, COUNT(*) AS total").
		Where("event_id IN ?", eventIDs).
		Group("event_id").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	for _, r := range rows {
		counts[r.EventID] = r.Total
	}

	return counts, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// lockEvent reads the event row with FOR UPDATE so that concurrent interest
// writes for the same event are serialized.
func lockEvent(tx *gorm.DB, id string) (Event, error) {
	if !validID(id) {
		return Event{}, ErrEventNotFound
	}

	var event Event

	result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "organizer_id", "title", "max_attendees").
		First(&event, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}
