package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrInterestNotFound = errors.New("interest not found")

const statusGoing = "GOING"

type Interest struct {
	ID string `gorm:"type:uuid;primaryKey"`

	UserID  string `gorm:"type:uuid;not null;uniqueIndex:idx_user_events_user_event"`
	EventID string `gorm:"type:uuid;not null;uniqueIndex:idx_user_events_user_event;index"`
	Status  string `gorm:"type:varchar(16);not null;index"`

	User  User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Event *Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Interest) TableName() string {
	return "user_events"
}

func (i *Interest) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = newID()
	}
	return nil
}

// AdmitFunc decides whether one more GOING row fits an event that already has
// going GOING rows from other users. A non-nil error aborts the write.
type AdmitFunc func(maxAttendees *int, going int64) error

type InterestDAO struct {
	db *gorm.DB
}

func NewInterestDAO(db *gorm.DB) *InterestDAO {
	return &InterestDAO{
		db: db,
	}
}

// Upsert creates or updates the (user, event) interest row in one transaction.
// The event row is locked first; when the new status is GOING, admit is consulted
// with the number of GOING rows held by other users.
func (d *InterestDAO) Upsert(ctx context.Context, userID, eventID, status string, admit AdmitFunc) (Interest, bool, error) {
	var (
		interest Interest
		created  bool
	)

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := lockEvent(tx, eventID)
		if err != nil {
			return err
		}

		if status == statusGoing && admit != nil {
			var going int64
			result := tx.Model(&Interest{}).
				Where("event_id = ? AND status = ? AND user_id <> ?", eventID, statusGoing, userID).
				Count(&going)
			if result.Error != nil {
				return result.Error
			}

			if err := admit(event.MaxAttendees, going); err != nil {
				return err
			}
		}

		result := tx.Where("user_id = ? AND event_id = ?", userID, eventID).First(&interest)
		switch {
		case result.Error == nil:
			if err := tx.Model(&interest).Update("status", status).Error; err != nil {
				return err
			}
		case errors.Is(result.Error, gorm.ErrRecordNotFound):
			interest = Interest{UserID: userID, EventID: eventID, Status: status}
			if err := tx.Omit("User", "Event").Create(&interest).Error; err != nil {
				return err
			}
			created = true
		default:
			return result.Error
		}

		interest.Event = &event
		return nil
	})
	if err != nil {
		return Interest{}, false, err
	}

	return interest, created, nil
}

func (d *InterestDAO) FindByUserAndEvent(ctx context.Context, userID, eventID string) (Interest, error) {
	if !validID(userID) || !validID(eventID) {
		return Interest{}, ErrInterestNotFound
	}

	var interest Interest

	result := d.db.WithContext(ctx).First(&interest, "user_id = ? AND event_id = ?", userID, eventID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Interest{}, ErrInterestNotFound
		}

		return Interest{}, result.Error
	}

	return interest, nil
}

// FindByUser returns the user's interests with their events, newest first.
func (d *InterestDAO) FindByUser(ctx context.Context, userID string) ([]Interest, error) {
	var interests []Interest

	result := d.db.WithContext(ctx).
		Preload("Event").
		Preload("Event.Categories", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&interests)
	if result.Error != nil {
		return nil, result.Error
	}

	return interests, nil
}

// DeleteByEvent removes the user's interest in the event.
func (d *InterestDAO) DeleteByEvent(ctx context.Context, userID, eventID string) error {
	if !validID(userID) || !validID(eventID) {
		return ErrInterestNotFound
	}

	return d.deleteWhere(ctx, "user_id = ? AND event_id = ?", userID, eventID)
}

// DeleteByID removes the interest only when it belongs to userID.
func (d *InterestDAO) DeleteByID(ctx context.Context, userID, id string) error {
	if !validID(userID) || !validID(id) {
		return ErrInterestNotFound
	}

	return d.deleteWhere(ctx, "user_id = ? AND id = ?", userID, id)
}

func (d *InterestDAO) deleteWhere(ctx context.Context, query string, args ...any) error {
	result := d.db.WithContext(ctx).Where(query, args...).Delete(&Interest{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInterestNotFound
	}

	return nil
}
