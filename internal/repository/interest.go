package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/technest/technest-api/internal/domain"
	"github.com/technest/technest-api/internal/repository/dao"
)

var (
	ErrInterestNotFound = dao.ErrInterestNotFound
	ErrEventFull        = errors.New("event has no room left")
)

type InterestDAO interface {
	Upsert(ctx context.Context, userID, eventID, status string, admit dao.AdmitFunc) (dao.Interest, bool, error)
	FindByUserAndEvent(ctx context.Context, userID, eventID string) (dao.Interest, error)
	FindByUser(ctx context.Context, userID string) ([]dao.Interest, error)
	DeleteByEvent(ctx context.Context, userID, eventID string) error
	DeleteByID(ctx context.Context, userID, id string) error
}

type InterestRepository struct {
	dao InterestDAO
}

func NewInterestRepository(dao InterestDAO) *InterestRepository {
	return &InterestRepository{
		dao: dao,
	}
}

// Upsert writes the user's status for the event. Moving to GOING fails with
// ErrEventFull when the event's capacity is already taken by other users.
func (r *InterestRepository) Upsert(
	ctx context.Context, userID, eventID string, status domain.InterestStatus,
) (domain.InterestOutcome, error) {
	stored, created, err := r.dao.Upsert(ctx, userID, eventID, string(status), admitGoing)
	if err != nil {
		return domain.InterestOutcome{}, fmt.Errorf("r.dao.Upsert -> %w", err)
	}

	outcome := domain.InterestOutcome{
		Interest: interestToDomain(stored),
		Created:  created,
	}
	if stored.Event != nil {
		outcome.EventTitle = stored.Event.Title
	}
	outcome.Interest.Event = nil

	return outcome, nil
}

func (r *InterestRepository) FindByUserAndEvent(ctx context.Context, userID, eventID string) (domain.Interest, error) {
	found, err := r.dao.FindByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		return domain.Interest{}, fmt.Errorf("r.dao.FindByUserAndEvent -> %w", err)
	}

	return interestToDomain(found), nil
}

func (r *InterestRepository) FindByUser(ctx context.Context, userID string) ([]domain.Interest, error) {
	found, err := r.dao.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUser -> %w", err)
	}

	interests := make([]domain.Interest, 0, len(found))
	for _, i := range found {
		interests = append(interests, interestToDomain(i))
	}

	return interests, nil
}

func (r *InterestRepository) DeleteByEvent(ctx context.Context, userID, eventID string) error {
	if err := r.dao.DeleteByEvent(ctx, userID, eventID); err != nil {
		return fmt.Errorf("r.dao.DeleteByEvent -> %w", err)
	}

	return nil
}

func (r *InterestRepository) DeleteByID(ctx context.Context, userID, id string) error {
	if err := r.dao.DeleteByID(ctx, userID, id); err != nil {
		return fmt.Errorf("r.dao.DeleteByID -> %w", err)
	}

	return nil
}

func admitGoing(maxAttendees *int, going int64) error {
	if !(domain.Event{MaxAttendees: maxAttendees}).HasRoomFor(going) {
		return ErrEventFull
	}

	return nil
}

func interestToDomain(i dao.Interest) domain.Interest {
	interest := domain.Interest{
		ID:        i.ID,
		UserID:    i.UserID,
		EventID:   i.EventID,
		Status:    domain.InterestStatus(i.Status),
		CreatedAt: i.CreatedAt,
	}
	if i.Event != nil {
		event := eventToDomain(*i.Event)
		interest.Event = &event
	}

	return interest
}
