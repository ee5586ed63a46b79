package service

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"github.com/technest/technest-api/internal/domain"
	"github.com/technest/technest-api/internal/metrics"
	"github.com/technest/technest-api/internal/repository"
)

type InterestRepository interface {
	Upsert(ctx context.Context, userID, eventID string, status domain.InterestStatus) (domain.InterestOutcome, error)
	FindByUserAndEvent(ctx context.Context, userID, eventID string) (domain.Interest, error)
	FindByUser(ctx context.Context, userID string) ([]domain.Interest, error)
	DeleteByEvent(ctx context.Context, userID, eventID string) error
	DeleteByID(ctx context.Context, userID, id string) error
}

type EventReader interface {
	FindByID(ctx context.Context, id string) (domain.Event, error)
}

type InterestService struct {
	repo   InterestRepository
	events EventReader
}

func NewInterestService(repo InterestRepository, events EventReader) *InterestService {
	return &InterestService{
		repo:   repo,
		events: events,
	}
}

// ExpressInterest records the caller's status for an event, replacing any
// previous status. An empty status means INTERESTED.
func (s *InterestService) ExpressInterest(
	ctx context.Context, identity *domain.Identity, eventID, status string,
) (domain.InterestOutcome, error) {
	if identity == nil {
		return domain.InterestOutcome{}, ErrUnauthenticated
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.InterestOutcome{}, ErrNotFound
		}

		return domain.InterestOutcome{}, internalErr("s.events.FindByID", err)
	}
	if !canView(identity, event) {
		return domain.InterestOutcome{}, ErrNotFound
	}

	if event.IsOrganizedBy(identity.UserID) {
		return domain.InterestOutcome{}, ErrSelfInterestForbidden
	}

	desired, ok := domain.ParseInterestStatus(status)
	if !ok {
		return domain.InterestOutcome{}, ErrInvalidStatus
	}

	outcome, err := s.repo.Upsert(ctx, identity.UserID, event.ID, desired)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEventFull):
			return domain.InterestOutcome{}, ErrCapacityExceeded
		case errors.Is(err, repository.ErrEventNotFound):
			return domain.InterestOutcome{}, ErrNotFound
		}

		return domain.InterestOutcome{}, internalErr("s.repo.Upsert", err)
	}

	metrics.InterestTransitions.WithLabelValues(string(desired)).Inc()
	zap.L().Debug("interest recorded",
		zap.String("user_id", identity.UserID),
		zap.String("event_id", event.ID),
		zap.String("status", string(desired)),
		zap.Bool("created", outcome.Created),
	)

	return outcome, nil
}

// WithdrawInterest deletes the caller's interest, addressed either by event or by
// interest id. Rows owned by someone else are reported as not found.
func (s *InterestService) WithdrawInterest(ctx context.Context, identity *domain.Identity, target domain.InterestRef) error {
	if identity == nil {
		return ErrUnauthenticated
	}

	var (
		err error
		op  string
	)
	switch {
	case target.EventID != "" && target.InterestID == "":
		op = "s.repo.DeleteByEvent"
		err = s.repo.DeleteByEvent(ctx, identity.UserID, target.EventID)
	case target.InterestID != "" && target.EventID == "":
		op = "s.repo.DeleteByID"
		err = s.repo.DeleteByID(ctx, identity.UserID, target.InterestID)
	default:
		return ValidationError{Fields: validation.Errors{
			"eventId": errors.New("exactly one of eventId or id is required"),
		}}
	}
	if err != nil {
		if errors.Is(err, repository.ErrInterestNotFound) {
			return ErrNotFound
		}

		return internalErr(op, err)
	}

	metrics.InterestTransitions.WithLabelValues("WITHDRAWN").Inc()

	return nil
}
