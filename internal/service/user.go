package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"github.com/technest/technest-api/internal/domain"
	"github.com/technest/technest-api/internal/repository"
)

const maxNameLen = 100

var ErrUserNotFound = repository.ErrUserNotFound

type UserRepository interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	UpdateName(ctx context.Context, id, name string) (domain.User, error)
	Delete(ctx context.Context, id string) error
}

type OrganizerEventReader interface {
	FindByOrganizer(ctx context.Context, organizerID string) ([]domain.Event, error)
}

type UserInterestReader interface {
	FindByUser(ctx context.Context, userID string) ([]domain.Interest, error)
}

type UserService struct {
	repo      UserRepository
	events    OrganizerEventReader
	interests UserInterestReader
}

func NewUserService(repo UserRepository, events OrganizerEventReader, interests UserInterestReader) *UserService {
	return &UserService{
		repo:      repo,
		events:    events,
		interests: interests,
	}
}

// ListUsers returns every account, oldest first.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return users, nil
}

// GetProfile returns the caller with the events they organize and their interests.
func (s *UserService) GetProfile(ctx context.Context, identity *domain.Identity) (domain.Profile, error) {
	if identity == nil {
		return domain.Profile{}, ErrUnauthenticated
	}

	user, err := s.repo.FindByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.Profile{}, ErrNotFound
		}

		return domain.Profile{}, internalErr("s.repo.FindByID", err)
	}

	mine, err := s.MyEvents(ctx, identity)
	if err != nil {
		return domain.Profile{}, err
	}

	return domain.Profile{
		User:            user,
		OrganizedEvents: mine.OrganizedEvents,
		Interests:       mine.InterestedEvents,
	}, nil
}

// UpdateProfile changes the caller's display name; nothing else is editable.
func (s *UserService) UpdateProfile(ctx context.Context, identity *domain.Identity, name string) (domain.User, error) {
	if identity == nil {
		return domain.User{}, ErrUnauthenticated
	}

	name = strings.TrimSpace(name)
	if err := newValidationError(validation.Errors{
		"name": validation.Validate(name, validation.Required, validation.RuneLength(1, maxNameLen)),
	}); err != nil {
		return domain.User{}, err
	}

	user, err := s.repo.UpdateName(ctx, identity.UserID, name)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrNotFound
		}

		return domain.User{}, internalErr("s.repo.UpdateName", err)
	}

	return user, nil
}

// MyEvents lists the events the caller organizes and their interests, newest
// interest first.
func (s *UserService) MyEvents(ctx context.Context, identity *domain.Identity) (domain.UserEvents, error) {
	if identity == nil {
		return domain.UserEvents{}, ErrUnauthenticated
	}

	organized, err := s.events.FindByOrganizer(ctx, identity.UserID)
	if err != nil {
		return domain.UserEvents{}, internalErr("s.events.FindByOrganizer", err)
	}

	interests, err := s.interests.FindByUser(ctx, identity.UserID)
	if err != nil {
		return domain.UserEvents{}, internalErr("s.interests.FindByUser", err)
	}

	return domain.UserEvents{
		OrganizedEvents:  organized,
		InterestedEvents: interests,
	}, nil
}

// DeleteUser removes an account together with its events and interests. Admins only.
func (s *UserService) DeleteUser(ctx context.Context, identity *domain.Identity, userID string) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if !identity.IsAdmin() {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrNotFound
		}

		return internalErr("s.repo.Delete", err)
	}

	zap.L().Warn("user deleted", zap.String("user_id", userID), zap.String("by", identity.UserID))

	return nil
}
