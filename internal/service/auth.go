package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/technest/technest-api/internal/domain"
	"github.com/technest/technest-api/internal/repository"
)

var (
	errMissingFederatedEmail = errors.New("the identity provider did not share an email address")
	errInvalidRole           = errors.New("must be USER, ORGANIZER or ADMIN")
)

type AuthUserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
}

type AuthService struct {
	repo AuthUserRepository
}

func NewAuthService(repo AuthUserRepository) *AuthService {
	return &AuthService{
		repo: repo,
	}
}

// Register creates a password account with the USER role.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (domain.User, error) {
	return s.CreateAccount(ctx, name, email, password, domain.RoleUser)
}

// CreateAccount creates a password account with any role. Self sign-up goes
// through Register; elevated roles are only handed out by operators.
func (s *AuthService) CreateAccount(ctx context.Context, name, email, password string, role domain.Role) (domain.User, error) {
	if !role.IsValid() {
		return domain.User{}, newValidationError(validation.Errors{"role": errInvalidRole})
	}

	email = normalizeEmail(email)

	if err := s.checkEmailExists(ctx, email); err != nil {
		return domain.User{}, err
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return domain.User{}, internalErr("hashPassword", err)
	}

	created, err := s.repo.Create(ctx, domain.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: hashedPassword,
		Role:     role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserEmailExists) {
			return domain.User{}, ErrUserEmailExists
		}

		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	zap.L().Info("user registered", zap.String("user_id", created.ID), zap.String("role", string(role)))

	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrWrongCredentials
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	// accounts created through an identity provider have no password
	if !user.HasPassword() {
		return domain.User{}, ErrWrongCredentials
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, ErrWrongCredentials
	}

	return user, nil
}

// FederatedLogin returns the account matching the provider's email, creating a
// passwordless USER account on first sign-in.
func (s *AuthService) FederatedLogin(ctx context.Context, fu domain.FederatedUser) (domain.User, error) {
	email := normalizeEmail(fu.Email)
	if email == "" {
		return domain.User{}, ValidationError{Fields: validation.Errors{"email": errMissingFederatedEmail}}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	name := strings.TrimSpace(fu.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	created, err := s.repo.Create(ctx, domain.User{
		Name:  name,
		Email: email,
		Image: fu.Image,
		Role:  domain.RoleUser,
	})
	if err != nil {
		// a concurrent first sign-in created it
		if errors.Is(err, repository.ErrUserEmailExists) {
			user, err = s.repo.FindByEmail(ctx, email)
			if err != nil {
				return domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
			}

			return user, nil
		}

		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	zap.L().Info("federated user created", zap.String("user_id", created.ID), zap.String("provider", fu.Provider))

	return created, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *AuthService) checkEmailExists(ctx context.Context, email string) error {
	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return ErrUserEmailExists
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
