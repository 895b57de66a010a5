package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/accounts-service/internal/domain"
	"github.com/spec-kit/accounts-service/internal/events"
	"github.com/spec-kit/accounts-service/internal/repository"
	apperrors "github.com/spec-kit/accounts-service/pkg/util"
)

// UserService exposes admin-facing account operations.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, dispatcher events.Dispatcher) *UserService {
	return &UserService{users: users, dispatcher: dispatcher}
}

// List returns public projections of all accounts.
func (s *UserService) List(ctx context.Context) ([]domain.PublicUser, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return project(users), nil
}

// ListCustomers returns public projections of CUSTOMER accounts.
func (s *UserService) ListCustomers(ctx context.Context) ([]domain.PublicUser, error) {
	users, err := s.users.ListByRole(ctx, domain.RoleCustomer)
	if err != nil {
		return nil, err
	}
	return project(users), nil
}

// Activate re-enables an account.
func (s *UserService) Activate(ctx context.Context, id int64) (*domain.PublicUser, error) {
	return s.setActive(ctx, id, true)
}

// Deactivate disables an account. Already-issued tokens for the account stop
// authenticating immediately because the middleware re-resolves users per
// request.
func (s *UserService) Deactivate(ctx context.Context, id int64) (*domain.PublicUser, error) {
	return s.setActive(ctx, id, false)
}

func (s *UserService) setActive(ctx context.Context, id int64, active bool) (*domain.PublicUser, error) {
	user, err := s.users.Update(ctx, id, repository.UserUpdate{IsActive: &active})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, err
	}

	eventType := events.EventUserActivated
	if !active {
		eventType = events.EventUserDeactivated
	}
	s.publishEvent(ctx, events.Event{
		Type:    eventType,
		UserID:  user.ID,
		Payload: events.ActivationChangedPayload{IsActive: active},
	})

	public := user.Public()
	return &public, nil
}

func (s *UserService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func project(users []domain.User) []domain.PublicUser {
	projected := make([]domain.PublicUser, 0, len(users))
	for i := range users {
		projected = append(projected, users[i].Public())
	}
	return projected
}
