package client

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rmarchetti/stockroom-backend/internal/authz"
	"github.com/rmarchetti/stockroom-backend/internal/users"
	pkgerrors "github.com/rmarchetti/stockroom-backend/pkg/errors"
)

// UsersStore is the user directory state container.
type UsersStore struct {
	entityStore[users.UserDTO]
}

func NewUsersStore(transport Transport, opts Options) (*UsersStore, error) {
	if transport == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transport is required")
	}
	return &UsersStore{
		entityStore: newEntityStore[users.UserDTO](transport, "users", opts),
	}, nil
}

func (s *UsersStore) List(ctx context.Context) ([]users.UserDTO, error) {
	return s.refresh(ctx, nil)
}

func (s *UsersStore) GetByID(ctx context.Context, id uuid.UUID) (*users.UserDTO, error) {
	return s.getByID(ctx, idPayload{ID: id})
}

// Me fetches the caller's own profile.
func (s *UsersStore) Me(ctx context.Context) (*users.UserDTO, error) {
	raw, err := s.transport.Do(ctx, s.entity, "me", nil)
	if err != nil {
		return nil, err
	}
	return decodeObject[users.UserDTO](raw)
}

func (s *UsersStore) UpdateProfile(ctx context.Context, input users.UpdateProfileInput) (*users.UserDTO, error) {
	raw, err := s.transport.Do(ctx, s.entity, "updateProfile", input)
	if err != nil {
		return nil, err
	}
	user, err := decodeObject[users.UserDTO](raw)
	if err != nil {
		return nil, err
	}
	s.scheduleRefresh()
	return user, nil
}

// UpdateRole promotes or demotes a user. Admin-only, checked locally first.
func (s *UsersStore) UpdateRole(ctx context.Context, id uuid.UUID, role string) (*users.UserDTO, error) {
	if !authz.CanPerform(s.opts.Actor, authz.ActionUpdate, authz.KindUser) {
		return nil, authz.Deny(authz.ActionUpdate, authz.KindUser)
	}
	payload := struct {
		ID   uuid.UUID `json:"id"`
		Role string    `json:"role"`
	}{ID: id, Role: role}

	raw, err := s.transport.Do(ctx, s.entity, "updateRole", payload)
	if err != nil {
		return nil, err
	}
	user, err := decodeObject[users.UserDTO](raw)
	if err != nil {
		return nil, err
	}
	s.scheduleRefresh()
	return user, nil
}

func (s *UsersStore) Poll(ctx context.Context, interval time.Duration) error {
	return s.poll(ctx, interval)
}
