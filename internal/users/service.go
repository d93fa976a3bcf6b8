package users

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rmarchetti/stockroom-backend/internal/authz"
	"github.com/rmarchetti/stockroom-backend/pkg/db/models"
	"github.com/rmarchetti/stockroom-backend/pkg/enums"
	pkgerrors "github.com/rmarchetti/stockroom-backend/pkg/errors"
	"github.com/rmarchetti/stockroom-backend/pkg/types"
	"gorm.io/gorm"
)

// Service exposes profile and user administration operations.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	List(ctx context.Context) ([]UserDTO, error)
	UpdateProfile(ctx context.Context, actor authz.Actor, input UpdateProfileInput) (*UserDTO, error)
	UpdateRole(ctx context.Context, actor authz.Actor, userID uuid.UUID, role string) (*UserDTO, error)
}

type profileStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateRole(ctx context.Context, id uuid.UUID, role enums.Role) error
}

type service struct {
	repo profileStore
}

// UpdateProfileInput holds the self-service profile fields. A missing field
// is left unchanged; an explicit null clears it.
type UpdateProfileInput struct {
	Name       *string              `json:"name" validate:"omitempty,min=1,max=120"`
	Department types.NullableString `json:"department,omitzero"`
	AvatarURL  types.NullableString `json:"avatar_url,omitzero"`
}

// NewService wires the users service.
func NewService(repo profileStore) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context) ([]UserDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) UpdateProfile(ctx context.Context, actor authz.Actor, input UpdateProfileInput) (*UserDTO, error) {
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Department.Valid {
		updates["department"] = input.Department.Value
	}
	if input.AvatarURL.Valid {
		if input.AvatarURL.Value != nil {
			if _, err := url.ParseRequestURI(*input.AvatarURL.Value); err != nil {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "avatar_url must be a valid URL")
			}
		}
		updates["avatar_url"] = input.AvatarURL.Value
	}
	if len(updates) == 0 {
		return s.Get(ctx, actor.ID)
	}

	if err := s.repo.UpdateProfile(ctx, actor.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return s.Get(ctx, actor.ID)
}

func (s *service) UpdateRole(ctx context.Context, actor authz.Actor, userID uuid.UUID, role string) (*UserDTO, error) {
	if !authz.CanPerform(actor, authz.ActionUpdate, authz.KindUser) {
		return nil, authz.Deny(authz.ActionUpdate, authz.KindUser)
	}
	parsed, err := enums.ParseRole(role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
	}
	if actor.ID == userID {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot change your own role")
	}

	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRole(ctx, userID, parsed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update role")
	}
	return s.Get(ctx, userID)
}
