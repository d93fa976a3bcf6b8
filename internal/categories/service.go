package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rmarchetti/stockroom-backend/internal/authz"
	"github.com/rmarchetti/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/rmarchetti/stockroom-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service defines category administration operations.
type Service interface {
	List(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Create(ctx context.Context, actor authz.Actor, input CreateCategoryInput) (*models.Category, error)
	Update(ctx context.Context, actor authz.Actor, id uuid.UUID, input UpdateCategoryInput) (*models.Category, error)
	Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// CreateCategoryInput holds validated fields for a new category.
type CreateCategoryInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// UpdateCategoryInput holds the mutable category fields. Nil means unchanged.
type UpdateCategoryInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// NewService wires category dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "categories repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return category, nil
}

func (s *service) Create(ctx context.Context, actor authz.Actor, input CreateCategoryInput) (*models.Category, error) {
	if !authz.CanPerform(actor, authz.ActionCreate, authz.KindCategory) {
		return nil, authz.Deny(authz.ActionCreate, authz.KindCategory)
	}

	category := &models.Category{
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return category, nil
}

func (s *service) Update(ctx context.Context, actor authz.Actor, id uuid.UUID, input UpdateCategoryInput) (*models.Category, error) {
	if !authz.CanPerform(actor, authz.ActionUpdate, authz.KindCategory) {
		return nil, authz.Deny(authz.ActionUpdate, authz.KindCategory)
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	affected, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if !authz.CanPerform(actor, authz.ActionDelete, authz.KindCategory) {
		return authz.Deny(authz.ActionDelete, authz.KindCategory)
	}

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	items, requests, err := s.repo.CountReferences(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category references")
	}
	if items > 0 || requests > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("category is referenced by %d items and %d requests", items, requests))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}
