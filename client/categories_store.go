package client

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rmarchetti/stockroom-backend/internal/authz"
	"github.com/rmarchetti/stockroom-backend/internal/categories"
	"github.com/rmarchetti/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/rmarchetti/stockroom-backend/pkg/errors"
)

// CategoriesStore is the category state container.
type CategoriesStore struct {
	entityStore[models.Category]
}

func NewCategoriesStore(transport Transport, opts Options) (*CategoriesStore, error) {
	if transport == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transport is required")
	}
	return &CategoriesStore{
		entityStore: newEntityStore[models.Category](transport, "categories", opts),
	}, nil
}

func (s *CategoriesStore) List(ctx context.Context) ([]models.Category, error) {
	return s.refresh(ctx, nil)
}

func (s *CategoriesStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.getByID(ctx, idPayload{ID: id})
}

func (s *CategoriesStore) Create(ctx context.Context, input categories.CreateCategoryInput) (*models.Category, error) {
	if !authz.CanPerform(s.opts.Actor, authz.ActionCreate, authz.KindCategory) {
		return nil, authz.Deny(authz.ActionCreate, authz.KindCategory)
	}
	raw, err := s.transport.Do(ctx, s.entity, "create", input)
	if err != nil {
		return nil, err
	}
	category, err := decodeObject[models.Category](raw)
	if err != nil {
		return nil, err
	}
	s.scheduleRefresh()
	return category, nil
}

func (s *CategoriesStore) Update(ctx context.Context, id uuid.UUID, input categories.UpdateCategoryInput) (*models.Category, error) {
	if !authz.CanPerform(s.opts.Actor, authz.ActionUpdate, authz.KindCategory) {
		return nil, authz.Deny(authz.ActionUpdate, authz.KindCategory)
	}
	payload := struct {
		ID uuid.UUID `json:"id"`
		categories.UpdateCategoryInput
	}{ID: id, UpdateCategoryInput: input}

	raw, err := s.transport.Do(ctx, s.entity, "update", payload)
	if err != nil {
		return nil, err
	}
	category, err := decodeObject[models.Category](raw)
	if err != nil {
		return nil, err
	}
	s.scheduleRefresh()
	return category, nil
}

func (s *CategoriesStore) Delete(ctx context.Context, id uuid.UUID) error {
	if !authz.CanPerform(s.opts.Actor, authz.ActionDelete, authz.KindCategory) {
		return authz.Deny(authz.ActionDelete, authz.KindCategory)
	}
	if _, err := s.transport.Do(ctx, s.entity, "delete", idPayload{ID: id}); err != nil {
		return err
	}
	s.scheduleRefresh()
	return nil
}

func (s *CategoriesStore) Poll(ctx context.Context, interval time.Duration) error {
	return s.poll(ctx, interval)
}
