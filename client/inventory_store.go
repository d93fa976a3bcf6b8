package client

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rmarchetti/stockroom-backend/internal/authz"
	"github.com/rmarchetti/stockroom-backend/internal/inventory"
	"github.com/rmarchetti/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/rmarchetti/stockroom-backend/pkg/errors"
)

// InventoryFilter narrows the inventory list fetch.
type InventoryFilter struct {
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	Search     string     `json:"search,omitempty"`
}

// InventoryStore is the inventory-item state container.
type InventoryStore struct {
	entityStore[models.InventoryItem]
}

func NewInventoryStore(transport Transport, opts Options) (*InventoryStore, error) {
	if transport == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transport is required")
	}
	return &InventoryStore{
		entityStore: newEntityStore[models.InventoryItem](transport, "inventory", opts),
	}, nil
}

func (s *InventoryStore) List(ctx context.Context, filter InventoryFilter) ([]models.InventoryItem, error) {
	return s.refresh(ctx, filter)
}

func (s *InventoryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	return s.getByID(ctx, idPayload{ID: id})
}

func (s *InventoryStore) Create(ctx context.Context, input inventory.CreateItemInput) (*models.InventoryItem, error) {
	if !authz.CanPerform(s.opts.Actor, authz.ActionCreate, authz.KindInventoryItem) {
		return nil, authz.Deny(authz.ActionCreate, authz.KindInventoryItem)
	}
	raw, err := s.transport.Do(ctx, s.entity, "create", input)
	if err != nil {
		return nil, err
	}
	item, err := decodeObject[models.InventoryItem](raw)
	if err != nil {
		return nil, err
	}
	s.scheduleRefresh()
	return item, nil
}

func (s *InventoryStore) Update(ctx context.Context, id uuid.UUID, input inventory.UpdateItemInput) (*models.InventoryItem, error) {
	if !authz.CanPerform(s.opts.Actor, authz.ActionUpdate, authz.KindInventoryItem) {
		return nil, authz.Deny(authz.ActionUpdate, authz.KindInventoryItem)
	}
	payload := struct {
		ID uuid.UUID `json:"id"`
		inventory.UpdateItemInput
	}{ID: id, UpdateItemInput: input}

	raw, err := s.transport.Do(ctx, s.entity, "update", payload)
	if err != nil {
		return nil, err
	}
	item, err := decodeObject[models.InventoryItem](raw)
	if err != nil {
		return nil, err
	}
	s.scheduleRefresh()
	return item, nil
}

func (s *InventoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	if !authz.CanPerform(s.opts.Actor, authz.ActionDelete, authz.KindInventoryItem) {
		return authz.Deny(authz.ActionDelete, authz.KindInventoryItem)
	}
	if _, err := s.transport.Do(ctx, s.entity, "delete", idPayload{ID: id}); err != nil {
		return err
	}
	s.scheduleRefresh()
	return nil
}

func (s *InventoryStore) Poll(ctx context.Context, interval time.Duration) error {
	return s.poll(ctx, interval)
}
