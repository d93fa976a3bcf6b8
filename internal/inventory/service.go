package inventory

import (
	"context"
	"errors"
	"net/url"

	"github.com/google/uuid"
	"github.com/rmarchetti/stockroom-backend/internal/authz"
	"github.com/rmarchetti/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/rmarchetti/stockroom-backend/pkg/errors"
	"github.com/rmarchetti/stockroom-backend/pkg/types"
	"gorm.io/gorm"
)

// Service defines inventory item operations.
type Service interface {
	List(ctx context.Context, filter ListFilter) ([]models.InventoryItem, error)
	Get(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	Create(ctx context.Context, actor authz.Actor, input CreateItemInput) (*models.InventoryItem, error)
	Update(ctx context.Context, actor authz.Actor, id uuid.UUID, input UpdateItemInput) (*models.InventoryItem, error)
	Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error
}

type categoryFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

type service struct {
	repo       Repository
	categories categoryFinder
}

// CreateItemInput holds validated fields for a new inventory item.
type CreateItemInput struct {
	Name              string    `json:"name" validate:"required,min=1,max=200"`
	Description       string    `json:"description" validate:"max=4000"`
	CategoryID        uuid.UUID `json:"category_id" validate:"required"`
	SKU               string    `json:"sku" validate:"required,min=1,max=64"`
	QuantityAvailable int       `json:"quantity_available" validate:"gte=0"`
	QuantityReserved  int       `json:"quantity_reserved" validate:"gte=0"`
	Location          string    `json:"location" validate:"max=200"`
	ImageURL          *string   `json:"image_url" validate:"omitempty,url"`
}

// UpdateItemInput holds the mutable item fields. A missing field is left
// unchanged; an explicit null on image_url clears it. category_id cannot be
// cleared since every item belongs to a category.
type UpdateItemInput struct {
	Name              *string              `json:"name" validate:"omitempty,min=1,max=200"`
	Description       *string              `json:"description" validate:"omitempty,max=4000"`
	CategoryID        types.NullableUUID   `json:"category_id,omitzero"`
	SKU               *string              `json:"sku" validate:"omitempty,min=1,max=64"`
	QuantityAvailable *int                 `json:"quantity_available" validate:"omitempty,gte=0"`
	QuantityReserved  *int                 `json:"quantity_reserved" validate:"omitempty,gte=0"`
	Location          *string              `json:"location" validate:"omitempty,max=200"`
	ImageURL          types.NullableString `json:"image_url,omitzero"`
}

// NewService wires inventory dependencies.
func NewService(repo Repository, categories categoryFinder) (Service, error) {
	if repo == nil || categories == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "inventory dependencies required")
	}
	return &service{repo: repo, categories: categories}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.InventoryItem, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory items")
	}
	return items, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory item")
	}
	return item, nil
}

func (s *service) Create(ctx context.Context, actor authz.Actor, input CreateItemInput) (*models.InventoryItem, error) {
	if !authz.CanPerform(actor, authz.ActionCreate, authz.KindInventoryItem) {
		return nil, authz.Deny(authz.ActionCreate, authz.KindInventoryItem)
	}
	if input.QuantityAvailable < 0 || input.QuantityReserved < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantities must be non-negative")
	}
	if err := s.assertCategoryExists(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	item := &models.InventoryItem{
		Name:              input.Name,
		Description:       input.Description,
		CategoryID:        input.CategoryID,
		SKU:               input.SKU,
		QuantityAvailable: input.QuantityAvailable,
		QuantityReserved:  input.QuantityReserved,
		Location:          input.Location,
		ImageURL:          input.ImageURL,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory item")
	}
	return s.Get(ctx, item.ID)
}

func (s *service) Update(ctx context.Context, actor authz.Actor, id uuid.UUID, input UpdateItemInput) (*models.InventoryItem, error) {
	if !authz.CanPerform(actor, authz.ActionUpdate, authz.KindInventoryItem) {
		return nil, authz.Deny(authz.ActionUpdate, authz.KindInventoryItem)
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.CategoryID.Valid {
		if input.CategoryID.Value == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category cannot be cleared")
		}
		if err := s.assertCategoryExists(ctx, *input.CategoryID.Value); err != nil {
			return nil, err
		}
		updates["category_id"] = *input.CategoryID.Value
	}
	if input.SKU != nil {
		updates["sku"] = *input.SKU
	}
	if input.QuantityAvailable != nil {
		if *input.QuantityAvailable < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity_available must be non-negative")
		}
		updates["quantity_available"] = *input.QuantityAvailable
	}
	if input.QuantityReserved != nil {
		if *input.QuantityReserved < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity_reserved must be non-negative")
		}
		updates["quantity_reserved"] = *input.QuantityReserved
	}
	if input.Location != nil {
		updates["location"] = *input.Location
	}
	if input.ImageURL.Valid {
		if input.ImageURL.Value != nil {
			if _, err := url.ParseRequestURI(*input.ImageURL.Value); err != nil {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "image_url must be a valid URL")
			}
		}
		updates["image_url"] = input.ImageURL.Value
	}
	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	affected, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inventory item")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if !authz.CanPerform(actor, authz.ActionDelete, authz.KindInventoryItem) {
		return authz.Deny(authz.ActionDelete, authz.KindInventoryItem)
	}

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete inventory item")
	}
	return nil
}

func (s *service) assertCategoryExists(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return nil
}
