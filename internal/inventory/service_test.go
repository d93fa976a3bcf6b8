package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rmarchetti/stockroom-backend/internal/authz"
	"github.com/rmarchetti/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/rmarchetti/stockroom-backend/pkg/errors"
	"github.com/rmarchetti/stockroom-backend/pkg/types"
	"gorm.io/gorm"
)

type fakeRepo struct {
	byID    map[uuid.UUID]*models.InventoryItem
	deleted []uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[uuid.UUID]*models.InventoryItem{}}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, item *models.InventoryItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	f.byID[item.ID] = item
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	if item, ok := f.byID[id]; ok {
		return item, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) List(ctx context.Context, filter ListFilter) ([]models.InventoryItem, error) {
	var out []models.InventoryItem
	for _, item := range f.byID {
		if filter.CategoryID != nil && item.CategoryID != *filter.CategoryID {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (f *fakeRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	item, ok := f.byID[id]
	if !ok {
		return 0, nil
	}
	if qty, ok := updates["quantity_available"].(int); ok {
		item.QuantityAvailable = qty
	}
	if name, ok := updates["name"].(string); ok {
		item.Name = name
	}
	if image, ok := updates["image_url"].(*string); ok {
		item.ImageURL = image
	}
	return 1, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeCategoryFinder struct {
	known map[uuid.UUID]bool
}

func (f *fakeCategoryFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if f.known[id] {
		return &models.Category{ID: id, Name: "known"}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

var (
	managerActor = authz.Actor{ID: uuid.New(), Role: "manager"}
	userActor    = authz.Actor{ID: uuid.New(), Role: "user"}
)

func newTestService(repo *fakeRepo, categoryID uuid.UUID) Service {
	svc, _ := NewService(repo, &fakeCategoryFinder{known: map[uuid.UUID]bool{categoryID: true}})
	return svc
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	svc := newTestService(newFakeRepo(), uuid.New())

	_, err := svc.Create(context.Background(), managerActor, CreateItemInput{
		Name:       "Webcam",
		CategoryID: uuid.New(),
		SKU:        "CAM-1",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRejectsNegativeQuantities(t *testing.T) {
	categoryID := uuid.New()
	svc := newTestService(newFakeRepo(), categoryID)

	_, err := svc.Create(context.Background(), managerActor, CreateItemInput{
		Name:              "Webcam",
		CategoryID:        categoryID,
		SKU:               "CAM-1",
		QuantityAvailable: -1,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRequiresPrivilegedRole(t *testing.T) {
	categoryID := uuid.New()
	svc := newTestService(newFakeRepo(), categoryID)

	_, err := svc.Create(context.Background(), userActor, CreateItemInput{
		Name:       "Webcam",
		CategoryID: categoryID,
		SKU:        "CAM-1",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateQuantityGuard(t *testing.T) {
	repo := newFakeRepo()
	categoryID := uuid.New()
	item := &models.InventoryItem{ID: uuid.New(), Name: "Desk", CategoryID: categoryID, QuantityAvailable: 4}
	repo.byID[item.ID] = item
	svc := newTestService(repo, categoryID)

	negative := -2
	_, err := svc.Update(context.Background(), managerActor, item.ID, UpdateItemInput{QuantityAvailable: &negative})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	zero := 0
	updated, err := svc.Update(context.Background(), managerActor, item.ID, UpdateItemInput{QuantityAvailable: &zero})
	if err != nil {
		t.Fatal(err)
	}
	if updated.QuantityAvailable != 0 {
		t.Fatalf("expected zero quantity, got %d", updated.QuantityAvailable)
	}
}

func TestUpdateCategoryCannotBeCleared(t *testing.T) {
	repo := newFakeRepo()
	categoryID := uuid.New()
	item := &models.InventoryItem{ID: uuid.New(), Name: "Desk", CategoryID: categoryID}
	repo.byID[item.ID] = item
	svc := newTestService(repo, categoryID)

	_, err := svc.Update(context.Background(), managerActor, item.ID, UpdateItemInput{
		CategoryID: types.NullableUUID{Valid: true},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateExplicitNullClearsImage(t *testing.T) {
	repo := newFakeRepo()
	categoryID := uuid.New()
	image := "https://cdn.example.com/desk.png"
	item := &models.InventoryItem{ID: uuid.New(), Name: "Desk", CategoryID: categoryID, ImageURL: &image}
	repo.byID[item.ID] = item
	svc := newTestService(repo, categoryID)

	updated, err := svc.Update(context.Background(), managerActor, item.ID, UpdateItemInput{
		ImageURL: types.NullableString{Valid: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.ImageURL != nil {
		t.Fatalf("explicit null should clear the image, got %q", *updated.ImageURL)
	}
}

func TestDeleteMissingItem(t *testing.T) {
	svc := newTestService(newFakeRepo(), uuid.New())

	err := svc.Delete(context.Background(), managerActor, uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
