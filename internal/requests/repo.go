package requests

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rmarchetti/stockroom-backend/pkg/db/models"
	"github.com/rmarchetti/stockroom-backend/pkg/enums"
	"github.com/rmarchetti/stockroom-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes item request persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.ItemRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ItemRequest, error)
	List(ctx context.Context, params ListRequestsParams) ([]models.ItemRequest, *pagination.Cursor, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from enums.RequestStatus, updates map[string]any) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddComment(ctx context.Context, comment *models.Comment) error
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.ItemRequest, error)
}

// ListRequestsParams narrows and paginates the request listing.
type ListRequestsParams struct {
	UserID     *uuid.UUID
	Status     *enums.RequestStatus
	CategoryID *uuid.UUID
	Priority   *enums.RequestPriority
	Limit      int
	Cursor     *pagination.Cursor
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a requests repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, request *models.ItemRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.ItemRequest, error) {
	var request models.ItemRequest
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Comments.User").
		First(&request, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repositoryImpl) List(ctx context.Context, params ListRequestsParams) ([]models.ItemRequest, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.ItemRequest{}).
		Preload("Category").
		Preload("User")
	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}
	if params.Priority != nil {
		query = query.Where("priority = ?", *params.Priority)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var requests []models.ItemRequest
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&requests).Error; err != nil {
		return nil, nil, err
	}

	if len(requests) > normalized {
		next := requests[normalized]
		requests = requests[:normalized]
		return requests, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return requests, nil, nil
}

func (r *repositoryImpl) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ItemRequest{}).
		Where("id = ?", id).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// UpdateStatusFrom applies updates only when the row is still in the expected
// source state, which makes concurrent transitions lose cleanly.
func (r *repositoryImpl) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from enums.RequestStatus, updates map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ItemRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ItemRequest{}, "id = ?", id).Error
}

func (r *repositoryImpl) AddComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *repositoryImpl) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.ItemRequest, error) {
	var requests []models.ItemRequest
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("status = ? AND created_at < ?", enums.RequestStatusPending, cutoff).
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}
