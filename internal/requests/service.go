package requests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rmarchetti/stockroom-backend/internal/authz"
	"github.com/rmarchetti/stockroom-backend/internal/notifications"
	"github.com/rmarchetti/stockroom-backend/pkg/db/models"
	"github.com/rmarchetti/stockroom-backend/pkg/enums"
	pkgerrors "github.com/rmarchetti/stockroom-backend/pkg/errors"
	"github.com/rmarchetti/stockroom-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Service drives the item request lifecycle.
type Service interface {
	Create(ctx context.Context, actor authz.Actor, input CreateRequestInput) (*models.ItemRequest, error)
	Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.ItemRequest, error)
	List(ctx context.Context, actor authz.Actor, params ListParams) (*ListResult, error)
	Update(ctx context.Context, actor authz.Actor, id uuid.UUID, input UpdateRequestInput) (*models.ItemRequest, error)
	Submit(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.ItemRequest, error)
	Approve(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.ItemRequest, error)
	Reject(ctx context.Context, actor authz.Actor, id uuid.UUID, reason string) (*models.ItemRequest, error)
	Fulfill(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.ItemRequest, error)
	Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error
	AddComment(ctx context.Context, actor authz.Actor, id uuid.UUID, content string) (*models.Comment, error)
}

// txRunner is the transaction surface the service needs from the db client.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type categoryFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

type service struct {
	repo       Repository
	categories categoryFinder
	tx         txRunner
	fanout     *notifications.Fanout
}

// CreateRequestInput holds validated fields for a new request. Draft keeps the
// request editable without alerting approvers.
type CreateRequestInput struct {
	Title       string                `json:"title" validate:"required,min=1,max=200"`
	Description string                `json:"description" validate:"max=4000"`
	CategoryID  uuid.UUID             `json:"category_id" validate:"required"`
	Priority    enums.RequestPriority `json:"priority" validate:"omitempty"`
	Quantity    int                   `json:"quantity" validate:"required,gt=0"`
	Draft       bool                  `json:"draft"`
}

// UpdateRequestInput holds the mutable request fields. Nil means unchanged.
type UpdateRequestInput struct {
	Title       *string                `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string                `json:"description" validate:"omitempty,max=4000"`
	CategoryID  *uuid.UUID             `json:"category_id"`
	Priority    *enums.RequestPriority `json:"priority"`
	Quantity    *int                   `json:"quantity" validate:"omitempty,gt=0"`
}

// ListParams selects and paginates requests.
type ListParams struct {
	Status     string
	CategoryID *uuid.UUID
	Priority   string
	UserID     *uuid.UUID
	Limit      int
	Cursor     string
}

// ListResult wraps returned requests and the cursor for the next page.
type ListResult struct {
	Items  []models.ItemRequest `json:"items"`
	Cursor string               `json:"cursor"`
}

// NewService wires request lifecycle dependencies.
func NewService(repo Repository, categories categoryFinder, tx txRunner, fanout *notifications.Fanout) (Service, error) {
	if repo == nil || categories == nil || tx == nil || fanout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "requests dependencies required")
	}
	return &service{repo: repo, categories: categories, tx: tx, fanout: fanout}, nil
}

func (s *service) Create(ctx context.Context, actor authz.Actor, input CreateRequestInput) (*models.ItemRequest, error) {
	if !authz.CanPerform(actor, authz.ActionCreate, authz.KindItemRequest) {
		return nil, authz.Deny(authz.ActionCreate, authz.KindItemRequest)
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	priority := input.Priority
	if priority == "" {
		priority = enums.RequestPriorityMedium
	}
	if !priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid priority %q", priority))
	}
	if _, err := s.categories.FindByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	status := enums.RequestStatusPending
	if input.Draft {
		status = enums.RequestStatusDraft
	}

	request := &models.ItemRequest{
		Title:       input.Title,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		Priority:    priority,
		Status:      status,
		UserID:      actor.ID,
		Quantity:    input.Quantity,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create request")
	}

	if status == enums.RequestStatusPending {
		s.fanout.NotifyPrivileged(ctx, notifications.Payload{
			Type:          enums.NotificationTypeRequestSubmitted,
			Message:       fmt.Sprintf("New request %q awaits review", request.Title),
			RelatedItemID: &request.ID,
		}, actor.ID)
	}
	return s.load(ctx, request.ID)
}

func (s *service) Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.ItemRequest, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, request) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "request belongs to another user")
	}
	return request, nil
}

func (s *service) List(ctx context.Context, actor authz.Actor, params ListParams) (*ListResult, error) {
	query := ListRequestsParams{
		CategoryID: params.CategoryID,
		Limit:      params.Limit,
	}

	if params.Status != "" {
		status, err := enums.ParseRequestStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		query.Status = &status
	}
	if params.Priority != "" {
		priority, err := enums.ParseRequestPriority(params.Priority)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priority filter")
		}
		query.Priority = &priority
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	// Plain users only ever see their own requests.
	role, err := enums.ParseRole(actor.Role)
	if err != nil || !role.IsPrivileged() {
		query.UserID = &actor.ID
	} else {
		query.UserID = params.UserID
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list requests")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) Update(ctx context.Context, actor authz.Actor, id uuid.UUID, input UpdateRequestInput) (*models.ItemRequest, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanEditOwnRequest(actor, request.UserID, request.Status) {
		if request.Status.IsTerminal() || request.Status == enums.RequestStatusApproved {
			if actor.ID == request.UserID {
				return nil, stateConflict("update", request.Status)
			}
		}
		return nil, authz.Deny(authz.ActionUpdate, authz.KindItemRequest)
	}

	updates := map[string]any{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
		}
		updates["category_id"] = *input.CategoryID
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid priority %q", *input.Priority))
		}
		updates["priority"] = *input.Priority
	}
	if input.Quantity != nil {
		if *input.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		updates["quantity"] = *input.Quantity
	}
	if len(updates) == 0 {
		return request, nil
	}

	if _, err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update request")
	}
	return s.load(ctx, id)
}

func (s *service) Submit(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.ItemRequest, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanEditOwnRequest(actor, request.UserID, request.Status) {
		return nil, authz.Deny(authz.ActionUpdate, authz.KindItemRequest)
	}

	if err := s.transition(ctx, id, enums.RequestStatusDraft, map[string]any{
		"status": enums.RequestStatusPending,
	}, "submit"); err != nil {
		return nil, err
	}

	s.fanout.NotifyPrivileged(ctx, notifications.Payload{
		Type:          enums.NotificationTypeRequestSubmitted,
		Message:       fmt.Sprintf("New request %q awaits review", request.Title),
		RelatedItemID: &id,
	}, actor.ID)
	return s.load(ctx, id)
}

func (s *service) Approve(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.ItemRequest, error) {
	if !authz.CanPerform(actor, authz.ActionApprove, authz.KindItemRequest) {
		return nil, authz.Deny(authz.ActionApprove, authz.KindItemRequest)
	}
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.transition(ctx, id, enums.RequestStatusPending, map[string]any{
		"status":      enums.RequestStatusApproved,
		"approved_at": now,
		"approved_by": actor.ID,
	}, "approve"); err != nil {
		return nil, err
	}

	if request.UserID != actor.ID {
		s.fanout.NotifyUser(ctx, request.UserID, notifications.Payload{
			Type:          enums.NotificationTypeRequestApproved,
			Message:       fmt.Sprintf("Your request %q was approved", request.Title),
			RelatedItemID: &id,
		})
	}
	s.fanout.NotifyPrivileged(ctx, notifications.Payload{
		Type:          enums.NotificationTypeRequestApproved,
		Message:       fmt.Sprintf("Request %q was approved", request.Title),
		RelatedItemID: &id,
	}, actor.ID, request.UserID)
	return s.load(ctx, id)
}

func (s *service) Reject(ctx context.Context, actor authz.Actor, id uuid.UUID, reason string) (*models.ItemRequest, error) {
	if !authz.CanPerform(actor, authz.ActionReject, authz.KindItemRequest) {
		return nil, authz.Deny(authz.ActionReject, authz.KindItemRequest)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required")
	}
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.transition(ctx, id, enums.RequestStatusPending, map[string]any{
		"status":           enums.RequestStatusRejected,
		"rejected_at":      now,
		"rejected_by":      actor.ID,
		"rejection_reason": reason,
	}, "reject"); err != nil {
		return nil, err
	}

	if request.UserID != actor.ID {
		s.fanout.NotifyUser(ctx, request.UserID, notifications.Payload{
			Type:          enums.NotificationTypeRequestRejected,
			Message:       fmt.Sprintf("Your request %q was rejected: %s", request.Title, reason),
			RelatedItemID: &id,
		})
	}
	s.fanout.NotifyPrivileged(ctx, notifications.Payload{
		Type:          enums.NotificationTypeRequestRejected,
		Message:       fmt.Sprintf("Request %q was rejected: %s", request.Title, reason),
		RelatedItemID: &id,
	}, actor.ID, request.UserID)
	return s.load(ctx, id)
}

func (s *service) Fulfill(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.ItemRequest, error) {
	if !authz.CanPerform(actor, authz.ActionFulfill, authz.KindItemRequest) {
		return nil, authz.Deny(authz.ActionFulfill, authz.KindItemRequest)
	}
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.transition(ctx, id, enums.RequestStatusApproved, map[string]any{
		"status":           enums.RequestStatusFulfilled,
		"fulfillment_date": now,
	}, "fulfill"); err != nil {
		return nil, err
	}

	if request.UserID != actor.ID {
		s.fanout.NotifyUser(ctx, request.UserID, notifications.Payload{
			Type:          enums.NotificationTypeRequestFulfilled,
			Message:       fmt.Sprintf("Your request %q was fulfilled", request.Title),
			RelatedItemID: &id,
		})
	}
	s.fanout.NotifyPrivileged(ctx, notifications.Payload{
		Type:          enums.NotificationTypeRequestFulfilled,
		Message:       fmt.Sprintf("Request %q was fulfilled", request.Title),
		RelatedItemID: &id,
	}, actor.ID, request.UserID)
	return s.load(ctx, id)
}

func (s *service) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	request, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	// Privileged roles may delete anything; owners may retract their own
	// request while it is still draft or pending.
	if !authz.CanPerform(actor, authz.ActionDelete, authz.KindItemRequest) {
		if actor.ID != request.UserID {
			return authz.Deny(authz.ActionDelete, authz.KindItemRequest)
		}
		if !authz.CanEditOwnRequest(actor, request.UserID, request.Status) {
			return stateConflict("delete", request.Status)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete request")
	}
	return nil
}

func (s *service) AddComment(ctx context.Context, actor authz.Actor, id uuid.UUID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment content is required")
	}

	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, request) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "request belongs to another user")
	}

	comment := &models.Comment{
		RequestID: id,
		UserID:    actor.ID,
		Content:   content,
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add comment")
	}

	payload := notifications.Payload{
		Type:          enums.NotificationTypeCommentAdded,
		Message:       fmt.Sprintf("New comment on request %q", request.Title),
		RelatedItemID: &id,
	}
	if request.UserID != actor.ID {
		s.fanout.NotifyUser(ctx, request.UserID, payload)
	}
	s.fanout.NotifyPrivileged(ctx, payload, actor.ID, request.UserID)

	return comment, nil
}

// transition runs a compare-and-set status change inside a transaction and
// converts a lost race or wrong source state into a state conflict.
func (s *service) transition(ctx context.Context, id uuid.UUID, from enums.RequestStatus, updates map[string]any, verb string) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		affected, err := repo.UpdateStatusFrom(ctx, id, from, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, verb+" request")
		}
		if affected == 0 {
			current, err := repo.FindByID(ctx, id)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
			}
			return stateConflict(verb, current.Status)
		}
		return nil
	})
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.ItemRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
	}
	return request, nil
}

func (s *service) canView(actor authz.Actor, request *models.ItemRequest) bool {
	if actor.ID == request.UserID {
		return true
	}
	role, err := enums.ParseRole(actor.Role)
	if err != nil {
		return false
	}
	return role.IsPrivileged()
}

func stateConflict(verb string, current enums.RequestStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("cannot %s a request in state %q", verb, current)).
		WithDetails(map[string]any{"current_status": current})
}
