package client

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rmarchetti/stockroom-backend/internal/authz"
	"github.com/rmarchetti/stockroom-backend/internal/requests"
	"github.com/rmarchetti/stockroom-backend/pkg/db/models"
	"github.com/rmarchetti/stockroom-backend/pkg/enums"
	pkgerrors "github.com/rmarchetti/stockroom-backend/pkg/errors"
)

// Outcome tags how a request creation concluded.
type Outcome string

const (
	// OutcomeConfirmed means the backend acknowledged the record.
	OutcomeConfirmed Outcome = "confirmed"
	// OutcomePendingSync means the backend was unreachable and the record is
	// a locally-stamped placeholder awaiting reconciliation.
	OutcomePendingSync Outcome = "pending_sync"
)

// CreateResult is the tagged result of RequestsStore.Create. Callers must
// check Outcome before treating the record as persisted.
type CreateResult struct {
	Request *models.ItemRequest
	Outcome Outcome
}

// RequestListFilter narrows the request list fetch.
type RequestListFilter struct {
	Status     string     `json:"status,omitempty"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	Priority   string     `json:"priority,omitempty"`
	Limit      int        `json:"limit,omitempty"`
	Cursor     string     `json:"cursor,omitempty"`
}

// RequestsStore is the item-request state container.
type RequestsStore struct {
	entityStore[models.ItemRequest]
	now func() time.Time
}

func NewRequestsStore(transport Transport, opts Options) (*RequestsStore, error) {
	if transport == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transport is required")
	}
	return &RequestsStore{
		entityStore: newEntityStore[models.ItemRequest](transport, "requests", opts),
		now:         time.Now,
	}, nil
}

func (s *RequestsStore) List(ctx context.Context, filter RequestListFilter) ([]models.ItemRequest, error) {
	return s.refresh(ctx, filter)
}

func (s *RequestsStore) GetByID(ctx context.Context, id uuid.UUID) (*models.ItemRequest, error) {
	return s.getByID(ctx, idPayload{ID: id})
}

// Create submits a new request. On a transport failure it synthesizes a
// locally-stamped record so the caller can proceed optimistically, tagged
// PendingSync so it is never mistaken for a confirmed write.
func (s *RequestsStore) Create(ctx context.Context, input requests.CreateRequestInput) (*CreateResult, error) {
	if !authz.CanPerform(s.opts.Actor, authz.ActionCreate, authz.KindItemRequest) {
		return nil, authz.Deny(authz.ActionCreate, authz.KindItemRequest)
	}
	if err := validateCreateRequest(input); err != nil {
		return nil, err
	}

	raw, err := s.transport.Do(ctx, s.entity, "create", input)
	if err != nil {
		if !IsIntegrationError(err) {
			return nil, err
		}
		if s.opts.Logger != nil {
			logCtx := s.opts.Logger.WithFields(ctx, map[string]any{"entity": s.entity})
			s.opts.Logger.Warn(logCtx, "request creation unconfirmed, stamping local record")
		}
		return &CreateResult{Request: s.localRequest(input), Outcome: OutcomePendingSync}, nil
	}

	created, err := decodeObject[models.ItemRequest](raw)
	if err != nil {
		return nil, err
	}
	s.scheduleRefresh()
	return &CreateResult{Request: created, Outcome: OutcomeConfirmed}, nil
}

func (s *RequestsStore) Update(ctx context.Context, id uuid.UUID, input requests.UpdateRequestInput) (*models.ItemRequest, error) {
	if err := s.checkEdit(id); err != nil {
		return nil, err
	}

	payload := struct {
		ID uuid.UUID `json:"id"`
		requests.UpdateRequestInput
	}{ID: id, UpdateRequestInput: input}

	raw, err := s.transport.Do(ctx, s.entity, "update", payload)
	if err != nil {
		return nil, err
	}
	updated, err := decodeObject[models.ItemRequest](raw)
	if err != nil {
		return nil, err
	}
	s.scheduleRefresh()
	return updated, nil
}

func (s *RequestsStore) Submit(ctx context.Context, id uuid.UUID) (*models.ItemRequest, error) {
	return s.transition(ctx, "submit", id)
}

func (s *RequestsStore) Approve(ctx context.Context, id uuid.UUID) (*models.ItemRequest, error) {
	if !authz.CanPerform(s.opts.Actor, authz.ActionApprove, authz.KindItemRequest) {
		return nil, authz.Deny(authz.ActionApprove, authz.KindItemRequest)
	}
	return s.transition(ctx, "approve", id)
}

func (s *RequestsStore) Reject(ctx context.Context, id uuid.UUID, reason string) (*models.ItemRequest, error) {
	if !authz.CanPerform(s.opts.Actor, authz.ActionReject, authz.KindItemRequest) {
		return nil, authz.Deny(authz.ActionReject, authz.KindItemRequest)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required")
	}

	payload := struct {
		ID     uuid.UUID `json:"id"`
		Reason string    `json:"reason"`
	}{ID: id, Reason: reason}

	raw, err := s.transport.Do(ctx, s.entity, "reject", payload)
	if err != nil {
		return nil, err
	}
	updated, err := decodeObject[models.ItemRequest](raw)
	if err != nil {
		return nil, err
	}
	s.scheduleRefresh()
	return updated, nil
}

func (s *RequestsStore) Fulfill(ctx context.Context, id uuid.UUID) (*models.ItemRequest, error) {
	if !authz.CanPerform(s.opts.Actor, authz.ActionFulfill, authz.KindItemRequest) {
		return nil, authz.Deny(authz.ActionFulfill, authz.KindItemRequest)
	}
	return s.transition(ctx, "fulfill", id)
}

func (s *RequestsStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.checkEdit(id); err != nil {
		return err
	}
	if _, err := s.transport.Do(ctx, s.entity, "delete", idPayload{ID: id}); err != nil {
		return err
	}
	s.scheduleRefresh()
	return nil
}

func (s *RequestsStore) AddComment(ctx context.Context, id uuid.UUID, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment content is required")
	}

	payload := struct {
		ID      uuid.UUID `json:"id"`
		Content string    `json:"content"`
	}{ID: id, Content: content}

	raw, err := s.transport.Do(ctx, s.entity, "addComment", payload)
	if err != nil {
		return nil, err
	}
	comment, err := decodeObject[models.Comment](raw)
	if err != nil {
		return nil, err
	}
	s.scheduleRefresh()
	return comment, nil
}

// Poll runs the background refresh loop until ctx is done.
func (s *RequestsStore) Poll(ctx context.Context, interval time.Duration) error {
	return s.poll(ctx, interval)
}

func (s *RequestsStore) transition(ctx context.Context, action string, id uuid.UUID) (*models.ItemRequest, error) {
	raw, err := s.transport.Do(ctx, s.entity, action, idPayload{ID: id})
	if err != nil {
		return nil, err
	}
	updated, err := decodeObject[models.ItemRequest](raw)
	if err != nil {
		return nil, err
	}
	s.scheduleRefresh()
	return updated, nil
}

// checkEdit applies the ownership rule using the cached copy when available.
// Unknown requests pass through so the server can make the final call.
func (s *RequestsStore) checkEdit(id uuid.UUID) error {
	if authz.CanPerform(s.opts.Actor, authz.ActionUpdate, authz.KindItemRequest) {
		return nil
	}
	for _, cached := range s.cache.snapshot() {
		if cached.ID == id {
			if !authz.CanEditOwnRequest(s.opts.Actor, cached.UserID, cached.Status) {
				return pkgerrors.New(pkgerrors.CodeForbidden, "only the owner of a draft or pending request may modify it")
			}
			return nil
		}
	}
	return nil
}

func (s *RequestsStore) localRequest(input requests.CreateRequestInput) *models.ItemRequest {
	now := s.now()
	status := enums.RequestStatusPending
	if input.Draft {
		status = enums.RequestStatusDraft
	}
	priority := input.Priority
	if priority == "" {
		priority = enums.RequestPriorityMedium
	}
	return &models.ItemRequest{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		Priority:    priority,
		Status:      status,
		UserID:      s.opts.Actor.ID,
		Quantity:    input.Quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func validateCreateRequest(input requests.CreateRequestInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.CategoryID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category_id is required")
	}
	if input.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	return nil
}

type idPayload struct {
	ID uuid.UUID `json:"id"`
}
