package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/rmarchetti/stockroom-backend/api/middleware"
	"github.com/rmarchetti/stockroom-backend/internal/authz"
	"github.com/rmarchetti/stockroom-backend/internal/requests"
	"github.com/rmarchetti/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/rmarchetti/stockroom-backend/pkg/errors"
)

type testRequestsService struct {
	createFn  func(ctx context.Context, actor authz.Actor, input requests.CreateRequestInput) (*models.ItemRequest, error)
	listFn    func(ctx context.Context, actor authz.Actor, params requests.ListParams) (*requests.ListResult, error)
	approveFn func(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.ItemRequest, error)
	rejectFn  func(ctx context.Context, actor authz.Actor, id uuid.UUID, reason string) (*models.ItemRequest, error)
}

func (s *testRequestsService) Create(ctx context.Context, actor authz.Actor, input requests.CreateRequestInput) (*models.ItemRequest, error) {
	if s.createFn != nil {
		return s.createFn(ctx, actor, input)
	}
	return &models.ItemRequest{}, nil
}

func (s *testRequestsService) Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.ItemRequest, error) {
	return &models.ItemRequest{}, nil
}

func (s *testRequestsService) List(ctx context.Context, actor authz.Actor, params requests.ListParams) (*requests.ListResult, error) {
	if s.listFn != nil {
		return s.listFn(ctx, actor, params)
	}
	return &requests.ListResult{}, nil
}

func (s *testRequestsService) Update(ctx context.Context, actor authz.Actor, id uuid.UUID, input requests.UpdateRequestInput) (*models.ItemRequest, error) {
	return &models.ItemRequest{}, nil
}

func (s *testRequestsService) Submit(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.ItemRequest, error) {
	return &models.ItemRequest{}, nil
}

func (s *testRequestsService) Approve(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.ItemRequest, error) {
	if s.approveFn != nil {
		return s.approveFn(ctx, actor, id)
	}
	return &models.ItemRequest{}, nil
}

func (s *testRequestsService) Reject(ctx context.Context, actor authz.Actor, id uuid.UUID, reason string) (*models.ItemRequest, error) {
	if s.rejectFn != nil {
		return s.rejectFn(ctx, actor, id, reason)
	}
	return &models.ItemRequest{}, nil
}

func (s *testRequestsService) Fulfill(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.ItemRequest, error) {
	return &models.ItemRequest{}, nil
}

func (s *testRequestsService) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	return nil
}

func (s *testRequestsService) AddComment(ctx context.Context, actor authz.Actor, id uuid.UUID, content string) (*models.Comment, error) {
	return &models.Comment{}, nil
}

func requestActionReq(t *testing.T, actor authz.Actor, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/requests/actions", strings.NewReader(body))
	ctx := middleware.WithUserID(req.Context(), actor.ID.String())
	ctx = middleware.WithRole(ctx, actor.Role)
	return req.WithContext(ctx)
}

func TestRequestCreateReturns201(t *testing.T) {
	actor := authz.Actor{ID: uuid.New(), Role: "user"}
	categoryID := uuid.New()
	var got requests.CreateRequestInput
	svc := &testRequestsService{
		createFn: func(ctx context.Context, a authz.Actor, input requests.CreateRequestInput) (*models.ItemRequest, error) {
			if a.ID != actor.ID {
				t.Fatalf("unexpected actor %s", a.ID)
			}
			got = input
			return &models.ItemRequest{Title: input.Title}, nil
		},
	}

	body := `{"action":"create","title":"Laptop stand","category_id":"` + categoryID.String() + `","quantity":2}`
	resp := httptest.NewRecorder()
	RequestActions(svc, testLogger())(resp, requestActionReq(t, actor, body))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if got.Title != "Laptop stand" || got.Quantity != 2 || got.CategoryID != categoryID {
		t.Fatalf("unexpected input: %+v", got)
	}
}

func TestRequestCreateValidatesBody(t *testing.T) {
	actor := authz.Actor{ID: uuid.New(), Role: "user"}
	body := `{"action":"create","title":""}`
	resp := httptest.NewRecorder()
	RequestActions(&testRequestsService{}, testLogger())(resp, requestActionReq(t, actor, body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestRequestRejectPassesReason(t *testing.T) {
	actor := authz.Actor{ID: uuid.New(), Role: "admin"}
	requestID := uuid.New()
	svc := &testRequestsService{
		rejectFn: func(ctx context.Context, a authz.Actor, id uuid.UUID, reason string) (*models.ItemRequest, error) {
			if id != requestID {
				t.Fatalf("unexpected id %s", id)
			}
			if reason != "over budget" {
				t.Fatalf("unexpected reason %q", reason)
			}
			return &models.ItemRequest{}, nil
		},
	}

	body := `{"action":"reject","id":"` + requestID.String() + `","reason":"over budget"}`
	resp := httptest.NewRecorder()
	RequestActions(svc, testLogger())(resp, requestActionReq(t, actor, body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRequestApproveConflictSurfacesDetails(t *testing.T) {
	actor := authz.Actor{ID: uuid.New(), Role: "manager"}
	svc := &testRequestsService{
		approveFn: func(ctx context.Context, a authz.Actor, id uuid.UUID) (*models.ItemRequest, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot approve a rejected request").
				WithDetails(map[string]any{"current_status": "rejected"})
		},
	}

	body := `{"action":"approve","id":"` + uuid.NewString() + `"}`
	resp := httptest.NewRecorder()
	RequestActions(svc, testLogger())(resp, requestActionReq(t, actor, body))

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code    string          `json:"code"`
			Details json.RawMessage `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
	if !strings.Contains(string(envelope.Error.Details), "rejected") {
		t.Fatalf("expected details with current status, got %s", envelope.Error.Details)
	}
}

func TestRequestListForwardsFilters(t *testing.T) {
	actor := authz.Actor{ID: uuid.New(), Role: "user"}
	svc := &testRequestsService{
		listFn: func(ctx context.Context, a authz.Actor, params requests.ListParams) (*requests.ListResult, error) {
			if params.Status != "pending" {
				t.Fatalf("unexpected status %q", params.Status)
			}
			if params.Limit != 10 {
				t.Fatalf("unexpected limit %d", params.Limit)
			}
			return &requests.ListResult{Items: []models.ItemRequest{}}, nil
		},
	}

	body := `{"action":"getAll","status":"pending","limit":10}`
	resp := httptest.NewRecorder()
	RequestActions(svc, testLogger())(resp, requestActionReq(t, actor, body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
