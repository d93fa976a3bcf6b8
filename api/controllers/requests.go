package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rmarchetti/stockroom-backend/api/middleware"
	"github.com/rmarchetti/stockroom-backend/api/responses"
	"github.com/rmarchetti/stockroom-backend/internal/requests"
	pkgerrors "github.com/rmarchetti/stockroom-backend/pkg/errors"
	"github.com/rmarchetti/stockroom-backend/pkg/logger"
)

type requestIDPayload struct {
	ID uuid.UUID `json:"id" validate:"required"`
}

// RequestActions dispatches the action-tagged request operations.
func RequestActions(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		action, raw, err := decodeAction(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())

		switch action {
		case "getAll":
			var body struct {
				Status     string     `json:"status"`
				CategoryID *uuid.UUID `json:"category_id"`
				Priority   string     `json:"priority"`
				UserID     *uuid.UUID `json:"user_id"`
				Limit      int        `json:"limit" validate:"omitempty,gte=0"`
				Cursor     string     `json:"cursor"`
			}
			if err := decodePayload(raw, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			result, err := svc.List(r.Context(), actor, requests.ListParams{
				Status:     body.Status,
				CategoryID: body.CategoryID,
				Priority:   body.Priority,
				UserID:     body.UserID,
				Limit:      body.Limit,
				Cursor:     body.Cursor,
			})
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, result)

		case "getById":
			var body requestIDPayload
			if err := decodePayload(raw, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			item, err := svc.Get(r.Context(), actor, body.ID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, item)

		case "create":
			var body requests.CreateRequestInput
			if err := decodePayload(raw, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			item, err := svc.Create(r.Context(), actor, body)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccessStatus(w, http.StatusCreated, item)

		case "update":
			var body struct {
				requestIDPayload
				requests.UpdateRequestInput
			}
			if err := decodePayload(raw, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			item, err := svc.Update(r.Context(), actor, body.ID, body.UpdateRequestInput)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, item)

		case "submit":
			var body requestIDPayload
			if err := decodePayload(raw, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			item, err := svc.Submit(r.Context(), actor, body.ID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, item)

		case "approve":
			var body requestIDPayload
			if err := decodePayload(raw, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			item, err := svc.Approve(r.Context(), actor, body.ID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, item)

		case "reject":
			var body struct {
				requestIDPayload
				Reason string `json:"reason"`
			}
			if err := decodePayload(raw, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			item, err := svc.Reject(r.Context(), actor, body.ID, body.Reason)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, item)

		case "fulfill":
			var body requestIDPayload
			if err := decodePayload(raw, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			item, err := svc.Fulfill(r.Context(), actor, body.ID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, item)

		case "delete":
			var body requestIDPayload
			if err := decodePayload(raw, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if err := svc.Delete(r.Context(), actor, body.ID); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, map[string]string{"status": "deleted"})

		case "addComment":
			var body struct {
				requestIDPayload
				Content string `json:"content" validate:"required"`
			}
			if err := decodePayload(raw, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			comment, err := svc.AddComment(r.Context(), actor, body.ID, body.Content)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccessStatus(w, http.StatusCreated, comment)

		default:
			responses.WriteError(r.Context(), logg, w, unknownAction("requests", action))
		}
	}
}
