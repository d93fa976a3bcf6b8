package controllers

import (
	"net/http"

	"github.com/rmarchetti/stockroom-backend/api/middleware"
	"github.com/rmarchetti/stockroom-backend/api/responses"
	"github.com/rmarchetti/stockroom-backend/internal/categories"
	pkgerrors "github.com/rmarchetti/stockroom-backend/pkg/errors"
	"github.com/rmarchetti/stockroom-backend/pkg/logger"
)

// CategoryActions dispatches the action-tagged category operations.
func CategoryActions(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "categories service unavailable"))
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
			items, err := svc.List(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, items)

		case "getById":
			var body requestIDPayload
			if err := decodePayload(raw, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			item, err := svc.Get(r.Context(), body.ID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, item)

		case "create":
			var body categories.CreateCategoryInput
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
				categories.UpdateCategoryInput
			}
			if err := decodePayload(raw, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			item, err := svc.Update(r.Context(), actor, body.ID, body.UpdateCategoryInput)
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

		default:
			responses.WriteError(r.Context(), logg, w, unknownAction("categories", action))
		}
	}
}
