package controllers

import (
	"net/http"

	"github.com/rmarchetti/stockroom-backend/api/middleware"
	"github.com/rmarchetti/stockroom-backend/api/responses"
	"github.com/rmarchetti/stockroom-backend/internal/users"
	pkgerrors "github.com/rmarchetti/stockroom-backend/pkg/errors"
	"github.com/rmarchetti/stockroom-backend/pkg/logger"
)

// UserActions dispatches the action-tagged user operations. Profile updates
// always apply to the caller, role changes name their target explicitly.
func UserActions(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
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
			list, err := svc.List(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, list)

		case "getById":
			var body requestIDPayload
			if err := decodePayload(raw, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			user, err := svc.Get(r.Context(), body.ID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, user)

		case "me":
			user, err := svc.Get(r.Context(), actor.ID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, user)

		case "updateProfile":
			var body users.UpdateProfileInput
			if err := decodePayload(raw, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			user, err := svc.UpdateProfile(r.Context(), actor, body)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, user)

		case "updateRole":
			var body struct {
				requestIDPayload
				Role string `json:"role" validate:"required"`
			}
			if err := decodePayload(raw, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			user, err := svc.UpdateRole(r.Context(), actor, body.ID, body.Role)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, user)

		default:
			responses.WriteError(r.Context(), logg, w, unknownAction("users", action))
		}
	}
}
