package controllers

import (
	"net/http"

	"github.com/rmarchetti/stockroom-backend/api/middleware"
	"github.com/rmarchetti/stockroom-backend/api/responses"
	"github.com/rmarchetti/stockroom-backend/internal/notifications"
	pkgerrors "github.com/rmarchetti/stockroom-backend/pkg/errors"
	"github.com/rmarchetti/stockroom-backend/pkg/logger"
)

// NotificationActions dispatches the action-tagged notification operations.
// Every action is scoped to the caller's own notifications.
func NotificationActions(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
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
				Limit      int    `json:"limit" validate:"omitempty,gte=0"`
				Cursor     string `json:"cursor"`
				UnreadOnly bool   `json:"unread_only"`
			}
			if err := decodePayload(raw, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			result, err := svc.List(r.Context(), notifications.ListParams{
				UserID:     actor.ID,
				Limit:      body.Limit,
				Cursor:     body.Cursor,
				UnreadOnly: body.UnreadOnly,
			})
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, result)

		case "markRead":
			var body requestIDPayload
			if err := decodePayload(raw, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if err := svc.MarkRead(r.Context(), actor.ID, body.ID); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, map[string]string{"status": "read"})

		case "markAllRead":
			updated, err := svc.MarkAllRead(r.Context(), actor.ID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, map[string]int64{"updated": updated})

		case "unreadCount":
			count, err := svc.UnreadCount(r.Context(), actor.ID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, map[string]int64{"unread": count})

		default:
			responses.WriteError(r.Context(), logg, w, unknownAction("notifications", action))
		}
	}
}
