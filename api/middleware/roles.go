package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rmarchetti/stockroom-backend/api/responses"
	"github.com/rmarchetti/stockroom-backend/pkg/enums"
	pkgerrors "github.com/rmarchetti/stockroom-backend/pkg/errors"
	"github.com/rmarchetti/stockroom-backend/pkg/logger"
)

// RequireRole gates the listed actions of an action-tagged route behind a
// single role. Actions outside the list pass through to the service's own
// checks, so this is a first line of defense, not the only one.
func RequireRole(role enums.Role, actions []string, logg *logger.Logger) func(http.Handler) http.Handler {
	gated := gatedSet(actions)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if gated[peekAction(r)] {
				parsed, err := enums.ParseRole(RoleFromContext(r.Context()))
				if err != nil || parsed != role {
					responses.WriteError(r.Context(), logg, w,
						pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("%s role required", role)))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePrivileged admits admins and managers only for the listed actions.
func RequirePrivileged(actions []string, logg *logger.Logger) func(http.Handler) http.Handler {
	gated := gatedSet(actions)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if gated[peekAction(r)] {
				role, err := enums.ParseRole(RoleFromContext(r.Context()))
				if err != nil || !role.IsPrivileged() {
					responses.WriteError(r.Context(), logg, w,
						pkgerrors.New(pkgerrors.CodeForbidden, "admin or manager role required"))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func gatedSet(actions []string) map[string]bool {
	set := make(map[string]bool, len(actions))
	for _, action := range actions {
		set[action] = true
	}
	return set
}

// peekAction reads the action tag out of the body, leaving the body intact
// for the controller. A missing or unparseable body yields an empty string
// and the controller's own validation takes over.
func peekAction(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var envelope struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.Action
}
