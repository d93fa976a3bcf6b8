package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rmarchetti/stockroom-backend/api/validators"
	pkgerrors "github.com/rmarchetti/stockroom-backend/pkg/errors"
)

// Entity endpoints accept a single POST body tagged with an action name. The
// action selects the operation and the remaining fields are the payload, so
// the body is read once and re-decoded per action.
type actionEnvelope struct {
	Action string `json:"action"`
}

func decodeAction(r *http.Request) (string, []byte, error) {
	defer io.Copy(io.Discard, r.Body)

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return "", nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body")
	}

	var env actionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}

	action := strings.TrimSpace(env.Action)
	if action == "" {
		return "", nil, pkgerrors.New(pkgerrors.CodeValidation, "action is required")
	}
	return action, raw, nil
}

func decodePayload(raw []byte, dest any) error {
	if err := json.Unmarshal(raw, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	return validators.ValidateStruct(dest)
}

func unknownAction(entity, action string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown action %q for %s", action, entity))
}
