package client

import (
	"context"
	"encoding/json"

	"github.com/rmarchetti/stockroom-backend/pkg/logger"
)

// FallbackTransport tries a primary endpoint and, on a transport-level
// failure, a secondary one exactly once. Domain errors pass through
// untouched since a second backend would answer them the same way.
type FallbackTransport struct {
	primary   Transport
	secondary Transport
	log       *logger.Logger
}

func NewFallbackTransport(primary, secondary Transport, logg *logger.Logger) *FallbackTransport {
	return &FallbackTransport{primary: primary, secondary: secondary, log: logg}
}

func (t *FallbackTransport) Do(ctx context.Context, entity, action string, payload any) (json.RawMessage, error) {
	raw, err := t.primary.Do(ctx, entity, action, payload)
	if err == nil || t.secondary == nil || !IsIntegrationError(err) {
		return raw, err
	}

	if t.log != nil {
		logCtx := t.log.WithFields(ctx, map[string]any{
			"entity": entity,
			"call":   action,
		})
		t.log.Warn(logCtx, "primary endpoint failed, trying fallback")
	}

	return t.secondary.Do(ctx, entity, action, payload)
}
