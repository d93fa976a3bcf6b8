package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/rmarchetti/stockroom-backend/pkg/errors"
)

// DefaultTimeout bounds a single backend call.
const DefaultTimeout = 15 * time.Second

// Transport sends one action-tagged call to a backend and returns the
// normalized payload from its success envelope.
type Transport interface {
	Do(ctx context.Context, entity, action string, payload any) (json.RawMessage, error)
}

// HTTPTransport posts action-tagged JSON bodies to a single endpoint.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
	token   func() string
}

// HTTPOption customizes an HTTPTransport.
type HTTPOption func(*HTTPTransport)

// WithToken supplies the bearer token attached to every call.
func WithToken(fn func() string) HTTPOption {
	return func(t *HTTPTransport) {
		t.token = fn
	}
}

// WithHTTPClient swaps the underlying http client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(t *HTTPTransport) {
		t.client = c
	}
}

// NewHTTPTransport builds a transport for the given endpoint. A zero timeout
// falls back to DefaultTimeout.
func NewHTTPTransport(baseURL string, timeout time.Duration, opts ...HTTPOption) (*HTTPTransport, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transport endpoint is required")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	t := &HTTPTransport{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func (t *HTTPTransport) Do(ctx context.Context, entity, action string, payload any) (json.RawMessage, error) {
	body, err := tagAction(action, payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/v1/%s/actions", t.baseURL, entity)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if t.token != nil {
		if token := t.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &IntegrationError{Kind: IntegrationDecode, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeErrorResponse(resp.StatusCode, raw)
	}

	return normalizePayload(raw)
}

// tagAction merges the action verb into the payload's JSON object.
func tagAction(action string, payload any) ([]byte, error) {
	fields := map[string]any{}
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode payload")
		}
		if err := json.Unmarshal(encoded, &fields); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "payload must be a JSON object")
		}
	}
	fields["action"] = action
	return json.Marshal(fields)
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &IntegrationError{Kind: IntegrationTimeout, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &IntegrationError{Kind: IntegrationStatus, Err: err}
}

// decodeErrorResponse maps the server's error envelope onto the client
// taxonomy. 4xx codes surface as typed domain errors and are never retried;
// everything else is an IntegrationError for the retry/fallback policies.
func decodeErrorResponse(status int, raw []byte) error {
	var envelope struct {
		Error struct {
			Code    string          `json:"code"`
			Message string          `json:"message"`
			Details json.RawMessage `json:"details"`
		} `json:"error"`
	}

	if status < 500 && json.Unmarshal(raw, &envelope) == nil && envelope.Error.Code != "" {
		typed := pkgerrors.New(pkgerrors.Code(envelope.Error.Code), envelope.Error.Message)
		if len(envelope.Error.Details) > 0 {
			var details any
			if json.Unmarshal(envelope.Error.Details, &details) == nil {
				typed = typed.WithDetails(details)
			}
		}
		return typed
	}

	return &IntegrationError{
		Kind:   IntegrationStatus,
		Status: status,
		Err:    fmt.Errorf("unexpected status %d: %s", status, truncate(raw, 256)),
	}
}

// normalizePayload unwraps the canonical {"data": ...} envelope while
// tolerating legacy responses that return the payload bare.
func normalizePayload(raw []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &IntegrationError{Kind: IntegrationDecode, Err: errors.New("empty response body")}
	}

	if trimmed[0] == '{' {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, &IntegrationError{Kind: IntegrationDecode, Err: err}
		}
		if len(envelope.Data) > 0 {
			return envelope.Data, nil
		}
		return json.RawMessage(trimmed), nil
	}

	if trimmed[0] == '[' {
		return json.RawMessage(trimmed), nil
	}

	return nil, &IntegrationError{Kind: IntegrationDecode, Err: fmt.Errorf("unexpected response shape: %s", truncate(trimmed, 64))}
}

func truncate(raw []byte, max int) string {
	if len(raw) <= max {
		return string(raw)
	}
	return string(raw[:max]) + "..."
}
