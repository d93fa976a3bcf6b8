package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/rmarchetti/stockroom-backend/pkg/errors"
)

type fakeTransport struct {
	mu    sync.Mutex
	calls []string
	doFn  func(entity, action string, payload any) (json.RawMessage, error)
}

func (f *fakeTransport) Do(ctx context.Context, entity, action string, payload any) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, entity+"/"+action)
	f.mu.Unlock()
	if f.doFn != nil {
		return f.doFn(entity, action, payload)
	}
	return json.RawMessage(`[]`), nil
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func integrationFailure() error {
	return &IntegrationError{Kind: IntegrationStatus, Status: 502, Err: errors.New("bad gateway")}
}

func TestHTTPTransportTagsActionAndToken(t *testing.T) {
	var captured struct {
		path   string
		auth   string
		action string
		title  string
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		captured.action, _ = payload["action"].(string)
		captured.title, _ = payload["title"].(string)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data":{"id":"ok"}}`)
	}))
	defer server.Close()

	transport, err := NewHTTPTransport(server.URL, time.Second, WithToken(func() string { return "token-123" }))
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}

	raw, err := transport.Do(context.Background(), "requests", "create", map[string]any{"title": "Monitor"})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if captured.path != "/api/v1/requests/actions" {
		t.Fatalf("unexpected path %s", captured.path)
	}
	if captured.auth != "Bearer token-123" {
		t.Fatalf("unexpected auth header %q", captured.auth)
	}
	if captured.action != "create" || captured.title != "Monitor" {
		t.Fatalf("payload not tagged: action=%q title=%q", captured.action, captured.title)
	}
	if string(raw) != `{"id":"ok"}` {
		t.Fatalf("unexpected payload %s", raw)
	}
}

func TestHTTPTransportMapsDomainErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"error":{"code":"STATE_CONFLICT","message":"cannot approve a rejected request","details":{"current_status":"rejected"}}}`)
	}))
	defer server.Close()

	transport, err := NewHTTPTransport(server.URL, time.Second)
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}

	_, err = transport.Do(context.Background(), "requests", "approve", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if IsIntegrationError(err) {
		t.Fatalf("domain error classified as integration failure: %v", err)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHTTPTransportServerFailureIsIntegrationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	transport, err := NewHTTPTransport(server.URL, time.Second)
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}

	_, err = transport.Do(context.Background(), "requests", "getAll", nil)
	var ie *IntegrationError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IntegrationError, got %v", err)
	}
	if ie.Kind != IntegrationStatus || ie.Status != http.StatusInternalServerError {
		t.Fatalf("unexpected classification: %+v", ie)
	}
}

func TestHTTPTransportToleratesLegacyBareArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"name":"Office"}]`)
	}))
	defer server.Close()

	transport, err := NewHTTPTransport(server.URL, time.Second)
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}

	raw, err := transport.Do(context.Background(), "categories", "getAll", nil)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0]["name"] != "Office" {
		t.Fatalf("unexpected items %v", items)
	}
}

func TestFallbackTriedExactlyOnce(t *testing.T) {
	primary := &fakeTransport{doFn: func(entity, action string, payload any) (json.RawMessage, error) {
		return nil, integrationFailure()
	}}
	secondary := &fakeTransport{doFn: func(entity, action string, payload any) (json.RawMessage, error) {
		return nil, integrationFailure()
	}}

	transport := NewFallbackTransport(primary, secondary, nil)
	_, err := transport.Do(context.Background(), "requests", "getAll", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if primary.callCount() != 1 {
		t.Fatalf("primary called %d times", primary.callCount())
	}
	if secondary.callCount() != 1 {
		t.Fatalf("secondary called %d times, want exactly 1", secondary.callCount())
	}
}

func TestFallbackSkippedForDomainErrors(t *testing.T) {
	primary := &fakeTransport{doFn: func(entity, action string, payload any) (json.RawMessage, error) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no")
	}}
	secondary := &fakeTransport{}

	transport := NewFallbackTransport(primary, secondary, nil)
	_, err := transport.Do(context.Background(), "requests", "delete", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if secondary.callCount() != 0 {
		t.Fatalf("secondary should not be consulted for domain errors, called %d times", secondary.callCount())
	}
}

func TestFallbackSuccessUsesSecondaryResult(t *testing.T) {
	primary := &fakeTransport{doFn: func(entity, action string, payload any) (json.RawMessage, error) {
		return nil, integrationFailure()
	}}
	secondary := &fakeTransport{doFn: func(entity, action string, payload any) (json.RawMessage, error) {
		return json.RawMessage(`[{"name":"from-secondary"}]`), nil
	}}

	transport := NewFallbackTransport(primary, secondary, nil)
	raw, err := transport.Do(context.Background(), "categories", "getAll", nil)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if string(raw) != `[{"name":"from-secondary"}]` {
		t.Fatalf("unexpected payload %s", raw)
	}
}
