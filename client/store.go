package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rmarchetti/stockroom-backend/internal/authz"
	"github.com/rmarchetti/stockroom-backend/pkg/logger"
)

const (
	defaultRetryAttempts = 2
	defaultRetryBackoff  = 500 * time.Millisecond
	defaultSettleDelay   = 750 * time.Millisecond
)

// Options configures a state container.
type Options struct {
	// Actor is consulted by the authorization predicate before mutations.
	Actor authz.Actor
	// RetryAttempts is the number of extra read attempts after the first.
	RetryAttempts int
	RetryBackoff  time.Duration
	// SettleDelay is how long to wait after a mutation before re-fetching
	// the list, letting server-side side effects land first.
	SettleDelay time.Duration
	Logger      *logger.Logger
}

func (o Options) withDefaults() Options {
	if o.RetryAttempts < 0 {
		o.RetryAttempts = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = defaultRetryBackoff
	}
	if o.SettleDelay < 0 {
		o.SettleDelay = 0
	}
	return o
}

// listCache is the mutex-guarded cached list shared by all containers. Each
// refresh claims a version before dispatch; a response only lands if nothing
// newer has been applied since, so a slow in-flight fetch can never clobber
// fresher data.
type listCache[T any] struct {
	mu      sync.Mutex
	items   []T
	seq     uint64
	applied uint64
}

func (c *listCache[T]) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

func (c *listCache[T]) apply(version uint64, items []T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if version <= c.applied {
		return false
	}
	c.applied = version
	c.items = items
	return true
}

func (c *listCache[T]) snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// decodeList accepts the canonical bare array plus the legacy
// {"items": [...]} and {"requests": [...]} wrappers.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}

	var wrapper struct {
		Items    []T `json:"items"`
		Requests []T `json:"requests"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, &IntegrationError{Kind: IntegrationDecode, Err: err}
	}
	if wrapper.Items != nil {
		return wrapper.Items, nil
	}
	if wrapper.Requests != nil {
		return wrapper.Requests, nil
	}
	return nil, &IntegrationError{Kind: IntegrationDecode, Err: errors.New("response carries no list")}
}

func decodeObject[T any](raw json.RawMessage) (*T, error) {
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, &IntegrationError{Kind: IntegrationDecode, Err: err}
	}
	return &item, nil
}

// entityStore is the shared container core: transport dispatch with bounded
// read retries, the versioned cache, settle-delay refreshes, and polling.
type entityStore[T any] struct {
	transport Transport
	entity    string
	opts      Options
	cache     listCache[T]
}

func newEntityStore[T any](transport Transport, entity string, opts Options) entityStore[T] {
	return entityStore[T]{transport: transport, entity: entity, opts: opts.withDefaults()}
}

// refresh re-fetches the entity list, retrying transient failures before
// giving up with an empty list and the error.
func (s *entityStore[T]) refresh(ctx context.Context, payload any) ([]T, error) {
	version := s.cache.begin()

	var lastErr error
	for attempt := 0; attempt <= s.opts.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return []T{}, ctx.Err()
			case <-time.After(s.opts.RetryBackoff):
			}
		}

		raw, err := s.transport.Do(ctx, s.entity, "getAll", payload)
		if err == nil {
			var items []T
			items, err = decodeList[T](raw)
			if err == nil {
				s.cache.apply(version, items)
				return s.cache.snapshot(), nil
			}
		}

		lastErr = err
		if !IsIntegrationError(err) {
			break
		}
	}

	return []T{}, lastErr
}

func (s *entityStore[T]) getByID(ctx context.Context, payload any) (*T, error) {
	raw, err := s.transport.Do(ctx, s.entity, "getById", payload)
	if err != nil {
		return nil, err
	}
	return decodeObject[T](raw)
}

// scheduleRefresh queues the post-mutation reconciliation fetch.
func (s *entityStore[T]) scheduleRefresh() {
	delay := s.opts.SettleDelay
	if delay == 0 {
		delay = defaultSettleDelay
	}
	time.AfterFunc(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
		defer cancel()
		if _, err := s.refresh(ctx, nil); err != nil && s.opts.Logger != nil {
			logCtx := s.opts.Logger.WithFields(ctx, map[string]any{"entity": s.entity})
			s.opts.Logger.Warn(logCtx, "post-mutation refresh failed")
		}
	})
}

// poll re-fetches the list on a fixed cadence until ctx is done.
func (s *entityStore[T]) poll(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 8 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.refresh(ctx, nil); err != nil && s.opts.Logger != nil {
				logCtx := s.opts.Logger.WithFields(ctx, map[string]any{"entity": s.entity})
				s.opts.Logger.Warn(logCtx, "poll refresh failed")
			}
		}
	}
}

// Cached returns the last applied list without touching the network.
func (s *entityStore[T]) Cached() []T {
	return s.cache.snapshot()
}
