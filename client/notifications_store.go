package client

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rmarchetti/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/rmarchetti/stockroom-backend/pkg/errors"
)

// NotificationFilter narrows the notification list fetch.
type NotificationFilter struct {
	Limit      int    `json:"limit,omitempty"`
	Cursor     string `json:"cursor,omitempty"`
	UnreadOnly bool   `json:"unread_only,omitempty"`
}

// NotificationsStore is the notification state container. The backend scopes
// every call to the authenticated user, so no ids beyond the notification's
// own are sent.
type NotificationsStore struct {
	entityStore[models.Notification]
}

func NewNotificationsStore(transport Transport, opts Options) (*NotificationsStore, error) {
	if transport == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transport is required")
	}
	return &NotificationsStore{
		entityStore: newEntityStore[models.Notification](transport, "notifications", opts),
	}, nil
}

func (s *NotificationsStore) List(ctx context.Context, filter NotificationFilter) ([]models.Notification, error) {
	return s.refresh(ctx, filter)
}

func (s *NotificationsStore) MarkRead(ctx context.Context, id uuid.UUID) error {
	if _, err := s.transport.Do(ctx, s.entity, "markRead", idPayload{ID: id}); err != nil {
		return err
	}
	s.scheduleRefresh()
	return nil
}

func (s *NotificationsStore) MarkAllRead(ctx context.Context) (int64, error) {
	raw, err := s.transport.Do(ctx, s.entity, "markAllRead", nil)
	if err != nil {
		return 0, err
	}
	result, err := decodeObject[struct {
		Updated int64 `json:"updated"`
	}](raw)
	if err != nil {
		return 0, err
	}
	s.scheduleRefresh()
	return result.Updated, nil
}

func (s *NotificationsStore) UnreadCount(ctx context.Context) (int64, error) {
	raw, err := s.transport.Do(ctx, s.entity, "unreadCount", nil)
	if err != nil {
		return 0, err
	}
	result, err := decodeObject[struct {
		Unread int64 `json:"unread"`
	}](raw)
	if err != nil {
		return 0, err
	}
	return result.Unread, nil
}

func (s *NotificationsStore) Poll(ctx context.Context, interval time.Duration) error {
	return s.poll(ctx, interval)
}
