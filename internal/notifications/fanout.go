package notifications

import (
	"context"

	"github.com/google/uuid"
	"github.com/rmarchetti/stockroom-backend/pkg/db/models"
	"github.com/rmarchetti/stockroom-backend/pkg/enums"
	"github.com/rmarchetti/stockroom-backend/pkg/logger"
)

// roleLister enumerates users holding a given role.
type roleLister interface {
	ListByRole(ctx context.Context, role enums.Role) ([]models.User, error)
}

// Fanout persists notifications for single users or whole roles.
// Delivery is best effort: a failed insert is logged and never
// propagated to the caller, so lifecycle transitions always commit.
type Fanout struct {
	repo  Repository
	users roleLister
	log   *logger.Logger
}

// Payload carries the notification content for a fan-out call.
type Payload struct {
	Type          enums.NotificationType
	Message       string
	RelatedItemID *uuid.UUID
}

// NewFanout wires the fan-out helper.
func NewFanout(repo Repository, users roleLister, log *logger.Logger) *Fanout {
	return &Fanout{repo: repo, users: users, log: log}
}

// NotifyUser creates a notification for a single recipient.
func (f *Fanout) NotifyUser(ctx context.Context, userID uuid.UUID, payload Payload) {
	if userID == uuid.Nil {
		return
	}
	notification := &models.Notification{
		UserID:        userID,
		Type:          payload.Type,
		Message:       payload.Message,
		RelatedItemID: payload.RelatedItemID,
	}
	if err := f.repo.Create(ctx, notification); err != nil {
		f.log.Error(ctx, "notification insert failed", err)
	}
}

// NotifyRoles fans a notification out to every user holding any of the
// given roles, skipping the excluded ids so actors never notify themselves.
func (f *Fanout) NotifyRoles(ctx context.Context, roles []enums.Role, payload Payload, exclude ...uuid.UUID) {
	seen := map[uuid.UUID]bool{}
	for _, id := range exclude {
		seen[id] = true
	}
	for _, role := range roles {
		recipients, err := f.users.ListByRole(ctx, role)
		if err != nil {
			f.log.Error(ctx, "notification recipient lookup failed", err)
			continue
		}
		for _, recipient := range recipients {
			if seen[recipient.ID] {
				continue
			}
			seen[recipient.ID] = true
			f.NotifyUser(ctx, recipient.ID, payload)
		}
	}
}

// NotifyPrivileged targets every admin and manager except the excluded ids.
func (f *Fanout) NotifyPrivileged(ctx context.Context, payload Payload, exclude ...uuid.UUID) {
	f.NotifyRoles(ctx, []enums.Role{enums.RoleAdmin, enums.RoleManager}, payload, exclude...)
}
