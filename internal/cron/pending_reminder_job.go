package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rmarchetti/stockroom-backend/internal/notifications"
	"github.com/rmarchetti/stockroom-backend/pkg/db/models"
	"github.com/rmarchetti/stockroom-backend/pkg/enums"
	"github.com/rmarchetti/stockroom-backend/pkg/logger"
)

const defaultPendingReminderAge = 72 * time.Hour

type pendingRequestReader interface {
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.ItemRequest, error)
}

type reminderNotifier interface {
	NotifyPrivileged(ctx context.Context, payload notifications.Payload, exclude ...uuid.UUID)
}

// PendingReminderJobParams configure the stale pending request reminder.
type PendingReminderJobParams struct {
	Logger   *logger.Logger
	Requests pendingRequestReader
	Notifier reminderNotifier
	Age      time.Duration
}

// NewPendingReminderJob builds the cron job that nags approvers about
// requests sitting in pending for too long.
func NewPendingReminderJob(params PendingReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Requests == nil {
		return nil, fmt.Errorf("requests reader required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	age := params.Age
	if age <= 0 {
		age = defaultPendingReminderAge
	}
	return &pendingReminderJob{
		logg:     params.Logger,
		requests: params.Requests,
		notifier: params.Notifier,
		age:      age,
		now:      time.Now,
	}, nil
}

type pendingReminderJob struct {
	logg     *logger.Logger
	requests pendingRequestReader
	notifier reminderNotifier
	age      time.Duration
	now      func() time.Time
}

func (j *pendingReminderJob) Name() string { return "pending-request-reminder" }

func (j *pendingReminderJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.age)
	stale, err := j.requests.ListPendingOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query stale pending requests: %w", err)
	}

	for _, request := range stale {
		age := j.now().UTC().Sub(request.CreatedAt).Round(time.Hour)
		j.notifier.NotifyPrivileged(ctx, notifications.Payload{
			Type:          enums.NotificationTypeRequestSubmitted,
			Message:       fmt.Sprintf("Request %q has been pending for %s", request.Title, age),
			RelatedItemID: &request.ID,
		})
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"count": len(stale)})
	j.logg.Info(logCtx, "pending request reminder loop complete")
	return nil
}
