package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/docushare/share-management-api/internal/config"
	"github.com/docushare/share-management-api/internal/models"
	"github.com/docushare/share-management-api/pkg/utils"
)

// Dispatcher drains the notification outbox in the background. Business
// transactions append events; the dispatcher publishes them to the event bus
// and sends the corresponding emails, so delivery failures never touch
// lifecycle state. Failed events are retried on later polls until the
// attempt budget runs out.
type Dispatcher struct {
	outbox   OutboxSource
	users    UserSource
	settings SettingsSource
	email    EmailSender
	events   EventPublisher
	cfg      config.NotificationConfig
	logger   *logrus.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(
	outbox OutboxSource,
	users UserSource,
	settings SettingsSource,
	email EmailSender,
	events EventPublisher,
	cfg config.NotificationConfig,
	logger *logrus.Logger,
) *Dispatcher {
	return &Dispatcher{
		outbox:   outbox,
		users:    users,
		settings: settings,
		email:    email,
		events:   events,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start launches the dispatch loop. Calling Start on a running dispatcher is
// a no-op.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.running = true
	d.wg.Add(1)
	go d.run(loopCtx)

	d.logger.WithFields(logrus.Fields{
		"poll_interval": d.cfg.PollInterval,
		"batch_size":    d.cfg.BatchSize,
	}).Info("Notification dispatcher started")
}

// Stop cancels the loop and waits for the in-flight poll to finish
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.cancel()
	d.running = false
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("Notification dispatcher stopped")
}

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		d.drainOnce(ctx)
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// drainOnce processes one batch of pending events. Every failure is recorded
// on the event row and logged; nothing propagates.
func (d *Dispatcher) drainOnce(ctx context.Context) {
	events, err := d.outbox.FetchPending(ctx, d.cfg.BatchSize)
	if err != nil {
		if ctx.Err() == nil {
			d.logger.WithError(err).Error("Failed to fetch pending notification events")
		}
		return
	}

	for i := range events {
		if ctx.Err() != nil {
			return
		}
		event := &events[i]
		now := utils.GetCurrentTimeMillis()
		if err := d.dispatch(ctx, event); err != nil {
			d.logger.WithError(err).WithFields(logrus.Fields{
				"event_id":   event.EventID,
				"event_type": event.EventType,
				"attempts":   event.Attempts + 1,
			}).Warn("Failed to dispatch notification event")
			if markErr := d.outbox.MarkFailed(ctx, event.EventID, err.Error(), d.cfg.MaxAttempts, now); markErr != nil {
				d.logger.WithError(markErr).WithField("event_id", event.EventID).Error("Failed to record dispatch failure")
			}
			continue
		}
		if err := d.outbox.MarkDispatched(ctx, event.EventID, now); err != nil {
			d.logger.WithError(err).WithField("event_id", event.EventID).Error("Failed to mark event dispatched")
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, event *models.NotificationEvent) error {
	if err := d.events.Publish(ctx, event.EventType, []byte(event.Payload)); err != nil {
		return fmt.Errorf("event publish failed: %w", err)
	}

	emailEnabled, err := d.emailEnabled(ctx)
	if err != nil {
		return err
	}
	if !emailEnabled {
		return nil
	}

	switch event.EventType {
	case models.EventApprovalRequestCreated:
		return d.sendRequestEmails(ctx, event.Payload)
	case models.EventApprovalDecisionMade:
		return d.sendDecisionEmail(ctx, event.Payload)
	case models.EventDocumentShareCreated:
		// Share links go out through the event bus; no email counterpart.
		return nil
	default:
		return fmt.Errorf("unknown event type: %s", event.EventType)
	}
}

func (d *Dispatcher) sendRequestEmails(ctx context.Context, payload models.JSON) error {
	var event models.ApprovalRequestCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("invalid request-created payload: %w", err)
	}
	if len(event.AssignedApprovers) == 0 {
		d.logger.WithField("request_id", event.RequestID).Debug("No assigned approvers; skipping request emails")
		return nil
	}

	requesterName := event.RequesterUserID
	if requester, err := d.users.GetByID(ctx, event.RequesterUserID); err == nil {
		requesterName = displayName(requester)
	}

	var lastErr error
	for _, approverID := range event.AssignedApprovers {
		approver, err := d.users.GetByID(ctx, approverID)
		if err != nil {
			d.logger.WithError(err).WithField("user_id", approverID).Warn("Failed to resolve approver for email")
			lastErr = err
			continue
		}
		if err := d.email.SendApprovalRequestNotification(ctx,
			approver.Email, displayName(approver), event.DocumentName, requesterName,
			event.RequestReason, event.ShareCode, event.ExpiresAt,
			event.CategoryName, utils.FormatFileSize(event.FileSizeBytes), event.PolicyName,
		); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (d *Dispatcher) sendDecisionEmail(ctx context.Context, payload models.JSON) error {
	var event models.ApprovalDecisionMadeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("invalid decision-made payload: %w", err)
	}

	requester, err := d.users.GetByID(ctx, event.RequesterUserID)
	if err != nil {
		return fmt.Errorf("failed to resolve requester %s: %w", event.RequesterUserID, err)
	}
	shareURL := d.cfg.ShareBaseURL + "/" + event.ShareCode
	return d.email.SendApprovalDecisionNotification(ctx,
		requester.Email, displayName(requester), event.DocumentName,
		event.Decision, event.Comment, event.ShareCode, shareURL,
	)
}

func (d *Dispatcher) emailEnabled(ctx context.Context) (bool, error) {
	settings, err := d.settings.GetCurrentSettings(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read notification settings: %w", err)
	}
	return settings.EmailNotifications, nil
}

func displayName(user *models.User) string {
	if user.DisplayName != nil && *user.DisplayName != "" {
		return *user.DisplayName
	}
	return user.Username
}
