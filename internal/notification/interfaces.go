package notification

import (
	"context"

	"github.com/docushare/share-management-api/internal/models"
)

// EmailSender delivers approval workflow emails. Implementations must treat
// delivery as best-effort: the dispatcher logs failures and retries, but the
// lifecycle state that triggered the email is already committed.
type EmailSender interface {
	SendApprovalRequestNotification(ctx context.Context, approverEmail, approverName, documentName, requesterName, reason, shareCode string, expiresAt int64, categoryName, formattedFileSize, policyName string) error
	SendApprovalDecisionNotification(ctx context.Context, requesterEmail, requesterName, documentName string, decision models.DecisionValue, comment, shareCode, shareURL string) error
}

// EventPublisher forwards outbox events to an external bus
type EventPublisher interface {
	Publish(ctx context.Context, eventType models.EventType, payload []byte) error
}

// UserSource resolves user records for email delivery
type UserSource interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// OutboxSource drains the notification outbox
type OutboxSource interface {
	FetchPending(ctx context.Context, limit int) ([]models.NotificationEvent, error)
	MarkDispatched(ctx context.Context, eventID string, updatedTime int64) error
	MarkFailed(ctx context.Context, eventID string, lastError string, maxAttempts int, updatedTime int64) error
}

// SettingsSource exposes the email-notification toggle
type SettingsSource interface {
	GetCurrentSettings(ctx context.Context) (*models.ApprovalSettings, error)
}
