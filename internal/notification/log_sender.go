package notification

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/docushare/share-management-api/internal/models"
)

// LogEmailSender writes emails to the log instead of delivering them. It is
// the default sender until an SMTP or provider-backed implementation is
// plugged in.
type LogEmailSender struct {
	logger *logrus.Logger
}

// NewLogEmailSender creates a new LogEmailSender
func NewLogEmailSender(logger *logrus.Logger) *LogEmailSender {
	return &LogEmailSender{logger: logger}
}

func (s *LogEmailSender) SendApprovalRequestNotification(ctx context.Context, approverEmail, approverName, documentName, requesterName, reason, shareCode string, expiresAt int64, categoryName, formattedFileSize, policyName string) error {
	s.logger.WithFields(logrus.Fields{
		"to":         approverEmail,
		"document":   documentName,
		"requester":  requesterName,
		"share_code": shareCode,
		"policy":     policyName,
		"file_size":  formattedFileSize,
		"expires_at": expiresAt,
	}).Info("Approval request email")
	return nil
}

func (s *LogEmailSender) SendApprovalDecisionNotification(ctx context.Context, requesterEmail, requesterName, documentName string, decision models.DecisionValue, comment, shareCode, shareURL string) error {
	s.logger.WithFields(logrus.Fields{
		"to":         requesterEmail,
		"document":   documentName,
		"decision":   decision,
		"share_code": shareCode,
		"share_url":  shareURL,
	}).Info("Approval decision email")
	return nil
}

// LogEventPublisher writes events to the log instead of a bus
type LogEventPublisher struct {
	logger *logrus.Logger
}

// NewLogEventPublisher creates a new LogEventPublisher
func NewLogEventPublisher(logger *logrus.Logger) *LogEventPublisher {
	return &LogEventPublisher{logger: logger}
}

func (p *LogEventPublisher) Publish(ctx context.Context, eventType models.EventType, payload []byte) error {
	p.logger.WithFields(logrus.Fields{
		"event_type": eventType,
		"payload":    string(payload),
	}).Info("Published notification event")
	return nil
}
