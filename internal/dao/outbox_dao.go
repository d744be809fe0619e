package dao

import (
	"context"
	"fmt"

	"github.com/docushare/share-management-api/internal/database"
	"github.com/docushare/share-management-api/internal/models"
)

const outboxColumns = `
	EVENT_ID, EVENT_TYPE, PAYLOAD, STATUS, ATTEMPTS, LAST_ERROR,
	CREATED_TIME, UPDATED_TIME
`

// OutboxDAO handles the notification outbox. Events are appended inside the
// business transaction and drained by the dispatcher outside of it.
type OutboxDAO struct {
	db *database.DB
}

// NewOutboxDAO creates a new OutboxDAO instance
func NewOutboxDAO(db *database.DB) *OutboxDAO {
	return &OutboxDAO{db: db}
}

// AppendWithTx inserts a pending event inside a business transaction
func (dao *OutboxDAO) AppendWithTx(ctx context.Context, tx *database.Transaction, event *models.NotificationEvent) error {
	query := `
		INSERT INTO NOTIFICATION_OUTBOX (` + outboxColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		event.EventID,
		event.EventType,
		event.Payload,
		event.Status,
		event.Attempts,
		event.LastError,
		event.CreatedTime,
		event.UpdatedTime,
	)

	if err != nil {
		return fmt.Errorf("failed to append outbox event: %w", err)
	}

	return nil
}

// FetchPending retrieves up to limit pending events in creation order
func (dao *OutboxDAO) FetchPending(ctx context.Context, limit int) ([]models.NotificationEvent, error) {
	query := `
		SELECT ` + outboxColumns + `
		FROM NOTIFICATION_OUTBOX
		WHERE STATUS = ?
		ORDER BY CREATED_TIME ASC
		LIMIT ?
	`

	var events []models.NotificationEvent
	err := dao.db.SelectContext(ctx, &events, query, models.EventStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending outbox events: %w", err)
	}

	return events, nil
}

// MarkDispatched marks an event as successfully delivered
func (dao *OutboxDAO) MarkDispatched(ctx context.Context, eventID string, updatedTime int64) error {
	query := `
		UPDATE NOTIFICATION_OUTBOX
		SET STATUS = ?, ATTEMPTS = ATTEMPTS + 1, LAST_ERROR = NULL, UPDATED_TIME = ?
		WHERE EVENT_ID = ?
	`

	_, err := dao.db.ExecContext(ctx, query, models.EventStatusDispatched, updatedTime, eventID)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event dispatched: %w", err)
	}

	return nil
}

// MarkFailed records a delivery failure. Events past maxAttempts move to the
// FAILED status and are no longer retried.
func (dao *OutboxDAO) MarkFailed(ctx context.Context, eventID string, lastError string, maxAttempts int, updatedTime int64) error {
	query := `
		UPDATE NOTIFICATION_OUTBOX
		SET ATTEMPTS = ATTEMPTS + 1,
		    LAST_ERROR = ?,
		    STATUS = CASE WHEN ATTEMPTS + 1 >= ? THEN ? ELSE STATUS END,
		    UPDATED_TIME = ?
		WHERE EVENT_ID = ?
	`

	_, err := dao.db.ExecContext(ctx, query, lastError, maxAttempts, models.EventStatusFailed, updatedTime, eventID)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event failed: %w", err)
	}

	return nil
}
