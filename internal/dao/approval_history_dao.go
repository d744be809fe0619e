package dao

import (
	"context"
	"fmt"

	"github.com/docushare/share-management-api/internal/database"
	"github.com/docushare/share-management-api/internal/models"
)

// ApprovalHistoryDAO handles the append-only lifecycle audit trail
type ApprovalHistoryDAO struct {
	db *database.DB
}

// NewApprovalHistoryDAO creates a new ApprovalHistoryDAO instance
func NewApprovalHistoryDAO(db *database.DB) *ApprovalHistoryDAO {
	return &ApprovalHistoryDAO{db: db}
}

// CreateWithTx appends a history row using a transaction
func (dao *ApprovalHistoryDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, history *models.ApprovalHistory) error {
	query := `
		INSERT INTO SHARE_APPROVAL_HISTORY (
			HISTORY_ID, REQUEST_ID, ACTION, ACTOR_ID, NOTES, ACTION_TIME
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		history.HistoryID,
		history.RequestID,
		history.Action,
		history.ActorID,
		history.Notes,
		history.ActionTime,
	)

	if err != nil {
		return fmt.Errorf("failed to create approval history: %w", err)
	}

	return nil
}

// GetByRequestID retrieves the audit trail for a request in event order
func (dao *ApprovalHistoryDAO) GetByRequestID(ctx context.Context, requestID string) ([]models.ApprovalHistory, error) {
	query := `
		SELECT HISTORY_ID, REQUEST_ID, ACTION, ACTOR_ID, NOTES, ACTION_TIME
		FROM SHARE_APPROVAL_HISTORY
		WHERE REQUEST_ID = ?
		ORDER BY ACTION_TIME ASC
	`

	var history []models.ApprovalHistory
	err := dao.db.SelectContext(ctx, &history, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get approval history: %w", err)
	}

	return history, nil
}
