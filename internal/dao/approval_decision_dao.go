package dao

import (
	"context"
	"fmt"

	"github.com/docushare/share-management-api/internal/database"
	"github.com/docushare/share-management-api/internal/models"
)

// ApprovalDecisionDAO handles the append-only decision log
type ApprovalDecisionDAO struct {
	db *database.DB
}

// NewApprovalDecisionDAO creates a new ApprovalDecisionDAO instance
func NewApprovalDecisionDAO(db *database.DB) *ApprovalDecisionDAO {
	return &ApprovalDecisionDAO{db: db}
}

// CreateWithTx appends a decision row using a transaction
func (dao *ApprovalDecisionDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, decision *models.ApprovalDecision) error {
	query := `
		INSERT INTO SHARE_APPROVAL_DECISION (
			DECISION_ID, REQUEST_ID, APPROVER_USER_ID, DECISION, COMMENT, DECIDED_TIME
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		decision.DecisionID,
		decision.RequestID,
		decision.ApproverUserID,
		decision.Decision,
		decision.Comment,
		decision.DecidedTime,
	)

	if err != nil {
		return fmt.Errorf("failed to create approval decision: %w", err)
	}

	return nil
}

// GetByRequestID retrieves all decisions for a request in decision order
func (dao *ApprovalDecisionDAO) GetByRequestID(ctx context.Context, requestID string) ([]models.ApprovalDecision, error) {
	query := `
		SELECT DECISION_ID, REQUEST_ID, APPROVER_USER_ID, DECISION, COMMENT, DECIDED_TIME
		FROM SHARE_APPROVAL_DECISION
		WHERE REQUEST_ID = ?
		ORDER BY DECIDED_TIME ASC
	`

	var decisions []models.ApprovalDecision
	err := dao.db.SelectContext(ctx, &decisions, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get approval decisions: %w", err)
	}

	return decisions, nil
}

// ExistsForApprover checks whether an approver already recorded a decision on
// a request (one vote per approver)
func (dao *ApprovalDecisionDAO) ExistsForApprover(ctx context.Context, requestID, approverUserID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM SHARE_APPROVAL_DECISION
			WHERE REQUEST_ID = ? AND APPROVER_USER_ID = ?
		)
	`

	var exists bool
	err := dao.db.GetContext(ctx, &exists, query, requestID, approverUserID)
	if err != nil {
		return false, fmt.Errorf("failed to check approval decision existence: %w", err)
	}

	return exists, nil
}

// ExistsForApproverWithTx is the transactional variant of ExistsForApprover
func (dao *ApprovalDecisionDAO) ExistsForApproverWithTx(ctx context.Context, tx *database.Transaction, requestID, approverUserID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM SHARE_APPROVAL_DECISION
			WHERE REQUEST_ID = ? AND APPROVER_USER_ID = ?
		)
	`

	var exists bool
	err := tx.GetContext(ctx, &exists, query, requestID, approverUserID)
	if err != nil {
		return false, fmt.Errorf("failed to check approval decision existence: %w", err)
	}

	return exists, nil
}
