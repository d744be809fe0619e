package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/docushare/share-management-api/internal/apperrors"
	"github.com/docushare/share-management-api/internal/database"
	"github.com/docushare/share-management-api/internal/models"
)

const requestColumns = `
	REQUEST_ID, DOCUMENT_SHARE_ID, APPROVAL_POLICY_ID, STATUS, REQUEST_REASON,
	FINAL_COMMENT, REQUESTED_BY_USER_ID, REQUIRED_APPROVAL_COUNT,
	CURRENT_APPROVAL_COUNT, ASSIGNED_APPROVERS, EXPIRES_AT, PROCESSED_AT,
	ROW_VERSION, CREATED_TIME, UPDATED_TIME
`

// ApprovalRequestDAO handles database operations for share approval requests
type ApprovalRequestDAO struct {
	db *database.DB
}

// NewApprovalRequestDAO creates a new ApprovalRequestDAO instance
func NewApprovalRequestDAO(db *database.DB) *ApprovalRequestDAO {
	return &ApprovalRequestDAO{db: db}
}

// CreateWithTx inserts a new approval request using a transaction
func (dao *ApprovalRequestDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, request *models.ShareApprovalRequest) error {
	query := `
		INSERT INTO SHARE_APPROVAL_REQUEST (` + requestColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		request.RequestID,
		request.DocumentShareID,
		request.ApprovalPolicyID,
		request.Status,
		request.RequestReason,
		request.FinalComment,
		request.RequestedByUserID,
		request.RequiredApprovalCount,
		request.CurrentApprovalCount,
		request.AssignedApprovers,
		request.ExpiresAt,
		request.ProcessedAt,
		request.RowVersion,
		request.CreatedTime,
		request.UpdatedTime,
	)

	if err != nil {
		return fmt.Errorf("failed to create approval request with transaction: %w", err)
	}

	return nil
}

// GetByID retrieves an approval request by ID
func (dao *ApprovalRequestDAO) GetByID(ctx context.Context, requestID string) (*models.ShareApprovalRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM SHARE_APPROVAL_REQUEST WHERE REQUEST_ID = ?`

	var request models.ShareApprovalRequest
	err := dao.db.GetContext(ctx, &request, query, requestID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("approval request", requestID)
		}
		return nil, fmt.Errorf("failed to get approval request: %w", err)
	}

	return &request, nil
}

// GetByIDWithTx retrieves an approval request by ID using a transaction
func (dao *ApprovalRequestDAO) GetByIDWithTx(ctx context.Context, tx *database.Transaction, requestID string) (*models.ShareApprovalRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM SHARE_APPROVAL_REQUEST WHERE REQUEST_ID = ?`

	var request models.ShareApprovalRequest
	err := tx.GetContext(ctx, &request, query, requestID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("approval request", requestID)
		}
		return nil, fmt.Errorf("failed to get approval request: %w", err)
	}

	return &request, nil
}

// GetByShareID retrieves the approval request owned by a share
func (dao *ApprovalRequestDAO) GetByShareID(ctx context.Context, shareID string) (*models.ShareApprovalRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM SHARE_APPROVAL_REQUEST WHERE DOCUMENT_SHARE_ID = ?`

	var request models.ShareApprovalRequest
	err := dao.db.GetContext(ctx, &request, query, shareID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("approval request for share", shareID)
		}
		return nil, fmt.Errorf("failed to get approval request by share: %w", err)
	}

	return &request, nil
}

// ListByStatus retrieves requests in a given status ordered by creation time
func (dao *ApprovalRequestDAO) ListByStatus(ctx context.Context, status models.ApprovalStatus, limit, offset int) ([]models.ShareApprovalRequest, int, error) {
	countQuery := `SELECT COUNT(*) FROM SHARE_APPROVAL_REQUEST WHERE STATUS = ?`
	var total int
	if err := dao.db.GetContext(ctx, &total, countQuery, status); err != nil {
		return nil, 0, fmt.Errorf("failed to count approval requests: %w", err)
	}

	query := `
		SELECT ` + requestColumns + `
		FROM SHARE_APPROVAL_REQUEST
		WHERE STATUS = ?
		ORDER BY CREATED_TIME DESC
		LIMIT ? OFFSET ?
	`

	var requests []models.ShareApprovalRequest
	err := dao.db.SelectContext(ctx, &requests, query, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list approval requests: %w", err)
	}

	return requests, total, nil
}

// GetExpiredPendingWithTx fetches all pending requests whose expiry has
// passed, locking the rows for the duration of the sweep transaction
func (dao *ApprovalRequestDAO) GetExpiredPendingWithTx(ctx context.Context, tx *database.Transaction, nowMillis int64) ([]models.ShareApprovalRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM SHARE_APPROVAL_REQUEST
		WHERE STATUS = ? AND EXPIRES_AT <= ?
		FOR UPDATE
	`

	var requests []models.ShareApprovalRequest
	err := tx.SelectContext(ctx, &requests, query, models.ApprovalStatusPending, nowMillis)
	if err != nil {
		return nil, fmt.Errorf("failed to get expired pending requests: %w", err)
	}

	return requests, nil
}

// UpdateStateWithTx writes the mutable state of a request guarded by its row
// version. A zero-row update on an existing request means another writer got
// there first and surfaces as a concurrency conflict.
func (dao *ApprovalRequestDAO) UpdateStateWithTx(ctx context.Context, tx *database.Transaction, request *models.ShareApprovalRequest) error {
	query := `
		UPDATE SHARE_APPROVAL_REQUEST
		SET STATUS = ?, CURRENT_APPROVAL_COUNT = ?, FINAL_COMMENT = ?,
		    PROCESSED_AT = ?, ROW_VERSION = ROW_VERSION + 1, UPDATED_TIME = ?
		WHERE REQUEST_ID = ? AND ROW_VERSION = ?
	`

	result, err := tx.ExecContext(
		ctx,
		query,
		request.Status,
		request.CurrentApprovalCount,
		request.FinalComment,
		request.ProcessedAt,
		request.UpdatedTime,
		request.RequestID,
		request.RowVersion,
	)

	if err != nil {
		return fmt.Errorf("failed to update approval request state: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewConcurrency("approval request", request.RequestID)
	}

	request.RowVersion++
	return nil
}
