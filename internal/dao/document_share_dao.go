package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/docushare/share-management-api/internal/apperrors"
	"github.com/docushare/share-management-api/internal/database"
	"github.com/docushare/share-management-api/internal/models"
)

const shareColumns = `
	SHARE_ID, DOCUMENT_ID, SHARE_CODE, CREATED_BY_USER_ID, API_KEY_ID,
	IS_DIRECT_SHARE, REQUIRES_APPROVAL, APPROVAL_STATUS, IS_ACTIVE,
	EXPIRES_AT, MAX_VIEWS, VIEW_COUNT, RECIPIENTS, CREATED_TIME, UPDATED_TIME
`

// DocumentShareDAO handles database operations for document shares
type DocumentShareDAO struct {
	db *database.DB
}

// NewDocumentShareDAO creates a new DocumentShareDAO instance
func NewDocumentShareDAO(db *database.DB) *DocumentShareDAO {
	return &DocumentShareDAO{db: db}
}

// CreateWithTx inserts a new document share using a transaction
func (dao *DocumentShareDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, share *models.DocumentShare) error {
	query := `
		INSERT INTO DOCUMENT_SHARE (` + shareColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		share.ShareID,
		share.DocumentID,
		share.ShareCode,
		share.CreatedByUserID,
		share.APIKeyID,
		share.IsDirectShare,
		share.RequiresApproval,
		share.ApprovalStatus,
		share.IsActive,
		share.ExpiresAt,
		share.MaxViews,
		share.ViewCount,
		share.Recipients,
		share.CreatedTime,
		share.UpdatedTime,
	)

	if err != nil {
		return fmt.Errorf("failed to create document share: %w", err)
	}

	return nil
}

// GetByID retrieves a share by ID
func (dao *DocumentShareDAO) GetByID(ctx context.Context, shareID string) (*models.DocumentShare, error) {
	query := `SELECT ` + shareColumns + ` FROM DOCUMENT_SHARE WHERE SHARE_ID = ?`

	var share models.DocumentShare
	err := dao.db.GetContext(ctx, &share, query, shareID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("document share", shareID)
		}
		return nil, fmt.Errorf("failed to get document share: %w", err)
	}

	return &share, nil
}

// GetByIDWithTx retrieves a share by ID using a transaction
func (dao *DocumentShareDAO) GetByIDWithTx(ctx context.Context, tx *database.Transaction, shareID string) (*models.DocumentShare, error) {
	query := `SELECT ` + shareColumns + ` FROM DOCUMENT_SHARE WHERE SHARE_ID = ?`

	var share models.DocumentShare
	err := tx.GetContext(ctx, &share, query, shareID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("document share", shareID)
		}
		return nil, fmt.Errorf("failed to get document share: %w", err)
	}

	return &share, nil
}

// GetByCode retrieves a share by its share code
func (dao *DocumentShareDAO) GetByCode(ctx context.Context, shareCode string) (*models.DocumentShare, error) {
	query := `SELECT ` + shareColumns + ` FROM DOCUMENT_SHARE WHERE SHARE_CODE = ?`

	var share models.DocumentShare
	err := dao.db.GetContext(ctx, &share, query, shareCode)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("document share", shareCode)
		}
		return nil, fmt.Errorf("failed to get document share by code: %w", err)
	}

	return &share, nil
}

// UpdateApprovalStateWithTx mutates the approval triple owned by the
// lifecycle engine
func (dao *DocumentShareDAO) UpdateApprovalStateWithTx(ctx context.Context, tx *database.Transaction, shareID string, requiresApproval bool, status models.ApprovalStatus, isActive bool, updatedTime int64) error {
	query := `
		UPDATE DOCUMENT_SHARE
		SET REQUIRES_APPROVAL = ?, APPROVAL_STATUS = ?, IS_ACTIVE = ?, UPDATED_TIME = ?
		WHERE SHARE_ID = ?
	`

	result, err := tx.ExecContext(ctx, query, requiresApproval, status, isActive, updatedTime, shareID)
	if err != nil {
		return fmt.Errorf("failed to update share approval state: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFound("document share", shareID)
	}

	return nil
}

// ListByUser retrieves shares created by a user ordered by creation time
func (dao *DocumentShareDAO) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.DocumentShare, int, error) {
	countQuery := `SELECT COUNT(*) FROM DOCUMENT_SHARE WHERE CREATED_BY_USER_ID = ?`
	var total int
	if err := dao.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count document shares: %w", err)
	}

	query := `
		SELECT ` + shareColumns + `
		FROM DOCUMENT_SHARE
		WHERE CREATED_BY_USER_ID = ?
		ORDER BY CREATED_TIME DESC
		LIMIT ? OFFSET ?
	`

	var shares []models.DocumentShare
	err := dao.db.SelectContext(ctx, &shares, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list document shares: %w", err)
	}

	return shares, total, nil
}
