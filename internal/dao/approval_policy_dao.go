package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/docushare/share-management-api/internal/apperrors"
	"github.com/docushare/share-management-api/internal/database"
	"github.com/docushare/share-management-api/internal/models"
)

const policyColumns = `
	POLICY_ID, NAME, DESCRIPTION, ACTIVE, PRIORITY, REQUIRE_APPROVAL,
	APPROVAL_TIMEOUT_HOURS, REQUIRED_APPROVAL_COUNT,
	CATEGORY_FILTER, PROVIDER_FILTER, USER_FILTER, API_KEY_FILTER,
	FILE_TYPE_FILTER, FILE_SIZE_LIMIT_MB, CREATED_TIME, UPDATED_TIME
`

// ApprovalPolicyDAO handles database operations for approval policies
type ApprovalPolicyDAO struct {
	db *database.DB
}

// NewApprovalPolicyDAO creates a new ApprovalPolicyDAO instance
func NewApprovalPolicyDAO(db *database.DB) *ApprovalPolicyDAO {
	return &ApprovalPolicyDAO{db: db}
}

// Create inserts a new approval policy
func (dao *ApprovalPolicyDAO) Create(ctx context.Context, policy *models.ApprovalPolicy) error {
	query := `
		INSERT INTO SHARE_APPROVAL_POLICY (` + policyColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := dao.db.ExecContext(
		ctx,
		query,
		policy.PolicyID,
		policy.Name,
		policy.Description,
		policy.Active,
		policy.Priority,
		policy.RequireApproval,
		policy.ApprovalTimeoutHours,
		policy.RequiredApprovalCount,
		policy.CategoryFilter,
		policy.ProviderFilter,
		policy.UserFilter,
		policy.APIKeyFilter,
		policy.FileTypeFilter,
		policy.FileSizeLimitMB,
		policy.CreatedTime,
		policy.UpdatedTime,
	)

	if err != nil {
		return fmt.Errorf("failed to create approval policy: %w", err)
	}

	return nil
}

// CreateWithTx inserts a new approval policy using a transaction
func (dao *ApprovalPolicyDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, policy *models.ApprovalPolicy) error {
	query := `
		INSERT INTO SHARE_APPROVAL_POLICY (` + policyColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		policy.PolicyID,
		policy.Name,
		policy.Description,
		policy.Active,
		policy.Priority,
		policy.RequireApproval,
		policy.ApprovalTimeoutHours,
		policy.RequiredApprovalCount,
		policy.CategoryFilter,
		policy.ProviderFilter,
		policy.UserFilter,
		policy.APIKeyFilter,
		policy.FileTypeFilter,
		policy.FileSizeLimitMB,
		policy.CreatedTime,
		policy.UpdatedTime,
	)

	if err != nil {
		return fmt.Errorf("failed to create approval policy with transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a policy by ID
func (dao *ApprovalPolicyDAO) GetByID(ctx context.Context, policyID string) (*models.ApprovalPolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM SHARE_APPROVAL_POLICY WHERE POLICY_ID = ?`

	var policy models.ApprovalPolicy
	err := dao.db.GetContext(ctx, &policy, query, policyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("approval policy", policyID)
		}
		return nil, fmt.Errorf("failed to get approval policy: %w", err)
	}

	return &policy, nil
}

// GetByName retrieves a policy by its unique name
func (dao *ApprovalPolicyDAO) GetByName(ctx context.Context, name string) (*models.ApprovalPolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM SHARE_APPROVAL_POLICY WHERE NAME = ?`

	var policy models.ApprovalPolicy
	err := dao.db.GetContext(ctx, &policy, query, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("approval policy", name)
		}
		return nil, fmt.Errorf("failed to get approval policy by name: %w", err)
	}

	return &policy, nil
}

// List retrieves all policies ordered by ascending priority
func (dao *ApprovalPolicyDAO) List(ctx context.Context) ([]models.ApprovalPolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM SHARE_APPROVAL_POLICY ORDER BY PRIORITY ASC, CREATED_TIME ASC`

	var policies []models.ApprovalPolicy
	err := dao.db.SelectContext(ctx, &policies, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list approval policies: %w", err)
	}

	return policies, nil
}

// ListActive retrieves active policies ordered by ascending priority.
// The Global System Policy is excluded; it is only consulted as a fallback.
func (dao *ApprovalPolicyDAO) ListActive(ctx context.Context, excludeGlobal bool) ([]models.ApprovalPolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM SHARE_APPROVAL_POLICY WHERE ACTIVE = TRUE`
	args := []interface{}{}
	if excludeGlobal {
		query += ` AND NAME != ?`
		args = append(args, models.GlobalSystemPolicyName)
	}
	query += ` ORDER BY PRIORITY ASC, CREATED_TIME ASC`

	var policies []models.ApprovalPolicy
	err := dao.db.SelectContext(ctx, &policies, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list active approval policies: %w", err)
	}

	return policies, nil
}

// Update updates an existing policy
func (dao *ApprovalPolicyDAO) Update(ctx context.Context, policy *models.ApprovalPolicy) error {
	query := `
		UPDATE SHARE_APPROVAL_POLICY
		SET NAME = ?, DESCRIPTION = ?, ACTIVE = ?, PRIORITY = ?, REQUIRE_APPROVAL = ?,
		    APPROVAL_TIMEOUT_HOURS = ?, REQUIRED_APPROVAL_COUNT = ?,
		    CATEGORY_FILTER = ?, PROVIDER_FILTER = ?, USER_FILTER = ?,
		    API_KEY_FILTER = ?, FILE_TYPE_FILTER = ?, FILE_SIZE_LIMIT_MB = ?,
		    UPDATED_TIME = ?
		WHERE POLICY_ID = ?
	`

	result, err := dao.db.ExecContext(
		ctx,
		query,
		policy.Name,
		policy.Description,
		policy.Active,
		policy.Priority,
		policy.RequireApproval,
		policy.ApprovalTimeoutHours,
		policy.RequiredApprovalCount,
		policy.CategoryFilter,
		policy.ProviderFilter,
		policy.UserFilter,
		policy.APIKeyFilter,
		policy.FileTypeFilter,
		policy.FileSizeLimitMB,
		policy.UpdatedTime,
		policy.PolicyID,
	)

	if err != nil {
		return fmt.Errorf("failed to update approval policy: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFound("approval policy", policy.PolicyID)
	}

	return nil
}

// SetActive toggles the active flag of a policy
func (dao *ApprovalPolicyDAO) SetActive(ctx context.Context, policyID string, active bool, updatedTime int64) error {
	query := `UPDATE SHARE_APPROVAL_POLICY SET ACTIVE = ?, UPDATED_TIME = ? WHERE POLICY_ID = ?`

	result, err := dao.db.ExecContext(ctx, query, active, updatedTime, policyID)
	if err != nil {
		return fmt.Errorf("failed to toggle approval policy: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFound("approval policy", policyID)
	}

	return nil
}

// Delete removes a policy permanently
func (dao *ApprovalPolicyDAO) Delete(ctx context.Context, policyID string) error {
	query := `DELETE FROM SHARE_APPROVAL_POLICY WHERE POLICY_ID = ?`

	result, err := dao.db.ExecContext(ctx, query, policyID)
	if err != nil {
		return fmt.Errorf("failed to delete approval policy: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFound("approval policy", policyID)
	}

	return nil
}

// CountPendingRequests counts pending approval requests referencing a policy.
// A non-zero count blocks policy deletion.
func (dao *ApprovalPolicyDAO) CountPendingRequests(ctx context.Context, policyID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM SHARE_APPROVAL_REQUEST
		WHERE APPROVAL_POLICY_ID = ? AND STATUS = ?
	`

	var count int
	err := dao.db.GetContext(ctx, &count, query, policyID, models.ApprovalStatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending requests for policy: %w", err)
	}

	return count, nil
}
