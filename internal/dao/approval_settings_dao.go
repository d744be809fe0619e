package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/docushare/share-management-api/internal/apperrors"
	"github.com/docushare/share-management-api/internal/database"
	"github.com/docushare/share-management-api/internal/models"
)

const settingsColumns = `
	SETTINGS_ID, GLOBAL_APPROVAL_ENABLED, ENABLED_BY_USER_ID, ENABLED_TIME,
	ENABLED_REASON, DEFAULT_EXPIRATION_DAYS, DEFAULT_REQUIRED_APPROVALS,
	FORCE_APPROVAL_FOR_ALL, FORCE_APPROVAL_LARGE_FILES,
	LARGE_FILE_THRESHOLD_BYTES, EMAIL_NOTIFICATIONS, UPDATED_TIME
`

// ApprovalSettingsDAO handles database operations for the settings singleton
type ApprovalSettingsDAO struct {
	db *database.DB
}

// NewApprovalSettingsDAO creates a new ApprovalSettingsDAO instance
func NewApprovalSettingsDAO(db *database.DB) *ApprovalSettingsDAO {
	return &ApprovalSettingsDAO{db: db}
}

// Get retrieves the singleton settings row
func (dao *ApprovalSettingsDAO) Get(ctx context.Context) (*models.ApprovalSettings, error) {
	query := `SELECT ` + settingsColumns + ` FROM SHARE_APPROVAL_SETTINGS WHERE SETTINGS_ID = ?`

	var settings models.ApprovalSettings
	err := dao.db.GetContext(ctx, &settings, query, models.ApprovalSettingsID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("approval settings", models.ApprovalSettingsID)
		}
		return nil, fmt.Errorf("failed to get approval settings: %w", err)
	}

	return &settings, nil
}

// Insert creates the singleton settings row. Duplicate-key failures are
// expected under concurrent bootstrap and reported as-is for the caller to
// resolve by re-reading.
func (dao *ApprovalSettingsDAO) Insert(ctx context.Context, settings *models.ApprovalSettings) error {
	query := `
		INSERT INTO SHARE_APPROVAL_SETTINGS (` + settingsColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := dao.db.ExecContext(
		ctx,
		query,
		settings.SettingsID,
		settings.GlobalApprovalEnabled,
		settings.EnabledByUserID,
		settings.EnabledTime,
		settings.EnabledReason,
		settings.DefaultExpirationDays,
		settings.DefaultRequiredApprovals,
		settings.ForceApprovalForAll,
		settings.ForceApprovalLargeFiles,
		settings.LargeFileThresholdBytes,
		settings.EmailNotifications,
		settings.UpdatedTime,
	)

	if err != nil {
		return fmt.Errorf("failed to insert approval settings: %w", err)
	}

	return nil
}

// Update overwrites the singleton settings row
func (dao *ApprovalSettingsDAO) Update(ctx context.Context, settings *models.ApprovalSettings) error {
	query := `
		UPDATE SHARE_APPROVAL_SETTINGS
		SET GLOBAL_APPROVAL_ENABLED = ?, ENABLED_BY_USER_ID = ?, ENABLED_TIME = ?,
		    ENABLED_REASON = ?, DEFAULT_EXPIRATION_DAYS = ?, DEFAULT_REQUIRED_APPROVALS = ?,
		    FORCE_APPROVAL_FOR_ALL = ?, FORCE_APPROVAL_LARGE_FILES = ?,
		    LARGE_FILE_THRESHOLD_BYTES = ?, EMAIL_NOTIFICATIONS = ?, UPDATED_TIME = ?
		WHERE SETTINGS_ID = ?
	`

	result, err := dao.db.ExecContext(
		ctx,
		query,
		settings.GlobalApprovalEnabled,
		settings.EnabledByUserID,
		settings.EnabledTime,
		settings.EnabledReason,
		settings.DefaultExpirationDays,
		settings.DefaultRequiredApprovals,
		settings.ForceApprovalForAll,
		settings.ForceApprovalLargeFiles,
		settings.LargeFileThresholdBytes,
		settings.EmailNotifications,
		settings.UpdatedTime,
		settings.SettingsID,
	)

	if err != nil {
		return fmt.Errorf("failed to update approval settings: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFound("approval settings", settings.SettingsID)
	}

	return nil
}
