package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/docushare/share-management-api/internal/apperrors"
	"github.com/docushare/share-management-api/internal/database"
	"github.com/docushare/share-management-api/internal/models"
)

// UserDAO provides the narrow identity lookups the approval engine consumes.
// Role management itself lives in an external subsystem.
type UserDAO struct {
	db *database.DB
}

// NewUserDAO creates a new UserDAO instance
func NewUserDAO(db *database.DB) *UserDAO {
	return &UserDAO{db: db}
}

// GetByID retrieves a user by ID
func (dao *UserDAO) GetByID(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT USER_ID, USERNAME, EMAIL, DISPLAY_NAME
		FROM APP_USER
		WHERE USER_ID = ?
	`

	var user models.User
	err := dao.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("user", userID)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetRoleMemberIDs retrieves the user IDs belonging to a named role
func (dao *UserDAO) GetRoleMemberIDs(ctx context.Context, roleName string) ([]string, error) {
	query := `
		SELECT u.USER_ID
		FROM APP_USER u
		INNER JOIN APP_USER_ROLE ur ON u.USER_ID = ur.USER_ID
		WHERE ur.ROLE_NAME = ?
		ORDER BY u.USER_ID ASC
	`

	var userIDs []string
	err := dao.db.SelectContext(ctx, &userIDs, query, roleName)
	if err != nil {
		return nil, fmt.Errorf("failed to get role members: %w", err)
	}

	return userIDs, nil
}
