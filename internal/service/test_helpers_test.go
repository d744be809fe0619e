package service

import (
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/docushare/share-management-api/internal/config"
	"github.com/docushare/share-management-api/internal/database"
	"github.com/docushare/share-management-api/internal/models"
	"github.com/docushare/share-management-api/pkg/utils"
)

// newTestLogger returns a logger that discards output
func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newTestDB wraps a sqlmock connection so WithTransaction can run against
// expected Begin/Commit/Rollback calls while the DAOs are mocked out.
func newTestDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })

	return database.NewFromSqlx(sqlx.NewDb(mockDB, "mysql"), newTestLogger()), mock
}

// newTestConfig returns the configuration the services see in tests
func newTestConfig() *config.Config {
	return &config.Config{
		Approval: config.ApprovalConfig{
			DefaultExpirationDays:         3,
			DefaultRequiredApprovals:      1,
			ForceLargeFiles:               true,
			LargeFileThresholdBytes:       100 * 1024 * 1024,
			GlobalPolicyPriority:          999,
			GlobalPolicyTimeoutHours:      72,
			GlobalPolicyRequiredApprovals: 1,
		},
		Sweeper: config.SweeperConfig{
			Enabled:          true,
			PollInterval:     30 * time.Minute,
			BackoffBase:      time.Minute,
			BackoffCap:       16 * time.Minute,
			FailureThreshold: 5,
			CircuitCooldown:  30 * time.Minute,
		},
		Share: config.ShareConfig{
			ApproverRoles: []string{"Admin", "Manager"},
		},
	}
}

func newTestPolicy() *models.ApprovalPolicy {
	now := utils.GetCurrentTimeMillis()
	return &models.ApprovalPolicy{
		PolicyID:              "POLICY-11111111-1111-1111-1111-111111111111",
		Name:                  "Finance Documents",
		Active:                true,
		Priority:              10,
		RequireApproval:       true,
		ApprovalTimeoutHours:  48,
		RequiredApprovalCount: 1,
		CreatedTime:           now,
		UpdatedTime:           now,
	}
}

func newTestDocument() *models.Document {
	return &models.Document{
		DocumentID:        "DOC-1",
		Name:              "quarterly-report.pdf",
		StorageProviderID: "PROVIDER-1",
		BucketID:          "BUCKET-1",
		FileExtension:     "pdf",
		SizeBytes:         2 * 1024 * 1024,
		OwnerUserID:       "USER-1",
	}
}

func newTestShare() *models.DocumentShare {
	now := utils.GetCurrentTimeMillis()
	return &models.DocumentShare{
		ShareID:         "SHARE-1",
		DocumentID:      "DOC-1",
		ShareCode:       "abc123code",
		CreatedByUserID: "USER-1",
		ApprovalStatus:  models.ApprovalStatusPending,
		CreatedTime:     now,
		UpdatedTime:     now,
	}
}

func newTestPendingRequest() *models.ShareApprovalRequest {
	now := utils.GetCurrentTimeMillis()
	return &models.ShareApprovalRequest{
		RequestID:             "APPREQ-1",
		DocumentShareID:       "SHARE-1",
		ApprovalPolicyID:      "POLICY-11111111-1111-1111-1111-111111111111",
		Status:                models.ApprovalStatusPending,
		RequestedByUserID:     "USER-1",
		RequiredApprovalCount: 2,
		CurrentApprovalCount:  0,
		ExpiresAt:             now + int64(48*time.Hour/time.Millisecond),
		RowVersion:            1,
		CreatedTime:           now,
		UpdatedTime:           now,
	}
}

// Helper to create a pointer to a string
func strPtr(s string) *string {
	return &s
}

// Helper to create a pointer to an int64
func int64Ptr(v int64) *int64 {
	return &v
}
