package service

import (
	"context"

	"github.com/docushare/share-management-api/internal/database"
	"github.com/docushare/share-management-api/internal/models"
)

// Store contracts consumed by the service layer. The concrete DAOs satisfy
// these; tests substitute testify mocks.

// PolicyStore persists approval policies
type PolicyStore interface {
	Create(ctx context.Context, policy *models.ApprovalPolicy) error
	GetByID(ctx context.Context, policyID string) (*models.ApprovalPolicy, error)
	GetByName(ctx context.Context, name string) (*models.ApprovalPolicy, error)
	List(ctx context.Context) ([]models.ApprovalPolicy, error)
	ListActive(ctx context.Context, excludeGlobal bool) ([]models.ApprovalPolicy, error)
	Update(ctx context.Context, policy *models.ApprovalPolicy) error
	SetActive(ctx context.Context, policyID string, active bool, updatedTime int64) error
	Delete(ctx context.Context, policyID string) error
	CountPendingRequests(ctx context.Context, policyID string) (int, error)
}

// SettingsStore persists the approval settings singleton
type SettingsStore interface {
	Get(ctx context.Context) (*models.ApprovalSettings, error)
	Insert(ctx context.Context, settings *models.ApprovalSettings) error
	Update(ctx context.Context, settings *models.ApprovalSettings) error
}

// RequestStore persists share approval requests
type RequestStore interface {
	CreateWithTx(ctx context.Context, tx *database.Transaction, request *models.ShareApprovalRequest) error
	GetByID(ctx context.Context, requestID string) (*models.ShareApprovalRequest, error)
	GetByIDWithTx(ctx context.Context, tx *database.Transaction, requestID string) (*models.ShareApprovalRequest, error)
	GetByShareID(ctx context.Context, shareID string) (*models.ShareApprovalRequest, error)
	ListByStatus(ctx context.Context, status models.ApprovalStatus, limit, offset int) ([]models.ShareApprovalRequest, int, error)
	GetExpiredPendingWithTx(ctx context.Context, tx *database.Transaction, nowMillis int64) ([]models.ShareApprovalRequest, error)
	UpdateStateWithTx(ctx context.Context, tx *database.Transaction, request *models.ShareApprovalRequest) error
}

// DecisionStore persists the append-only decision log
type DecisionStore interface {
	CreateWithTx(ctx context.Context, tx *database.Transaction, decision *models.ApprovalDecision) error
	GetByRequestID(ctx context.Context, requestID string) ([]models.ApprovalDecision, error)
	ExistsForApprover(ctx context.Context, requestID, approverUserID string) (bool, error)
	ExistsForApproverWithTx(ctx context.Context, tx *database.Transaction, requestID, approverUserID string) (bool, error)
}

// HistoryStore persists the append-only lifecycle audit trail
type HistoryStore interface {
	CreateWithTx(ctx context.Context, tx *database.Transaction, history *models.ApprovalHistory) error
	GetByRequestID(ctx context.Context, requestID string) ([]models.ApprovalHistory, error)
}

// ShareStore persists document shares
type ShareStore interface {
	CreateWithTx(ctx context.Context, tx *database.Transaction, share *models.DocumentShare) error
	GetByID(ctx context.Context, shareID string) (*models.DocumentShare, error)
	GetByIDWithTx(ctx context.Context, tx *database.Transaction, shareID string) (*models.DocumentShare, error)
	GetByCode(ctx context.Context, shareCode string) (*models.DocumentShare, error)
	UpdateApprovalStateWithTx(ctx context.Context, tx *database.Transaction, shareID string, requiresApproval bool, status models.ApprovalStatus, isActive bool, updatedTime int64) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.DocumentShare, int, error)
}

// DocumentStore reads document, category and bucket metadata
type DocumentStore interface {
	GetByID(ctx context.Context, documentID string) (*models.Document, error)
	GetCategoryByID(ctx context.Context, categoryID string) (*models.Category, error)
	GetBucketByID(ctx context.Context, bucketID string) (*models.StorageBucket, error)
}

// UserStore reads identity data
type UserStore interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetRoleMemberIDs(ctx context.Context, roleName string) ([]string, error)
}

// OutboxStore appends and drains notification events
type OutboxStore interface {
	AppendWithTx(ctx context.Context, tx *database.Transaction, event *models.NotificationEvent) error
	FetchPending(ctx context.Context, limit int) ([]models.NotificationEvent, error)
	MarkDispatched(ctx context.Context, eventID string, updatedTime int64) error
	MarkFailed(ctx context.Context, eventID string, lastError string, maxAttempts int, updatedTime int64) error
}
