package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/docushare/share-management-api/internal/database"
	"github.com/docushare/share-management-api/internal/models"
)

// MockRequestStore is a mock implementation of service.RequestStore
type MockRequestStore struct {
	mock.Mock
}

func (m *MockRequestStore) CreateWithTx(ctx context.Context, tx *database.Transaction, request *models.ShareApprovalRequest) error {
	args := m.Called(ctx, tx, request)
	return args.Error(0)
}

func (m *MockRequestStore) GetByID(ctx context.Context, requestID string) (*models.ShareApprovalRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShareApprovalRequest), args.Error(1)
}

func (m *MockRequestStore) GetByIDWithTx(ctx context.Context, tx *database.Transaction, requestID string) (*models.ShareApprovalRequest, error) {
	args := m.Called(ctx, tx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShareApprovalRequest), args.Error(1)
}

func (m *MockRequestStore) GetByShareID(ctx context.Context, shareID string) (*models.ShareApprovalRequest, error) {
	args := m.Called(ctx, shareID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShareApprovalRequest), args.Error(1)
}

func (m *MockRequestStore) ListByStatus(ctx context.Context, status models.ApprovalStatus, limit, offset int) ([]models.ShareApprovalRequest, int, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.ShareApprovalRequest), args.Int(1), args.Error(2)
}

func (m *MockRequestStore) GetExpiredPendingWithTx(ctx context.Context, tx *database.Transaction, nowMillis int64) ([]models.ShareApprovalRequest, error) {
	args := m.Called(ctx, tx, nowMillis)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ShareApprovalRequest), args.Error(1)
}

func (m *MockRequestStore) UpdateStateWithTx(ctx context.Context, tx *database.Transaction, request *models.ShareApprovalRequest) error {
	args := m.Called(ctx, tx, request)
	return args.Error(0)
}
