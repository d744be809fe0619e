package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/docushare/share-management-api/internal/database"
	"github.com/docushare/share-management-api/internal/models"
)

// MockShareStore is a mock implementation of service.ShareStore
type MockShareStore struct {
	mock.Mock
}

func (m *MockShareStore) CreateWithTx(ctx context.Context, tx *database.Transaction, share *models.DocumentShare) error {
	args := m.Called(ctx, tx, share)
	return args.Error(0)
}

func (m *MockShareStore) GetByID(ctx context.Context, shareID string) (*models.DocumentShare, error) {
	args := m.Called(ctx, shareID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DocumentShare), args.Error(1)
}

func (m *MockShareStore) GetByIDWithTx(ctx context.Context, tx *database.Transaction, shareID string) (*models.DocumentShare, error) {
	args := m.Called(ctx, tx, shareID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DocumentShare), args.Error(1)
}

func (m *MockShareStore) GetByCode(ctx context.Context, shareCode string) (*models.DocumentShare, error) {
	args := m.Called(ctx, shareCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DocumentShare), args.Error(1)
}

func (m *MockShareStore) UpdateApprovalStateWithTx(ctx context.Context, tx *database.Transaction, shareID string, requiresApproval bool, status models.ApprovalStatus, isActive bool, updatedTime int64) error {
	args := m.Called(ctx, tx, shareID, requiresApproval, status, isActive, updatedTime)
	return args.Error(0)
}

func (m *MockShareStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.DocumentShare, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.DocumentShare), args.Int(1), args.Error(2)
}
