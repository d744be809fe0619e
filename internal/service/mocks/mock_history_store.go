package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/docushare/share-management-api/internal/database"
	"github.com/docushare/share-management-api/internal/models"
)

// MockHistoryStore is a mock implementation of service.HistoryStore
type MockHistoryStore struct {
	mock.Mock
}

func (m *MockHistoryStore) CreateWithTx(ctx context.Context, tx *database.Transaction, history *models.ApprovalHistory) error {
	args := m.Called(ctx, tx, history)
	return args.Error(0)
}

func (m *MockHistoryStore) GetByRequestID(ctx context.Context, requestID string) ([]models.ApprovalHistory, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ApprovalHistory), args.Error(1)
}
