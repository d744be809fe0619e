package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/docushare/share-management-api/internal/database"
	"github.com/docushare/share-management-api/internal/models"
)

// MockDecisionStore is a mock implementation of service.DecisionStore
type MockDecisionStore struct {
	mock.Mock
}

func (m *MockDecisionStore) CreateWithTx(ctx context.Context, tx *database.Transaction, decision *models.ApprovalDecision) error {
	args := m.Called(ctx, tx, decision)
	return args.Error(0)
}

func (m *MockDecisionStore) GetByRequestID(ctx context.Context, requestID string) ([]models.ApprovalDecision, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ApprovalDecision), args.Error(1)
}

func (m *MockDecisionStore) ExistsForApprover(ctx context.Context, requestID, approverUserID string) (bool, error) {
	args := m.Called(ctx, requestID, approverUserID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDecisionStore) ExistsForApproverWithTx(ctx context.Context, tx *database.Transaction, requestID, approverUserID string) (bool, error) {
	args := m.Called(ctx, tx, requestID, approverUserID)
	return args.Bool(0), args.Error(1)
}
