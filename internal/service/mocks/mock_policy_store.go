package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/docushare/share-management-api/internal/models"
)

// MockPolicyStore is a mock implementation of service.PolicyStore
type MockPolicyStore struct {
	mock.Mock
}

func (m *MockPolicyStore) Create(ctx context.Context, policy *models.ApprovalPolicy) error {
	args := m.Called(ctx, policy)
	return args.Error(0)
}

func (m *MockPolicyStore) GetByID(ctx context.Context, policyID string) (*models.ApprovalPolicy, error) {
	args := m.Called(ctx, policyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ApprovalPolicy), args.Error(1)
}

func (m *MockPolicyStore) GetByName(ctx context.Context, name string) (*models.ApprovalPolicy, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ApprovalPolicy), args.Error(1)
}

func (m *MockPolicyStore) List(ctx context.Context) ([]models.ApprovalPolicy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ApprovalPolicy), args.Error(1)
}

func (m *MockPolicyStore) ListActive(ctx context.Context, excludeGlobal bool) ([]models.ApprovalPolicy, error) {
	args := m.Called(ctx, excludeGlobal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ApprovalPolicy), args.Error(1)
}

func (m *MockPolicyStore) Update(ctx context.Context, policy *models.ApprovalPolicy) error {
	args := m.Called(ctx, policy)
	return args.Error(0)
}

func (m *MockPolicyStore) SetActive(ctx context.Context, policyID string, active bool, updatedTime int64) error {
	args := m.Called(ctx, policyID, active, updatedTime)
	return args.Error(0)
}

func (m *MockPolicyStore) Delete(ctx context.Context, policyID string) error {
	args := m.Called(ctx, policyID)
	return args.Error(0)
}

func (m *MockPolicyStore) CountPendingRequests(ctx context.Context, policyID string) (int, error) {
	args := m.Called(ctx, policyID)
	return args.Int(0), args.Error(1)
}
