package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/docushare/share-management-api/internal/models"
)

// MockSettingsStore is a mock implementation of service.SettingsStore
type MockSettingsStore struct {
	mock.Mock
}

func (m *MockSettingsStore) Get(ctx context.Context) (*models.ApprovalSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ApprovalSettings), args.Error(1)
}

func (m *MockSettingsStore) Insert(ctx context.Context, settings *models.ApprovalSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func (m *MockSettingsStore) Update(ctx context.Context, settings *models.ApprovalSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}
