package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/docushare/share-management-api/internal/database"
	"github.com/docushare/share-management-api/internal/models"
)

// MockOutboxStore is a mock implementation of service.OutboxStore
type MockOutboxStore struct {
	mock.Mock
}

func (m *MockOutboxStore) AppendWithTx(ctx context.Context, tx *database.Transaction, event *models.NotificationEvent) error {
	args := m.Called(ctx, tx, event)
	return args.Error(0)
}

func (m *MockOutboxStore) FetchPending(ctx context.Context, limit int) ([]models.NotificationEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.NotificationEvent), args.Error(1)
}

func (m *MockOutboxStore) MarkDispatched(ctx context.Context, eventID string, updatedTime int64) error {
	args := m.Called(ctx, eventID, updatedTime)
	return args.Error(0)
}

func (m *MockOutboxStore) MarkFailed(ctx context.Context, eventID string, lastError string, maxAttempts int, updatedTime int64) error {
	args := m.Called(ctx, eventID, lastError, maxAttempts, updatedTime)
	return args.Error(0)
}
