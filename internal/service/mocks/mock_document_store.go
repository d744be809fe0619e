package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/docushare/share-management-api/internal/models"
)

// MockDocumentStore is a mock implementation of service.DocumentStore
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) GetByID(ctx context.Context, documentID string) (*models.Document, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockDocumentStore) GetCategoryByID(ctx context.Context, categoryID string) (*models.Category, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockDocumentStore) GetBucketByID(ctx context.Context, bucketID string) (*models.StorageBucket, error) {
	args := m.Called(ctx, bucketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StorageBucket), args.Error(1)
}
