package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/docushare/share-management-api/internal/apperrors"
	"github.com/docushare/share-management-api/internal/database"
	"github.com/docushare/share-management-api/internal/models"
)

// DocumentDAO provides the read accessors for documents, categories and
// buckets. Document CRUD itself belongs to an external subsystem; the
// approval engine only reads the metadata its rules consult.
type DocumentDAO struct {
	db *database.DB
}

// NewDocumentDAO creates a new DocumentDAO instance
func NewDocumentDAO(db *database.DB) *DocumentDAO {
	return &DocumentDAO{db: db}
}

// GetByID retrieves a document by ID
func (dao *DocumentDAO) GetByID(ctx context.Context, documentID string) (*models.Document, error) {
	query := `
		SELECT DOCUMENT_ID, NAME, CATEGORY_ID, STORAGE_PROVIDER_ID, BUCKET_ID,
		       FILE_EXTENSION, SIZE_BYTES, OWNER_USER_ID, CREATED_TIME
		FROM DOCUMENT
		WHERE DOCUMENT_ID = ?
	`

	var doc models.Document
	err := dao.db.GetContext(ctx, &doc, query, documentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("document", documentID)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return &doc, nil
}

// GetCategoryByID retrieves a document category by ID
func (dao *DocumentDAO) GetCategoryByID(ctx context.Context, categoryID string) (*models.Category, error) {
	query := `
		SELECT CATEGORY_ID, NAME, ALLOW_DIRECT_ACCESS
		FROM DOCUMENT_CATEGORY
		WHERE CATEGORY_ID = ?
	`

	var category models.Category
	err := dao.db.GetContext(ctx, &category, query, categoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("category", categoryID)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return &category, nil
}

// GetBucketByID retrieves a storage bucket by ID
func (dao *DocumentDAO) GetBucketByID(ctx context.Context, bucketID string) (*models.StorageBucket, error) {
	query := `
		SELECT BUCKET_ID, NAME, PROVIDER_ID, ALLOW_DIRECT_ACCESS
		FROM STORAGE_BUCKET
		WHERE BUCKET_ID = ?
	`

	var bucket models.StorageBucket
	err := dao.db.GetContext(ctx, &bucket, query, bucketID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("storage bucket", bucketID)
		}
		return nil, fmt.Errorf("failed to get storage bucket: %w", err)
	}

	return &bucket, nil
}
