package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/docushare/share-management-api/internal/apperrors"
	"github.com/docushare/share-management-api/internal/config"
	"github.com/docushare/share-management-api/internal/database"
	"github.com/docushare/share-management-api/internal/models"
	"github.com/docushare/share-management-api/pkg/utils"
)

// DocumentShareService orchestrates share creation: it consults the settings
// gate and the policy selector, persists the share in the right initial state
// and hands approval-bound shares to the request lifecycle engine.
type DocumentShareService struct {
	shareDAO        ShareStore
	documentDAO     DocumentStore
	outboxDAO       OutboxStore
	policyService   *ApprovalPolicyService
	settingsService *ApprovalSettingsService
	requestService  *ApprovalRequestService
	db              *database.DB
	cfg             *config.Config
	logger          *logrus.Logger
}

// NewDocumentShareService creates a new DocumentShareService
func NewDocumentShareService(
	shareDAO ShareStore,
	documentDAO DocumentStore,
	outboxDAO OutboxStore,
	policyService *ApprovalPolicyService,
	settingsService *ApprovalSettingsService,
	requestService *ApprovalRequestService,
	db *database.DB,
	cfg *config.Config,
	logger *logrus.Logger,
) *DocumentShareService {
	return &DocumentShareService{
		shareDAO:        shareDAO,
		documentDAO:     documentDAO,
		outboxDAO:       outboxDAO,
		policyService:   policyService,
		settingsService: settingsService,
		requestService:  requestService,
		db:              db,
		cfg:             cfg,
		logger:          logger,
	}
}

// CreateShare creates a document share. Shares that need approval are
// persisted inactive with a pending request attached; shares that do not are
// active immediately and their recipients notified.
func (s *DocumentShareService) CreateShare(ctx context.Context, req *models.ShareCreateRequest, userID string, apiKeyID *string) (*models.ShareCreateResponse, error) {
	if req == nil {
		return nil, apperrors.NewValidation("share create request is required")
	}
	if err := utils.ValidateUserID(userID); err != nil {
		return nil, err
	}
	if req.DocumentID == "" {
		return nil, apperrors.NewValidation("document ID is required")
	}

	document, err := s.documentDAO.GetByID(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}

	if req.IsDirectShare {
		if err := s.checkDirectShareAllowed(ctx, document); err != nil {
			return nil, err
		}
	}

	now := utils.GetCurrentTimeMillis()
	share := &models.DocumentShare{
		ShareID:         utils.GenerateShareID(),
		DocumentID:      document.DocumentID,
		ShareCode:       utils.GenerateShareCode(),
		CreatedByUserID: userID,
		APIKeyID:        apiKeyID,
		IsDirectShare:   req.IsDirectShare,
		ExpiresAt:       req.ExpiresAt,
		MaxViews:        req.MaxViews,
		Recipients:      models.NewStringSet(req.Recipients...),
		CreatedTime:     now,
		UpdatedTime:     now,
	}

	policy, err := s.selectGoverningPolicy(ctx, share, document)
	if err != nil {
		return nil, err
	}
	requiresApproval := policy != nil

	share.RequiresApproval = requiresApproval
	if requiresApproval {
		share.ApprovalStatus = models.ApprovalStatusPending
		share.IsActive = false
	} else {
		share.ApprovalStatus = models.ApprovalStatusNotRequired
		share.IsActive = true
	}

	err = s.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		if err := s.shareDAO.CreateWithTx(ctx, tx, share); err != nil {
			return err
		}
		if requiresApproval || share.Recipients.IsEmpty() {
			return nil
		}
		raw, err := json.Marshal(models.DocumentShareCreatedEvent{
			ShareID:         share.ShareID,
			ShareCode:       share.ShareCode,
			DocumentName:    document.Name,
			RequesterUserID: userID,
			Recipients:      []string(share.Recipients),
		})
		if err != nil {
			return fmt.Errorf("failed to marshal share created payload: %w", err)
		}
		return s.outboxDAO.AppendWithTx(ctx, tx, &models.NotificationEvent{
			EventID:     utils.GenerateEventID(),
			EventType:   models.EventDocumentShareCreated,
			Payload:     models.JSON(raw),
			Status:      models.EventStatusPending,
			CreatedTime: now,
			UpdatedTime: now,
		})
	})
	if err != nil {
		s.logger.WithError(err).WithField("document_id", req.DocumentID).Error("Failed to create document share")
		return nil, err
	}

	response := &models.ShareCreateResponse{
		Share:            share,
		RequiresApproval: requiresApproval,
	}
	if requiresApproval {
		request, err := s.requestService.CreateApprovalRequest(ctx, share.ShareID, policy.PolicyID, req.Reason)
		if err != nil {
			// The share stays inactive and pending; leaving it unshareable is
			// safer than activating it without review.
			s.logger.WithError(err).WithField("share_id", share.ShareID).Error("Share created but approval request failed")
			return nil, err
		}
		response.ApprovalRequest = request
	}

	s.logger.WithFields(logrus.Fields{
		"share_id":          share.ShareID,
		"document_id":       document.DocumentID,
		"requires_approval": requiresApproval,
		"direct_share":      req.IsDirectShare,
	}).Info("Created document share")
	return response, nil
}

// GetShare retrieves a share by ID
func (s *DocumentShareService) GetShare(ctx context.Context, shareID string) (*models.DocumentShare, error) {
	if err := utils.ValidateShareID(shareID); err != nil {
		return nil, err
	}
	return s.shareDAO.GetByID(ctx, shareID)
}

// GetShareByCode retrieves a share by its public share code. Inactive shares
// resolve but carry IsActive=false; access enforcement is the caller's job.
func (s *DocumentShareService) GetShareByCode(ctx context.Context, shareCode string) (*models.DocumentShare, error) {
	if shareCode == "" {
		return nil, apperrors.NewValidation("share code is required")
	}
	return s.shareDAO.GetByCode(ctx, shareCode)
}

// ListUserShares returns shares created by a user with the total count
func (s *DocumentShareService) ListUserShares(ctx context.Context, userID string, limit, offset int) ([]models.DocumentShare, int, error) {
	if err := utils.ValidateUserID(userID); err != nil {
		return nil, 0, err
	}
	limit = utils.ValidateLimit(limit)
	offset = utils.ValidateOffset(offset)
	return s.shareDAO.ListByUser(ctx, userID, limit, offset)
}

// selectGoverningPolicy decides whether the share needs approval and under
// which policy. Direct shares always go through the Global System Policy.
// Otherwise the settings gate is consulted first and the per-policy rules
// second; whichever says yes binds the share to a policy.
func (s *DocumentShareService) selectGoverningPolicy(ctx context.Context, share *models.DocumentShare, document *models.Document) (*models.ApprovalPolicy, error) {
	if share.IsDirectShare {
		return s.policyService.EnsureGlobalSystemPolicy(ctx)
	}

	gated, err := s.settingsService.RequiresApproval(ctx, share, document)
	if err != nil {
		return nil, err
	}

	policy, err := s.policyService.GetApplicablePolicy(ctx, share)
	if err != nil {
		return nil, err
	}
	if policy != nil {
		return policy, nil
	}
	if gated {
		// The settings gate demanded approval but no policy matched; the
		// built-in fallback carries the request.
		return s.policyService.EnsureGlobalSystemPolicy(ctx)
	}
	return nil, nil
}

// checkDirectShareAllowed enforces the hard gate on direct shares: both the
// document's bucket and its category must explicitly permit direct access.
func (s *DocumentShareService) checkDirectShareAllowed(ctx context.Context, document *models.Document) error {
	bucket, err := s.documentDAO.GetBucketByID(ctx, document.BucketID)
	if err != nil {
		return err
	}
	if !bucket.AllowDirectAccess {
		return apperrors.NewInvalidState("direct shares are not permitted for this storage bucket")
	}
	if document.CategoryID == nil {
		return apperrors.NewInvalidState("direct shares require a document category that permits direct access")
	}
	category, err := s.documentDAO.GetCategoryByID(ctx, *document.CategoryID)
	if err != nil {
		return err
	}
	if !category.AllowDirectAccess {
		return apperrors.NewInvalidState("direct shares are not permitted for this document category")
	}
	return nil
}
