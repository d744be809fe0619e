package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/docushare/share-management-api/internal/apperrors"
	"github.com/docushare/share-management-api/internal/config"
	"github.com/docushare/share-management-api/internal/models"
	"github.com/docushare/share-management-api/pkg/utils"
)

// ApprovalPolicyService handles business logic for approval policies,
// including selection of the policy that governs a new document share.
type ApprovalPolicyService struct {
	policyDAO   PolicyStore
	documentDAO DocumentStore
	cfg         *config.Config
	logger      *logrus.Logger
}

// NewApprovalPolicyService creates a new ApprovalPolicyService
func NewApprovalPolicyService(
	policyDAO PolicyStore,
	documentDAO DocumentStore,
	cfg *config.Config,
	logger *logrus.Logger,
) *ApprovalPolicyService {
	return &ApprovalPolicyService{
		policyDAO:   policyDAO,
		documentDAO: documentDAO,
		cfg:         cfg,
		logger:      logger,
	}
}

// CreatePolicy creates a new approval policy
func (s *ApprovalPolicyService) CreatePolicy(ctx context.Context, req *models.PolicyCreateRequest) (*models.ApprovalPolicy, error) {
	if req == nil {
		return nil, apperrors.NewValidation("policy create request is required")
	}
	name := utils.SanitizeString(req.Name)
	if name == "" {
		return nil, apperrors.NewValidation("policy name is required")
	}
	if strings.EqualFold(name, models.GlobalSystemPolicyName) {
		return nil, apperrors.NewValidation("policy name '" + models.GlobalSystemPolicyName + "' is reserved")
	}
	if req.Priority < 0 {
		return nil, apperrors.NewValidation("policy priority must not be negative")
	}

	// Reject duplicate names up front; the unique index is the backstop.
	if _, err := s.policyDAO.GetByName(ctx, name); err == nil {
		return nil, apperrors.NewValidation("policy name '" + name + "' already exists")
	} else if !apperrors.IsNotFound(err) {
		s.logger.WithError(err).Error("Failed to check policy name uniqueness")
		return nil, err
	}

	now := utils.GetCurrentTimeMillis()
	policy := &models.ApprovalPolicy{
		PolicyID:              utils.GeneratePolicyID(),
		Name:                  name,
		Description:           req.Description,
		Active:                true,
		Priority:              req.Priority,
		RequireApproval:       true,
		ApprovalTimeoutHours:  s.cfg.Approval.GlobalPolicyTimeoutHours,
		RequiredApprovalCount: 1,
		CategoryFilter:        models.NewStringSet(req.CategoryFilter...),
		FileTypeFilter:        normalizeFileTypes(req.FileTypeFilter),
		ProviderFilter:        models.NewStringSet(req.ProviderFilter...),
		UserFilter:            models.NewStringSet(req.UserFilter...),
		APIKeyFilter:          models.NewStringSet(req.APIKeyFilter...),
		FileSizeLimitMB:       req.FileSizeLimitMB,
		CreatedTime:           now,
		UpdatedTime:           now,
	}
	if req.Active != nil {
		policy.Active = *req.Active
	}
	if req.RequireApproval != nil {
		policy.RequireApproval = *req.RequireApproval
	}
	if req.ApprovalTimeoutHours < 0 {
		return nil, apperrors.NewValidation("approval timeout must be positive")
	}
	if req.ApprovalTimeoutHours > 0 {
		policy.ApprovalTimeoutHours = req.ApprovalTimeoutHours
	}
	if req.RequiredApprovalCount < 0 {
		return nil, apperrors.NewValidation("required approval count must be at least 1")
	}
	if req.RequiredApprovalCount > 0 {
		policy.RequiredApprovalCount = req.RequiredApprovalCount
	}
	if policy.FileSizeLimitMB != nil && *policy.FileSizeLimitMB <= 0 {
		return nil, apperrors.NewValidation("file size limit must be positive")
	}

	if err := s.policyDAO.Create(ctx, policy); err != nil {
		s.logger.WithError(err).Error("Failed to create approval policy")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"policy_id": policy.PolicyID,
		"name":      policy.Name,
		"priority":  policy.Priority,
	}).Info("Created approval policy")
	return policy, nil
}

// GetPolicy retrieves an approval policy by ID
func (s *ApprovalPolicyService) GetPolicy(ctx context.Context, policyID string) (*models.ApprovalPolicy, error) {
	if err := utils.ValidatePolicyID(policyID); err != nil {
		return nil, err
	}
	return s.policyDAO.GetByID(ctx, policyID)
}

// ListPolicies returns all approval policies
func (s *ApprovalPolicyService) ListPolicies(ctx context.Context) ([]models.ApprovalPolicy, error) {
	return s.policyDAO.List(ctx)
}

// UpdatePolicy applies a partial update to an approval policy. The Global
// System Policy accepts priority and timeout changes but its name and its
// require-approval flag are immutable.
func (s *ApprovalPolicyService) UpdatePolicy(ctx context.Context, policyID string, req *models.PolicyUpdateRequest) (*models.ApprovalPolicy, error) {
	if err := utils.ValidatePolicyID(policyID); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperrors.NewValidation("policy update request is required")
	}

	policy, err := s.policyDAO.GetByID(ctx, policyID)
	if err != nil {
		return nil, err
	}

	if policy.IsGlobalSystemPolicy() {
		if req.Name != nil && *req.Name != models.GlobalSystemPolicyName {
			return nil, apperrors.NewInvalidState("the Global System Policy cannot be renamed")
		}
		if req.RequireApproval != nil && !*req.RequireApproval {
			return nil, apperrors.NewInvalidState("the Global System Policy must keep requiring approval")
		}
	}

	if req.Name != nil {
		name := utils.SanitizeString(*req.Name)
		if name == "" {
			return nil, apperrors.NewValidation("policy name must not be empty")
		}
		if !policy.IsGlobalSystemPolicy() && strings.EqualFold(name, models.GlobalSystemPolicyName) {
			return nil, apperrors.NewValidation("policy name '" + models.GlobalSystemPolicyName + "' is reserved")
		}
		policy.Name = name
	}
	if req.Description != nil {
		policy.Description = req.Description
	}
	if req.Priority != nil {
		if *req.Priority < 0 {
			return nil, apperrors.NewValidation("policy priority must not be negative")
		}
		policy.Priority = *req.Priority
	}
	if req.RequireApproval != nil {
		policy.RequireApproval = *req.RequireApproval
	}
	if req.ApprovalTimeoutHours != nil {
		if *req.ApprovalTimeoutHours <= 0 {
			return nil, apperrors.NewValidation("approval timeout must be positive")
		}
		policy.ApprovalTimeoutHours = *req.ApprovalTimeoutHours
	}
	if req.RequiredApprovalCount != nil {
		if *req.RequiredApprovalCount < 1 {
			return nil, apperrors.NewValidation("required approval count must be at least 1")
		}
		policy.RequiredApprovalCount = *req.RequiredApprovalCount
	}
	if req.CategoryFilter != nil {
		policy.CategoryFilter = models.NewStringSet(req.CategoryFilter...)
	}
	if req.FileTypeFilter != nil {
		policy.FileTypeFilter = normalizeFileTypes(req.FileTypeFilter)
	}
	if req.ProviderFilter != nil {
		policy.ProviderFilter = models.NewStringSet(req.ProviderFilter...)
	}
	if req.UserFilter != nil {
		policy.UserFilter = models.NewStringSet(req.UserFilter...)
	}
	if req.APIKeyFilter != nil {
		policy.APIKeyFilter = models.NewStringSet(req.APIKeyFilter...)
	}
	if req.FileSizeLimitMB != nil {
		if *req.FileSizeLimitMB <= 0 {
			policy.FileSizeLimitMB = nil
		} else {
			policy.FileSizeLimitMB = req.FileSizeLimitMB
		}
	}

	policy.UpdatedTime = utils.GetCurrentTimeMillis()
	if err := s.policyDAO.Update(ctx, policy); err != nil {
		s.logger.WithError(err).WithField("policy_id", policyID).Error("Failed to update approval policy")
		return nil, err
	}
	return policy, nil
}

// ToggleActive activates or deactivates a policy. The Global System Policy
// can never be toggled.
func (s *ApprovalPolicyService) ToggleActive(ctx context.Context, policyID string, active bool) error {
	if err := utils.ValidatePolicyID(policyID); err != nil {
		return err
	}

	policy, err := s.policyDAO.GetByID(ctx, policyID)
	if err != nil {
		return err
	}
	if policy.IsGlobalSystemPolicy() {
		return apperrors.NewInvalidState("the Global System Policy cannot be activated or deactivated")
	}

	if err := s.policyDAO.SetActive(ctx, policyID, active, utils.GetCurrentTimeMillis()); err != nil {
		s.logger.WithError(err).WithField("policy_id", policyID).Error("Failed to toggle approval policy")
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"policy_id": policyID,
		"active":    active,
	}).Info("Toggled approval policy")
	return nil
}

// DeletePolicy removes a policy. The Global System Policy can never be
// deleted, and neither can a policy that pending requests still reference.
func (s *ApprovalPolicyService) DeletePolicy(ctx context.Context, policyID string) error {
	if err := utils.ValidatePolicyID(policyID); err != nil {
		return err
	}

	policy, err := s.policyDAO.GetByID(ctx, policyID)
	if err != nil {
		return err
	}
	if policy.IsGlobalSystemPolicy() {
		return apperrors.NewInvalidState("the Global System Policy cannot be deleted")
	}

	pending, err := s.policyDAO.CountPendingRequests(ctx, policyID)
	if err != nil {
		s.logger.WithError(err).WithField("policy_id", policyID).Error("Failed to count pending requests for policy")
		return err
	}
	if pending > 0 {
		return apperrors.NewInvalidState("policy has pending approval requests and cannot be deleted")
	}

	if err := s.policyDAO.Delete(ctx, policyID); err != nil {
		s.logger.WithError(err).WithField("policy_id", policyID).Error("Failed to delete approval policy")
		return err
	}
	s.logger.WithField("policy_id", policyID).Info("Deleted approval policy")
	return nil
}

// GetApplicablePolicy returns the highest-priority active policy whose rules
// match the share, falling back to the Global System Policy when no custom
// policy matches and the global policy is active. Returns nil when no policy
// applies.
func (s *ApprovalPolicyService) GetApplicablePolicy(ctx context.Context, share *models.DocumentShare) (*models.ApprovalPolicy, error) {
	if share == nil {
		return nil, apperrors.NewValidation("share is required")
	}

	document, err := s.documentDAO.GetByID(ctx, share.DocumentID)
	if err != nil {
		return nil, err
	}

	policies, err := s.policyDAO.ListActive(ctx, true)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list active approval policies")
		return nil, err
	}
	for i := range policies {
		if EvaluatePolicy(&policies[i], document, share) {
			return &policies[i], nil
		}
	}

	global, err := s.policyDAO.GetByID(ctx, models.GlobalSystemPolicyID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if global.Active && EvaluatePolicy(global, document, share) {
		return global, nil
	}
	return nil, nil
}

// GetApplicablePolicies returns every active policy whose rules match the
// share, sorted by ascending priority. The Global System Policy sorts last
// by virtue of its priority.
func (s *ApprovalPolicyService) GetApplicablePolicies(ctx context.Context, share *models.DocumentShare) ([]models.ApprovalPolicy, error) {
	if share == nil {
		return nil, apperrors.NewValidation("share is required")
	}

	document, err := s.documentDAO.GetByID(ctx, share.DocumentID)
	if err != nil {
		return nil, err
	}

	policies, err := s.policyDAO.ListActive(ctx, false)
	if err != nil {
		return nil, err
	}
	matched := make([]models.ApprovalPolicy, 0, len(policies))
	for i := range policies {
		if EvaluatePolicy(&policies[i], document, share) {
			matched = append(matched, policies[i])
		}
	}
	return matched, nil
}

// GetGlobalSystemPolicy returns the built-in fallback policy
func (s *ApprovalPolicyService) GetGlobalSystemPolicy(ctx context.Context) (*models.ApprovalPolicy, error) {
	return s.policyDAO.GetByID(ctx, models.GlobalSystemPolicyID)
}

// EnsureGlobalSystemPolicy creates the built-in fallback policy if it does
// not exist and reactivates it if something switched it off. Safe to call
// from concurrent instances on startup.
func (s *ApprovalPolicyService) EnsureGlobalSystemPolicy(ctx context.Context) (*models.ApprovalPolicy, error) {
	policy, err := s.policyDAO.GetByID(ctx, models.GlobalSystemPolicyID)
	if err != nil && apperrors.IsNotFound(err) {
		policy, err = s.policyDAO.GetByName(ctx, models.GlobalSystemPolicyName)
	}
	if err == nil {
		if !policy.Active {
			s.logger.WithField("policy_id", policy.PolicyID).Warn("Global System Policy was inactive; reactivating")
			if err := s.policyDAO.SetActive(ctx, policy.PolicyID, true, utils.GetCurrentTimeMillis()); err != nil {
				return nil, err
			}
			policy.Active = true
		}
		return policy, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}

	now := utils.GetCurrentTimeMillis()
	description := "Built-in fallback policy that governs shares no custom policy matches"
	policy = &models.ApprovalPolicy{
		PolicyID:              models.GlobalSystemPolicyID,
		Name:                  models.GlobalSystemPolicyName,
		Description:           &description,
		Active:                true,
		Priority:              s.cfg.Approval.GlobalPolicyPriority,
		RequireApproval:       true,
		ApprovalTimeoutHours:  s.cfg.Approval.GlobalPolicyTimeoutHours,
		RequiredApprovalCount: s.cfg.Approval.GlobalPolicyRequiredApprovals,
		CreatedTime:           now,
		UpdatedTime:           now,
	}
	if err := s.policyDAO.Create(ctx, policy); err != nil {
		// Another instance may have won the bootstrap race.
		if existing, getErr := s.policyDAO.GetByID(ctx, models.GlobalSystemPolicyID); getErr == nil {
			return existing, nil
		}
		s.logger.WithError(err).Error("Failed to create Global System Policy")
		return nil, err
	}

	s.logger.WithField("policy_id", policy.PolicyID).Info("Created Global System Policy")
	return policy, nil
}

func normalizeFileTypes(values []string) models.StringSet {
	normalized := make([]string, 0, len(values))
	for _, v := range values {
		normalized = append(normalized, utils.NormalizeFileExtension(v))
	}
	return models.NewStringSet(normalized...)
}
