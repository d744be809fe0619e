package service

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/docushare/share-management-api/internal/apperrors"
	"github.com/docushare/share-management-api/internal/config"
	"github.com/docushare/share-management-api/internal/models"
	"github.com/docushare/share-management-api/pkg/utils"
)

// ApprovalSettingsService owns the global approval settings singleton and
// answers the platform-wide "does this share need approval" question. The
// settings row is cached; every write path refreshes the cache.
type ApprovalSettingsService struct {
	settingsDAO SettingsStore
	cfg         *config.Config
	logger      *logrus.Logger

	mu     sync.RWMutex
	cached *models.ApprovalSettings
}

// NewApprovalSettingsService creates a new ApprovalSettingsService
func NewApprovalSettingsService(
	settingsDAO SettingsStore,
	cfg *config.Config,
	logger *logrus.Logger,
) *ApprovalSettingsService {
	return &ApprovalSettingsService{
		settingsDAO: settingsDAO,
		cfg:         cfg,
		logger:      logger,
	}
}

// GetCurrentSettings returns the settings singleton, creating it with
// defaults on first access.
func (s *ApprovalSettingsService) GetCurrentSettings(ctx context.Context) (*models.ApprovalSettings, error) {
	s.mu.RLock()
	if s.cached != nil {
		settings := *s.cached
		s.mu.RUnlock()
		return &settings, nil
	}
	s.mu.RUnlock()

	settings, err := s.loadOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	s.storeCache(settings)
	return settings, nil
}

// IsGlobalApprovalEnabled reports the master switch state
func (s *ApprovalSettingsService) IsGlobalApprovalEnabled(ctx context.Context) (bool, error) {
	settings, err := s.GetCurrentSettings(ctx)
	if err != nil {
		return false, err
	}
	return settings.GlobalApprovalEnabled, nil
}

// RequiresApproval applies the settings-level gate to a prospective share.
// When the master switch is off no share requires approval through this
// path, regardless of the force flags.
func (s *ApprovalSettingsService) RequiresApproval(ctx context.Context, share *models.DocumentShare, document *models.Document) (bool, error) {
	if document == nil {
		return false, apperrors.NewValidation("document is required")
	}

	settings, err := s.GetCurrentSettings(ctx)
	if err != nil {
		return false, err
	}
	if !settings.GlobalApprovalEnabled {
		return false, nil
	}
	if settings.ForceApprovalForAll {
		return true, nil
	}
	if settings.ForceApprovalLargeFiles && document.SizeBytes > settings.LargeFileThresholdBytes {
		return true, nil
	}
	return false, nil
}

// EnableGlobalApproval switches the approval workflow on, recording who
// enabled it and why.
func (s *ApprovalSettingsService) EnableGlobalApproval(ctx context.Context, reason, actingUserID string) (*models.ApprovalSettings, error) {
	reason = utils.SanitizeString(reason)
	if reason == "" {
		return nil, apperrors.NewValidation("a reason is required to enable global approval")
	}
	if err := utils.ValidateUserID(actingUserID); err != nil {
		return nil, err
	}

	settings, err := s.loadOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	now := utils.GetCurrentTimeMillis()
	settings.GlobalApprovalEnabled = true
	settings.EnabledByUserID = &actingUserID
	settings.EnabledTime = &now
	settings.EnabledReason = &reason
	settings.UpdatedTime = now
	if err := s.settingsDAO.Update(ctx, settings); err != nil {
		s.logger.WithError(err).Error("Failed to enable global approval")
		return nil, err
	}
	s.storeCache(settings)

	s.logger.WithFields(logrus.Fields{
		"enabled_by": actingUserID,
		"reason":     reason,
	}).Info("Global approval workflow enabled")
	return settings, nil
}

// DisableGlobalApproval switches the approval workflow off. Requests that
// are already pending continue their lifecycle untouched.
func (s *ApprovalSettingsService) DisableGlobalApproval(ctx context.Context, actingUserID string) (*models.ApprovalSettings, error) {
	if err := utils.ValidateUserID(actingUserID); err != nil {
		return nil, err
	}

	settings, err := s.loadOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	settings.GlobalApprovalEnabled = false
	settings.EnabledByUserID = nil
	settings.EnabledTime = nil
	settings.EnabledReason = nil
	settings.UpdatedTime = utils.GetCurrentTimeMillis()
	if err := s.settingsDAO.Update(ctx, settings); err != nil {
		s.logger.WithError(err).Error("Failed to disable global approval")
		return nil, err
	}
	s.storeCache(settings)

	s.logger.WithField("disabled_by", actingUserID).Info("Global approval workflow disabled")
	return settings, nil
}

// UpdateSettings applies a partial patch to the settings singleton
func (s *ApprovalSettingsService) UpdateSettings(ctx context.Context, req *models.SettingsUpdateRequest) (*models.ApprovalSettings, error) {
	if req == nil {
		return nil, apperrors.NewValidation("settings update request is required")
	}

	settings, err := s.loadOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	if req.DefaultExpirationDays != nil {
		if *req.DefaultExpirationDays < 1 {
			return nil, apperrors.NewValidation("default expiration days must be at least 1")
		}
		settings.DefaultExpirationDays = *req.DefaultExpirationDays
	}
	if req.DefaultRequiredApprovals != nil {
		if *req.DefaultRequiredApprovals < 1 {
			return nil, apperrors.NewValidation("default required approvals must be at least 1")
		}
		settings.DefaultRequiredApprovals = *req.DefaultRequiredApprovals
	}
	if req.ForceApprovalForAll != nil {
		settings.ForceApprovalForAll = *req.ForceApprovalForAll
	}
	if req.ForceApprovalLargeFiles != nil {
		settings.ForceApprovalLargeFiles = *req.ForceApprovalLargeFiles
	}
	if req.LargeFileThresholdBytes != nil {
		if *req.LargeFileThresholdBytes < 1 {
			return nil, apperrors.NewValidation("large file threshold must be positive")
		}
		settings.LargeFileThresholdBytes = *req.LargeFileThresholdBytes
	}
	if req.EmailNotifications != nil {
		settings.EmailNotifications = *req.EmailNotifications
	}

	settings.UpdatedTime = utils.GetCurrentTimeMillis()
	if err := s.settingsDAO.Update(ctx, settings); err != nil {
		s.logger.WithError(err).Error("Failed to update approval settings")
		return nil, err
	}
	s.storeCache(settings)
	return settings, nil
}

// ResetToDefaults restores the configured defaults, leaving the workflow
// disabled.
func (s *ApprovalSettingsService) ResetToDefaults(ctx context.Context) (*models.ApprovalSettings, error) {
	settings, err := s.loadOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	defaults := s.defaultSettings()
	defaults.SettingsID = settings.SettingsID
	if err := s.settingsDAO.Update(ctx, defaults); err != nil {
		s.logger.WithError(err).Error("Failed to reset approval settings")
		return nil, err
	}
	s.storeCache(defaults)

	s.logger.Info("Approval settings reset to defaults")
	return defaults, nil
}

// Invalidate drops the cached settings row so the next read hits the store
func (s *ApprovalSettingsService) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

func (s *ApprovalSettingsService) loadOrCreate(ctx context.Context) (*models.ApprovalSettings, error) {
	settings, err := s.settingsDAO.Get(ctx)
	if err == nil {
		return settings, nil
	}
	if !apperrors.IsNotFound(err) {
		s.logger.WithError(err).Error("Failed to load approval settings")
		return nil, err
	}

	settings = s.defaultSettings()
	if err := s.settingsDAO.Insert(ctx, settings); err != nil {
		// Another instance may have bootstrapped the row first.
		if existing, getErr := s.settingsDAO.Get(ctx); getErr == nil {
			return existing, nil
		}
		s.logger.WithError(err).Error("Failed to bootstrap approval settings")
		return nil, err
	}

	s.logger.Info("Bootstrapped approval settings with defaults")
	return settings, nil
}

func (s *ApprovalSettingsService) defaultSettings() *models.ApprovalSettings {
	return &models.ApprovalSettings{
		SettingsID:               models.ApprovalSettingsID,
		GlobalApprovalEnabled:    false,
		DefaultExpirationDays:    s.cfg.Approval.DefaultExpirationDays,
		DefaultRequiredApprovals: s.cfg.Approval.DefaultRequiredApprovals,
		ForceApprovalForAll:      false,
		ForceApprovalLargeFiles:  s.cfg.Approval.ForceLargeFiles,
		LargeFileThresholdBytes:  s.cfg.Approval.LargeFileThresholdBytes,
		EmailNotifications:       true,
		UpdatedTime:              utils.GetCurrentTimeMillis(),
	}
}

func (s *ApprovalSettingsService) storeCache(settings *models.ApprovalSettings) {
	copied := *settings
	s.mu.Lock()
	s.cached = &copied
	s.mu.Unlock()
}
