package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/docushare/share-management-api/internal/apperrors"
	"github.com/docushare/share-management-api/internal/models"
	"github.com/docushare/share-management-api/internal/service/mocks"
)

func newSettingsServiceUnderTest() (*ApprovalSettingsService, *mocks.MockSettingsStore) {
	settingsStore := &mocks.MockSettingsStore{}
	svc := NewApprovalSettingsService(settingsStore, newTestConfig(), newTestLogger())
	return svc, settingsStore
}

func newTestSettings() *models.ApprovalSettings {
	return &models.ApprovalSettings{
		SettingsID:               models.ApprovalSettingsID,
		GlobalApprovalEnabled:    true,
		DefaultExpirationDays:    3,
		DefaultRequiredApprovals: 1,
		ForceApprovalLargeFiles:  true,
		LargeFileThresholdBytes:  100 * 1024 * 1024,
		EmailNotifications:       true,
	}
}

func TestGetCurrentSettings_BootstrapsDefaults(t *testing.T) {
	svc, settingsStore := newSettingsServiceUnderTest()
	settingsStore.On("Get", mock.Anything).Return(nil, apperrors.NewNotFound("record", "missing"))
	settingsStore.On("Insert", mock.Anything, mock.AnythingOfType("*models.ApprovalSettings")).Return(nil)

	settings, err := svc.GetCurrentSettings(context.Background())

	assert.NoError(t, err)
	assert.False(t, settings.GlobalApprovalEnabled)
	assert.True(t, settings.ForceApprovalLargeFiles)
	assert.Equal(t, int64(100*1024*1024), settings.LargeFileThresholdBytes)
	assert.Equal(t, models.ApprovalSettingsID, settings.SettingsID)
	settingsStore.AssertExpectations(t)
}

func TestGetCurrentSettings_CachesAfterFirstLoad(t *testing.T) {
	svc, settingsStore := newSettingsServiceUnderTest()
	settingsStore.On("Get", mock.Anything).Return(newTestSettings(), nil).Once()

	_, err := svc.GetCurrentSettings(context.Background())
	assert.NoError(t, err)

	// Second read is served from the cache; the store is not consulted.
	_, err = svc.GetCurrentSettings(context.Background())
	assert.NoError(t, err)
	settingsStore.AssertNumberOfCalls(t, "Get", 1)
}

func TestInvalidate_DropsCache(t *testing.T) {
	svc, settingsStore := newSettingsServiceUnderTest()
	settingsStore.On("Get", mock.Anything).Return(newTestSettings(), nil).Twice()

	_, _ = svc.GetCurrentSettings(context.Background())
	svc.Invalidate()
	_, _ = svc.GetCurrentSettings(context.Background())

	settingsStore.AssertNumberOfCalls(t, "Get", 2)
}

func TestRequiresApproval_DisabledOverridesForceAll(t *testing.T) {
	svc, settingsStore := newSettingsServiceUnderTest()
	settings := newTestSettings()
	settings.GlobalApprovalEnabled = false
	settings.ForceApprovalForAll = true
	settingsStore.On("Get", mock.Anything).Return(settings, nil)

	required, err := svc.RequiresApproval(context.Background(), newTestShare(), newTestDocument())

	assert.NoError(t, err)
	assert.False(t, required)
}

func TestRequiresApproval_ForceAll(t *testing.T) {
	svc, settingsStore := newSettingsServiceUnderTest()
	settings := newTestSettings()
	settings.ForceApprovalForAll = true
	settingsStore.On("Get", mock.Anything).Return(settings, nil)

	required, err := svc.RequiresApproval(context.Background(), newTestShare(), newTestDocument())

	assert.NoError(t, err)
	assert.True(t, required)
}

func TestRequiresApproval_LargeFileThreshold(t *testing.T) {
	svc, settingsStore := newSettingsServiceUnderTest()
	settingsStore.On("Get", mock.Anything).Return(newTestSettings(), nil)

	small := newTestDocument()
	required, err := svc.RequiresApproval(context.Background(), newTestShare(), small)
	assert.NoError(t, err)
	assert.False(t, required)

	large := newTestDocument()
	large.SizeBytes = 150 * 1024 * 1024
	required, err = svc.RequiresApproval(context.Background(), newTestShare(), large)
	assert.NoError(t, err)
	assert.True(t, required)
}

func TestEnableGlobalApproval_RequiresReason(t *testing.T) {
	svc, _ := newSettingsServiceUnderTest()

	settings, err := svc.EnableGlobalApproval(context.Background(), "  ", "USER-ADMIN")

	assert.Nil(t, settings)
	assert.True(t, apperrors.IsValidation(err))
}

func TestEnableGlobalApproval_RecordsActorAndReason(t *testing.T) {
	svc, settingsStore := newSettingsServiceUnderTest()
	stored := newTestSettings()
	stored.GlobalApprovalEnabled = false
	settingsStore.On("Get", mock.Anything).Return(stored, nil)
	settingsStore.On("Update", mock.Anything, mock.AnythingOfType("*models.ApprovalSettings")).Return(nil)

	settings, err := svc.EnableGlobalApproval(context.Background(), "compliance audit", "USER-ADMIN")

	assert.NoError(t, err)
	assert.True(t, settings.GlobalApprovalEnabled)
	assert.Equal(t, "USER-ADMIN", *settings.EnabledByUserID)
	assert.Equal(t, "compliance audit", *settings.EnabledReason)
	assert.NotNil(t, settings.EnabledTime)
}

func TestDisableGlobalApproval_ClearsEnablement(t *testing.T) {
	svc, settingsStore := newSettingsServiceUnderTest()
	settingsStore.On("Get", mock.Anything).Return(newTestSettings(), nil)
	settingsStore.On("Update", mock.Anything, mock.AnythingOfType("*models.ApprovalSettings")).Return(nil)

	settings, err := svc.DisableGlobalApproval(context.Background(), "USER-ADMIN")

	assert.NoError(t, err)
	assert.False(t, settings.GlobalApprovalEnabled)
	assert.Nil(t, settings.EnabledByUserID)
	assert.Nil(t, settings.EnabledReason)
	assert.Nil(t, settings.EnabledTime)
}

func TestUpdateSettings_PartialPatch(t *testing.T) {
	svc, settingsStore := newSettingsServiceUnderTest()
	settingsStore.On("Get", mock.Anything).Return(newTestSettings(), nil)
	settingsStore.On("Update", mock.Anything, mock.AnythingOfType("*models.ApprovalSettings")).Return(nil)

	threshold := int64(50 * 1024 * 1024)
	settings, err := svc.UpdateSettings(context.Background(), &models.SettingsUpdateRequest{
		LargeFileThresholdBytes: &threshold,
	})

	assert.NoError(t, err)
	assert.Equal(t, threshold, settings.LargeFileThresholdBytes)
	// Untouched fields keep their stored values
	assert.Equal(t, 3, settings.DefaultExpirationDays)
	assert.True(t, settings.EmailNotifications)
}

func TestUpdateSettings_RejectsNonPositiveThreshold(t *testing.T) {
	svc, settingsStore := newSettingsServiceUnderTest()
	settingsStore.On("Get", mock.Anything).Return(newTestSettings(), nil)

	threshold := int64(0)
	settings, err := svc.UpdateSettings(context.Background(), &models.SettingsUpdateRequest{
		LargeFileThresholdBytes: &threshold,
	})

	assert.Nil(t, settings)
	assert.True(t, apperrors.IsValidation(err))
}

func TestResetToDefaults_DisablesWorkflow(t *testing.T) {
	svc, settingsStore := newSettingsServiceUnderTest()
	settingsStore.On("Get", mock.Anything).Return(newTestSettings(), nil)
	settingsStore.On("Update", mock.Anything, mock.AnythingOfType("*models.ApprovalSettings")).Return(nil)

	settings, err := svc.ResetToDefaults(context.Background())

	assert.NoError(t, err)
	assert.False(t, settings.GlobalApprovalEnabled)
	assert.Equal(t, 3, settings.DefaultExpirationDays)
	assert.True(t, settings.ForceApprovalLargeFiles)
}
