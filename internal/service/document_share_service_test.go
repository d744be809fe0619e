package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/docushare/share-management-api/internal/apperrors"
	"github.com/docushare/share-management-api/internal/models"
	"github.com/docushare/share-management-api/internal/service/mocks"
)

type shareServiceFixture struct {
	svc      *DocumentShareService
	shares   *mocks.MockShareStore
	docs     *mocks.MockDocumentStore
	outbox   *mocks.MockOutboxStore
	policies *mocks.MockPolicyStore
	settings *mocks.MockSettingsStore
	requests *mocks.MockRequestStore
	history  *mocks.MockHistoryStore
	users    *mocks.MockUserStore
}

func newShareServiceUnderTest(t *testing.T) (*shareServiceFixture, sqlmock.Sqlmock) {
	db, sqlMock := newTestDB(t)
	cfg := newTestConfig()
	logger := newTestLogger()
	f := &shareServiceFixture{
		shares:   &mocks.MockShareStore{},
		docs:     &mocks.MockDocumentStore{},
		outbox:   &mocks.MockOutboxStore{},
		policies: &mocks.MockPolicyStore{},
		settings: &mocks.MockSettingsStore{},
		requests: &mocks.MockRequestStore{},
		history:  &mocks.MockHistoryStore{},
		users:    &mocks.MockUserStore{},
	}
	policyService := NewApprovalPolicyService(f.policies, f.docs, cfg, logger)
	settingsService := NewApprovalSettingsService(f.settings, cfg, logger)
	requestService := NewApprovalRequestService(
		f.requests, &mocks.MockDecisionStore{}, f.history, f.shares, f.policies,
		f.docs, f.users, f.outbox, db, cfg, logger,
	)
	f.svc = NewDocumentShareService(
		f.shares, f.docs, f.outbox, policyService, settingsService,
		requestService, db, cfg, logger,
	)
	return f, sqlMock
}

func disabledSettings() *models.ApprovalSettings {
	settings := newTestSettings()
	settings.GlobalApprovalEnabled = false
	return settings
}

func TestCreateShare_NoApprovalActivatesImmediately(t *testing.T) {
	f, sqlMock := newShareServiceUnderTest(t)
	document := newTestDocument()

	f.docs.On("GetByID", mock.Anything, document.DocumentID).Return(document, nil)
	f.settings.On("Get", mock.Anything).Return(disabledSettings(), nil)
	f.policies.On("ListActive", mock.Anything, true).Return([]models.ApprovalPolicy{}, nil)
	f.policies.On("GetByID", mock.Anything, models.GlobalSystemPolicyID).Return(nil, apperrors.NewNotFound("approval policy", models.GlobalSystemPolicyID))

	sqlMock.ExpectBegin()
	f.shares.On("CreateWithTx", mock.Anything, mock.Anything, mock.MatchedBy(func(share *models.DocumentShare) bool {
		return share.IsActive && share.ApprovalStatus == models.ApprovalStatusNotRequired && !share.RequiresApproval
	})).Return(nil)
	f.outbox.On("AppendWithTx", mock.Anything, mock.Anything, mock.MatchedBy(func(e *models.NotificationEvent) bool {
		return e.EventType == models.EventDocumentShareCreated
	})).Return(nil)
	sqlMock.ExpectCommit()

	response, err := f.svc.CreateShare(context.Background(), &models.ShareCreateRequest{
		DocumentID: document.DocumentID,
		Recipients: []string{"alice@example.com"},
	}, "USER-1", nil)

	assert.NoError(t, err)
	assert.False(t, response.RequiresApproval)
	assert.True(t, response.Share.IsActive)
	assert.Nil(t, response.ApprovalRequest)
	f.outbox.AssertNumberOfCalls(t, "AppendWithTx", 1)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestCreateShare_NoRecipientsNoEvent(t *testing.T) {
	f, sqlMock := newShareServiceUnderTest(t)
	document := newTestDocument()

	f.docs.On("GetByID", mock.Anything, document.DocumentID).Return(document, nil)
	f.settings.On("Get", mock.Anything).Return(disabledSettings(), nil)
	f.policies.On("ListActive", mock.Anything, true).Return([]models.ApprovalPolicy{}, nil)
	f.policies.On("GetByID", mock.Anything, models.GlobalSystemPolicyID).Return(nil, apperrors.NewNotFound("approval policy", models.GlobalSystemPolicyID))

	sqlMock.ExpectBegin()
	f.shares.On("CreateWithTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sqlMock.ExpectCommit()

	_, err := f.svc.CreateShare(context.Background(), &models.ShareCreateRequest{DocumentID: document.DocumentID}, "USER-1", nil)

	assert.NoError(t, err)
	f.outbox.AssertNotCalled(t, "AppendWithTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateShare_MatchingPolicyHoldsShareEvenWhenGateDisabled(t *testing.T) {
	f, sqlMock := newShareServiceUnderTest(t)
	document := newTestDocument()
	policy := newTestPolicy()

	f.docs.On("GetByID", mock.Anything, document.DocumentID).Return(document, nil)
	f.settings.On("Get", mock.Anything).Return(disabledSettings(), nil)
	f.policies.On("ListActive", mock.Anything, true).Return([]models.ApprovalPolicy{*policy}, nil)
	f.policies.On("GetByID", mock.Anything, policy.PolicyID).Return(policy, nil)
	f.requests.On("GetByShareID", mock.Anything, mock.AnythingOfType("string")).Return(nil, apperrors.NewNotFound("record", "missing"))
	f.users.On("GetRoleMemberIDs", mock.Anything, "Admin").Return([]string{"USER-ADMIN-1"}, nil)
	f.shares.On("GetByID", mock.Anything, mock.AnythingOfType("string")).Return(newTestShare(), nil)

	// The share insert and the approval request each commit in their own
	// transaction.
	sqlMock.ExpectBegin()
	f.shares.On("CreateWithTx", mock.Anything, mock.Anything, mock.MatchedBy(func(share *models.DocumentShare) bool {
		return !share.IsActive && share.ApprovalStatus == models.ApprovalStatusPending && share.RequiresApproval
	})).Return(nil)
	sqlMock.ExpectCommit()
	sqlMock.ExpectBegin()
	f.requests.On("CreateWithTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.history.On("CreateWithTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.shares.On("UpdateApprovalStateWithTx", mock.Anything, mock.Anything, mock.AnythingOfType("string"), true, models.ApprovalStatusPending, false, mock.AnythingOfType("int64")).Return(nil)
	f.outbox.On("AppendWithTx", mock.Anything, mock.Anything, mock.MatchedBy(func(e *models.NotificationEvent) bool {
		return e.EventType == models.EventApprovalRequestCreated
	})).Return(nil)
	sqlMock.ExpectCommit()

	response, err := f.svc.CreateShare(context.Background(), &models.ShareCreateRequest{
		DocumentID: document.DocumentID,
		Recipients: []string{"alice@example.com"},
		Reason:     "quarterly numbers",
	}, "USER-1", nil)

	assert.NoError(t, err)
	assert.True(t, response.RequiresApproval)
	assert.False(t, response.Share.IsActive)
	assert.NotNil(t, response.ApprovalRequest)
	assert.Equal(t, models.ApprovalStatusPending, response.ApprovalRequest.Status)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestCreateShare_GateWithoutPolicyMatchFallsBackToGlobal(t *testing.T) {
	f, sqlMock := newShareServiceUnderTest(t)
	document := newTestDocument()
	settings := newTestSettings()
	settings.ForceApprovalForAll = true
	global := newTestPolicy()
	global.PolicyID = models.GlobalSystemPolicyID
	global.Name = models.GlobalSystemPolicyName
	// Size-limited above the 2MB test document, so the selector's rule pass
	// says no and only the settings gate binds the share to the fallback.
	global.FileSizeLimitMB = int64Ptr(500)

	f.docs.On("GetByID", mock.Anything, document.DocumentID).Return(document, nil)
	f.settings.On("Get", mock.Anything).Return(settings, nil)
	f.policies.On("ListActive", mock.Anything, true).Return([]models.ApprovalPolicy{}, nil)
	// The selector probes the global policy but its rules do not match an
	// unscoped small file; the gate then binds the share to it directly.
	f.policies.On("GetByID", mock.Anything, models.GlobalSystemPolicyID).Return(global, nil)
	f.requests.On("GetByShareID", mock.Anything, mock.AnythingOfType("string")).Return(nil, apperrors.NewNotFound("record", "missing"))
	f.users.On("GetRoleMemberIDs", mock.Anything, "Admin").Return([]string{"USER-ADMIN-1"}, nil)
	f.shares.On("GetByID", mock.Anything, mock.AnythingOfType("string")).Return(newTestShare(), nil)

	sqlMock.ExpectBegin()
	f.shares.On("CreateWithTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sqlMock.ExpectCommit()
	sqlMock.ExpectBegin()
	f.requests.On("CreateWithTx", mock.Anything, mock.Anything, mock.MatchedBy(func(r *models.ShareApprovalRequest) bool {
		return r.ApprovalPolicyID == models.GlobalSystemPolicyID
	})).Return(nil)
	f.history.On("CreateWithTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.shares.On("UpdateApprovalStateWithTx", mock.Anything, mock.Anything, mock.AnythingOfType("string"), true, models.ApprovalStatusPending, false, mock.AnythingOfType("int64")).Return(nil)
	f.outbox.On("AppendWithTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sqlMock.ExpectCommit()

	response, err := f.svc.CreateShare(context.Background(), &models.ShareCreateRequest{DocumentID: document.DocumentID}, "USER-1", nil)

	assert.NoError(t, err)
	assert.True(t, response.RequiresApproval)
	assert.Equal(t, models.GlobalSystemPolicyID, response.ApprovalRequest.ApprovalPolicyID)
}

func TestCreateShare_DirectShareRequiresBucketPermission(t *testing.T) {
	f, _ := newShareServiceUnderTest(t)
	document := newTestDocument()

	f.docs.On("GetByID", mock.Anything, document.DocumentID).Return(document, nil)
	f.docs.On("GetBucketByID", mock.Anything, document.BucketID).Return(&models.StorageBucket{
		BucketID:          document.BucketID,
		AllowDirectAccess: false,
	}, nil)

	response, err := f.svc.CreateShare(context.Background(), &models.ShareCreateRequest{
		DocumentID:    document.DocumentID,
		IsDirectShare: true,
	}, "USER-1", nil)

	assert.Nil(t, response)
	assert.True(t, apperrors.IsInvalidState(err))
	f.shares.AssertNotCalled(t, "CreateWithTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateShare_DirectShareRequiresCategoryPermission(t *testing.T) {
	f, _ := newShareServiceUnderTest(t)
	document := newTestDocument()
	categoryID := "CATEGORY-1"
	document.CategoryID = &categoryID

	f.docs.On("GetByID", mock.Anything, document.DocumentID).Return(document, nil)
	f.docs.On("GetBucketByID", mock.Anything, document.BucketID).Return(&models.StorageBucket{
		BucketID:          document.BucketID,
		AllowDirectAccess: true,
	}, nil)
	f.docs.On("GetCategoryByID", mock.Anything, categoryID).Return(&models.Category{
		CategoryID:        categoryID,
		AllowDirectAccess: false,
	}, nil)

	response, err := f.svc.CreateShare(context.Background(), &models.ShareCreateRequest{
		DocumentID:    document.DocumentID,
		IsDirectShare: true,
	}, "USER-1", nil)

	assert.Nil(t, response)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestCreateShare_DirectShareWithoutCategoryRejected(t *testing.T) {
	f, _ := newShareServiceUnderTest(t)
	document := newTestDocument()
	document.CategoryID = nil

	f.docs.On("GetByID", mock.Anything, document.DocumentID).Return(document, nil)
	f.docs.On("GetBucketByID", mock.Anything, document.BucketID).Return(&models.StorageBucket{
		BucketID:          document.BucketID,
		AllowDirectAccess: true,
	}, nil)

	response, err := f.svc.CreateShare(context.Background(), &models.ShareCreateRequest{
		DocumentID:    document.DocumentID,
		IsDirectShare: true,
	}, "USER-1", nil)

	assert.Nil(t, response)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestCreateShare_MissingUserRejected(t *testing.T) {
	f, _ := newShareServiceUnderTest(t)

	response, err := f.svc.CreateShare(context.Background(), &models.ShareCreateRequest{DocumentID: "DOC-1"}, "", nil)

	assert.Nil(t, response)
	assert.True(t, apperrors.IsValidation(err))
}
