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

func newPolicyServiceUnderTest() (*ApprovalPolicyService, *mocks.MockPolicyStore, *mocks.MockDocumentStore) {
	policyStore := &mocks.MockPolicyStore{}
	documentStore := &mocks.MockDocumentStore{}
	svc := NewApprovalPolicyService(policyStore, documentStore, newTestConfig(), newTestLogger())
	return svc, policyStore, documentStore
}

func newGlobalPolicy() *models.ApprovalPolicy {
	policy := newTestPolicy()
	policy.PolicyID = models.GlobalSystemPolicyID
	policy.Name = models.GlobalSystemPolicyName
	policy.Priority = 999
	policy.ApprovalTimeoutHours = 72
	return policy
}

func TestCreatePolicy_RejectsEmptyName(t *testing.T) {
	svc, _, _ := newPolicyServiceUnderTest()

	policy, err := svc.CreatePolicy(context.Background(), &models.PolicyCreateRequest{Name: "   "})

	assert.Nil(t, policy)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreatePolicy_RejectsReservedName(t *testing.T) {
	svc, _, _ := newPolicyServiceUnderTest()

	policy, err := svc.CreatePolicy(context.Background(), &models.PolicyCreateRequest{Name: "global system policy"})

	assert.Nil(t, policy)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreatePolicy_RejectsDuplicateName(t *testing.T) {
	svc, policyStore, _ := newPolicyServiceUnderTest()
	policyStore.On("GetByName", mock.Anything, "Finance Documents").Return(newTestPolicy(), nil)

	policy, err := svc.CreatePolicy(context.Background(), &models.PolicyCreateRequest{Name: "Finance Documents"})

	assert.Nil(t, policy)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreatePolicy_AppliesDefaults(t *testing.T) {
	svc, policyStore, _ := newPolicyServiceUnderTest()
	policyStore.On("GetByName", mock.Anything, "Legal Documents").Return(nil, apperrors.NewNotFound("record", "missing"))
	policyStore.On("Create", mock.Anything, mock.AnythingOfType("*models.ApprovalPolicy")).Return(nil)

	policy, err := svc.CreatePolicy(context.Background(), &models.PolicyCreateRequest{Name: "Legal Documents", Priority: 5})

	assert.NoError(t, err)
	assert.True(t, policy.Active)
	assert.True(t, policy.RequireApproval)
	assert.Equal(t, 72, policy.ApprovalTimeoutHours)
	assert.Equal(t, 1, policy.RequiredApprovalCount)
	assert.Equal(t, 5, policy.Priority)
	assert.NotEmpty(t, policy.PolicyID)
	policyStore.AssertExpectations(t)
}

func TestDeletePolicy_GlobalSystemPolicyAlwaysRejected(t *testing.T) {
	svc, policyStore, _ := newPolicyServiceUnderTest()
	policyStore.On("GetByID", mock.Anything, models.GlobalSystemPolicyID).Return(newGlobalPolicy(), nil)

	err := svc.DeletePolicy(context.Background(), models.GlobalSystemPolicyID)

	assert.True(t, apperrors.IsInvalidState(err))
	policyStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestToggleActive_GlobalSystemPolicyAlwaysRejected(t *testing.T) {
	svc, policyStore, _ := newPolicyServiceUnderTest()
	policyStore.On("GetByID", mock.Anything, models.GlobalSystemPolicyID).Return(newGlobalPolicy(), nil)

	// Both directions are rejected, activation included
	assert.True(t, apperrors.IsInvalidState(svc.ToggleActive(context.Background(), models.GlobalSystemPolicyID, false)))
	assert.True(t, apperrors.IsInvalidState(svc.ToggleActive(context.Background(), models.GlobalSystemPolicyID, true)))
	policyStore.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeletePolicy_RejectedWhilePendingRequestsExist(t *testing.T) {
	svc, policyStore, _ := newPolicyServiceUnderTest()
	policy := newTestPolicy()
	policyStore.On("GetByID", mock.Anything, policy.PolicyID).Return(policy, nil)
	policyStore.On("CountPendingRequests", mock.Anything, policy.PolicyID).Return(2, nil)

	err := svc.DeletePolicy(context.Background(), policy.PolicyID)

	assert.True(t, apperrors.IsInvalidState(err))
	policyStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeletePolicy_Succeeds(t *testing.T) {
	svc, policyStore, _ := newPolicyServiceUnderTest()
	policy := newTestPolicy()
	policyStore.On("GetByID", mock.Anything, policy.PolicyID).Return(policy, nil)
	policyStore.On("CountPendingRequests", mock.Anything, policy.PolicyID).Return(0, nil)
	policyStore.On("Delete", mock.Anything, policy.PolicyID).Return(nil)

	assert.NoError(t, svc.DeletePolicy(context.Background(), policy.PolicyID))
	policyStore.AssertExpectations(t)
}

func TestUpdatePolicy_GlobalRenameRejected(t *testing.T) {
	svc, policyStore, _ := newPolicyServiceUnderTest()
	policyStore.On("GetByID", mock.Anything, models.GlobalSystemPolicyID).Return(newGlobalPolicy(), nil)

	_, err := svc.UpdatePolicy(context.Background(), models.GlobalSystemPolicyID, &models.PolicyUpdateRequest{
		Name: strPtr("Renamed Policy"),
	})

	assert.True(t, apperrors.IsInvalidState(err))
}

func TestGetApplicablePolicy_FirstMatchByPriority(t *testing.T) {
	svc, policyStore, documentStore := newPolicyServiceUnderTest()
	share := newTestShare()
	documentStore.On("GetByID", mock.Anything, share.DocumentID).Return(newTestDocument(), nil)

	// Low-priority policy is scoped to another user; the next one matches.
	first := *newTestPolicy()
	first.PolicyID = "POLICY-A"
	first.Priority = 1
	first.UserFilter = models.NewStringSet("USER-OTHER")
	second := *newTestPolicy()
	second.PolicyID = "POLICY-B"
	second.Priority = 2
	policyStore.On("ListActive", mock.Anything, true).Return([]models.ApprovalPolicy{first, second}, nil)

	policy, err := svc.GetApplicablePolicy(context.Background(), share)

	assert.NoError(t, err)
	assert.Equal(t, "POLICY-B", policy.PolicyID)
}

func TestGetApplicablePolicy_FallsBackToGlobal(t *testing.T) {
	svc, policyStore, documentStore := newPolicyServiceUnderTest()
	share := newTestShare()
	documentStore.On("GetByID", mock.Anything, share.DocumentID).Return(newTestDocument(), nil)
	policyStore.On("ListActive", mock.Anything, true).Return([]models.ApprovalPolicy{}, nil)
	policyStore.On("GetByID", mock.Anything, models.GlobalSystemPolicyID).Return(newGlobalPolicy(), nil)

	policy, err := svc.GetApplicablePolicy(context.Background(), share)

	assert.NoError(t, err)
	assert.Equal(t, models.GlobalSystemPolicyID, policy.PolicyID)
}

func TestGetApplicablePolicy_NoneWhenGlobalInactive(t *testing.T) {
	svc, policyStore, documentStore := newPolicyServiceUnderTest()
	share := newTestShare()
	documentStore.On("GetByID", mock.Anything, share.DocumentID).Return(newTestDocument(), nil)
	policyStore.On("ListActive", mock.Anything, true).Return([]models.ApprovalPolicy{}, nil)
	global := newGlobalPolicy()
	global.Active = false
	policyStore.On("GetByID", mock.Anything, models.GlobalSystemPolicyID).Return(global, nil)

	policy, err := svc.GetApplicablePolicy(context.Background(), share)

	assert.NoError(t, err)
	assert.Nil(t, policy)
}

func TestEnsureGlobalSystemPolicy_CreatesWhenAbsent(t *testing.T) {
	svc, policyStore, _ := newPolicyServiceUnderTest()
	policyStore.On("GetByID", mock.Anything, models.GlobalSystemPolicyID).Return(nil, apperrors.NewNotFound("record", "missing"))
	policyStore.On("GetByName", mock.Anything, models.GlobalSystemPolicyName).Return(nil, apperrors.NewNotFound("record", "missing"))
	policyStore.On("Create", mock.Anything, mock.AnythingOfType("*models.ApprovalPolicy")).Return(nil)

	policy, err := svc.EnsureGlobalSystemPolicy(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, models.GlobalSystemPolicyID, policy.PolicyID)
	assert.Equal(t, models.GlobalSystemPolicyName, policy.Name)
	assert.Equal(t, 999, policy.Priority)
	assert.Equal(t, 72, policy.ApprovalTimeoutHours)
	assert.True(t, policy.Active)
}

func TestEnsureGlobalSystemPolicy_ReactivatesInactive(t *testing.T) {
	svc, policyStore, _ := newPolicyServiceUnderTest()
	global := newGlobalPolicy()
	global.Active = false
	policyStore.On("GetByID", mock.Anything, models.GlobalSystemPolicyID).Return(global, nil)
	policyStore.On("SetActive", mock.Anything, models.GlobalSystemPolicyID, true, mock.AnythingOfType("int64")).Return(nil)

	policy, err := svc.EnsureGlobalSystemPolicy(context.Background())

	assert.NoError(t, err)
	assert.True(t, policy.Active)
	policyStore.AssertExpectations(t)
}

func TestEnsureGlobalSystemPolicy_SurvivesBootstrapRace(t *testing.T) {
	svc, policyStore, _ := newPolicyServiceUnderTest()
	policyStore.On("GetByID", mock.Anything, models.GlobalSystemPolicyID).Return(nil, apperrors.NewNotFound("record", "missing")).Once()
	policyStore.On("GetByName", mock.Anything, models.GlobalSystemPolicyName).Return(nil, apperrors.NewNotFound("record", "missing")).Once()
	policyStore.On("Create", mock.Anything, mock.AnythingOfType("*models.ApprovalPolicy")).Return(assert.AnError)
	policyStore.On("GetByID", mock.Anything, models.GlobalSystemPolicyID).Return(newGlobalPolicy(), nil).Once()

	policy, err := svc.EnsureGlobalSystemPolicy(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, models.GlobalSystemPolicyID, policy.PolicyID)
}
