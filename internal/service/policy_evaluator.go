package service

import (
	"github.com/docushare/share-management-api/internal/models"
	"github.com/docushare/share-management-api/pkg/utils"
)

// EvaluatePolicy reports whether a policy's rules match the given document
// share. Evaluation is side-effect free and deterministic.
//
// The scoping filters (category, provider, user, API key) restrict which
// shares a policy applies to: a non-empty filter that does not contain the
// share's attribute disqualifies the policy. The trigger rules (file size,
// file type) then decide the match. An oversized file triggers the policy
// unconditionally, even when its extension is outside the file-type filter.
// A policy with no filters configured at all matches every share.
func EvaluatePolicy(policy *models.ApprovalPolicy, document *models.Document, share *models.DocumentShare) bool {
	if policy == nil || document == nil || share == nil {
		return false
	}
	if !policy.Active || !policy.RequireApproval {
		return false
	}

	if !policy.CategoryFilter.IsEmpty() {
		if document.CategoryID == nil || !policy.CategoryFilter.Contains(*document.CategoryID) {
			return false
		}
	}
	if !policy.ProviderFilter.IsEmpty() && !policy.ProviderFilter.Contains(document.StorageProviderID) {
		return false
	}
	if !policy.UserFilter.IsEmpty() && !policy.UserFilter.Contains(share.CreatedByUserID) {
		return false
	}
	if !policy.APIKeyFilter.IsEmpty() {
		if share.APIKeyID == nil || !policy.APIKeyFilter.Contains(*share.APIKeyID) {
			return false
		}
	}

	if limitBytes := policy.FileSizeLimitBytes(); limitBytes > 0 {
		if document.SizeBytes > limitBytes {
			return true
		}
		if policy.FileTypeFilter.IsEmpty() {
			// a size-limited policy only triggers on oversized files
			return false
		}
	}
	if !policy.FileTypeFilter.IsEmpty() {
		return policy.FileTypeFilter.Contains(utils.NormalizeFileExtension(document.FileExtension))
	}
	return true
}
