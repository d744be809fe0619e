package models

// Global System Policy identity. The row with this name is the non-deletable,
// always-reactivated fallback every share can match when no tenant policy does.
const (
	GlobalSystemPolicyID   = "POLICY-00000000-0000-0000-0000-000000000001"
	GlobalSystemPolicyName = "Global System Policy"
)

// ApprovalPolicy represents the SHARE_APPROVAL_POLICY table
type ApprovalPolicy struct {
	PolicyID              string    `db:"POLICY_ID" json:"policyId"`
	Name                  string    `db:"NAME" json:"name"`
	Description           *string   `db:"DESCRIPTION" json:"description,omitempty"`
	Active                bool      `db:"ACTIVE" json:"active"`
	Priority              int       `db:"PRIORITY" json:"priority"`
	RequireApproval       bool      `db:"REQUIRE_APPROVAL" json:"requireApproval"`
	ApprovalTimeoutHours  int       `db:"APPROVAL_TIMEOUT_HOURS" json:"approvalTimeoutHours"`
	RequiredApprovalCount int       `db:"REQUIRED_APPROVAL_COUNT" json:"requiredApprovalCount"`
	CategoryFilter        StringSet `db:"CATEGORY_FILTER" json:"categoryFilter,omitempty"`
	ProviderFilter        StringSet `db:"PROVIDER_FILTER" json:"providerFilter,omitempty"`
	UserFilter            StringSet `db:"USER_FILTER" json:"userFilter,omitempty"`
	APIKeyFilter          StringSet `db:"API_KEY_FILTER" json:"apiKeyFilter,omitempty"`
	FileTypeFilter        StringSet `db:"FILE_TYPE_FILTER" json:"fileTypeFilter,omitempty"`
	FileSizeLimitMB       *int64    `db:"FILE_SIZE_LIMIT_MB" json:"fileSizeLimitMB,omitempty"`
	CreatedTime           int64     `db:"CREATED_TIME" json:"createdTime"`
	UpdatedTime           int64     `db:"UPDATED_TIME" json:"updatedTime"`
}

// IsGlobalSystemPolicy reports whether this is the protected fallback policy
func (p *ApprovalPolicy) IsGlobalSystemPolicy() bool {
	return p.Name == GlobalSystemPolicyName
}

// FileSizeLimitBytes converts the configured MB limit to bytes.
// Returns 0 when no limit is set.
func (p *ApprovalPolicy) FileSizeLimitBytes() int64 {
	if p.FileSizeLimitMB == nil {
		return 0
	}
	return *p.FileSizeLimitMB * 1024 * 1024
}

// PolicyCreateRequest represents the API payload for creating a policy
type PolicyCreateRequest struct {
	Name                  string   `json:"name" binding:"required"`
	Description           *string  `json:"description,omitempty"`
	Active                *bool    `json:"active,omitempty"`
	Priority              int      `json:"priority"`
	RequireApproval       *bool    `json:"requireApproval,omitempty"`
	ApprovalTimeoutHours  int      `json:"approvalTimeoutHours"`
	RequiredApprovalCount int      `json:"requiredApprovalCount"`
	CategoryFilter        []string `json:"categoryFilter,omitempty"`
	ProviderFilter        []string `json:"providerFilter,omitempty"`
	UserFilter            []string `json:"userFilter,omitempty"`
	APIKeyFilter          []string `json:"apiKeyFilter,omitempty"`
	FileTypeFilter        []string `json:"fileTypeFilter,omitempty"`
	FileSizeLimitMB       *int64   `json:"fileSizeLimitMB,omitempty"`
}

// PolicyUpdateRequest represents the API payload for updating a policy.
// Nil fields are left untouched.
type PolicyUpdateRequest struct {
	Name                  *string  `json:"name,omitempty"`
	Description           *string  `json:"description,omitempty"`
	Priority              *int     `json:"priority,omitempty"`
	RequireApproval       *bool    `json:"requireApproval,omitempty"`
	ApprovalTimeoutHours  *int     `json:"approvalTimeoutHours,omitempty"`
	RequiredApprovalCount *int     `json:"requiredApprovalCount,omitempty"`
	CategoryFilter        []string `json:"categoryFilter,omitempty"`
	ProviderFilter        []string `json:"providerFilter,omitempty"`
	UserFilter            []string `json:"userFilter,omitempty"`
	APIKeyFilter          []string `json:"apiKeyFilter,omitempty"`
	FileTypeFilter        []string `json:"fileTypeFilter,omitempty"`
	FileSizeLimitMB       *int64   `json:"fileSizeLimitMB,omitempty"`
}
