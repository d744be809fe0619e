package models

// ApprovalSettingsID is the well-known primary key of the singleton settings
// row. There is never more than one authoritative row.
const ApprovalSettingsID = "SETTINGS-GLOBAL"

// ApprovalSettings represents the SHARE_APPROVAL_SETTINGS singleton table
type ApprovalSettings struct {
	SettingsID               string  `db:"SETTINGS_ID" json:"settingsId"`
	GlobalApprovalEnabled    bool    `db:"GLOBAL_APPROVAL_ENABLED" json:"globalApprovalEnabled"`
	EnabledByUserID          *string `db:"ENABLED_BY_USER_ID" json:"enabledByUserId,omitempty"`
	EnabledTime              *int64  `db:"ENABLED_TIME" json:"enabledTime,omitempty"`
	EnabledReason            *string `db:"ENABLED_REASON" json:"enabledReason,omitempty"`
	DefaultExpirationDays    int     `db:"DEFAULT_EXPIRATION_DAYS" json:"defaultExpirationDays"`
	DefaultRequiredApprovals int     `db:"DEFAULT_REQUIRED_APPROVALS" json:"defaultRequiredApprovals"`
	ForceApprovalForAll      bool    `db:"FORCE_APPROVAL_FOR_ALL" json:"forceApprovalForAll"`
	ForceApprovalLargeFiles  bool    `db:"FORCE_APPROVAL_LARGE_FILES" json:"forceApprovalLargeFiles"`
	LargeFileThresholdBytes  int64   `db:"LARGE_FILE_THRESHOLD_BYTES" json:"largeFileThresholdBytes"`
	EmailNotifications       bool    `db:"EMAIL_NOTIFICATIONS" json:"emailNotifications"`
	UpdatedTime              int64   `db:"UPDATED_TIME" json:"updatedTime"`
}

// SettingsUpdateRequest is a partial patch: only non-nil fields overwrite
type SettingsUpdateRequest struct {
	DefaultExpirationDays    *int   `json:"defaultExpirationDays,omitempty"`
	DefaultRequiredApprovals *int   `json:"defaultRequiredApprovals,omitempty"`
	ForceApprovalForAll      *bool  `json:"forceApprovalForAll,omitempty"`
	ForceApprovalLargeFiles  *bool  `json:"forceApprovalLargeFiles,omitempty"`
	LargeFileThresholdBytes  *int64 `json:"largeFileThresholdBytes,omitempty"`
	EmailNotifications       *bool  `json:"emailNotifications,omitempty"`
}

// EnableApprovalRequest is the API payload for enabling global approval
type EnableApprovalRequest struct {
	Reason string `json:"reason" binding:"required"`
}
