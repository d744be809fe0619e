package models

// DocumentShare represents the DOCUMENT_SHARE table. The approval engine owns
// the RequiresApproval/ApprovalStatus/IsActive triple: IsActive is false
// whenever ApprovalStatus is Pending, Rejected or Expired, true when Approved
// or NotRequired.
type DocumentShare struct {
	ShareID          string         `db:"SHARE_ID" json:"shareId"`
	DocumentID       string         `db:"DOCUMENT_ID" json:"documentId"`
	ShareCode        string         `db:"SHARE_CODE" json:"shareCode"`
	CreatedByUserID  string         `db:"CREATED_BY_USER_ID" json:"createdByUserId"`
	APIKeyID         *string        `db:"API_KEY_ID" json:"apiKeyId,omitempty"`
	IsDirectShare    bool           `db:"IS_DIRECT_SHARE" json:"isDirectShare"`
	RequiresApproval bool           `db:"REQUIRES_APPROVAL" json:"requiresApproval"`
	ApprovalStatus   ApprovalStatus `db:"APPROVAL_STATUS" json:"approvalStatus"`
	IsActive         bool           `db:"IS_ACTIVE" json:"isActive"`
	ExpiresAt        *int64         `db:"EXPIRES_AT" json:"expiresAt,omitempty"`
	MaxViews         *int           `db:"MAX_VIEWS" json:"maxViews,omitempty"`
	ViewCount        int            `db:"VIEW_COUNT" json:"viewCount"`
	Recipients       StringSet      `db:"RECIPIENTS" json:"recipients,omitempty"`
	CreatedTime      int64          `db:"CREATED_TIME" json:"createdTime"`
	UpdatedTime      int64          `db:"UPDATED_TIME" json:"updatedTime"`
}

// Document represents the documents visible to the approval engine. Storage
// I/O itself belongs to an external collaborator; only the metadata consulted
// by policy evaluation lives here.
type Document struct {
	DocumentID        string  `db:"DOCUMENT_ID" json:"documentId"`
	Name              string  `db:"NAME" json:"name"`
	CategoryID        *string `db:"CATEGORY_ID" json:"categoryId,omitempty"`
	StorageProviderID string  `db:"STORAGE_PROVIDER_ID" json:"storageProviderId"`
	BucketID          string  `db:"BUCKET_ID" json:"bucketId"`
	FileExtension     string  `db:"FILE_EXTENSION" json:"fileExtension"`
	SizeBytes         int64   `db:"SIZE_BYTES" json:"sizeBytes"`
	OwnerUserID       string  `db:"OWNER_USER_ID" json:"ownerUserId"`
	CreatedTime       int64   `db:"CREATED_TIME" json:"createdTime"`
}

// Category represents the document category consulted for direct-share gating
type Category struct {
	CategoryID        string `db:"CATEGORY_ID" json:"categoryId"`
	Name              string `db:"NAME" json:"name"`
	AllowDirectAccess bool   `db:"ALLOW_DIRECT_ACCESS" json:"allowDirectAccess"`
}

// StorageBucket represents the bucket consulted for direct-share gating
type StorageBucket struct {
	BucketID          string `db:"BUCKET_ID" json:"bucketId"`
	Name              string `db:"NAME" json:"name"`
	ProviderID        string `db:"PROVIDER_ID" json:"providerId"`
	AllowDirectAccess bool   `db:"ALLOW_DIRECT_ACCESS" json:"allowDirectAccess"`
}

// User is the narrow view of the identity subsystem this core consumes
type User struct {
	UserID      string  `db:"USER_ID" json:"userId"`
	Username    string  `db:"USERNAME" json:"username"`
	Email       string  `db:"EMAIL" json:"email"`
	DisplayName *string `db:"DISPLAY_NAME" json:"displayName,omitempty"`
}

// ShareCreateRequest is the API payload for creating a document share
type ShareCreateRequest struct {
	DocumentID    string   `json:"documentId" binding:"required"`
	IsDirectShare bool     `json:"isDirectShare,omitempty"`
	ExpiresAt     *int64   `json:"expiresAt,omitempty"`
	MaxViews      *int     `json:"maxViews,omitempty"`
	Recipients    []string `json:"recipients,omitempty"`
	Reason        string   `json:"reason,omitempty"`
}

// ShareCreateResponse reports the created share plus the approval outcome the
// orchestrator decided at creation time
type ShareCreateResponse struct {
	Share            *DocumentShare        `json:"share"`
	RequiresApproval bool                  `json:"requiresApproval"`
	ApprovalRequest  *ShareApprovalRequest `json:"approvalRequest,omitempty"`
}
