package models

// ApprovalStatus lists the lifecycle states of a share approval request.
// Transitions are one-way: Pending moves to Approved, Rejected or Expired and
// never reverts. NotRequired is assigned directly at share creation and never
// transitions.
type ApprovalStatus string

const (
	ApprovalStatusPending     ApprovalStatus = "PENDING"
	ApprovalStatusApproved    ApprovalStatus = "APPROVED"
	ApprovalStatusRejected    ApprovalStatus = "REJECTED"
	ApprovalStatusExpired     ApprovalStatus = "EXPIRED"
	ApprovalStatusNotRequired ApprovalStatus = "NOT_REQUIRED"
)

// IsTerminal reports whether the status can never change again
func (s ApprovalStatus) IsTerminal() bool {
	switch s {
	case ApprovalStatusApproved, ApprovalStatusRejected, ApprovalStatusExpired, ApprovalStatusNotRequired:
		return true
	}
	return false
}

// DecisionValue is the verdict recorded by a single approver
type DecisionValue string

const (
	DecisionApproved DecisionValue = "APPROVED"
	DecisionRejected DecisionValue = "REJECTED"
)

// HistoryAction identifies a lifecycle event in the audit trail
type HistoryAction string

const (
	HistoryActionRequested HistoryAction = "REQUESTED"
	HistoryActionApproved  HistoryAction = "APPROVED"
	HistoryActionRejected  HistoryAction = "REJECTED"
	HistoryActionExpired   HistoryAction = "EXPIRED"
)

// SystemActor is the actor recorded on automated transitions
const SystemActor = "SYSTEM"

// ShareApprovalRequest represents the SHARE_APPROVAL_REQUEST table.
// RowVersion backs the optimistic-concurrency check on every status mutation.
type ShareApprovalRequest struct {
	RequestID             string         `db:"REQUEST_ID" json:"requestId"`
	DocumentShareID       string         `db:"DOCUMENT_SHARE_ID" json:"documentShareId"`
	ApprovalPolicyID      string         `db:"APPROVAL_POLICY_ID" json:"approvalPolicyId"`
	Status                ApprovalStatus `db:"STATUS" json:"status"`
	RequestReason         *string        `db:"REQUEST_REASON" json:"requestReason,omitempty"`
	FinalComment          *string        `db:"FINAL_COMMENT" json:"finalComment,omitempty"`
	RequestedByUserID     string         `db:"REQUESTED_BY_USER_ID" json:"requestedByUserId"`
	RequiredApprovalCount int            `db:"REQUIRED_APPROVAL_COUNT" json:"requiredApprovalCount"`
	CurrentApprovalCount  int            `db:"CURRENT_APPROVAL_COUNT" json:"currentApprovalCount"`
	AssignedApprovers     StringSet      `db:"ASSIGNED_APPROVERS" json:"assignedApprovers,omitempty"`
	ExpiresAt             int64          `db:"EXPIRES_AT" json:"expiresAt"`
	ProcessedAt           *int64         `db:"PROCESSED_AT" json:"processedAt,omitempty"`
	RowVersion            int64          `db:"ROW_VERSION" json:"-"`
	CreatedTime           int64          `db:"CREATED_TIME" json:"createdTime"`
	UpdatedTime           int64          `db:"UPDATED_TIME" json:"updatedTime"`
}

// ApprovalDecision represents the SHARE_APPROVAL_DECISION append-only log.
// One row per approver action; a given approver records at most one decision
// per request.
type ApprovalDecision struct {
	DecisionID     string        `db:"DECISION_ID" json:"decisionId"`
	RequestID      string        `db:"REQUEST_ID" json:"requestId"`
	ApproverUserID string        `db:"APPROVER_USER_ID" json:"approverUserId"`
	Decision       DecisionValue `db:"DECISION" json:"decision"`
	Comment        *string       `db:"COMMENT" json:"comment,omitempty"`
	DecidedTime    int64         `db:"DECIDED_TIME" json:"decidedTime"`
}

// ApprovalHistory represents the SHARE_APPROVAL_HISTORY append-only audit trail
type ApprovalHistory struct {
	HistoryID  string        `db:"HISTORY_ID" json:"historyId"`
	RequestID  string        `db:"REQUEST_ID" json:"requestId"`
	Action     HistoryAction `db:"ACTION" json:"action"`
	ActorID    string        `db:"ACTOR_ID" json:"actorId"`
	Notes      *string       `db:"NOTES" json:"notes,omitempty"`
	ActionTime int64         `db:"ACTION_TIME" json:"actionTime"`
}

// DecisionRequest is the API payload for recording an approver decision
type DecisionRequest struct {
	Decision DecisionValue `json:"decision" binding:"required"`
	Comment  string        `json:"comment,omitempty"`
}

// ApprovalRequestResponse is the API representation of a request including its
// decision log and audit trail
type ApprovalRequestResponse struct {
	*ShareApprovalRequest
	Decisions []ApprovalDecision `json:"decisions,omitempty"`
	History   []ApprovalHistory  `json:"history,omitempty"`
}
