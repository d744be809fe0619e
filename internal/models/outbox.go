package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// EventType identifies a notification outbox event
type EventType string

const (
	EventApprovalRequestCreated EventType = "ApprovalRequestCreated"
	EventApprovalDecisionMade   EventType = "ApprovalDecisionMade"
	EventDocumentShareCreated   EventType = "DocumentShareCreated"
)

// EventStatus tracks dispatcher progress on an outbox row
type EventStatus string

const (
	EventStatusPending    EventStatus = "PENDING"
	EventStatusDispatched EventStatus = "DISPATCHED"
	EventStatusFailed     EventStatus = "FAILED"
)

// NotificationEvent represents the NOTIFICATION_OUTBOX table. Rows are
// appended inside the same transaction as the business state change and
// drained by the dispatcher outside of it, so notification failures never
// roll back lifecycle state.
type NotificationEvent struct {
	EventID     string      `db:"EVENT_ID" json:"eventId"`
	EventType   EventType   `db:"EVENT_TYPE" json:"eventType"`
	Payload     JSON        `db:"PAYLOAD" json:"payload"`
	Status      EventStatus `db:"STATUS" json:"status"`
	Attempts    int         `db:"ATTEMPTS" json:"attempts"`
	LastError   *string     `db:"LAST_ERROR" json:"lastError,omitempty"`
	CreatedTime int64       `db:"CREATED_TIME" json:"createdTime"`
	UpdatedTime int64       `db:"UPDATED_TIME" json:"updatedTime"`
}

// ApprovalRequestCreatedEvent is the payload of EventApprovalRequestCreated
type ApprovalRequestCreatedEvent struct {
	RequestID         string   `json:"requestId"`
	ShareID           string   `json:"shareId"`
	ShareCode         string   `json:"shareCode"`
	PolicyID          string   `json:"policyId"`
	PolicyName        string   `json:"policyName"`
	DocumentName      string   `json:"documentName"`
	CategoryName      string   `json:"categoryName"`
	FileSizeBytes     int64    `json:"fileSizeBytes"`
	RequesterUserID   string   `json:"requesterUserId"`
	RequestReason     string   `json:"requestReason,omitempty"`
	AssignedApprovers []string `json:"assignedApprovers,omitempty"`
	ExpiresAt         int64    `json:"expiresAt"`
}

// ApprovalDecisionMadeEvent is the payload of EventApprovalDecisionMade
type ApprovalDecisionMadeEvent struct {
	RequestID       string         `json:"requestId"`
	ShareID         string         `json:"shareId"`
	ShareCode       string         `json:"shareCode"`
	DocumentName    string         `json:"documentName"`
	Decision        DecisionValue  `json:"decision"`
	FinalStatus     ApprovalStatus `json:"finalStatus"`
	Comment         string         `json:"comment,omitempty"`
	ApproverUserID  string         `json:"approverUserId"`
	RequesterUserID string         `json:"requesterUserId"`
}

// DocumentShareCreatedEvent is the payload of EventDocumentShareCreated
type DocumentShareCreatedEvent struct {
	ShareID         string   `json:"shareId"`
	ShareCode       string   `json:"shareCode"`
	DocumentName    string   `json:"documentName"`
	RequesterUserID string   `json:"requesterUserId"`
	Recipients      []string `json:"recipients,omitempty"`
}

// JSON type for handling raw JSON columns
type JSON json.RawMessage

// Scan implements the sql.Scanner interface for JSON
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*j = JSON(append([]byte(nil), v...))
	case string:
		*j = JSON(v)
	default:
		return fmt.Errorf("unsupported type for JSON: %T", value)
	}
	return nil
}

// Value implements the driver.Valuer interface for JSON
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return []byte(j), nil
}

// MarshalJSON implements json.Marshaler
func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON implements json.Unmarshaler
func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = JSON(data)
	return nil
}
