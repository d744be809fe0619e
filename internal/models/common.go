package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(code, message, details string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Common error codes
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeInternalError   = "INTERNAL_ERROR"
	ErrCodeDatabaseError   = "DATABASE_ERROR"
	ErrCodeValidationError = "VALIDATION_ERROR"
	ErrCodePolicyNotFound  = "POLICY_NOT_FOUND"
	ErrCodeRequestNotFound = "REQUEST_NOT_FOUND"
	ErrCodeShareNotFound   = "SHARE_NOT_FOUND"
	ErrCodeInvalidStatus   = "INVALID_STATUS"
)

// HTTPStatusForErrorCode returns the appropriate HTTP status code for an error code
func HTTPStatusForErrorCode(code string) int {
	switch code {
	case ErrCodeBadRequest, ErrCodeValidationError:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound, ErrCodePolicyNotFound, ErrCodeRequestNotFound, ErrCodeShareNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeInvalidStatus:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewSuccessResponse creates a new success response
func NewSuccessResponse(message string, data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Message: message,
		Data:    data,
	}
}

// StringSet is an ordered, de-duplicated set of string identifiers. Policies
// persist their filter lists and requests their approver snapshot through this
// type: serialization to a JSON array happens only at the database edge.
// An empty set carries an explicit meaning for approver lists: any authorized
// approver may act.
type StringSet []string

// NewStringSet builds a set preserving first-seen order and dropping
// duplicates and empty entries
func NewStringSet(values ...string) StringSet {
	seen := make(map[string]bool, len(values))
	set := make(StringSet, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		set = append(set, v)
	}
	return set
}

// Contains reports whether the set holds the given value
func (s StringSet) Contains(value string) bool {
	for _, v := range s {
		if v == value {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the set has no members
func (s StringSet) IsEmpty() bool {
	return len(s) == 0
}

// Scan implements sql.Scanner: the column stores a JSON array string
func (s *StringSet) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type for StringSet: %T", value)
	}

	if len(raw) == 0 {
		*s = nil
		return nil
	}

	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return fmt.Errorf("invalid StringSet data: %w", err)
	}

	*s = NewStringSet(values...)
	return nil
}

// Value implements driver.Valuer
func (s StringSet) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	raw, err := json.Marshal([]string(s))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal StringSet: %w", err)
	}
	return raw, nil
}
