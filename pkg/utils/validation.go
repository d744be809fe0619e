package utils

import (
	"regexp"
	"strings"

	"github.com/docushare/share-management-api/internal/apperrors"
)

// ValidatePolicyID validates approval policy ID format
func ValidatePolicyID(policyID string) error {
	if policyID == "" {
		return apperrors.NewValidation("policy ID cannot be empty")
	}
	if len(policyID) > 255 {
		return apperrors.NewValidation("policy ID too long (max 255 characters)")
	}
	return nil
}

// ValidateRequestID validates approval request ID format
func ValidateRequestID(requestID string) error {
	if requestID == "" {
		return apperrors.NewValidation("request ID cannot be empty")
	}
	if len(requestID) > 255 {
		return apperrors.NewValidation("request ID too long (max 255 characters)")
	}
	return nil
}

// ValidateShareID validates document share ID format
func ValidateShareID(shareID string) error {
	if shareID == "" {
		return apperrors.NewValidation("share ID cannot be empty")
	}
	if len(shareID) > 255 {
		return apperrors.NewValidation("share ID too long (max 255 characters)")
	}
	return nil
}

// ValidateUserID validates user ID format
func ValidateUserID(userID string) error {
	if userID == "" {
		return apperrors.NewValidation("user ID cannot be empty")
	}
	if len(userID) > 255 {
		return apperrors.NewValidation("user ID too long (max 255 characters)")
	}
	return nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	if email == "" {
		return apperrors.NewValidation("email cannot be empty")
	}

	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return apperrors.NewValidation("invalid email format")
	}

	return nil
}

// SanitizeString removes dangerous characters from user input
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")
	// Trim whitespace
	input = strings.TrimSpace(input)
	return input
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // Default limit
	}
	if limit > 100 {
		return 100 // Max limit
	}
	return limit
}

// ValidateOffset validates pagination offset
func ValidateOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// ValidateRequired validates that a field is not empty
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.NewValidation("%s is required", fieldName)
	}
	return nil
}

// NormalizeFileExtension lower-cases and strips the leading dot from a file
// extension so filter membership checks compare canonical values
func NormalizeFileExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
