package utils

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
)

// GenerateID generates a new UUID for any entity
func GenerateID() string {
	return uuid.New().String()
}

// GeneratePolicyID generates a unique approval policy ID
func GeneratePolicyID() string {
	return "POLICY-" + uuid.New().String()
}

// GenerateRequestID generates a unique share approval request ID
func GenerateRequestID() string {
	return "APPREQ-" + uuid.New().String()
}

// GenerateDecisionID generates a unique approval decision ID
func GenerateDecisionID() string {
	return "DECISION-" + uuid.New().String()
}

// GenerateHistoryID generates a unique approval history ID
func GenerateHistoryID() string {
	return "HISTORY-" + uuid.New().String()
}

// GenerateShareID generates a unique document share ID
func GenerateShareID() string {
	return "SHARE-" + uuid.New().String()
}

// GenerateEventID generates a unique notification outbox event ID
func GenerateEventID() string {
	return "EVENT-" + uuid.New().String()
}

// GenerateShareCode generates a short URL-safe share code
func GenerateShareCode() string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		// uuid fallback keeps the code unique even if the entropy source fails
		return strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// IsValidUUID checks if a string is a valid UUID
func IsValidUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
