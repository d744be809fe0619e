package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/docushare/share-management-api/internal/apperrors"
)

func TestValidatePolicyID(t *testing.T) {
	assert.NoError(t, ValidatePolicyID("POLICY-123"))
	assert.True(t, apperrors.IsValidation(ValidatePolicyID("")))

	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}
	assert.True(t, apperrors.IsValidation(ValidatePolicyID(string(long))))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("user@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("user@"))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello  "))
	assert.Equal(t, "hello", SanitizeString("hel\x00lo"))
	assert.Equal(t, "", SanitizeString("   "))
}

func TestValidateLimit(t *testing.T) {
	assert.Equal(t, 20, ValidateLimit(0))
	assert.Equal(t, 20, ValidateLimit(-5))
	assert.Equal(t, 50, ValidateLimit(50))
	assert.Equal(t, 100, ValidateLimit(500))
}

func TestValidateOffset(t *testing.T) {
	assert.Equal(t, 0, ValidateOffset(-1))
	assert.Equal(t, 40, ValidateOffset(40))
}

func TestNormalizeFileExtension(t *testing.T) {
	assert.Equal(t, "pdf", NormalizeFileExtension(".PDF"))
	assert.Equal(t, "docx", NormalizeFileExtension("docx"))
	assert.Equal(t, "xlsx", NormalizeFileExtension(" .XLSX "))
	assert.Equal(t, "", NormalizeFileExtension(""))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.0 KB", FormatFileSize(1024))
	assert.Equal(t, "2.0 MB", FormatFileSize(2*1024*1024))
	assert.Equal(t, "1.5 GB", FormatFileSize(3*1024*1024*1024/2))
}

func TestIsExpired(t *testing.T) {
	assert.False(t, IsExpired(0))
	assert.True(t, IsExpired(GetCurrentTimeMillis()-1000))
	assert.False(t, IsExpired(GetCurrentTimeMillis()+int64(time.Hour/time.Millisecond)))
}
