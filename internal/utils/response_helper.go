package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docushare/share-management-api/internal/apperrors"
	"github.com/docushare/share-management-api/internal/models"
	"github.com/docushare/share-management-api/pkg/utils"
)

// SendSuccessResponse sends a successful JSON response
func SendSuccessResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// SendErrorResponse sends an error JSON response
func SendErrorResponse(c *gin.Context, statusCode int, errCode, message, details string) {
	c.JSON(statusCode, models.ErrorResponse{
		Code:    errCode,
		Message: message,
		Details: details,
	})
}

// SendCreatedResponse sends a 201 Created response
func SendCreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// SendOKResponse sends a 200 OK response
func SendOKResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// SendNoContentResponse sends a 204 No Content response
func SendNoContentResponse(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// SendBadRequestError sends a 400 Bad Request error
func SendBadRequestError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeBadRequest, message, details)
}

// SendValidationError sends a validation error response
func SendValidationError(c *gin.Context, details string) {
	SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeValidationError, "Validation failed", details)
}

// SendNotFoundError sends a 404 Not Found error
func SendNotFoundError(c *gin.Context, message string) {
	SendErrorResponse(c, http.StatusNotFound, models.ErrCodeNotFound, message, "")
}

// SendConflictError sends a 409 Conflict error
func SendConflictError(c *gin.Context, message string) {
	SendErrorResponse(c, http.StatusConflict, models.ErrCodeConflict, message, "")
}

// SendInvalidStateError sends a 422 Unprocessable Entity error
func SendInvalidStateError(c *gin.Context, message string) {
	SendErrorResponse(c, http.StatusUnprocessableEntity, models.ErrCodeInvalidStatus, message, "")
}

// SendInternalServerError sends a 500 Internal Server Error
func SendInternalServerError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusInternalServerError, models.ErrCodeInternalError, message, details)
}

// SendServiceError maps a service-layer error onto the HTTP taxonomy:
// validation 400, not found 404, invalid state 422, concurrency conflict 409
// with a retry hint, everything else 500.
func SendServiceError(c *gin.Context, err error) {
	switch {
	case apperrors.IsValidation(err):
		SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeValidationError, err.Error(), "")
	case apperrors.IsNotFound(err):
		SendErrorResponse(c, http.StatusNotFound, models.ErrCodeNotFound, err.Error(), "")
	case apperrors.IsInvalidState(err):
		SendErrorResponse(c, http.StatusUnprocessableEntity, models.ErrCodeInvalidStatus, err.Error(), "")
	case apperrors.IsConcurrency(err):
		SendErrorResponse(c, http.StatusConflict, models.ErrCodeConflict, err.Error(), "The resource was modified by another user; re-fetch and retry")
	default:
		SendInternalServerError(c, "An unexpected error occurred", "")
	}
}

// GetUserIDFromContext extracts the authenticated user ID from context
func GetUserIDFromContext(c *gin.Context) string {
	userID, exists := c.Get("userID")
	if !exists {
		return ""
	}
	return userID.(string)
}

// GetAPIKeyIDFromContext extracts the originating API key ID, if any
func GetAPIKeyIDFromContext(c *gin.Context) *string {
	apiKeyID, exists := c.Get("apiKeyID")
	if !exists {
		return nil
	}
	id, ok := apiKeyID.(string)
	if !ok || id == "" {
		return nil
	}
	return &id
}

// GetCorrelationIDFromContext extracts the correlation ID from context
func GetCorrelationIDFromContext(c *gin.Context) string {
	correlationID, exists := c.Get("correlationID")
	if !exists {
		return utils.GenerateID()
	}
	return correlationID.(string)
}

// SetContextValue sets a value in the Gin context
func SetContextValue(c *gin.Context, key string, value interface{}) {
	c.Set(key, value)
}
