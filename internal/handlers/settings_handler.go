package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/docushare/share-management-api/internal/models"
	"github.com/docushare/share-management-api/internal/service"
	"github.com/docushare/share-management-api/internal/utils"
)

// SettingsHandler handles approval settings HTTP requests
type SettingsHandler struct {
	settingsService *service.ApprovalSettingsService
}

// NewSettingsHandler creates a new settings handler instance
func NewSettingsHandler(settingsService *service.ApprovalSettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetSettings handles GET /approval-settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.GetCurrentSettings(c.Request.Context())
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, settings)
}

// UpdateSettings handles PATCH /approval-settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var request models.SettingsUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	settings, err := h.settingsService.UpdateSettings(c.Request.Context(), &request)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, settings)
}

// EnableApproval handles POST /approval-settings/enable
func (h *SettingsHandler) EnableApproval(c *gin.Context) {
	var request models.EnableApprovalRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	userID := utils.GetUserIDFromContext(c)
	if userID == "" {
		utils.SendBadRequestError(c, "Missing user identity", "")
		return
	}

	settings, err := h.settingsService.EnableGlobalApproval(c.Request.Context(), request.Reason, userID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, settings)
}

// DisableApproval handles POST /approval-settings/disable
func (h *SettingsHandler) DisableApproval(c *gin.Context) {
	userID := utils.GetUserIDFromContext(c)
	if userID == "" {
		utils.SendBadRequestError(c, "Missing user identity", "")
		return
	}

	settings, err := h.settingsService.DisableGlobalApproval(c.Request.Context(), userID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, settings)
}

// ResetSettings handles POST /approval-settings/reset
func (h *SettingsHandler) ResetSettings(c *gin.Context) {
	settings, err := h.settingsService.ResetToDefaults(c.Request.Context())
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, settings)
}
