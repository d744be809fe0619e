package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/docushare/share-management-api/internal/models"
	"github.com/docushare/share-management-api/internal/service"
	"github.com/docushare/share-management-api/internal/utils"
)

// ShareHandler handles document share HTTP requests
type ShareHandler struct {
	shareService *service.DocumentShareService
}

// NewShareHandler creates a new share handler instance
func NewShareHandler(shareService *service.DocumentShareService) *ShareHandler {
	return &ShareHandler{shareService: shareService}
}

// CreateShare handles POST /shares
func (h *ShareHandler) CreateShare(c *gin.Context) {
	var request models.ShareCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	userID := utils.GetUserIDFromContext(c)
	if userID == "" {
		utils.SendBadRequestError(c, "Missing user identity", "")
		return
	}
	apiKeyID := utils.GetAPIKeyIDFromContext(c)

	response, err := h.shareService.CreateShare(c.Request.Context(), &request, userID, apiKeyID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendCreatedResponse(c, response)
}

// GetShare handles GET /shares/:shareId
func (h *ShareHandler) GetShare(c *gin.Context) {
	share, err := h.shareService.GetShare(c.Request.Context(), c.Param("shareId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, share)
}

// GetShareByCode handles GET /shares/code/:shareCode
func (h *ShareHandler) GetShareByCode(c *gin.Context) {
	share, err := h.shareService.GetShareByCode(c.Request.Context(), c.Param("shareCode"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, share)
}

// ListMyShares handles GET /shares
func (h *ShareHandler) ListMyShares(c *gin.Context) {
	userID := utils.GetUserIDFromContext(c)
	if userID == "" {
		utils.SendBadRequestError(c, "Missing user identity", "")
		return
	}

	params := utils.ParsePaginationParams(c)
	shares, total, err := h.shareService.ListUserShares(c.Request.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, gin.H{
		"shares":     shares,
		"pagination": utils.CalculatePaginationMetadata(total, params.Limit, params.Offset),
	})
}
