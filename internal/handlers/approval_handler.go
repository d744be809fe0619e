package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/docushare/share-management-api/internal/models"
	"github.com/docushare/share-management-api/internal/service"
	"github.com/docushare/share-management-api/internal/utils"
)

// ApprovalHandler handles approval request HTTP requests
type ApprovalHandler struct {
	requestService *service.ApprovalRequestService
}

// NewApprovalHandler creates a new approval handler instance
func NewApprovalHandler(requestService *service.ApprovalRequestService) *ApprovalHandler {
	return &ApprovalHandler{requestService: requestService}
}

// ListPendingRequests handles GET /approval-requests
func (h *ApprovalHandler) ListPendingRequests(c *gin.Context) {
	params := utils.ParsePaginationParams(c)
	requests, total, err := h.requestService.ListPendingRequests(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, gin.H{
		"requests":   requests,
		"pagination": utils.CalculatePaginationMetadata(total, params.Limit, params.Offset),
	})
}

// GetRequest handles GET /approval-requests/:requestId
func (h *ApprovalHandler) GetRequest(c *gin.Context) {
	request, err := h.requestService.GetRequest(c.Request.Context(), c.Param("requestId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, request)
}

// RecordDecision handles POST /approval-requests/:requestId/decisions
func (h *ApprovalHandler) RecordDecision(c *gin.Context) {
	var request models.DecisionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	approverUserID := utils.GetUserIDFromContext(c)
	if approverUserID == "" {
		utils.SendBadRequestError(c, "Missing user identity", "")
		return
	}

	requestID := c.Param("requestId")
	allowed, err := h.requestService.CanUserApprove(c.Request.Context(), requestID, approverUserID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	if !allowed {
		utils.SendInvalidStateError(c, "User cannot record a decision on this request")
		return
	}

	updated, err := h.requestService.ProcessApproval(c.Request.Context(), requestID, request.Decision, request.Comment, approverUserID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, updated)
}

// CanApprove handles GET /approval-requests/:requestId/can-approve
func (h *ApprovalHandler) CanApprove(c *gin.Context) {
	userID := utils.GetUserIDFromContext(c)
	if userID == "" {
		utils.SendBadRequestError(c, "Missing user identity", "")
		return
	}

	allowed, err := h.requestService.CanUserApprove(c.Request.Context(), c.Param("requestId"), userID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, gin.H{"canApprove": allowed})
}

// GetRequestForShare handles GET /shares/:shareId/approval-request
func (h *ApprovalHandler) GetRequestForShare(c *gin.Context) {
	request, err := h.requestService.GetRequestForShare(c.Request.Context(), c.Param("shareId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, request)
}
