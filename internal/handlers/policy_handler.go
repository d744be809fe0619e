package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/docushare/share-management-api/internal/models"
	"github.com/docushare/share-management-api/internal/service"
	"github.com/docushare/share-management-api/internal/utils"
)

// PolicyHandler handles approval policy HTTP requests
type PolicyHandler struct {
	policyService *service.ApprovalPolicyService
}

// NewPolicyHandler creates a new policy handler instance
func NewPolicyHandler(policyService *service.ApprovalPolicyService) *PolicyHandler {
	return &PolicyHandler{policyService: policyService}
}

// CreatePolicy handles POST /approval-policies
func (h *PolicyHandler) CreatePolicy(c *gin.Context) {
	var request models.PolicyCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	policy, err := h.policyService.CreatePolicy(c.Request.Context(), &request)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendCreatedResponse(c, policy)
}

// GetPolicy handles GET /approval-policies/:policyId
func (h *PolicyHandler) GetPolicy(c *gin.Context) {
	policy, err := h.policyService.GetPolicy(c.Request.Context(), c.Param("policyId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, policy)
}

// ListPolicies handles GET /approval-policies
func (h *PolicyHandler) ListPolicies(c *gin.Context) {
	policies, err := h.policyService.ListPolicies(c.Request.Context())
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, gin.H{"policies": policies})
}

// UpdatePolicy handles PATCH /approval-policies/:policyId
func (h *PolicyHandler) UpdatePolicy(c *gin.Context) {
	var request models.PolicyUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	policy, err := h.policyService.UpdatePolicy(c.Request.Context(), c.Param("policyId"), &request)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendOKResponse(c, policy)
}

// ToggleActive handles PUT /approval-policies/:policyId/active
func (h *PolicyHandler) ToggleActive(c *gin.Context) {
	var request struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	if err := h.policyService.ToggleActive(c.Request.Context(), c.Param("policyId"), *request.Active); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendNoContentResponse(c)
}

// DeletePolicy handles DELETE /approval-policies/:policyId
func (h *PolicyHandler) DeletePolicy(c *gin.Context) {
	if err := h.policyService.DeletePolicy(c.Request.Context(), c.Param("policyId")); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendNoContentResponse(c)
}
