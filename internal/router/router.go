package router

import (
	"github.com/gin-gonic/gin"

	"github.com/docushare/share-management-api/internal/handlers"
	"github.com/docushare/share-management-api/internal/service"
	"github.com/docushare/share-management-api/internal/utils"
)

// SetupRouter configures all API routes
func SetupRouter(
	shareService *service.DocumentShareService,
	requestService *service.ApprovalRequestService,
	policyService *service.ApprovalPolicyService,
	settingsService *service.ApprovalSettingsService,
) *gin.Engine {
	router := gin.Default()

	// Global middleware to extract identity headers and set context
	router.Use(func(c *gin.Context) {
		if userID := c.GetHeader("user-id"); userID != "" {
			utils.SetContextValue(c, "userID", userID)
		}
		if apiKeyID := c.GetHeader("api-key-id"); apiKeyID != "" {
			utils.SetContextValue(c, "apiKeyID", apiKeyID)
		}
		if correlationID := c.GetHeader("correlation-id"); correlationID != "" {
			utils.SetContextValue(c, "correlationID", correlationID)
		}
		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	// Create handlers
	shareHandler := handlers.NewShareHandler(shareService)
	approvalHandler := handlers.NewApprovalHandler(requestService)
	policyHandler := handlers.NewPolicyHandler(policyService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Share routes
		shares := v1.Group("/shares")
		{
			shares.POST("", shareHandler.CreateShare)
			shares.GET("", shareHandler.ListMyShares)
			shares.GET("/code/:shareCode", shareHandler.GetShareByCode)
			shares.GET("/:shareId", shareHandler.GetShare)
			shares.GET("/:shareId/approval-request", approvalHandler.GetRequestForShare)
		}

		// Approval request routes
		requests := v1.Group("/approval-requests")
		{
			requests.GET("", approvalHandler.ListPendingRequests)
			requests.GET("/:requestId", approvalHandler.GetRequest)
			requests.POST("/:requestId/decisions", approvalHandler.RecordDecision)
			requests.GET("/:requestId/can-approve", approvalHandler.CanApprove)
		}

		// Approval policy routes
		policies := v1.Group("/approval-policies")
		{
			policies.POST("", policyHandler.CreatePolicy)
			policies.GET("", policyHandler.ListPolicies)
			policies.GET("/:policyId", policyHandler.GetPolicy)
			policies.PATCH("/:policyId", policyHandler.UpdatePolicy)
			policies.PUT("/:policyId/active", policyHandler.ToggleActive)
			policies.DELETE("/:policyId", policyHandler.DeletePolicy)
		}

		// Approval settings routes
		settings := v1.Group("/approval-settings")
		{
			settings.GET("", settingsHandler.GetSettings)
			settings.PATCH("", settingsHandler.UpdateSettings)
			settings.POST("/enable", settingsHandler.EnableApproval)
			settings.POST("/disable", settingsHandler.DisableApproval)
			settings.POST("/reset", settingsHandler.ResetSettings)
		}
	}

	return router
}
