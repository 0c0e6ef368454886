package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/feral-file/nft-registry/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Collection metadata (reads public, writes custodian-gated)
		v1.GET("/metadata", handler.GetMetadata)
		v1.PUT("/metadata/:field", middleware.APIKeyAuth(authCfg), handler.UpdateMetadataField)
		v1.GET("/custodians", handler.GetCustodians)
		v1.PUT("/custodians", middleware.APIKeyAuth(authCfg), handler.UpdateCustodians)

		// Registry-wide counters and capabilities (public read access)
		v1.GET("/supply", handler.GetSupply)
		v1.GET("/stats", handler.GetStats)
		v1.GET("/interfaces", handler.GetInterfaces)

		// Token queries (public read access)
		v1.GET("/tokens/:id", handler.GetToken)
		v1.GET("/tokens/:id/owner", handler.GetTokenOwner)
		v1.GET("/tokens/:id/operator", handler.GetTokenOperator)

		// Owner and operator index queries (public read access)
		v1.GET("/owners/:principal/balance", handler.GetOwnerBalance)
		v1.GET("/owners/:principal/token-ids", handler.GetOwnerTokenIDs)
		v1.GET("/owners/:principal/tokens", handler.GetOwnerTokens)
		v1.GET("/owners/:principal/approved-for-all", handler.GetApprovedForAll)
		v1.GET("/operators/:principal/token-ids", handler.GetOperatorTokenIDs)
		v1.GET("/operators/:principal/tokens", handler.GetOperatorTokens)

		// Mutations. Minting is custodian-gated behind API key auth; the
		// remaining mutations authorize against the caller principal inside
		// the registry.
		v1.POST("/tokens", middleware.APIKeyAuth(authCfg), handler.Mint)
		v1.POST("/tokens/:id/transfer", handler.Transfer)
		v1.POST("/tokens/:id/transfer-from", handler.TransferFrom)
		v1.POST("/tokens/:id/approve", handler.Approve)
		v1.POST("/tokens/:id/burn", handler.Burn)
		v1.POST("/approvals", handler.SetApprovalForAll)

		// Transaction log (public read access)
		v1.GET("/transactions/count", handler.GetTransactionCount)
		v1.GET("/transactions/:tx_id", handler.GetTransaction)
	}
}
