package router

import (
	"github.com/gin-gonic/gin"
	"github.com/orderbridge/backend/internal/interfaces/http/handler"
)

// NewFulfillmentRoutes groups the sales order and job report endpoints.
// guard runs in front of the two endpoints that change upstream state.
func NewFulfillmentRoutes(h *handler.FulfillmentHandler, guard ...gin.HandlerFunc) *DomainGroup {
	mutating := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, guard...), fn)
	}

	return NewDomainGroup("fulfillment", "").
		GET("/to-order", h.ToOrder).
		POST("/add-to-cart", mutating(h.AddToCart)...).
		POST("/update-so-tag-ordered", mutating(h.UpdateTagOrdered)...).
		GET("/overdue-jobs", h.OverdueJobs).
		GET("/pending-jobs", h.PendingJobs)
}

// NewSessionRoutes groups the ShopVox and vendor login endpoints.
func NewSessionRoutes(h *handler.SessionHandler) *DomainGroup {
	return NewDomainGroup("login", "/login").
		GET("/shopvox", h.ShopVoxLogin).
		POST("/shopvox/mfa", h.ShopVoxMFA).
		GET("/sanmar", h.SanMarLogin).
		GET("/ss", h.SSActivewearLogin)
}

// NewSystemRoutes groups the system info endpoint.
func NewSystemRoutes(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/info", h.GetSystemInfo)
}

// RegisterProbes mounts the unversioned liveness endpoints.
func RegisterProbes(engine *gin.Engine, h *handler.SystemHandler) {
	engine.GET("/", h.Root)
	engine.GET("/health", h.Health)
}
