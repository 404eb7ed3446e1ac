package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/numtrack/numtrack/internal/authz"
	"github.com/numtrack/numtrack/pkg/middleware"
)

type RouterDeps struct {
	Auth      *AuthHandler
	Inventory *InventoryHandler
	Sales     *SalesHandler
	Reports   *ReportsHandler

	AuthMiddleware *middleware.AuthMiddleware
	SessionGuard   gin.HandlerFunc
	Policy         *authz.Policy
	RateLimiter    *middleware.RateLimiter
}

// RegisterRoutes wires the whole HTTP surface. Every /api/v1 route past
// the auth endpoints requires a valid JWT, a live session and the
// matching role capability.
func RegisterRoutes(router *gin.Engine, deps RouterDeps) {
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	if deps.RateLimiter != nil {
		api.Use(deps.RateLimiter.Middleware())
	}

	api.POST("/auth/register", deps.Auth.Register)
	api.POST("/auth/login", deps.Auth.Login)

	authed := api.Group("")
	authed.Use(deps.AuthMiddleware.Authenticate(), deps.SessionGuard)

	authed.POST("/auth/logout", deps.Auth.Logout)
	authed.GET("/auth/me", deps.Auth.Me)
	authed.PUT("/auth/profile", deps.Auth.UpdateProfile)
	users := authed.Group("/users", deps.Policy.Require(authz.CapManageUsers))
	{
		users.GET("", deps.Auth.ListUsers)
		users.POST("", deps.Auth.CreateUser)
	}

	inventory := authed.Group("", deps.Policy.Require(authz.CapManageInventory))
	{
		inventory.GET("/numbers", deps.Inventory.ListNumbers)
		inventory.GET("/numbers/:id", deps.Inventory.GetNumber)
		inventory.PUT("/numbers/:id/rts-status", deps.Inventory.UpdateRTSStatus)
		inventory.PUT("/numbers/:id/activation-status", deps.Inventory.SetActivationStatus)
		inventory.PUT("/numbers/:id/upload-status", deps.Inventory.SetUploadStatus)
		inventory.PUT("/numbers/:id/cocp-dates", deps.Inventory.SetCOCPDates)
		inventory.PUT("/numbers/:id/safe-custody", deps.Inventory.SetSafeCustodyDate)
		inventory.PUT("/numbers/:id/assignment", deps.Inventory.UpdateAssignment)

		inventory.POST("/purchases", deps.Inventory.AddPurchase)
		inventory.GET("/purchases", deps.Inventory.ListPurchases)

		inventory.POST("/dealer-purchases", deps.Inventory.AddDealerPurchase)
		inventory.GET("/dealer-purchases", deps.Inventory.ListDealerPurchases)
		inventory.PUT("/dealer-purchases/:id", deps.Inventory.UpdateDealerPurchase)

		inventory.POST("/reminders", deps.Inventory.AddReminder)
		inventory.GET("/reminders", deps.Inventory.ListReminders)
		inventory.PUT("/reminders/:id/done", deps.Inventory.MarkReminderDone)

		inventory.POST("/sales", deps.Sales.AddSale)
		inventory.GET("/sales", deps.Sales.ListSales)
		inventory.PUT("/sales/:id/toggle-payment", deps.Sales.TogglePayment)
		inventory.PUT("/sales/:id/portout", deps.Sales.CompletePortOut)
		inventory.GET("/portouts", deps.Sales.ListPortOuts)
	}

	authed.GET("/activities", deps.Policy.Require(authz.CapViewActivities), deps.Inventory.ListActivities)
	authed.GET("/reports/summary", deps.Policy.Require(authz.CapViewReports), deps.Reports.Summary)

	exports := authed.Group("/exports", deps.Policy.Require(authz.CapExportData))
	{
		exports.GET("/numbers", deps.Reports.ExportNumbers)
		exports.GET("/sales", deps.Reports.ExportSales)
		exports.GET("/purchases", deps.Reports.ExportPurchases)
		exports.GET("/dealer-purchases", deps.Reports.ExportDealerPurchases)
		exports.GET("/reminders", deps.Reports.ExportReminders)
	}
}
