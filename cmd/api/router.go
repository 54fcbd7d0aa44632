package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rez-backend/internal/shared/middleware"
	"rez-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", healthCheckHandler(c))
		v1.GET("/db-test", databaseTestHandler(c))

		setupStoreRoutes(v1, c)
		setupProductRoutes(v1, c)
		setupOutletRoutes(v1, c)
		setupDiscountRoutes(v1, c)
		setupOrderRoutes(v1, c)
		setupCoinRoutes(v1, c)
		setupConsultationRoutes(v1, c)
		setupAdminRoutes(v1, c)
	}

	return router
}

// ========================================
// STORE ROUTES (public, kèm menu + outlet theo store)
// ========================================
func setupStoreRoutes(v1 *gin.RouterGroup, c *container.Container) {
	stores := v1.Group("/stores")
	{
		stores.GET("", c.StoreHandler.List)
		stores.GET("/:id", c.StoreHandler.GetByID)
		stores.GET("/:id/menu", c.MenuHandler.GetByStore)
		stores.GET("/:id/outlets", c.OutletHandler.ListByStore)
	}
}

// ========================================
// PRODUCT ROUTES
// ========================================
func setupProductRoutes(v1 *gin.RouterGroup, c *container.Container) {
	products := v1.Group("/products")
	{
		products.GET("", c.ProductHandler.List)
		products.GET("/:id", c.ProductHandler.GetByID)
	}
}

// ========================================
// OUTLET ROUTES
// ========================================
func setupOutletRoutes(v1 *gin.RouterGroup, c *container.Container) {
	outlets := v1.Group("/outlets")
	{
		outlets.GET("/nearby", c.OutletHandler.FindNearby)
		outlets.GET("/:id", c.OutletHandler.GetByID)
	}
}

// ========================================
// DISCOUNT ROUTES
// ========================================
// Validate và product offers dùng OptionalAuth: user đăng nhập được check
// đầy đủ (per-user limit, new-user), anonymous chỉ preview.
func setupDiscountRoutes(v1 *gin.RouterGroup, c *container.Container) {
	jwtSecret := c.Config.JWT.Secret

	discounts := v1.Group("/discounts")
	{
		discounts.GET("", c.DiscountHandler.List)
		discounts.GET("/offers/bill-payment", c.DiscountHandler.ListBillPaymentOffers)
		discounts.GET("/product/:productId", middleware.OptionalAuthMiddleware(jwtSecret), c.DiscountHandler.ListProductOffers)
		discounts.POST("/validate", middleware.OptionalAuthMiddleware(jwtSecret), c.DiscountHandler.Validate)
		discounts.POST("/validate-card-offer", c.DiscountHandler.ValidateCardOffer)
		discounts.POST("/apply", middleware.AuthMiddleware(jwtSecret), c.DiscountHandler.Apply)
		discounts.GET("/my-history", middleware.AuthMiddleware(jwtSecret), c.DiscountHandler.GetMyHistory)
		discounts.GET("/:id", c.DiscountHandler.GetByID)
	}
}

// ========================================
// ORDER ROUTES (auth required)
// ========================================
func setupOrderRoutes(v1 *gin.RouterGroup, c *container.Container) {
	orders := v1.Group("/orders")
	orders.Use(middleware.AuthMiddleware(c.Config.JWT.Secret))
	{
		orders.POST("", c.OrderHandler.Create)
		orders.GET("/my", c.OrderHandler.ListMine)
		orders.GET("/:id", c.OrderHandler.GetByID)
	}
}

// ========================================
// COIN ROUTES (auth required)
// ========================================
func setupCoinRoutes(v1 *gin.RouterGroup, c *container.Container) {
	coins := v1.Group("/coins")
	coins.Use(middleware.AuthMiddleware(c.Config.JWT.Secret))
	{
		coins.GET("/balance", c.CoinHandler.GetBalance)
		coins.GET("/history", c.CoinHandler.GetHistory)
		coins.POST("/redeem", c.CoinHandler.Redeem)
	}
}

// ========================================
// CONSULTATION ROUTES (auth required)
// ========================================
func setupConsultationRoutes(v1 *gin.RouterGroup, c *container.Container) {
	consultations := v1.Group("/consultations")
	consultations.Use(middleware.AuthMiddleware(c.Config.JWT.Secret))
	{
		consultations.POST("", c.ConsultationHandler.Create)
		consultations.GET("/my", c.ConsultationHandler.ListMine)
		consultations.POST("/:id/cancel", c.ConsultationHandler.Cancel)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	// TODO: Add Role middleware khi có user roles
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(c.Config.JWT.Secret))
	{
		admin.POST("/stores", c.StoreHandler.Create)
		admin.PUT("/stores/:id", c.StoreHandler.Update)
		admin.GET("/stores/:id/consultations", c.ConsultationHandler.ListByStore)

		admin.POST("/products", c.ProductHandler.Create)
		admin.PUT("/products/:id", c.ProductHandler.Update)

		admin.POST("/outlets", c.OutletHandler.Create)
		admin.PUT("/outlets/:id", c.OutletHandler.Update)

		admin.POST("/menu/sections", c.MenuHandler.CreateSection)
		admin.PUT("/menu/sections/:id", c.MenuHandler.UpdateSection)
		admin.DELETE("/menu/sections/:id", c.MenuHandler.DeleteSection)
		admin.POST("/menu/items", c.MenuHandler.CreateItem)
		admin.PUT("/menu/items/:id", c.MenuHandler.UpdateItem)
		admin.PATCH("/menu/items/:id/availability", c.MenuHandler.SetItemAvailability)
		admin.DELETE("/menu/items/:id", c.MenuHandler.DeleteItem)

		admin.POST("/discounts", c.DiscountAdminHandler.Create)
		admin.PUT("/discounts/:id", c.DiscountAdminHandler.Update)
		admin.POST("/discounts/:id/activate", c.DiscountAdminHandler.Activate)
		admin.POST("/discounts/:id/deactivate", c.DiscountAdminHandler.Deactivate)
		admin.GET("/discounts/:id/analytics", c.DiscountAdminHandler.GetAnalytics)

		admin.PATCH("/orders/:id/status", c.OrderHandler.UpdateStatus)
		admin.PATCH("/consultations/:id/status", c.ConsultationHandler.UpdateStatus)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "not connected"
		} else if err := appCtx.DB.HealthCheck(ctx); err != nil {
			dbStatus = fmt.Sprintf("error: %v", err)
		}

		cacheStatus := "ok"
		if appCtx.Cache == nil {
			cacheStatus = "not connected"
		} else if err := appCtx.Cache.Ping(ctx); err != nil {
			cacheStatus = fmt.Sprintf("error: %v", err)
		}

		health := gin.H{
			"status":      "ok",
			"environment": appCtx.Config.App.Environment,
			"version":     appCtx.Config.App.Version,
			"timestamp":   time.Now().Format(time.RFC3339),
			"checks": gin.H{
				"database": dbStatus,
				"cache":    cacheStatus,
			},
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			health["status"] = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}

// ========================================
// DATABASE TEST HANDLER
// ========================================
func databaseTestHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Database not connected",
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var version string
		if err := appCtx.DB.Pool.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": fmt.Sprintf("Query failed: %v", err),
			})
			return
		}

		stats := appCtx.DB.Pool.Stat()

		c.JSON(http.StatusOK, gin.H{
			"message": "Database test successful",
			"database": gin.H{
				"postgres_version": version,
				"pool_stats": gin.H{
					"total_connections":    stats.TotalConns(),
					"idle_connections":     stats.IdleConns(),
					"acquired_connections": stats.AcquiredConns(),
					"max_connections":      stats.MaxConns(),
				},
			},
		})
	}
}
