package httpapi

import (
	"net/http"
	"time"

	"rawmart-be/internal/analytics"
	"rawmart-be/internal/auth"
	"rawmart-be/internal/cart"
	"rawmart-be/internal/config"
	"rawmart-be/internal/db"
	"rawmart-be/internal/logger"
	"rawmart-be/internal/material"
	"rawmart-be/internal/middleware"
	"rawmart-be/internal/order"
	"rawmart-be/internal/review"
	"rawmart-be/internal/supplier"
	"rawmart-be/internal/surplus"
	"rawmart-be/internal/user"
	"rawmart-be/internal/utils"
	"rawmart-be/internal/validation"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Deps groups everything the handlers delegate to.
type Deps struct {
	Config    *config.Config
	DB        db.Provider
	Sessions  *auth.Issuer
	Users     user.Service
	Suppliers supplier.Service
	Materials material.Service
	Reviews   review.Service
	Carts     cart.Service
	Orders    order.Service
	Surplus   surplus.Service
	Analytics analytics.Service
	Limiter   *middleware.RateLimiter
}

type Handler struct {
	deps Deps
	v    *validatorv10.Validate
}

func NewHandler(deps Deps) *Handler {
	return &Handler{deps: deps, v: validation.New()}
}

// NewRouter registers every /api route on a gin engine.
func NewRouter(deps Deps) *gin.Engine {
	h := NewHandler(deps)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader, "X-Device-ID", "X-Client-Type"},
		ExposeHeaders:    []string{logger.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", h.health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/vendor/register", h.vendorRegister)
	authGroup.POST("/vendor/login", h.vendorLogin)
	authGroup.POST("/supplier/register", h.supplierRegister)
	authGroup.POST("/supplier/login", h.supplierLogin)
	authGroup.POST("/logout", h.logout)
	authGroup.GET("/me", requireRole(), h.me)

	vendor := requireRole(utils.RoleVendor)
	supplierOnly := requireRole(utils.RoleSupplier)

	api.GET("/materials", h.listMaterials)
	api.GET("/materials/:id", h.getMaterial)
	api.GET("/materials/:id/reviews", h.listReviews)
	api.POST("/materials/:id/reviews", vendor, h.createReview)
	api.PUT("/reviews/:id", vendor, h.updateReview)
	api.DELETE("/reviews/:id", vendor, h.deleteReview)

	carts := api.Group("/cart", vendor)
	carts.GET("", h.getCart)
	carts.POST("", h.addToCart)
	carts.DELETE("", h.clearCart)
	carts.PUT("/:materialId", h.updateCartItem)
	carts.DELETE("/:materialId", h.removeCartItem)

	orders := api.Group("/orders", vendor)
	orders.POST("", h.checkout)
	orders.GET("", h.listOrders)
	orders.GET("/:id", h.getOrder)
	orders.POST("/payment-callback", h.orderPaymentCallback)

	api.GET("/surplus", h.listSurplus)
	api.POST("/surplus", vendor, h.createSurplus)
	api.PUT("/surplus/:id", vendor, h.updateSurplus)
	api.DELETE("/surplus/:id", vendor, h.deleteSurplus)
	api.POST("/surplus/:id/accept", supplierOnly, h.acceptSurplus)
	api.POST("/surplus/:id/payment-callback", supplierOnly, h.surplusPaymentCallback)

	sup := api.Group("/supplier", supplierOnly)
	sup.GET("/profile", h.getSupplierProfile)
	sup.PUT("/profile", h.updateSupplierProfile)
	sup.GET("/materials", h.listSupplierMaterials)
	sup.POST("/materials", h.createMaterial)
	sup.PUT("/materials/:id", h.updateMaterial)
	sup.DELETE("/materials/:id", h.deleteMaterial)
	sup.GET("/orders", h.listSupplierOrders)
	sup.PUT("/orders", h.updateSupplierOrder)
	sup.GET("/analytics", h.supplierAnalytics)
	sup.GET("/analytics/export", h.exportSupplierAnalytics)

	admin := api.Group("/admin", requireRole(utils.RoleAdmin))
	admin.GET("/suppliers/:id/orders", h.adminSupplierOrders)

	return r
}

// NewHTTPHandler wraps the router in the request-id, logging, auth and rate limit
// middleware, outermost first.
func NewHTTPHandler(deps Deps, limiter *middleware.RateLimiter) http.Handler {
	deps.Limiter = limiter
	var next http.Handler = NewRouter(deps)
	next = limiter.Middleware(next)
	next = middleware.AuthMiddleware(deps.Sessions)(next)
	next = logger.LoggingMiddleware(next)
	next = logger.RequestIDMiddleware(next)
	return next
}

func (h *Handler) health(c *gin.Context) {
	ctx := c.Request.Context()

	conn, err := h.deps.DB.Get(ctx)
	if err == nil {
		err = conn.PingContext(ctx)
	}
	if err != nil {
		logger.FromCtx(ctx).Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}

	body := gin.H{"status": "ok"}
	if m, ok := h.deps.DB.(*db.Manager); ok {
		body["database"] = m.Stats()
	}
	if h.deps.Limiter != nil {
		body["rateLimiter"] = gin.H{"visitors": h.deps.Limiter.Visitors.Load()}
	}
	c.JSON(http.StatusOK, body)
}
