package api

import (
	"net/http"
	"strconv"
	"time"

	"auction-service/internal/auth"
	"auction-service/internal/service"
	"auction-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	userService        *service.UserService
	auctionService     *service.AuctionService
	bidService         *service.BidService
	negotiationService *service.NegotiationService
	adminService       *service.AdminService
	tokens             *auth.TokenManager
}

// NewHandler creates a new HTTP handler
func NewHandler(
	userService *service.UserService,
	auctionService *service.AuctionService,
	bidService *service.BidService,
	negotiationService *service.NegotiationService,
	adminService *service.AdminService,
	tokens *auth.TokenManager,
) *Handler {
	return &Handler{
		userService:        userService,
		auctionService:     auctionService,
		bidService:         bidService,
		negotiationService: negotiationService,
		adminService:       adminService,
		tokens:             tokens,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.POST("/logout", h.logout)
	}

	userGroup := api.Group("/user", h.authenticate())
	{
		userGroup.GET("/profile", h.profile)
	}

	auctionGroup := api.Group("/auction", h.authenticate())
	{
		auctionGroup.POST("/create", h.createAuction)
		auctionGroup.GET("/list", h.listAuctions)
		auctionGroup.GET("/my-auctions", h.myAuctions)
		auctionGroup.POST("/place-bid", h.placeBid)
		auctionGroup.GET("/:id", h.getAuction)
		auctionGroup.PUT("/:id", h.updateAuction)
		auctionGroup.DELETE("/:id", h.deleteAuction)
		auctionGroup.GET("/:id/leader", h.leader)
		auctionGroup.GET("/:id/bids", h.bids)
		auctionGroup.GET("/:id/invoice", h.invoice)
		auctionGroup.POST("/:id/accept", h.acceptBid)
		auctionGroup.POST("/:id/reject", h.rejectBid)
		auctionGroup.POST("/:id/counter-offer", h.counterOffer)
		auctionGroup.POST("/:id/counter-response", h.counterResponse)
	}

	adminGroup := api.Group("/admin", h.authenticate(), h.requireAdmin())
	{
		adminGroup.GET("/stats", h.adminStats)
		adminGroup.GET("/auctions", h.adminAuctions)
		adminGroup.GET("/users", h.adminUsers)
		adminGroup.POST("/auctions/:id/start", h.adminStartAuction)
		adminGroup.POST("/auctions/:id/reset", h.adminResetAuction)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
