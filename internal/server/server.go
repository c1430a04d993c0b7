package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/multielectric/mesupply/internal/auth"
	"github.com/multielectric/mesupply/internal/config"
	"github.com/multielectric/mesupply/internal/database"
	"github.com/multielectric/mesupply/internal/events"
	"github.com/multielectric/mesupply/internal/payments"
	"github.com/multielectric/mesupply/internal/store"
)

type Server struct {
	router   *gin.Engine
	cfg      *config.Config
	db       *database.DB
	store    *store.Store
	hub      *events.Hub
	checkout *payments.CheckoutService
	ingestor *payments.Ingestor
	tokens   *auth.Service
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, db *database.DB, st *store.Store, hub *events.Hub, checkout *payments.CheckoutService, ingestor *payments.Ingestor, tokens *auth.Service) *Server {
	router := gin.Default()

	server := &Server{
		router:   router,
		cfg:      cfg,
		db:       db,
		store:    st,
		hub:      hub,
		checkout: checkout,
		ingestor: ingestor,
		tokens:   tokens,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthCheck)
		api.POST("/checkout/create-session", s.createCheckoutSession)
		api.POST("/webhooks/stripe", s.handleStripeWebhook)
		api.POST("/employee/login", s.login)
	}

	// Everything employee-facing sits behind the session token.
	authed := api.Group("", s.requireAuth())
	{
		authed.GET("/employee/me", s.me)

		authed.GET("/orders", s.listOrders)
		authed.GET("/orders/stream", s.streamOrders)
		authed.GET("/orders/:id", s.getOrder)
		authed.PATCH("/orders/:id/status", s.requirePermission(func(p auth.Permissions) bool { return p.CanUpdateOrders }), s.updateOrderStatus)

		authed.GET("/products", s.listProducts)
		authed.POST("/products", s.requireInventory(), s.createProduct)
		authed.PATCH("/products/:id", s.requireInventory(), s.updateProduct)
		authed.DELETE("/products/:id", s.requireInventory(), s.deleteProduct)
		authed.GET("/categories", s.listCategories)

		authed.GET("/clients", s.listClients)
		authed.GET("/search", s.search)

		authed.GET("/users", s.listUsers)
		authed.POST("/users", s.requireUserAdmin(), s.createUser)
		authed.PATCH("/users/:id", s.requireUserAdmin(), s.updateUser)
		authed.DELETE("/users/:id", s.requireUserAdmin(), s.deleteUser)

		authed.POST("/uploads/presign", s.presignUpload)
	}
}

func (s *Server) requireInventory() gin.HandlerFunc {
	return s.requirePermission(func(p auth.Permissions) bool { return p.CanManageInventory })
}

func (s *Server) requireUserAdmin() gin.HandlerFunc {
	return s.requirePermission(func(p auth.Permissions) bool { return p.CanManageUsers })
}

// healthCheck endpoint for monitoring
func (s *Server) healthCheck(c *gin.Context) {
	// Check database health
	if err := s.db.HealthCheck(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"error":  "database connection failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "mesupply",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}
