package routes

import (
	"time"

	"waysfood-api/handlers"
	"waysfood-api/middleware"
	"waysfood-api/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps is everything the route table needs.
type Deps struct {
	Tokens       *middleware.TokenManager
	CORSOrigins  []string
	UploadDir    string // served at /uploads when set
	Public       *handlers.PublicHandler
	Auth         *handlers.AuthHandler
	Users        *handlers.UserHandler
	Products     *handlers.ProductHandler
	Partners     *handlers.PartnerHandler
	Transactions *handlers.TransactionHandler
}

func SetupRoutes(r *gin.Engine, d Deps) {
	r.Use(cors.New(corsConfig(d.CORSOrigins)))

	r.GET("/health", d.Public.Health)
	if d.UploadDir != "" {
		r.Static("/uploads", d.UploadDir)
	}

	// The route table is served both under /api/v1 and at the root.
	for _, prefix := range []string{"/api/v1", ""} {
		mount(r, prefix, d)
	}
}

func mount(r *gin.Engine, prefix string, d Deps) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group(prefix)
	{
		public.POST("/register", d.Auth.Register)
		public.POST("/login", d.Auth.Login)

		public.GET("/users", d.Users.List)
		public.GET("/user/:id", d.Users.Get)

		public.GET("/products", d.Products.List)
		public.GET("/products/:userId", d.Products.ListByOwner)
		public.GET("/product/:id", d.Products.Get)

		public.GET("/partners/popular", d.Partners.Popular)
		public.GET("/state-machine", d.Public.StateMachine)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group(prefix)
	auth.Use(middleware.AuthRequired(d.Tokens))
	{
		auth.PUT("/user/:id", d.Users.Update)
		auth.DELETE("/user/:id", d.Users.Delete)

		// Ownership and role checks for transactions live in the service.
		auth.GET("/transaction/:id", d.Transactions.Get)
		auth.GET("/transaction/:id/history", d.Transactions.History)
		auth.PUT("/transaction/:id", d.Transactions.Update)
		auth.DELETE("/transaction/:id", d.Transactions.Delete)
		auth.GET("/transactions/:id", d.Transactions.ListForPartner)
		auth.GET("/my-transactions", d.Transactions.ListForCustomer)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group(prefix)
	customer.Use(middleware.AuthRequired(d.Tokens), middleware.RoleRequired(models.RoleCustomer))
	{
		customer.POST("/transaction", d.Transactions.Create)
	}

	// ── Partner routes ─────────────────────────────────────────────
	partner := r.Group(prefix)
	partner.Use(middleware.AuthRequired(d.Tokens), middleware.RoleRequired(models.RolePartner))
	{
		partner.POST("/product", d.Products.Create)
		partner.PUT("/product/:id", d.Products.Update)
		partner.DELETE("/product/:id", d.Products.Delete)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}
