package handlers

import (
	"net/http"
	"time"

	"go-pos-ledger/internal/metrics"
	"go-pos-ledger/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Logger            *zap.Logger
	Metrics           *metrics.Metrics
	Tokens            middleware.TokenValidator
	CORSOrigins       []string
	AllowRegistration bool
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "online"}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")

	// --- FEATURE FLAG: Admin Registration ---
	admin := api.Group("/admin")
	if cfg.AllowRegistration {
		admin.POST("/register", h.Register)
	} else {
		log.Info("registration_route_disabled")
	}
	admin.POST("/login", h.Login)

	// --- PROTECTED ROUTES ---
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.Tokens))
	{
		protected.GET("/admin/profile", h.GetProfile)
		protected.PUT("/admin/profile", h.UpdateProfile)

		protected.GET("/products", h.GetProducts)
		protected.POST("/products", h.AddProduct)
		protected.GET("/products/:id", h.GetProduct)
		protected.PUT("/products/:id", h.UpdateProduct)
		protected.DELETE("/products/:id", h.DeleteProduct)

		protected.POST("/transactions", h.CreateTransaction)
		protected.GET("/transactions", h.GetTransactions)
		protected.GET("/transactions/date-range", h.GetTransactionsByDateRange)
		protected.GET("/transactions/:id", h.GetTransaction)
		protected.PUT("/transactions/:id", h.UpdateTransaction)
		protected.DELETE("/transactions/:id", h.DeleteTransaction)

		protected.GET("/reports/sales", h.GetSalesReport)

		if h.assistant != nil {
			protected.POST("/assistant/ask", h.AskAI)
		}
	}

	return r
}
