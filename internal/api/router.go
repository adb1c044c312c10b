package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/chroniclehq/chronicle/internal/dbpool"
	"github.com/chroniclehq/chronicle/internal/domain"
	"github.com/chroniclehq/chronicle/internal/middleware"
	"github.com/chroniclehq/chronicle/internal/models"
	"github.com/chroniclehq/chronicle/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log         *logrus.Logger
	Pool        *dbpool.Pool
	Hub         *ws.Hub
	Ledger      domain.Ledger
	Engine      domain.Engine
	Audit       domain.AuditQuery
	Entities    domain.EntityReader
	Registry    *models.Registry
	CORSOrigins []string
	AdminToken  string
	Version     string
}

// Router-level limits.
const (
	maxBodySize = 10 << 20 // 10 MB
	rateLimit   = 100      // requests per second per IP
	rateBurst   = 200      // token bucket burst size
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())

	// Metrics endpoint (unauthenticated, like health).
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.Pool, deps.Hub, log, deps.Version)
	transactions := NewTransactionHandler(deps.Ledger, deps.Engine, log)
	audit := NewAuditHandler(deps.Audit, log)
	entities := NewEntityHandler(deps.Entities, deps.Registry, log)

	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// Transaction lifecycle and operation execution.
	api.POST("/transactions", transactions.Create)
	api.GET("/transactions", transactions.List)
	api.GET("/transactions/:id", transactions.Get)
	api.POST("/transactions/:id/operations", transactions.Execute)
	api.POST("/transactions/:id/complete", transactions.Complete)
	api.POST("/transactions/:id/fail", transactions.Fail)

	// Privileged cascade delete of a transaction and its audit trail.
	api.DELETE("/transactions/:id", middleware.AdminAuth(deps.AdminToken, log), transactions.Delete)

	// Audit history queries.
	api.GET("/audit/transactions/:id", audit.ByTransaction)
	api.GET("/audit/entity/:type/:id", audit.ByEntity)
	api.GET("/audit/recent", audit.Recent)
	api.GET("/audit/summary", audit.Summary)

	// Current entity state.
	api.GET("/entities/:type", entities.List)
	api.GET("/entities/:type/:id", entities.Get)

	// Live change feed.
	api.GET("/ws", wsHandler(ctx, log, deps.Hub, deps.CORSOrigins))
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
