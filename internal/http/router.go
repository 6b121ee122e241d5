// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/janseva/go-queue-backend/internal/config"
	"github.com/janseva/go-queue-backend/internal/events"
	"github.com/janseva/go-queue-backend/internal/http/handlers"
	"github.com/janseva/go-queue-backend/internal/http/middleware"
	"github.com/janseva/go-queue-backend/internal/repo"
	"github.com/janseva/go-queue-backend/internal/services"
	"github.com/janseva/go-queue-backend/internal/ws"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, the live
// websocket queue feed, and then mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip (websocket and metrics excluded)
//  7. Metrics
//  8. Rate limiter (per user/IP)
//  9. CORS and Security headers
//
// Idempotency validation runs per-group behind Auth, since replay lookup is
// keyed by the authenticated user.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, hub *ws.Hub, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction. Bookings carry citizen identity,
	// so the scrubbing logger is the default posture.
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Response compression (streaming endpoints excluded)
	r.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPathsRegexs([]string{`^/ws/.*`, `^/metrics$`})))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← repo/db/hub
	estSvc := services.NewEstimateService(db)
	estSvc.SampleSize = cfg.Queue.EstimateSampleSize
	estSvc.DefaultMinutes = cfg.Queue.DefaultServiceMinutes
	estSvc.OutlierMinutes = cfg.Queue.OutlierMinutes

	tokenSvc := services.NewTokenService(db)
	tokenSvc.Estimator = estSvc
	tokenSvc.Publisher = events.Counted(hub)

	queueSvc := services.NewQueueService(tokenSvc, estSvc)

	h := handlers.New(tokenSvc, queueSvc, estSvc, db, cfg.BookingKeyTTL)

	// Live per-office queue feed. Browser clients authenticate with the
	// access_token query parameter since websockets cannot set headers.
	r.GET("/ws/offices/:id", hub.Handler())

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Master data: browsable without an account
		api.GET("/states", h.ListStates)
		api.GET("/states/:id/districts", h.ListDistricts)
		api.GET("/districts/:id/cities", h.ListCities)
		api.GET("/cities/:id/offices", h.ListOffices)
		api.GET("/offices/:id", h.GetOffice)
		api.GET("/offices/:id/services", h.ListOfficeServices)
		api.GET("/offices/:id/departments", h.ListOfficeDepartments)
	}

	// Replay detection needs the authenticated user, so the idempotency
	// validator sits behind Auth rather than in the global chain. The
	// authoritative replay (returning the original token) happens in the
	// CreateToken handler; this middleware validates the key format and flags
	// known replays for downstream consumers.
	idem := middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, userID, key string, now time.Time) (bool, error) {
			if userID == "" {
				return false, nil
			}
			exists, err := repo.HasBookingKey(ctx, db, userID, key, now)
			if err != nil {
				return false, nil
			}
			return exists, nil
		},
	)

	// Everything below requires a verified identity.
	authed := api.Group("", middleware.Auth(cfg.JWTSecret), idem)
	{
		// Tokens (citizen side)
		authed.POST("/tokens", h.CreateToken)
		authed.GET("/tokens", h.ListTokens)
		authed.GET("/tokens/:id", h.GetToken)
		authed.POST("/tokens/:id/cancel", h.CancelToken)
		authed.POST("/tokens/:id/documents", h.AttachDocument)
		authed.GET("/tokens/:id/estimate", h.TokenEstimate)
	}

	official := authed.Group("", middleware.RequireOfficial())
	{
		// Counter actions
		official.POST("/tokens/:id/check-in", h.CheckInToken)
		official.POST("/tokens/:id/verify", h.VerifyToken)
		official.POST("/tokens/:id/skip", h.SkipToken)
		official.POST("/tokens/:id/complete", h.CompleteToken)
		official.POST("/tokens/:id/recall", h.RecallToken)
		official.GET("/tokens/by-number/:number", h.GetTokenByNumber)

		// Queue views
		official.GET("/queue", h.ListQueue)
		official.GET("/queue/serving", h.CurrentlyServing)
		official.GET("/queue/skipped", h.ListSkippedQueue)
		official.POST("/queue/next", h.CallNext)

		// Analytics
		official.GET("/analytics/summary", h.AnalyticsSummary)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
