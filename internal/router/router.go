package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/vitemonmedoc/medoc/internal/middleware"
	"github.com/vitemonmedoc/medoc/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type HealthHandler interface {
	RegisterRoutes(gin.IRoutes)
}

type Router struct {
	engine   *gin.Engine
	metrics  *metrics.Metrics
	health   HealthHandler
	handlers []Handler
}

type RouterConfig struct {
	RateLimit      rate.Limit
	RateBurst      int
	RequestTimeout time.Duration
	// AllowOrigins are the browser origins admitted by CORS; "*" admits any.
	AllowOrigins []string
	SizeLimit    middleware.SizeLimitConfig
	// Logger receives one line per request; the zero value uses the global logger.
	Logger *zerolog.Logger
}

// NewRouter builds the engine and its middleware chain. Route order matters
// only for the API group; /health and /metrics sit outside rate limiting.
func NewRouter(m *metrics.Metrics, health HealthHandler, config RouterConfig, handlers ...Handler) *Router {
	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	r := &Router{
		engine:   engine,
		metrics:  m,
		health:   health,
		handlers: handlers,
	}

	requestLogger := middleware.Logger()
	if config.Logger != nil {
		requestLogger = middleware.LoggerWith(*config.Logger)
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		requestLogger,
		middleware.ErrorHandler(),
		m.Middleware(),
		middleware.SecurityHeaders(),
		middleware.CORS(config.AllowOrigins...),
	)

	if config.RequestTimeout <= 0 {
		config.RequestTimeout = middleware.DefaultTimeoutConfig().Duration
	}
	if config.SizeLimit.MaxBodySize <= 0 {
		config.SizeLimit = middleware.DefaultSizeLimitConfig()
	}

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"status": "error", "message": "Ressource introuvable"})
	})
	engine.NoMethod(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{"status": "error", "message": "Méthode non autorisée"})
	})

	r.setup(config)
	return r
}

func (r *Router) setup(config RouterConfig) {
	r.health.RegisterRoutes(r.engine)
	r.engine.GET("/metrics", r.metrics.Handler())

	api := r.engine.Group("/api")
	if config.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		api.Use(limiter.RateLimit())
	}
	api.Use(
		middleware.SizeLimit(config.SizeLimit),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}),
	)

	for _, h := range r.handlers {
		h.RegisterRoutes(api)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.engine.ServeHTTP(w, req)
}
