package router

import (
	"time"

	"github.com/gin-gonic/gin"

	promhandler "github.com/endosim/pk-api/internal/handler/prometheus"
	"github.com/endosim/pk-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// AdminHandler registers routes of which some sit behind the admin
// gate middleware.
type AdminHandler interface {
	RegisterRoutes(*gin.RouterGroup, gin.HandlerFunc)
}

type Router struct {
	engine       *gin.Engine
	healthH      Handler
	metricsH     *promhandler.Handler
	authH        Handler
	drugH        AdminHandler
	simulationH  Handler
	calibrationH Handler
	safetyH      Handler
	adminAuth    gin.HandlerFunc
}

type Config struct {
	RequestTimeout    time.Duration
	RateLimitEnabled  bool
	RequestsPerSecond float64
	RateBurst         int
	CORS              middleware.CORSConfig
}

func NewRouter(
	healthH Handler,
	metricsH *promhandler.Handler,
	authH Handler,
	drugH AdminHandler,
	simulationH Handler,
	calibrationH Handler,
	safetyH Handler,
	adminAuth gin.HandlerFunc,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	r := &Router{
		engine:       engine,
		healthH:      healthH,
		metricsH:     metricsH,
		authH:        authH,
		drugH:        drugH,
		simulationH:  simulationH,
		calibrationH: calibrationH,
		safetyH:      safetyH,
		adminAuth:    adminAuth,
	}

	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 30 * time.Second
	}

	// Order matters for the post-request phases: the error handler
	// writes its response before compression closes the stream and
	// before logging and metrics read the final status.
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORS),
	)

	if config.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(config.RequestsPerSecond, config.RateBurst)
		engine.Use(limiter.RateLimit())
	}

	engine.Use(
		middleware.Compress(middleware.DefaultCompressConfig()),
		metricsH.Middleware(),
		middleware.SizeLimit(middleware.DefaultSizeLimitConfig()),
		middleware.Timeout(config.RequestTimeout),
		middleware.ErrorHandler(),
	)

	return r
}

func (r *Router) Setup() {
	root := r.engine.Group("")
	r.healthH.RegisterRoutes(root)
	root.GET("/metrics", r.metricsH.Handler())

	api := r.engine.Group("/api/v1")
	r.authH.RegisterRoutes(api)
	r.drugH.RegisterRoutes(api, r.adminAuth)
	r.simulationH.RegisterRoutes(api)
	r.calibrationH.RegisterRoutes(api)
	r.safetyH.RegisterRoutes(api)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
