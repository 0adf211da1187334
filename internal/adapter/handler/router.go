package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-coach/internal/adapter/dto/common"
	"github.com/johnquangdev/call-coach/pkg/config"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

const healthTimeout = 3 * time.Second

// Pinger checks that a dependency is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// BucketInspector reports the state of the audio archive
type BucketInspector interface {
	BucketInfo(ctx context.Context) (map[string]interface{}, error)
}

// Router holds all handlers
type Router struct {
	cfg           *config.Config
	callHandler   *Call
	speechHandler *Speech
	db            Pinger
	archive       BucketInspector
	metrics       http.Handler
	logger        *zap.Logger
}

// RouterDeps are the optional dependencies of the router; nil fields
// disable the matching check or endpoint
type RouterDeps struct {
	DB      Pinger
	Archive BucketInspector
	Metrics http.Handler
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, callHandler *Call, speechHandler *Speech, deps RouterDeps, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		cfg:           cfg,
		callHandler:   callHandler,
		speechHandler: speechHandler,
		db:            deps.DB,
		archive:       deps.Archive,
		metrics:       deps.Metrics,
		logger:        logger,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	if rt.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(rt.metrics))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")
	rt.setupCallRoutes(v1)
	rt.setupSpeechRoutes(v1)
}

// setupCallRoutes configures call routes
func (rt *Router) setupCallRoutes(g *echo.Group) {
	g.POST("/transcribe", rt.callHandler.Transcribe)

	calls := g.Group("/calls")
	calls.GET("", rt.callHandler.ListCalls)
	calls.GET("/:id", rt.callHandler.GetCall)
	calls.DELETE("/:id", rt.callHandler.DeleteCall)
}

// setupSpeechRoutes configures text-to-speech routes
func (rt *Router) setupSpeechRoutes(g *echo.Group) {
	g.POST("/speak", rt.speechHandler.Speak)
	g.POST("/replay", rt.speechHandler.Replay)
}

// healthCheck returns health status
// @Summary      Health check
// @Description  Reports service health and the reachability of its dependencies
// @Tags         System
// @Produce      json
// @Success      200  {object}  common.HealthResponse
// @Failure      503  {object}  common.HealthResponse
// @Router       /health [get]
func (rt *Router) healthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	resp := common.HealthResponse{
		Status:       "healthy",
		Version:      Version,
		Environment:  rt.cfg.Server.Environment,
		Timestamp:    time.Now().UTC(),
		Dependencies: map[string]interface{}{},
	}
	status := http.StatusOK

	if rt.db != nil {
		if err := rt.db.PingContext(ctx); err != nil {
			rt.logger.Warn("database health check failed", zap.Error(err))
			resp.Dependencies["database"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		} else {
			resp.Dependencies["database"] = map[string]interface{}{"status": "healthy", "driver": rt.cfg.Database.Driver}
		}
	}

	// the archive is optional, so a failure only degrades
	if rt.archive != nil {
		info, err := rt.archive.BucketInfo(ctx)
		if err != nil {
			rt.logger.Warn("storage health check failed", zap.Error(err))
			resp.Dependencies["storage"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			if resp.Status == "healthy" {
				resp.Status = "degraded"
			}
		} else {
			info["status"] = "healthy"
			resp.Dependencies["storage"] = info
		}
	}

	return c.JSON(status, resp)
}
