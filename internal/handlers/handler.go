package handlers

import (
	"time"

	"pressbot/internal/logger"
	"pressbot/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services   *service.Service
	log        *logger.Logger
	stateEvery time.Duration
}

type Option func(*Handler)

// WithStateInterval sets the default push interval of the /ws stream.
func WithStateInterval(d time.Duration) Option {
	return func(h *Handler) { h.stateEvery = d }
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	h := &Handler{services: services, log: log}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// read-only state stream, same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.operatorMiddleware)
	{
		api.GET("/state", h.getState)
		api.GET("/sessions", h.getSessions)
		h.registerActuatorRoutes(api)
	}
}

func (h *Handler) registerActuatorRoutes(api *gin.RouterGroup) {
	actuator := api.Group("/actuator")
	{
		actuator.POST("/press", h.pressActuator)
		actuator.POST("/reset", h.resetActuator)
	}
}
