// Package router 提供 HTTP 路由配置
package router

import (
	"rhino-modeling-ai-api/internal/config"
	"rhino-modeling-ai-api/internal/interfaces/http/handler"
	"rhino-modeling-ai-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterHandlers 路由依赖的处理器集合
type RouterHandlers struct {
	Health          *handler.HealthHandler
	ModelingSession *handler.ModelingSessionHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers RouterHandlers
}

// NewWithDeps 创建带依赖的路由器
func NewWithDeps(cfg *config.Config, handlers RouterHandlers) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	r := &Router{
		engine:   engine,
		cfg:      cfg,
		handlers: handlers,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	r.engine.GET("/health", r.handlers.Health.Health)
	r.engine.GET("/ready", r.handlers.Health.Ready)
	r.engine.GET("/live", r.handlers.Health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	v1 := r.engine.Group("/api/v1")
	RegisterV1Routes(v1, r.handlers.ModelingSession)
}
