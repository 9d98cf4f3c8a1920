// Package handler 提供 HTTP 请求处理器
package handler

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"rhino-modeling-ai-api/internal/config"
	"rhino-modeling-ai-api/internal/infrastructure/scriptstore"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	cfg     *config.Config
	scripts *scriptstore.Store
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(cfg *config.Config, scripts *scriptstore.Store) *HealthHandler {
	return &HealthHandler{
		cfg:     cfg,
		scripts: scripts,
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks,omitempty"`
}

// Health 健康检查接口
// @Summary 健康检查
// @Description 检查服务健康状态
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
	})
}

// Ready 就绪检查接口
// @Summary 就绪检查
// @Description 检查服务是否可以接收流量
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := map[string]*readinessCheck{
		"llm_provider": {Status: "unknown"},
		"script_store": {Status: "unknown"},
	}

	ready := true

	// 默认 Provider 必须配置且带密钥
	if h == nil || h.cfg == nil {
		checks["llm_provider"].Status = "missing"
		checks["llm_provider"].Error = "config not loaded"
		ready = false
	} else if err := h.cfg.Validate(); err != nil {
		checks["llm_provider"].Status = "error"
		checks["llm_provider"].Error = err.Error()
		ready = false
	} else {
		checks["llm_provider"].Status = "ok"
	}

	// 脚本目录必须可创建
	if h == nil || h.scripts == nil {
		checks["script_store"].Status = "missing"
		checks["script_store"].Error = "script store not configured"
		ready = false
	} else {
		start := time.Now()
		err := os.MkdirAll(h.scripts.Dir(), 0o755)
		checks["script_store"].LatencyMs = time.Since(start).Milliseconds()
		if err != nil {
			checks["script_store"].Status = "error"
			checks["script_store"].Error = err.Error()
			ready = false
		} else {
			checks["script_store"].Status = "ok"
		}
	}

	resp := readinessResponse{
		Status: "ok",
		Checks: checks,
	}
	if !ready {
		resp.Status = "not_ready"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Live 存活检查接口
// @Summary 存活检查
// @Description 检查服务是否存活
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
	})
}
