package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"rhino-modeling-ai-api/internal/config"
	"rhino-modeling-ai-api/internal/interfaces/http/dto"
	"rhino-modeling-ai-api/pkg/errors"
	"rhino-modeling-ai-api/pkg/logger"
)

// resolveProviderModel 解析 LLM Provider 和 Model
func resolveProviderModel(cfg *config.Config, provider, model string) (string, string, error) {
	if cfg == nil {
		return "", "", fmt.Errorf("server config not configured")
	}

	p := strings.TrimSpace(provider)
	if p == "" {
		p = strings.TrimSpace(cfg.LLM.DefaultProvider)
	}
	if p == "" {
		return "", "", fmt.Errorf("llm provider not specified")
	}
	if len(p) > 32 {
		return "", "", fmt.Errorf("llm provider too long")
	}

	providerCfg, ok := cfg.LLM.Providers[p]
	if !ok {
		return "", "", fmt.Errorf("llm provider not found: %s", p)
	}

	m := strings.TrimSpace(model)
	if m == "" {
		m = strings.TrimSpace(providerCfg.Model)
	}
	if len(m) > 64 {
		return "", "", fmt.Errorf("llm model too long")
	}
	return p, m, nil
}

// writeError 按 AppError 的 HTTP 状态响应，其余错误记日志并回 500
func writeError(c *gin.Context, ctx context.Context, err error, fallback string) {
	if errors.IsAppError(err) {
		appErr := errors.AsAppError(err)
		dto.ErrorWithDetail(c, appErr.HTTPStatus, appErr.Message, errorDetail(appErr))
		return
	}
	logger.Error(ctx, fallback, err)
	dto.InternalError(c, fallback)
}

func errorDetail(appErr *errors.AppError) *dto.ErrorDetail {
	if appErr == nil || (appErr.Code == "" && appErr.Detail == "") {
		return nil
	}
	return &dto.ErrorDetail{
		ErrorCode: string(appErr.Code),
		Details:   appErr.Detail,
	}
}
