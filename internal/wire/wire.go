//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"rhino-modeling-ai-api/internal/application/modeling"
	"rhino-modeling-ai-api/internal/config"
	"rhino-modeling-ai-api/internal/domain/repository"
	"rhino-modeling-ai-api/internal/infrastructure/llm"
	"rhino-modeling-ai-api/internal/infrastructure/persistence/memory"
	"rhino-modeling-ai-api/internal/infrastructure/scriptstore"
	"rhino-modeling-ai-api/internal/interfaces/http/handler"
	"rhino-modeling-ai-api/internal/interfaces/http/router"
	workflowport "rhino-modeling-ai-api/internal/workflow/port"
)

// StoreSet 会话与脚本存储提供者集合
var StoreSet = wire.NewSet(
	ProvideMemoryStore,
	memory.NewModelingSessionRepository,
	memory.NewModelingTurnRepository,
	ProvideScriptStore,
	wire.Bind(new(repository.ModelingSessionRepository), new(*memory.ModelingSessionRepository)),
	wire.Bind(new(repository.ModelingTurnRepository), new(*memory.ModelingTurnRepository)),
)

// LLMSet LLM 工厂提供者集合
var LLMSet = wire.NewSet(
	llm.NewEinoFactory,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	modeling.NewAssistant,
	handler.NewHealthHandler,
	handler.NewModelingSessionHandler,
	wire.Struct(new(router.RouterHandlers), "*"),
	router.NewWithDeps,
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		StoreSet,
		LLMSet,
		RouterSet,
	)
	return nil, nil, nil
}

// ProvideMemoryStore 提供内存会话存储
func ProvideMemoryStore(cfg *config.Config) (*memory.Store, error) {
	return memory.NewStore(cfg.Session.StoreCapacity)
}

// ProvideScriptStore 提供脚本落盘存储
func ProvideScriptStore(cfg *config.Config) (*scriptstore.Store, error) {
	return scriptstore.NewStore(cfg.Script.OutputDir)
}
