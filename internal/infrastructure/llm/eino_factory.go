package llm

import (
	"context"
	"fmt"
	"sync"

	"rhino-modeling-ai-api/internal/config"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"golang.org/x/sync/singleflight"
)

// EinoFactory 管理多个 Eino ChatModel 客户端实例。
// 客户端按 provider 名惰性构建，singleflight 合并并发构建请求。
type EinoFactory struct {
	config *config.LLMConfig
	models map[string]model.BaseChatModel
	mu     sync.RWMutex
	group  singleflight.Group
}

// NewEinoFactory 创建 Eino LLM 工厂
func NewEinoFactory(cfg *config.Config) *EinoFactory {
	return &EinoFactory{
		config: &cfg.LLM,
		models: make(map[string]model.BaseChatModel),
	}
}

// Get 获取指定名称的 ChatModel，如果未指定则返回默认客户端
func (f *EinoFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	if name == "" {
		name = f.config.DefaultProvider
	}

	f.mu.RLock()
	m, ok := f.models[name]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	// 惰性加载
	v, err, _ := f.group.Do(name, func() (any, error) {
		f.mu.RLock()
		m, ok := f.models[name]
		f.mu.RUnlock()
		if ok {
			return m, nil
		}

		providerCfg, ok := f.config.Providers[name]
		if !ok {
			return nil, fmt.Errorf("provider %s not found in LLM config", name)
		}

		// 使用 Eino 的 OpenAI 适配器
		chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      providerCfg.APIKey,
			BaseURL:     providerCfg.BaseURL,
			Model:       providerCfg.Model,
			MaxTokens:   &providerCfg.MaxTokens,
			Temperature: ptrFloat32(float32(providerCfg.Temperature)),
			Timeout:     providerCfg.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create eino chat model for %s: %w", name, err)
		}

		f.mu.Lock()
		f.models[name] = chatModel
		f.mu.Unlock()
		return chatModel, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(model.BaseChatModel), nil
}

// Default 返回默认 ChatModel
func (f *EinoFactory) Default(ctx context.Context) (model.BaseChatModel, error) {
	return f.Get(ctx, "")
}

func ptrFloat32(f float32) *float32 {
	return &f
}
