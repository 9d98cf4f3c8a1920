// Package port 定义工作流层对外部能力的最小依赖
package port

import (
	"context"

	"github.com/cloudwego/eino/components/model"
)

// ChatModelFactory 按 provider 名返回 ChatModel。
// name 对应配置里 llm.providers 的键，实例由实现方缓存复用。
type ChatModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
}
