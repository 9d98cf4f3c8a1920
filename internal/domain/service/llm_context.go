// Package service 提供跨层共享的领域辅助
package service

import (
	"context"
	"strings"
)

type llmCtxKey string

const (
	llmCtxKeyWorkflow llmCtxKey = "llm_workflow"
	llmCtxKeyProvider llmCtxKey = "llm_provider"

	// 标签缺失时的兜底值，避免指标出现空标签
	unknownLabel = "unknown"
)

// WithWorkflowProvider 把工作流名和 provider 注入 Context，
// 供 Eino 全局 callbacks 在指标和日志里还原调用来源。
func WithWorkflowProvider(ctx context.Context, workflow, provider string) context.Context {
	if ctx == nil {
		return nil
	}
	if w := strings.TrimSpace(workflow); w != "" {
		ctx = context.WithValue(ctx, llmCtxKeyWorkflow, w)
	}
	if p := strings.TrimSpace(provider); p != "" {
		ctx = context.WithValue(ctx, llmCtxKeyProvider, p)
	}
	return ctx
}

// WorkflowFromContext 取出工作流名，缺失时返回 unknown
func WorkflowFromContext(ctx context.Context) string {
	return labelFromContext(ctx, llmCtxKeyWorkflow)
}

// ProviderFromContext 取出 provider 名，缺失时返回 unknown
func ProviderFromContext(ctx context.Context) string {
	return labelFromContext(ctx, llmCtxKeyProvider)
}

func labelFromContext(ctx context.Context, key llmCtxKey) string {
	if ctx == nil {
		return unknownLabel
	}
	s, ok := ctx.Value(key).(string)
	if !ok || strings.TrimSpace(s) == "" {
		return unknownLabel
	}
	return strings.TrimSpace(s)
}
