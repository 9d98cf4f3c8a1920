package modeling

import (
	"context"
	"fmt"
	"strings"
	"time"

	workflowchain "rhino-modeling-ai-api/internal/workflow/chain"
	wfmodel "rhino-modeling-ai-api/internal/workflow/model"
	apperrors "rhino-modeling-ai-api/pkg/errors"
	"rhino-modeling-ai-api/pkg/logger"
	"rhino-modeling-ai-api/pkg/metrics"
)

// 工作流标签，同时用作指标 operation 维度与追踪上下文里的 workflow 名
const (
	WorkflowParameterSuggest = "parameter_suggest"
	WorkflowModelingSteps    = "modeling_steps"
	WorkflowScriptGen        = "script_gen"
	WorkflowScriptFix        = "script_fix"
	WorkflowChangeSummary    = "change_summary"
)

// runCompletion 执行一次单消息补全并返回首条回复的原始文本。
// 不做重试、不做流式；远端失败统一包装为 LLM 调用错误。
func (a *Assistant) runCompletion(
	ctx context.Context,
	chain *workflowchain.CompletionChain,
	workflow string,
	provider string,
	model string,
	vars map[string]any,
) (string, *wfmodel.LLMUsageMeta, error) {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		provider = a.cfg.LLM.DefaultProvider
	}
	providerCfg, ok := a.cfg.LLM.Providers[provider]
	if !ok {
		return "", nil, apperrors.New(apperrors.CodeInvalidParam, fmt.Sprintf("unknown llm provider: %s", provider))
	}

	model = strings.TrimSpace(model)
	resolvedModel := model
	if resolvedModel == "" {
		resolvedModel = providerCfg.Model
	}

	temperature := float32(providerCfg.Temperature)
	in := &wfmodel.CompletionInput{
		Workflow:    workflow,
		Vars:        vars,
		Provider:    provider,
		Model:       model,
		Temperature: &temperature,
	}

	start := time.Now()
	outMsg, err := chain.Invoke(ctx, in)
	duration := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ModelingOperationTotal.WithLabelValues(workflow, status).Inc()
	metrics.ModelingOperationDuration.WithLabelValues(workflow).Observe(duration.Seconds())

	if err != nil {
		logger.Error(ctx, "llm completion failed", err,
			"workflow", workflow,
			"provider", provider,
			"model", resolvedModel,
		)
		return "", nil, apperrors.Wrap(err, apperrors.CodeLLMCallFailed, "llm call failed")
	}

	meta := &wfmodel.LLMUsageMeta{
		Provider:    provider,
		Model:       resolvedModel,
		DurationMs:  duration.Milliseconds(),
		GeneratedAt: time.Now().UTC(),
	}
	if outMsg.ResponseMeta != nil && outMsg.ResponseMeta.Usage != nil {
		meta.PromptTokens = outMsg.ResponseMeta.Usage.PromptTokens
		meta.CompletionTokens = outMsg.ResponseMeta.Usage.CompletionTokens
	}
	return outMsg.Content, meta, nil
}
