package eino

import (
	"context"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rhino-modeling-ai-api/internal/domain/service"
	"rhino-modeling-ai-api/pkg/metrics"
)

type startTimeKey struct{}

// newChatModelCallbackHandler 创建模型调用回调，对每次补全记录
// 调用次数、耗时、Token 消耗与追踪 Span。
// workflow / provider 标签来自调用方通过 service.WithWorkflowProvider
// 注入的上下文。
func newChatModelCallbackHandler() *cbtemplate.ModelCallbackHandler {
	return &cbtemplate.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
			ctx = context.WithValue(ctx, startTimeKey{}, time.Now())

			workflow := service.WorkflowFromContext(ctx)
			provider := service.ProviderFromContext(ctx)
			modelName := modelNameFromInput(input)

			attrs := []attribute.KeyValue{
				attribute.String("eino.workflow", workflow),
				attribute.String("llm.provider", provider),
				attribute.String("llm.model", modelName),
			}
			if info != nil {
				attrs = append(attrs,
					attribute.String("eino.node_name", info.Name),
					attribute.String("eino.type", info.Type),
				)
			}

			ctx, _ = otel.Tracer("eino").Start(ctx, "llm.generate", trace.WithAttributes(attrs...))
			return ctx
		},

		OnEnd: func(ctx context.Context, _ *einocb.RunInfo, output *model.CallbackOutput) context.Context {
			workflow := service.WorkflowFromContext(ctx)
			provider := service.ProviderFromContext(ctx)
			modelName := modelNameFromOutput(output)

			metrics.LLMCallTotal.WithLabelValues(workflow, provider, modelName, "success").Inc()
			if d := elapsedSeconds(ctx); d > 0 {
				metrics.LLMCallDuration.WithLabelValues(workflow, provider, modelName).Observe(d)
			}

			span := trace.SpanFromContext(ctx)
			if output != nil && output.TokenUsage != nil {
				metrics.LLMTokensUsed.WithLabelValues(workflow, provider, modelName, "prompt").Add(float64(output.TokenUsage.PromptTokens))
				metrics.LLMTokensUsed.WithLabelValues(workflow, provider, modelName, "completion").Add(float64(output.TokenUsage.CompletionTokens))
				if span != nil {
					span.SetAttributes(
						attribute.Int("llm.prompt_tokens", output.TokenUsage.PromptTokens),
						attribute.Int("llm.completion_tokens", output.TokenUsage.CompletionTokens),
					)
				}
			}
			if span != nil {
				span.End()
			}
			return ctx
		},

		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			workflow := service.WorkflowFromContext(ctx)
			provider := service.ProviderFromContext(ctx)
			modelName := ""
			if info != nil {
				modelName = info.Type
			}

			metrics.LLMCallTotal.WithLabelValues(workflow, provider, modelName, "error").Inc()
			if d := elapsedSeconds(ctx); d > 0 {
				metrics.LLMCallDuration.WithLabelValues(workflow, provider, modelName).Observe(d)
			}

			span := trace.SpanFromContext(ctx)
			if span != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				span.End()
			}
			return ctx
		},
	}
}

// elapsedSeconds 计算自 OnStart 存入的开始时间以来的秒数，取不到时返回 0
func elapsedSeconds(ctx context.Context) float64 {
	v := ctx.Value(startTimeKey{})
	start, ok := v.(time.Time)
	if !ok || start.IsZero() {
		return 0
	}
	return time.Since(start).Seconds()
}

func modelNameFromInput(in *model.CallbackInput) string {
	if in == nil || in.Config == nil {
		return ""
	}
	return in.Config.Model
}

func modelNameFromOutput(out *model.CallbackOutput) string {
	if out == nil || out.Config == nil {
		return ""
	}
	return out.Config.Model
}
