package chain

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	llmctx "rhino-modeling-ai-api/internal/domain/service"
	wfmodel "rhino-modeling-ai-api/internal/workflow/model"
	workflowport "rhino-modeling-ai-api/internal/workflow/port"
	workflowprompt "rhino-modeling-ai-api/internal/workflow/prompt"
)

var defaultPromptRegistry = workflowprompt.NewRegistry()

// CompletionChain 单轮补全链：init → template → llm → finalize。
// 参数建议、建模步骤、脚本生成、脚本修复、变更摘要五个操作共用同一链形，
// 差异只在提示词模板与模板变量上。
type CompletionChain struct {
	factory  workflowport.ChatModelFactory
	workflow string
	promptID workflowprompt.PromptID

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.CompletionInput, *schema.Message]
	chainErr  error
}

func NewCompletionChain(factory workflowport.ChatModelFactory, workflow string, promptID workflowprompt.PromptID) *CompletionChain {
	return &CompletionChain{
		factory:  factory,
		workflow: workflow,
		promptID: promptID,
	}
}

func (c *CompletionChain) Invoke(ctx context.Context, in *wfmodel.CompletionInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	chain, err := c.getChain()
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, in)
}

type completionChainState struct {
	In       *wfmodel.CompletionInput
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (c *CompletionChain) getChain() (compose.Runnable[*wfmodel.CompletionInput, *schema.Message], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *CompletionChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.CompletionInput, *schema.Message], error) {
	chain := compose.NewChain[*wfmodel.CompletionInput, *schema.Message]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in *wfmodel.CompletionInput) (*completionChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			return &completionChainState{In: in}, nil
		}),
		compose.WithNodeName(c.workflow+".init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *completionChainState) (*completionChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			tpl, err := defaultPromptRegistry.ChatTemplate(c.promptID)
			if err != nil {
				return nil, err
			}
			msgs, err := tpl.Format(ctx, st.In.Vars)
			if err != nil {
				return nil, err
			}
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName(c.workflow+".template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *completionChainState) (*completionChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			if c.factory == nil {
				return nil, fmt.Errorf("llm factory not configured")
			}

			ctx = llmctx.WithWorkflowProvider(ctx, c.workflow, strings.TrimSpace(st.In.Provider))
			chatModel, err := c.factory.Get(ctx, strings.TrimSpace(st.In.Provider))
			if err != nil {
				return nil, err
			}

			// 单次请求，不做重试也不降级；稳健性由下游的提取器兜底
			outMsg, err := chatModel.Generate(ctx, st.Messages, buildCompletionModelOptions(st.In)...)
			if err != nil {
				return nil, err
			}
			if outMsg == nil {
				return nil, fmt.Errorf("empty llm response")
			}
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName(c.workflow+".llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *completionChainState) (*schema.Message, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			return st.OutMsg, nil
		}),
		compose.WithNodeName(c.workflow+".finalize"),
	)

	return chain.Compile(ctx)
}

func buildCompletionModelOptions(in *wfmodel.CompletionInput) []model.Option {
	opts := make([]model.Option, 0, 3)
	if in == nil {
		return opts
	}
	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if strings.TrimSpace(in.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(in.Model)))
	}
	return opts
}
