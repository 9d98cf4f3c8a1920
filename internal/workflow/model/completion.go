package model

// CompletionInput 一次单消息补全调用的输入。
// 五个建模操作共用这一输入形态，差异只在模板变量上。
type CompletionInput struct {
	// Workflow 工作流标签，用于指标与追踪：
	// parameter_suggest / modeling_steps / script_gen / script_fix / change_summary
	Workflow string
	// Vars 提示词模板变量
	Vars map[string]any

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}
