package model

import "time"

// LLMUsageMeta 单次补全调用的用量元信息，随轮次一并落档
type LLMUsageMeta struct {
	Provider         string    `json:"provider"`
	Model            string    `json:"model"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	DurationMs       int64     `json:"duration_ms"`
	GeneratedAt      time.Time `json:"generated_at"`
}
