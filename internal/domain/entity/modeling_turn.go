// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ModelingTurnKind 对话轮次对应的操作类型
type ModelingTurnKind string

const (
	// 用户侧输入
	TurnKindDescription ModelingTurnKind = "description"
	TurnKindFeedback    ModelingTurnKind = "feedback"

	// 模型侧输出
	TurnKindParameterSuggest ModelingTurnKind = "parameter_suggest"
	TurnKindModelingSteps    ModelingTurnKind = "modeling_steps"
	TurnKindScriptGen        ModelingTurnKind = "script_gen"
	TurnKindScriptFix        ModelingTurnKind = "script_fix"
	TurnKindChangeSummary    ModelingTurnKind = "change_summary"
)

// ModelingTurn 一条会话轮次记录（用户输入或模型输出）
type ModelingTurn struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id"`
	Role      Role             `json:"role"`
	Kind      ModelingTurnKind `json:"kind"`
	Content   string           `json:"content"`
	Metadata  json.RawMessage  `json:"metadata,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

func NewModelingTurn(sessionID string, role Role, kind ModelingTurnKind, content string, metadata json.RawMessage) *ModelingTurn {
	return &ModelingTurn{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Kind:      kind,
		Content:   content,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
}
