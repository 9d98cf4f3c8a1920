// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"encoding/json"
	"time"

	"rhino-modeling-ai-api/internal/application/modeling"
	"rhino-modeling-ai-api/internal/domain/entity"
	"rhino-modeling-ai-api/internal/workflow/node"
)

// CreateModelingSessionRequest 创建建模会话，描述可以稍后补充
type CreateModelingSessionRequest struct {
	Description string `json:"description,omitempty" binding:"max=4000"`
}

// SuggestParametersRequest 参数建议请求体。
// Description 非空时先替换会话描述再建议。
type SuggestParametersRequest struct {
	Description string `json:"description,omitempty" binding:"max=4000"`
	Provider    string `json:"provider,omitempty"`
	Model       string `json:"model,omitempty"`
}

// GenerateModelRequest 生成请求体，仅允许覆写模型来源
type GenerateModelRequest struct {
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

// FeedbackRequest 反馈修订请求体
type FeedbackRequest struct {
	Feedback string `json:"feedback" binding:"required,max=8000"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

// ParameterSpecResponse 单个可调参数的定义
type ParameterSpecResponse struct {
	Default float64 `json:"default"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
}

// ModelingSessionResponse 会话详情
type ModelingSessionResponse struct {
	ID                string                           `json:"id"`
	Description       string                           `json:"description"`
	Stage             string                           `json:"stage"`
	Parameters        map[string]ParameterSpecResponse `json:"parameters"`
	ParameterWarnings []string                         `json:"parameter_warnings,omitempty"`
	TunedValues       map[string]float64               `json:"tuned_values"`
	Instructions      string                           `json:"instructions,omitempty"`
	InstructionsHTML  string                           `json:"instructions_html,omitempty"`
	Script            string                           `json:"script,omitempty"`
	ScriptFenced      bool                             `json:"script_fenced,omitempty"`
	LastScriptPath    string                           `json:"last_script_path,omitempty"`
	CreatedAt         string                           `json:"created_at"`
	UpdatedAt         string                           `json:"updated_at"`
}

func ToModelingSessionResponse(s *entity.ModelingSession, instructionsHTML string) *ModelingSessionResponse {
	if s == nil {
		return nil
	}
	params := make(map[string]ParameterSpecResponse, len(s.Parameters))
	for name, spec := range s.Parameters {
		params[name] = ParameterSpecResponse{
			Default: spec.Default,
			Min:     spec.Min,
			Max:     spec.Max,
			Step:    spec.Step,
		}
	}
	return &ModelingSessionResponse{
		ID:                s.ID,
		Description:       s.Description,
		Stage:             string(s.Stage),
		Parameters:        params,
		ParameterWarnings: s.ParameterWarnings,
		TunedValues:       s.TunedValues,
		Instructions:      s.Instructions,
		InstructionsHTML:  instructionsHTML,
		Script:            s.Script,
		ScriptFenced:      s.ScriptFenced,
		LastScriptPath:    s.LastScriptPath,
		CreatedAt:         s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// ModelingSessionSummaryResponse 会话列表行
type ModelingSessionSummaryResponse struct {
	ID          string `json:"id"`
	Stage       string `json:"stage"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func ToModelingSessionSummaryResponse(s *entity.ModelingSession) *ModelingSessionSummaryResponse {
	if s == nil {
		return nil
	}
	return &ModelingSessionSummaryResponse{
		ID:          s.ID,
		Stage:       string(s.Stage),
		Description: node.TruncateByRunes(s.Description, 120),
		CreatedAt:   s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// ModelingSessionListResponse 会话列表
type ModelingSessionListResponse struct {
	Sessions []*ModelingSessionSummaryResponse `json:"sessions"`
}

// ModelingTurnResponse 一条轮次记录。
// Content 截断为片段，完整产物从会话详情取。
type ModelingTurnResponse struct {
	ID        string          `json:"id"`
	Role      string          `json:"role"`
	Kind      string          `json:"kind"`
	Content   string          `json:"content"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt string          `json:"created_at"`
}

func ToModelingTurnResponse(t *entity.ModelingTurn) *ModelingTurnResponse {
	if t == nil {
		return nil
	}
	return &ModelingTurnResponse{
		ID:        t.ID,
		Role:      string(t.Role),
		Kind:      string(t.Kind),
		Content:   node.TruncateByRunes(t.Content, 2000),
		Metadata:  t.Metadata,
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ModelingTurnListResponse 轮次列表
type ModelingTurnListResponse struct {
	Turns []*ModelingTurnResponse `json:"turns"`
}

// GenerateModelResponse 一次生成的产物
type GenerateModelResponse struct {
	Session          *ModelingSessionResponse `json:"session"`
	Instructions     string                   `json:"instructions"`
	InstructionsHTML string                   `json:"instructions_html,omitempty"`
	Script           string                   `json:"script"`
	ScriptPath       string                   `json:"script_path"`
}

func ToGenerateModelResponse(r *modeling.GenerateResult) *GenerateModelResponse {
	if r == nil {
		return nil
	}
	return &GenerateModelResponse{
		Session:          ToModelingSessionResponse(r.Session, r.InstructionsHTML),
		Instructions:     r.Instructions,
		InstructionsHTML: r.InstructionsHTML,
		Script:           r.Script,
		ScriptPath:       r.ScriptPath,
	}
}

// FeedbackResponse 一次修订的产物
type FeedbackResponse struct {
	Session      *ModelingSessionResponse `json:"session"`
	Script       string                   `json:"script"`
	ScriptFenced bool                     `json:"script_fenced"`
	Summary      string                   `json:"summary"`
	ScriptPath   string                   `json:"script_path"`
}

func ToFeedbackResponse(r *modeling.FeedbackResult, instructionsHTML string) *FeedbackResponse {
	if r == nil {
		return nil
	}
	return &FeedbackResponse{
		Session:      ToModelingSessionResponse(r.Session, instructionsHTML),
		Script:       r.Script,
		ScriptFenced: r.Fenced,
		Summary:      r.Summary,
		ScriptPath:   r.ScriptPath,
	}
}
