// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
)

type ModelingStage string

const (
	// ModelingStageDescribing 会话刚建立，还没有可用参数
	ModelingStageDescribing ModelingStage = "describing"
	// ModelingStageTuning 参数建议完成，等待调参与生成
	ModelingStageTuning ModelingStage = "tuning"
	// ModelingStageGenerated 说明与脚本已生成
	ModelingStageGenerated ModelingStage = "generated"
	// ModelingStageRevising 至少经过一轮反馈修订
	ModelingStageRevising ModelingStage = "revising"
)

// ModelingSession 一次建模对话的全部状态。
// 参数集在每次建议时整体替换；脚本在每次生成或修订时整体替换，
// 永不原地修改。状态只有单一写者（见 application 层的会话锁）。
type ModelingSession struct {
	ID                string             `json:"id"`
	Description       string             `json:"description"`
	Stage             ModelingStage      `json:"stage"`
	Parameters        ParameterSet       `json:"parameters"`
	ParameterWarnings []string           `json:"parameter_warnings,omitempty"`
	TunedValues       map[string]float64 `json:"tuned_values"`
	Instructions      string             `json:"instructions"`
	Script            string             `json:"script"`
	ScriptFenced      bool               `json:"script_fenced"`
	LastScriptPath    string             `json:"last_script_path,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

func NewModelingSession(description string) *ModelingSession {
	now := time.Now()
	return &ModelingSession{
		ID:          uuid.NewString(),
		Description: description,
		Stage:       ModelingStageDescribing,
		Parameters:  ParameterSet{},
		TunedValues: map[string]float64{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone 返回会话的独立副本，读取方持有副本后不受后续写入影响
func (s *ModelingSession) Clone() *ModelingSession {
	if s == nil {
		return nil
	}
	out := *s

	out.Parameters = make(ParameterSet, len(s.Parameters))
	for name, spec := range s.Parameters {
		out.Parameters[name] = spec
	}
	out.TunedValues = make(map[string]float64, len(s.TunedValues))
	for name, v := range s.TunedValues {
		out.TunedValues[name] = v
	}
	if s.ParameterWarnings != nil {
		out.ParameterWarnings = append([]string(nil), s.ParameterWarnings...)
	}
	return &out
}
