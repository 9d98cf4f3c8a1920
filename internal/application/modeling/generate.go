package modeling

import (
	"context"
	"encoding/json"
	"time"

	"rhino-modeling-ai-api/internal/domain/entity"
	apperrors "rhino-modeling-ai-api/pkg/errors"
	"rhino-modeling-ai-api/pkg/logger"
)

// GenerateInput 生成请求
type GenerateInput struct {
	SessionID string
	Provider  string
	Model     string
}

// GenerateResult 一次生成的产物
type GenerateResult struct {
	Session          *entity.ModelingSession
	Instructions     string
	InstructionsHTML string
	Script           string
	ScriptPath       string
}

// GenerateModel 依次生成建模步骤说明与 Rhino Python 脚本，二者都从当前
// 调参映射出发。脚本落盘后整体替换会话里的旧脚本。
// 两次补全的结果都按原文记录：说明就是给初学者看的原始文本，
// 脚本提示词已要求裸代码，这里不做围栏剥离。
func (a *Assistant) GenerateModel(ctx context.Context, in *GenerateInput) (*GenerateResult, error) {
	ctx, span := tracer.Start(ctx, "Assistant.GenerateModel")
	defer span.End()

	if in == nil {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "input is nil")
	}

	lock := a.sessionLock(in.SessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := a.loadSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if len(session.Parameters) == 0 {
		return nil, apperrors.New(apperrors.CodeConflict, "no parameters yet, suggest parameters before generating")
	}

	paramsJSON, err := json.MarshalIndent(session.TunedValues, "", "  ")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to encode tuned values")
	}
	vars := map[string]any{"parameters_json": string(paramsJSON)}

	instructions, stepsMeta, err := a.runCompletion(ctx, a.stepsChain, WorkflowModelingSteps, in.Provider, in.Model, vars)
	if err != nil {
		return nil, err
	}
	a.recordTurn(ctx, session.ID, entity.RoleAssistant, entity.TurnKindModelingSteps, instructions, stepsMeta)

	script, scriptMeta, err := a.runCompletion(ctx, a.scriptChain, WorkflowScriptGen, in.Provider, in.Model, vars)
	if err != nil {
		return nil, err
	}
	a.recordTurn(ctx, session.ID, entity.RoleAssistant, entity.TurnKindScriptGen, script, scriptMeta)

	path, err := a.scripts.Save(ctx, script)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeScriptSaveFailed, "failed to save script file")
	}

	session.Instructions = instructions
	session.Script = script
	session.ScriptFenced = false
	session.LastScriptPath = path
	session.Stage = entity.ModelingStageGenerated
	session.UpdatedAt = time.Now()
	if err := a.sessions.Update(ctx, session); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to update session")
	}

	html, err := RenderInstructionsHTML(instructions)
	if err != nil {
		// 渲染只是展示辅助，失败不影响生成结果
		logger.Warn(ctx, "failed to render instructions html", "session_id", session.ID, "error", err.Error())
		html = ""
	}

	logger.Info(ctx, "model generated",
		"session_id", session.ID,
		"script_path", path,
		"script_bytes", len(script),
	)
	return &GenerateResult{
		Session:          session.Clone(),
		Instructions:     instructions,
		InstructionsHTML: html,
		Script:           script,
		ScriptPath:       path,
	}, nil
}
