package modeling

import (
	"context"
	"strings"
	"time"

	"rhino-modeling-ai-api/internal/domain/entity"
	"rhino-modeling-ai-api/internal/workflow/node"
	apperrors "rhino-modeling-ai-api/pkg/errors"
	"rhino-modeling-ai-api/pkg/logger"
	"rhino-modeling-ai-api/pkg/metrics"
)

// FeedbackInput 反馈修订请求
type FeedbackInput struct {
	SessionID string
	Feedback  string
	Provider  string
	Model     string
}

// FeedbackResult 一次修订的产物
type FeedbackResult struct {
	Session    *entity.ModelingSession
	Script     string
	Fenced     bool
	Summary    string
	ScriptPath string
}

// ApplyFeedback 按自由文本反馈修订当前脚本，再总结这轮改动。
// 修订结果优先取 python 代码围栏内的内容，没有围栏时整段原样采用。
// 整个操作一体提交：任何一步失败都不改动会话状态。
func (a *Assistant) ApplyFeedback(ctx context.Context, in *FeedbackInput) (*FeedbackResult, error) {
	ctx, span := tracer.Start(ctx, "Assistant.ApplyFeedback")
	defer span.End()

	if in == nil {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "input is nil")
	}
	feedback := strings.TrimSpace(in.Feedback)
	if feedback == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "feedback is empty")
	}

	lock := a.sessionLock(in.SessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := a.loadSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(session.Script) == "" {
		return nil, apperrors.ErrScriptMissing
	}

	a.recordTurn(ctx, session.ID, entity.RoleUser, entity.TurnKindFeedback, feedback, nil)

	fixedRaw, fixMeta, err := a.runCompletion(ctx, a.fixChain, WorkflowScriptFix, in.Provider, in.Model, map[string]any{
		"script":   session.Script,
		"feedback": feedback,
	})
	if err != nil {
		return nil, err
	}

	revised, fenced := node.ExtractFencedCode(fixedRaw)
	outcome := "raw"
	if fenced {
		outcome = "fenced"
	}
	metrics.CodeFenceFallbackTotal.WithLabelValues(outcome).Inc()
	a.recordTurn(ctx, session.ID, entity.RoleAssistant, entity.TurnKindScriptFix, revised, fixMeta)

	summary, summaryMeta, err := a.runCompletion(ctx, a.summaryChain, WorkflowChangeSummary, in.Provider, in.Model, map[string]any{
		"original_script": session.Script,
		"modified_script": revised,
	})
	if err != nil {
		return nil, err
	}
	a.recordTurn(ctx, session.ID, entity.RoleAssistant, entity.TurnKindChangeSummary, summary, summaryMeta)

	path, err := a.scripts.Save(ctx, revised)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeScriptSaveFailed, "failed to save script file")
	}

	session.Script = revised
	session.ScriptFenced = fenced
	session.LastScriptPath = path
	session.Stage = entity.ModelingStageRevising
	session.UpdatedAt = time.Now()
	if err := a.sessions.Update(ctx, session); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to update session")
	}

	logger.Info(ctx, "feedback applied",
		"session_id", session.ID,
		"fenced", fenced,
		"script_path", path,
	)
	return &FeedbackResult{
		Session:    session.Clone(),
		Script:     revised,
		Fenced:     fenced,
		Summary:    summary,
		ScriptPath: path,
	}, nil
}
