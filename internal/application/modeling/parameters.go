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

// SuggestParametersInput 参数建议请求
type SuggestParametersInput struct {
	SessionID string
	// Description 非空时替换会话描述后再建议
	Description string
	Provider    string
	Model       string
}

// SuggestParameters 基于会话描述向模型索要可调参数，并整体替换会话的参数集。
// 响应里提不出任何可用参数时按软失败处理：返回错误，会话状态保持不变。
func (a *Assistant) SuggestParameters(ctx context.Context, in *SuggestParametersInput) (*entity.ModelingSession, error) {
	ctx, span := tracer.Start(ctx, "Assistant.SuggestParameters")
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

	description := strings.TrimSpace(in.Description)
	if description == "" {
		description = strings.TrimSpace(session.Description)
	}
	if description == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "session has no description to suggest parameters from")
	}
	if description != session.Description {
		a.recordTurn(ctx, session.ID, entity.RoleUser, entity.TurnKindDescription, description, nil)
	}

	raw, meta, err := a.runCompletion(ctx, a.suggestChain, WorkflowParameterSuggest, in.Provider, in.Model, map[string]any{
		"description": description,
	})
	if err != nil {
		return nil, err
	}
	a.recordTurn(ctx, session.ID, entity.RoleAssistant, entity.TurnKindParameterSuggest, raw, meta)

	obj := node.ExtractObject(raw)
	if len(obj) == 0 {
		metrics.ExtractionTotal.WithLabelValues("empty").Inc()
		logger.Warn(ctx, "no json object in parameter suggestion",
			"session_id", session.ID,
			"response_len", len(raw),
			"preview", node.TruncateByRunes(raw, 200),
		)
		return nil, apperrors.ErrSuggestionEmpty
	}
	metrics.ExtractionTotal.WithLabelValues("object").Inc()

	params, warnings := parameterSetFromObject(obj)
	if len(params) == 0 {
		logger.Warn(ctx, "no usable parameter specs in suggestion",
			"session_id", session.ID,
			"entries", len(obj),
		)
		return nil, apperrors.ErrSuggestionEmpty
	}

	session.Description = description
	session.Parameters = params
	session.ParameterWarnings = warnings
	session.TunedValues = params.Defaults()
	session.Stage = entity.ModelingStageTuning
	session.UpdatedAt = time.Now()
	if err := a.sessions.Update(ctx, session); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to update session")
	}

	logger.Info(ctx, "parameters suggested",
		"session_id", session.ID,
		"parameters", len(params),
		"warnings", len(warnings),
	)
	return session.Clone(), nil
}
