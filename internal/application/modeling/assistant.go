// Package modeling 提供建模助手的应用层编排：
// 会话生命周期、参数建议与调整、脚本生成与反馈修订。
package modeling

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"

	"rhino-modeling-ai-api/internal/config"
	"rhino-modeling-ai-api/internal/domain/entity"
	"rhino-modeling-ai-api/internal/domain/repository"
	"rhino-modeling-ai-api/internal/infrastructure/scriptstore"
	workflowchain "rhino-modeling-ai-api/internal/workflow/chain"
	wfmodel "rhino-modeling-ai-api/internal/workflow/model"
	workflowport "rhino-modeling-ai-api/internal/workflow/port"
	workflowprompt "rhino-modeling-ai-api/internal/workflow/prompt"
	apperrors "rhino-modeling-ai-api/pkg/errors"
	"rhino-modeling-ai-api/pkg/logger"
)

var tracer = otel.Tracer("application.modeling")

// Assistant 建模助手。
// 每个会话的写操作经由会话级互斥锁串行化，保证参数集与脚本
// 始终整体替换、不存在并发写者。
type Assistant struct {
	cfg      *config.Config
	sessions repository.ModelingSessionRepository
	turns    repository.ModelingTurnRepository
	scripts  *scriptstore.Store

	suggestChain *workflowchain.CompletionChain
	stepsChain   *workflowchain.CompletionChain
	scriptChain  *workflowchain.CompletionChain
	fixChain     *workflowchain.CompletionChain
	summaryChain *workflowchain.CompletionChain

	locks sync.Map // session ID -> *sync.Mutex
}

func NewAssistant(
	cfg *config.Config,
	factory workflowport.ChatModelFactory,
	sessions repository.ModelingSessionRepository,
	turns repository.ModelingTurnRepository,
	scripts *scriptstore.Store,
) *Assistant {
	return &Assistant{
		cfg:          cfg,
		sessions:     sessions,
		turns:        turns,
		scripts:      scripts,
		suggestChain: workflowchain.NewCompletionChain(factory, WorkflowParameterSuggest, workflowprompt.PromptParameterSuggestV1),
		stepsChain:   workflowchain.NewCompletionChain(factory, WorkflowModelingSteps, workflowprompt.PromptModelingStepsV1),
		scriptChain:  workflowchain.NewCompletionChain(factory, WorkflowScriptGen, workflowprompt.PromptScriptGenV1),
		fixChain:     workflowchain.NewCompletionChain(factory, WorkflowScriptFix, workflowprompt.PromptScriptFixV1),
		summaryChain: workflowchain.NewCompletionChain(factory, WorkflowChangeSummary, workflowprompt.PromptChangeSummaryV1),
	}
}

// CreateSession 创建建模会话，描述可以为空（之后在参数建议时补充）
func (a *Assistant) CreateSession(ctx context.Context, description string) (*entity.ModelingSession, error) {
	ctx, span := tracer.Start(ctx, "Assistant.CreateSession")
	defer span.End()

	description = strings.TrimSpace(description)
	session := entity.NewModelingSession(description)
	if err := a.sessions.Create(ctx, session); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to create session")
	}
	if description != "" {
		a.recordTurn(ctx, session.ID, entity.RoleUser, entity.TurnKindDescription, description, nil)
	}

	logger.Info(ctx, "modeling session created", "session_id", session.ID)
	return session.Clone(), nil
}

// GetSession 返回会话的只读副本
func (a *Assistant) GetSession(ctx context.Context, id string) (*entity.ModelingSession, error) {
	ctx, span := tracer.Start(ctx, "Assistant.GetSession")
	defer span.End()

	session, err := a.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return session.Clone(), nil
}

// ListSessions 按创建顺序分页列出会话
func (a *Assistant) ListSessions(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.ModelingSession], error) {
	ctx, span := tracer.Start(ctx, "Assistant.ListSessions")
	defer span.End()

	result, err := a.sessions.List(ctx, pagination)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to list sessions")
	}
	return result, nil
}

// ListTurns 分页列出会话的轮次记录
func (a *Assistant) ListTurns(ctx context.Context, sessionID string, pagination repository.Pagination) (*repository.PagedResult[*entity.ModelingTurn], error) {
	ctx, span := tracer.Start(ctx, "Assistant.ListTurns")
	defer span.End()

	if _, err := a.loadSession(ctx, sessionID); err != nil {
		return nil, err
	}
	result, err := a.turns.ListBySession(ctx, sessionID, pagination)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to list turns")
	}
	return result, nil
}

func (a *Assistant) loadSession(ctx context.Context, id string) (*entity.ModelingSession, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "session id is empty")
	}
	session, err := a.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to load session")
	}
	if session == nil {
		return nil, apperrors.ErrSessionNotFound
	}
	return session, nil
}

// sessionLock 返回会话级互斥锁，锁实例在会话首次写入时创建
func (a *Assistant) sessionLock(id string) *sync.Mutex {
	v, _ := a.locks.LoadOrStore(id, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// recordTurn 落档一条轮次记录。轮次是过程留痕，写入失败不阻断主流程。
func (a *Assistant) recordTurn(ctx context.Context, sessionID string, role entity.Role, kind entity.ModelingTurnKind, content string, meta *wfmodel.LLMUsageMeta) {
	var metadata json.RawMessage
	if meta != nil {
		b, err := json.Marshal(meta)
		if err == nil {
			metadata = b
		}
	}
	turn := entity.NewModelingTurn(sessionID, role, kind, content, metadata)
	if err := a.turns.Create(ctx, turn); err != nil {
		logger.Warn(ctx, "failed to record modeling turn",
			"session_id", sessionID,
			"kind", string(kind),
			"error", err.Error(),
		)
	}
}
