package modeling

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	jsonpatch "github.com/evanphx/json-patch"

	"rhino-modeling-ai-api/internal/domain/entity"
	apperrors "rhino-modeling-ai-api/pkg/errors"
	"rhino-modeling-ai-api/pkg/logger"
)

// TuneParametersInput 稀疏调参请求。
// Patch 是对调参映射的 JSON merge patch：滑块只发送变化的名字。
type TuneParametersInput struct {
	SessionID string
	Patch     json.RawMessage
}

// TuneParameters 将 merge patch 应用到当前调参映射上。
// 名字必须来自已建议的参数集，值按发送的原样记录。
func (a *Assistant) TuneParameters(ctx context.Context, in *TuneParametersInput) (*entity.ModelingSession, error) {
	ctx, span := tracer.Start(ctx, "Assistant.TuneParameters")
	defer span.End()

	if in == nil || len(in.Patch) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "patch is empty")
	}

	lock := a.sessionLock(in.SessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := a.loadSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if len(session.Parameters) == 0 {
		return nil, apperrors.New(apperrors.CodeConflict, "no parameters to tune yet, suggest parameters first")
	}

	current, err := json.Marshal(session.TunedValues)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to encode tuned values")
	}
	patched, err := jsonpatch.MergePatch(current, in.Patch)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidParam, "invalid merge patch")
	}

	values := map[string]float64{}
	if err := json.Unmarshal(patched, &values); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidParam, "tuned values must be numeric")
	}
	for name := range values {
		if _, ok := session.Parameters[name]; !ok {
			return nil, apperrors.New(apperrors.CodeUnknownParameter, fmt.Sprintf("unknown parameter: %s", name))
		}
	}

	session.TunedValues = values
	session.UpdatedAt = time.Now()
	if err := a.sessions.Update(ctx, session); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to update session")
	}

	logger.Debug(ctx, "parameters tuned", "session_id", session.ID, "values", len(values))
	return session.Clone(), nil
}
