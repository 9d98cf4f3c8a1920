package memory

import (
	"context"
	"fmt"

	"rhino-modeling-ai-api/internal/domain/entity"
	"rhino-modeling-ai-api/internal/domain/repository"
	"rhino-modeling-ai-api/pkg/metrics"
)

type ModelingSessionRepository struct {
	store *Store
}

func NewModelingSessionRepository(store *Store) *ModelingSessionRepository {
	return &ModelingSessionRepository{store: store}
}

func (r *ModelingSessionRepository) Create(ctx context.Context, session *entity.ModelingSession) error {
	_, span := tracer.Start(ctx, "memory.ModelingSessionRepository.Create")
	defer span.End()

	if session == nil || session.ID == "" {
		return fmt.Errorf("session id is empty")
	}
	if _, ok := r.store.sessions.Get(session.ID); ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	r.store.sessions.Add(session.ID, session)
	metrics.ActiveSessions.Inc()
	return nil
}

// GetByID 查找会话，未命中时返回 (nil, nil)
func (r *ModelingSessionRepository) GetByID(ctx context.Context, id string) (*entity.ModelingSession, error) {
	_, span := tracer.Start(ctx, "memory.ModelingSessionRepository.GetByID")
	defer span.End()

	session, ok := r.store.sessions.Get(id)
	if !ok {
		return nil, nil
	}
	return session, nil
}

func (r *ModelingSessionRepository) Update(ctx context.Context, session *entity.ModelingSession) error {
	_, span := tracer.Start(ctx, "memory.ModelingSessionRepository.Update")
	defer span.End()

	if session == nil || session.ID == "" {
		return fmt.Errorf("session id is empty")
	}
	if _, ok := r.store.sessions.Get(session.ID); !ok {
		return fmt.Errorf("session %s not found", session.ID)
	}
	r.store.sessions.Add(session.ID, session)
	return nil
}

// List 按最近使用从新到旧分页返回会话
func (r *ModelingSessionRepository) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.ModelingSession], error) {
	_, span := tracer.Start(ctx, "memory.ModelingSessionRepository.List")
	defer span.End()

	// Keys 返回从旧到新的顺序，这里反转
	keys := r.store.sessions.Keys()
	total := int64(len(keys))

	items := make([]*entity.ModelingSession, 0, pagination.Limit())
	for i := len(keys) - 1 - pagination.Offset(); i >= 0 && len(items) < pagination.Limit(); i-- {
		if session, ok := r.store.sessions.Peek(keys[i]); ok {
			items = append(items, session)
		}
	}
	return repository.NewPagedResult(items, total, pagination), nil
}
