package memory

import (
	"context"
	"fmt"

	"rhino-modeling-ai-api/internal/domain/entity"
	"rhino-modeling-ai-api/internal/domain/repository"
)

type ModelingTurnRepository struct {
	store *Store
}

func NewModelingTurnRepository(store *Store) *ModelingTurnRepository {
	return &ModelingTurnRepository{store: store}
}

func (r *ModelingTurnRepository) Create(ctx context.Context, turn *entity.ModelingTurn) error {
	_, span := tracer.Start(ctx, "memory.ModelingTurnRepository.Create")
	defer span.End()

	if turn == nil || turn.SessionID == "" {
		return fmt.Errorf("turn session id is empty")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.turns[turn.SessionID] = append(r.store.turns[turn.SessionID], turn)
	return nil
}

// ListBySession 按时间先后分页返回轮次
func (r *ModelingTurnRepository) ListBySession(ctx context.Context, sessionID string, pagination repository.Pagination) (*repository.PagedResult[*entity.ModelingTurn], error) {
	_, span := tracer.Start(ctx, "memory.ModelingTurnRepository.ListBySession")
	defer span.End()

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	all := r.store.turns[sessionID]
	total := int64(len(all))

	start := pagination.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + pagination.Limit()
	if end > len(all) {
		end = len(all)
	}

	items := make([]*entity.ModelingTurn, end-start)
	copy(items, all[start:end])
	return repository.NewPagedResult(items, total, pagination), nil
}

func (r *ModelingTurnRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	_, span := tracer.Start(ctx, "memory.ModelingTurnRepository.DeleteBySession")
	defer span.End()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.turns, sessionID)
	return nil
}
