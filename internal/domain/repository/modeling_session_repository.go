// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"rhino-modeling-ai-api/internal/domain/entity"
)

type ModelingSessionRepository interface {
	Create(ctx context.Context, session *entity.ModelingSession) error
	GetByID(ctx context.Context, id string) (*entity.ModelingSession, error)
	Update(ctx context.Context, session *entity.ModelingSession) error
	List(ctx context.Context, pagination Pagination) (*PagedResult[*entity.ModelingSession], error)
}

type ModelingTurnRepository interface {
	Create(ctx context.Context, turn *entity.ModelingTurn) error
	ListBySession(ctx context.Context, sessionID string, pagination Pagination) (*PagedResult[*entity.ModelingTurn], error)
	// DeleteBySession 删除指定会话的全部轮次（会话被淘汰时联动清理）
	DeleteBySession(ctx context.Context, sessionID string) error
}
