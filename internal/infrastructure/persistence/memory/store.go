// Package memory 提供内存 Repository 实现。
// 会话数据只存活在进程内：落盘范围仅限脚本文件本身，
// 仓储用容量受限的 LRU 防止长时间运行导致内存无界增长。
package memory

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"

	"rhino-modeling-ai-api/internal/domain/entity"
	"rhino-modeling-ai-api/pkg/metrics"
)

var tracer = otel.Tracer("memory.repository")

// Store 持有全部内存数据结构，被各 Repository 共享
type Store struct {
	sessions *lru.Cache[string, *entity.ModelingSession]

	mu    sync.RWMutex
	turns map[string][]*entity.ModelingTurn
}

// NewStore 创建内存存储，capacity 为会话容量上限
func NewStore(capacity int) (*Store, error) {
	if capacity <= 0 {
		capacity = 1024
	}
	s := &Store{
		turns: make(map[string][]*entity.ModelingTurn),
	}
	cache, err := lru.NewWithEvict[string, *entity.ModelingSession](capacity, s.onEvict)
	if err != nil {
		return nil, err
	}
	s.sessions = cache
	return s, nil
}

// onEvict 会话被 LRU 淘汰时联动清理其轮次。
// 注意：回调在缓存锁内触发，这里不得回调任何 cache 方法。
func (s *Store) onEvict(sessionID string, _ *entity.ModelingSession) {
	s.mu.Lock()
	delete(s.turns, sessionID)
	s.mu.Unlock()

	metrics.SessionEvictions.Inc()
	metrics.ActiveSessions.Dec()
}
