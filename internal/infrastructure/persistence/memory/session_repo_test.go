package memory

import (
	"context"
	"testing"

	"rhino-modeling-ai-api/internal/domain/entity"
	"rhino-modeling-ai-api/internal/domain/repository"
)

func newTestStore(t *testing.T, capacity int) *Store {
	t.Helper()
	store, err := NewStore(capacity)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestSessionRepositoryCreateAndGet(t *testing.T) {
	repo := NewModelingSessionRepository(newTestStore(t, 8))
	ctx := context.Background()

	session := entity.NewModelingSession("a glass cube tower")
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.ID != session.ID {
		t.Fatalf("unexpected session: %+v", got)
	}
	if got.Description != "a glass cube tower" {
		t.Fatalf("unexpected description: %q", got.Description)
	}
}

func TestSessionRepositoryGetMissReturnsNilNil(t *testing.T) {
	repo := NewModelingSessionRepository(newTestStore(t, 8))

	got, err := repo.GetByID(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("expected nil error on miss, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil session on miss, got %+v", got)
	}
}

func TestSessionRepositoryCreateDuplicateFails(t *testing.T) {
	repo := NewModelingSessionRepository(newTestStore(t, 8))
	ctx := context.Background()

	session := entity.NewModelingSession("x")
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, session); err == nil {
		t.Fatalf("expected duplicate create to fail")
	}
}

func TestSessionRepositoryUpdate(t *testing.T) {
	repo := NewModelingSessionRepository(newTestStore(t, 8))
	ctx := context.Background()

	if err := repo.Update(ctx, entity.NewModelingSession("ghost")); err == nil {
		t.Fatalf("expected update of missing session to fail")
	}

	session := entity.NewModelingSession("before")
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("create: %v", err)
	}
	session.Description = "after"
	if err := repo.Update(ctx, session); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.GetByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != "after" {
		t.Fatalf("update not visible: %q", got.Description)
	}
}

func TestSessionRepositoryListNewestFirst(t *testing.T) {
	repo := NewModelingSessionRepository(newTestStore(t, 8))
	ctx := context.Background()

	first := entity.NewModelingSession("first")
	second := entity.NewModelingSession("second")
	third := entity.NewModelingSession("third")
	for _, s := range []*entity.ModelingSession{first, second, third} {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("create %s: %v", s.Description, err)
		}
	}

	page1, err := repo.List(ctx, repository.NewPagination(1, 2))
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if page1.Total != 3 {
		t.Fatalf("expected total 3, got %d", page1.Total)
	}
	if len(page1.Items) != 2 || page1.Items[0].ID != third.ID || page1.Items[1].ID != second.ID {
		t.Fatalf("unexpected page 1 order: %v", descriptions(page1.Items))
	}

	page2, err := repo.List(ctx, repository.NewPagination(2, 2))
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(page2.Items) != 1 || page2.Items[0].ID != first.ID {
		t.Fatalf("unexpected page 2: %v", descriptions(page2.Items))
	}
}

func TestSessionEvictionCascadesToTurns(t *testing.T) {
	store := newTestStore(t, 2)
	sessions := NewModelingSessionRepository(store)
	turns := NewModelingTurnRepository(store)
	ctx := context.Background()

	oldest := entity.NewModelingSession("oldest")
	if err := sessions.Create(ctx, oldest); err != nil {
		t.Fatalf("create oldest: %v", err)
	}
	if err := turns.Create(ctx, entity.NewModelingTurn(oldest.ID, entity.RoleUser, entity.TurnKindDescription, "oldest", nil)); err != nil {
		t.Fatalf("create turn: %v", err)
	}

	for _, desc := range []string{"newer", "newest"} {
		if err := sessions.Create(ctx, entity.NewModelingSession(desc)); err != nil {
			t.Fatalf("create %s: %v", desc, err)
		}
	}

	got, err := sessions.GetByID(ctx, oldest.ID)
	if err != nil {
		t.Fatalf("get evicted: %v", err)
	}
	if got != nil {
		t.Fatalf("expected oldest session to be evicted")
	}

	result, err := turns.ListBySession(ctx, oldest.ID, repository.NewPagination(1, 10))
	if err != nil {
		t.Fatalf("list turns: %v", err)
	}
	if result.Total != 0 || len(result.Items) != 0 {
		t.Fatalf("expected turns of evicted session to be gone, got %d", result.Total)
	}
}

func descriptions(items []*entity.ModelingSession) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		out = append(out, s.Description)
	}
	return out
}
