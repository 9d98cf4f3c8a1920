package memory

import (
	"context"
	"fmt"
	"testing"

	"rhino-modeling-ai-api/internal/domain/entity"
	"rhino-modeling-ai-api/internal/domain/repository"
)

func TestTurnRepositoryCreateRequiresSessionID(t *testing.T) {
	repo := NewModelingTurnRepository(newTestStore(t, 8))

	err := repo.Create(context.Background(), entity.NewModelingTurn("", entity.RoleUser, entity.TurnKindFeedback, "x", nil))
	if err == nil {
		t.Fatalf("expected error for empty session id")
	}
}

func TestTurnRepositoryListInInsertionOrder(t *testing.T) {
	repo := NewModelingTurnRepository(newTestStore(t, 8))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		turn := entity.NewModelingTurn("s1", entity.RoleAssistant, entity.TurnKindScriptGen, fmt.Sprintf("turn-%d", i), nil)
		if err := repo.Create(ctx, turn); err != nil {
			t.Fatalf("create turn %d: %v", i, err)
		}
	}

	page, err := repo.ListBySession(ctx, "s1", repository.NewPagination(1, 3))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 5 {
		t.Fatalf("expected total 5, got %d", page.Total)
	}
	if len(page.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(page.Items))
	}
	for i, item := range page.Items {
		if want := fmt.Sprintf("turn-%d", i); item.Content != want {
			t.Fatalf("item %d = %q, want %q", i, item.Content, want)
		}
	}

	page2, err := repo.ListBySession(ctx, "s1", repository.NewPagination(2, 3))
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(page2.Items) != 2 || page2.Items[0].Content != "turn-3" {
		t.Fatalf("unexpected page 2: %d items", len(page2.Items))
	}
}

func TestTurnRepositoryListOffsetPastEnd(t *testing.T) {
	repo := NewModelingTurnRepository(newTestStore(t, 8))
	ctx := context.Background()

	if err := repo.Create(ctx, entity.NewModelingTurn("s1", entity.RoleUser, entity.TurnKindFeedback, "only", nil)); err != nil {
		t.Fatalf("create: %v", err)
	}
	page, err := repo.ListBySession(ctx, "s1", repository.NewPagination(5, 10))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 0 || page.Total != 1 {
		t.Fatalf("expected empty page with total 1, got %d items total %d", len(page.Items), page.Total)
	}
}

func TestTurnRepositoryDeleteBySession(t *testing.T) {
	repo := NewModelingTurnRepository(newTestStore(t, 8))
	ctx := context.Background()

	if err := repo.Create(ctx, entity.NewModelingTurn("s1", entity.RoleUser, entity.TurnKindFeedback, "x", nil)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.DeleteBySession(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	page, err := repo.ListBySession(ctx, "s1", repository.NewPagination(1, 10))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("expected no turns after delete, got %d", page.Total)
	}
}
