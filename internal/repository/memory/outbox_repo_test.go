package memory

import (
	"context"
	"testing"
	"time"

	"github.com/DRSN-tech/product-catalog/internal/usecase"
)

func TestOutboxRepo_Lifecycle(t *testing.T) {
	repo := NewOutboxRepo()
	ctx := context.Background()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	for _, id := range []string{"a", "b", "c"} {
		if _, err := repo.Create(ctx, &usecase.OutboxEvent{EventID: id, EventType: usecase.ProductCreated}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := repo.Create(ctx, &usecase.OutboxEvent{EventID: "a"}); err == nil {
		t.Fatal("expected duplicate event id to be rejected")
	}

	batch, err := repo.GetAndMarkAsProcessing(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != 2 || batch[0].EventID != "a" || batch[1].EventID != "b" {
		t.Fatalf("unexpected first batch: %+v", batch)
	}

	_ = repo.MarkAsProcessed(ctx, batch[0].ID)
	_ = repo.Reschedule(ctx, batch[1].ID, now.Add(time.Minute), "broker not available")

	next, _ := repo.GetAndMarkAsProcessing(ctx, 10)
	if len(next) != 1 || next[0].EventID != "c" {
		t.Fatalf("rescheduled event must wait, got %+v", next)
	}
	_ = repo.MarkAsFailed(ctx, next[0].ID, "permanent")

	now = now.Add(2 * time.Minute)
	retried, _ := repo.GetAndMarkAsProcessing(ctx, 10)
	if len(retried) != 1 || retried[0].EventID != "b" || retried[0].Attempts != 2 {
		t.Fatalf("expected b on second attempt, got %+v", retried)
	}

	statuses := map[string]usecase.OutboxStatus{}
	for _, ev := range repo.Events() {
		statuses[ev.EventID] = ev.Status
	}
	want := map[string]usecase.OutboxStatus{"a": usecase.Processed, "b": usecase.Processing, "c": usecase.Failed}
	for id, st := range want {
		if statuses[id] != st {
			t.Errorf("event %s status = %s, want %s", id, statuses[id], st)
		}
	}
}

func TestOutboxRepo_ReleaseStuck(t *testing.T) {
	repo := NewOutboxRepo()
	ctx := context.Background()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	if _, err := repo.Create(ctx, &usecase.OutboxEvent{EventID: "a", EventType: usecase.ProductCreated}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetAndMarkAsProcessing(ctx, 1); err != nil {
		t.Fatal(err)
	}

	if n, _ := repo.ReleaseStuck(ctx, time.Minute); n != 0 {
		t.Fatalf("fresh event released: %d", n)
	}

	now = now.Add(5 * time.Minute)
	if n, _ := repo.ReleaseStuck(ctx, time.Minute); n != 1 {
		t.Fatalf("ReleaseStuck() = %d, want 1", n)
	}

	again, _ := repo.GetAndMarkAsProcessing(ctx, 1)
	if len(again) != 1 || again[0].Attempts != 2 {
		t.Fatalf("released event must be claimable again, got %+v", again)
	}
}
