package worker_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/modhub/review-queue/internal/domain"
	"github.com/modhub/review-queue/internal/repository"
	"github.com/modhub/review-queue/internal/worker"
)

func TestSweeper_HidesStaleTerminalItems(t *testing.T) {
	repo := repository.NewMockQueueRepository()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	old := time.Now().UTC().Add(-2 * time.Hour)
	err := repo.Create(ctx, &domain.QueuedItem{
		ID:        "stale",
		Kind:      domain.KindReply,
		State:     domain.StateRejected,
		AuthorID:  1,
		Payload:   domain.Payload{Raw: "r"},
		Visible:   true,
		CreatedAt: old,
		UpdatedAt: old,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	sw := worker.NewSweeper(repo, 10*time.Millisecond, time.Hour, zap.NewNop())
	go sw.Run(ctx)

	deadline := time.After(2 * time.Second)
	for {
		item, err := repo.GetByID(ctx, "stale")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !item.Visible {
			return // swept
		}
		select {
		case <-deadline:
			t.Fatal("sweeper never hid the stale item")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
