package repository

import (
	"context"
	"time"

	"github.com/modhub/review-queue/internal/domain"
)

// QueueRepository defines all persistence operations for queued items.
// The pgx implementation is in pg_queue_repo.go.
// Tests use a hand-written mock (mock_queue_repo.go).
type QueueRepository interface {
	Create(ctx context.Context, item *domain.QueuedItem) error
	GetByID(ctx context.Context, id string) (*domain.QueuedItem, error)

	// List returns visible items in the given state, oldest first.
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.QueuedItem, error)

	// SaveChanges replaces the item's edit overlay wholesale.
	SaveChanges(ctx context.Context, id string, changes domain.Changes) error

	// TransitionState performs a compare-and-set on the item's state.
	// It returns true only if the row was in `from` and is now in `to`;
	// false means another writer got there first. This is the storage-level
	// guard that makes terminal transitions at-most-once across processes.
	TransitionState(ctx context.Context, id string, from, to domain.ItemState) (bool, error)

	CountByState(ctx context.Context) (map[domain.ItemState]int, error)

	// HideProcessedBefore clears the visible flag on terminal items whose
	// last update is older than the cutoff. Used by the retention sweeper.
	HideProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
