package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/modhub/review-queue/internal/domain"
)

type pgQueueRepository struct {
	pool *pgxpool.Pool
}

// NewPgQueueRepository returns a QueueRepository backed by PostgreSQL.
func NewPgQueueRepository(pool *pgxpool.Pool) QueueRepository {
	return &pgQueueRepository{pool: pool}
}

const itemColumns = `id, kind, state, author_id, topic_id, payload, changes, visible, created_at, updated_at`

func (r *pgQueueRepository) Create(ctx context.Context, item *domain.QueuedItem) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO queued_items
			(id, kind, state, author_id, topic_id, payload, changes, visible, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		item.ID, item.Kind, item.State, item.AuthorID, item.TopicID,
		item.Payload, item.Changes, item.Visible, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert queued item: %w", err)
	}
	return nil
}

func (r *pgQueueRepository) GetByID(ctx context.Context, id string) (*domain.QueuedItem, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM queued_items WHERE id = $1`, id)

	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return item, err
}

func (r *pgQueueRepository) List(ctx context.Context, f domain.ListFilter) ([]*domain.QueuedItem, error) {
	state := f.State
	if state == "" {
		state = domain.StateNew
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM queued_items
		WHERE visible AND state = $1
		ORDER BY created_at ASC`, state)
	if err != nil {
		return nil, fmt.Errorf("list queued items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func (r *pgQueueRepository) SaveChanges(ctx context.Context, id string, changes domain.Changes) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE queued_items
		SET changes = $1, updated_at = $2
		WHERE id = $3`, changes, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("save changes: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// TransitionState relies on the WHERE state = $from predicate for the
// compare-and-set: under concurrent decisions only one UPDATE matches the
// row, the rest affect zero rows and report false.
func (r *pgQueueRepository) TransitionState(ctx context.Context, id string, from, to domain.ItemState) (bool, error) {
	ct, err := r.pool.Exec(ctx, `
		UPDATE queued_items
		SET state = $1, updated_at = $2
		WHERE id = $3 AND state = $4`, to, time.Now().UTC(), id, from)
	if err != nil {
		return false, fmt.Errorf("transition state: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

func (r *pgQueueRepository) CountByState(ctx context.Context) (map[domain.ItemState]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT state, COUNT(*)
		FROM queued_items
		WHERE visible
		GROUP BY state`)
	if err != nil {
		return nil, fmt.Errorf("count by state: %w", err)
	}
	defer rows.Close()

	counts := map[domain.ItemState]int{
		domain.StateNew:      0,
		domain.StateApproved: 0,
		domain.StateRejected: 0,
	}
	for rows.Next() {
		var state domain.ItemState
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			return nil, err
		}
		counts[state] = n
	}
	return counts, rows.Err()
}

func (r *pgQueueRepository) HideProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ct, err := r.pool.Exec(ctx, `
		UPDATE queued_items
		SET visible = FALSE
		WHERE visible AND state IN ('approved','rejected') AND updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("hide processed items: %w", err)
	}
	return ct.RowsAffected(), nil
}

// ---- helpers ----

// scanItem reads a single queued item row from any pgx row type.
// payload and changes are jsonb columns; pgx decodes them straight into
// the Go values via encoding/json.
func scanItem(row pgx.Row) (*domain.QueuedItem, error) {
	var item domain.QueuedItem
	err := row.Scan(
		&item.ID, &item.Kind, &item.State, &item.AuthorID, &item.TopicID,
		&item.Payload, &item.Changes, &item.Visible,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func scanItems(rows pgx.Rows) ([]*domain.QueuedItem, error) {
	var result []*domain.QueuedItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
