package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/modhub/review-queue/internal/domain"
)

// MockQueueRepository is a hand-written, in-memory implementation of
// QueueRepository used in unit tests. No mock-generation library needed.
// TransitionState implements real compare-and-set semantics under the
// mutex, so concurrency tests exercise genuine interleavings.
type MockQueueRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.QueuedItem

	// Optional error overrides — set in tests to simulate failure paths.
	CreateErr      error
	GetByIDErr     error
	SaveChangesErr error
	TransitionErr  error
}

func NewMockQueueRepository() *MockQueueRepository {
	return &MockQueueRepository{items: make(map[string]*domain.QueuedItem)}
}

func (m *MockQueueRepository) Create(_ context.Context, item *domain.QueuedItem) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = cloneItem(item)
	return nil
}

func (m *MockQueueRepository) GetByID(_ context.Context, id string) (*domain.QueuedItem, error) {
	if m.GetByIDErr != nil {
		return nil, m.GetByIDErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneItem(item), nil
}

func (m *MockQueueRepository) List(_ context.Context, f domain.ListFilter) ([]*domain.QueuedItem, error) {
	state := f.State
	if state == "" {
		state = domain.StateNew
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.QueuedItem
	for _, item := range m.items {
		if item.Visible && item.State == state {
			result = append(result, cloneItem(item))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockQueueRepository) SaveChanges(_ context.Context, id string, changes domain.Changes) error {
	if m.SaveChangesErr != nil {
		return m.SaveChangesErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	item.Changes = cloneChanges(changes)
	item.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockQueueRepository) TransitionState(_ context.Context, id string, from, to domain.ItemState) (bool, error) {
	if m.TransitionErr != nil {
		return false, m.TransitionErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok || item.State != from {
		return false, nil
	}
	item.State = to
	item.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (m *MockQueueRepository) CountByState(_ context.Context) (map[domain.ItemState]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := map[domain.ItemState]int{
		domain.StateNew:      0,
		domain.StateApproved: 0,
		domain.StateRejected: 0,
	}
	for _, item := range m.items {
		if item.Visible {
			counts[item.State]++
		}
	}
	return counts, nil
}

func (m *MockQueueRepository) HideProcessedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var hidden int64
	for _, item := range m.items {
		if item.Visible && item.State.IsTerminal() && item.UpdatedAt.Before(cutoff) {
			item.Visible = false
			hidden++
		}
	}
	return hidden, nil
}

// cloneItem deep-copies an item so callers can never reach into the
// repository's stored state through a returned pointer.
func cloneItem(item *domain.QueuedItem) *domain.QueuedItem {
	clone := *item
	if item.TopicID != nil {
		topicID := *item.TopicID
		clone.TopicID = &topicID
	}
	if item.Payload.Tags != nil {
		clone.Payload.Tags = append([]string(nil), item.Payload.Tags...)
	}
	clone.Changes = cloneChanges(item.Changes)
	return &clone
}

func cloneChanges(changes domain.Changes) domain.Changes {
	if changes == nil {
		return nil
	}
	clone := make(domain.Changes, len(changes))
	for k, v := range changes {
		clone[k] = v
	}
	return clone
}
