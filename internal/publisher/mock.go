package publisher

import (
	"context"
	"sync"

	"github.com/modhub/review-queue/internal/domain"
)

// MockPublisher is a hand-written Publisher for unit tests. It records the
// items it was asked to publish so tests can assert on the exact payload
// the pipeline would receive.
type MockPublisher struct {
	mu        sync.Mutex
	Published []*domain.QueuedItem

	// PublishErr, when set, makes every Publish call fail.
	PublishErr error
}

func (m *MockPublisher) Publish(_ context.Context, item *domain.QueuedItem) (*PublishResponse, error) {
	if m.PublishErr != nil {
		return nil, m.PublishErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, item)
	return &PublishResponse{ContentRef: "content-" + item.ID, Status: "created"}, nil
}

// PublishCount returns how many publish calls succeeded.
func (m *MockPublisher) PublishCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Published)
}

// compile-time check that MockPublisher implements Publisher
var _ Publisher = (*MockPublisher)(nil)
