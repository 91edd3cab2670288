package accounts

import (
	"context"
	"sync"
)

// RemovalCall records one invocation of the mock remover.
type RemovalCall struct {
	UserID  int64
	Options RemovalOptions
}

// MockRemover is a hand-written Remover for unit tests.
type MockRemover struct {
	mu    sync.Mutex
	Calls []RemovalCall

	// RemoveErr, when set, makes every Remove call fail.
	RemoveErr error
}

func (m *MockRemover) Remove(_ context.Context, userID int64, opts RemovalOptions) error {
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, RemovalCall{UserID: userID, Options: opts})
	return nil
}

// LastCall returns the most recent recorded call, or nil if none succeeded.
func (m *MockRemover) LastCall() *RemovalCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	call := m.Calls[len(m.Calls)-1]
	return &call
}

// compile-time check that MockRemover implements Remover
var _ Remover = (*MockRemover)(nil)
