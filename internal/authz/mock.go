package authz

import (
	"context"

	"github.com/modhub/review-queue/internal/domain"
)

// MockAuthorizer is a hand-written Authorizer for unit tests.
// The nil function fields default to allowing everything.
type MockAuthorizer struct {
	CanViewItemFn      func(viewerID int64, item *domain.QueuedItem) bool
	CanRemoveAccountFn func(moderatorID, targetUserID int64) bool
}

func (m *MockAuthorizer) CanViewItem(_ context.Context, viewerID int64, item *domain.QueuedItem) bool {
	if m.CanViewItemFn == nil {
		return true
	}
	return m.CanViewItemFn(viewerID, item)
}

func (m *MockAuthorizer) CanRemoveAccount(_ context.Context, moderatorID, targetUserID int64) bool {
	if m.CanRemoveAccountFn == nil {
		return true
	}
	return m.CanRemoveAccountFn(moderatorID, targetUserID)
}

// compile-time check that MockAuthorizer implements Authorizer
var _ Authorizer = (*MockAuthorizer)(nil)
