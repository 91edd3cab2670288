package cascade_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/modhub/review-queue/internal/accounts"
	"github.com/modhub/review-queue/internal/authz"
	"github.com/modhub/review-queue/internal/cascade"
	"github.com/modhub/review-queue/internal/domain"
)

func rejectedItem() *domain.QueuedItem {
	return &domain.QueuedItem{
		ID:       "item-1",
		Kind:     domain.KindReply,
		State:    domain.StateRejected,
		AuthorID: 100,
	}
}

func TestMaybePurgeSubmitter_NotRequested(t *testing.T) {
	remover := &accounts.MockRemover{}
	c := cascade.NewCoordinator(&authz.MockAuthorizer{}, remover, true, zap.NewNop())

	if err := c.MaybePurgeSubmitter(context.Background(), rejectedItem(), 7, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remover.LastCall() != nil {
		t.Fatal("remover must not be called when purge was not requested")
	}
}

func TestMaybePurgeSubmitter_UnauthorizedIsSilent(t *testing.T) {
	remover := &accounts.MockRemover{}
	auth := &authz.MockAuthorizer{
		CanRemoveAccountFn: func(int64, int64) bool { return false },
	}
	c := cascade.NewCoordinator(auth, remover, true, zap.NewNop())

	if err := c.MaybePurgeSubmitter(context.Background(), rejectedItem(), 7, true); err != nil {
		t.Fatalf("unauthorized purge must be a no-op, got %v", err)
	}
	if remover.LastCall() != nil {
		t.Fatal("remover must not be called without permission")
	}
}

func TestMaybePurgeSubmitter_Options(t *testing.T) {
	tests := []struct {
		name        string
		blockAccess bool
	}{
		{"staging", false},
		{"production", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			remover := &accounts.MockRemover{}
			c := cascade.NewCoordinator(&authz.MockAuthorizer{}, remover, tc.blockAccess, zap.NewNop())

			if err := c.MaybePurgeSubmitter(context.Background(), rejectedItem(), 7, true); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			call := remover.LastCall()
			if call == nil {
				t.Fatal("expected a removal call")
			}
			if call.UserID != 100 {
				t.Fatalf("expected author 100 purged, got %d", call.UserID)
			}
			if !call.Options.DeletePosts || !call.Options.DeleteAsSpammer {
				t.Fatalf("expected spam-class removal flags, got %+v", call.Options)
			}
			if call.Options.BlockEmail != tc.blockAccess || call.Options.BlockIP != tc.blockAccess {
				t.Fatalf("block flags must follow the config flag %v, got %+v", tc.blockAccess, call.Options)
			}
			if !strings.Contains(call.Options.Context, "7") {
				t.Fatalf("removal context must name the acting moderator, got %q", call.Options.Context)
			}
		})
	}
}

func TestMaybePurgeSubmitter_RemoverFailure(t *testing.T) {
	remover := &accounts.MockRemover{RemoveErr: errors.New("account service down")}
	c := cascade.NewCoordinator(&authz.MockAuthorizer{}, remover, false, zap.NewNop())

	err := c.MaybePurgeSubmitter(context.Background(), rejectedItem(), 7, true)

	var cascadeErr *domain.CascadeError
	if !errors.As(err, &cascadeErr) {
		t.Fatalf("expected *domain.CascadeError, got %v", err)
	}
}
