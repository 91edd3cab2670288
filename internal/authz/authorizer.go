package authz

import (
	"context"

	"github.com/modhub/review-queue/internal/domain"
)

// Authorizer abstracts the external permission service. The queue never
// reasons about roles itself: it asks per item whether a viewer may see it,
// and per purge whether the moderator may destroy the target account.
type Authorizer interface {
	CanViewItem(ctx context.Context, viewerID int64, item *domain.QueuedItem) bool
	CanRemoveAccount(ctx context.Context, moderatorID, targetUserID int64) bool
}
