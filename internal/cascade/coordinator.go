package cascade

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/modhub/review-queue/internal/accounts"
	"github.com/modhub/review-queue/internal/authz"
	"github.com/modhub/review-queue/internal/domain"
)

// Coordinator runs the optional post-rejection side effect: purging the
// submitter's account. The purge is opportunistic — it only happens when
// the moderator asked for it AND is allowed to destroy the target account.
// Its failure never unwinds the rejection that triggered it.
type Coordinator struct {
	authorizer  authz.Authorizer
	remover     accounts.Remover
	blockAccess bool
	logger      *zap.Logger
}

// NewCoordinator wires the coordinator. blockAccess controls whether the
// purge also blacklists the submitter's email domain and IP; it is an
// explicit config flag (true in production, false in staging) so staging
// accounts are never permanently blocked.
func NewCoordinator(
	authorizer authz.Authorizer,
	remover accounts.Remover,
	blockAccess bool,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		authorizer:  authorizer,
		remover:     remover,
		blockAccess: blockAccess,
		logger:      logger,
	}
}

// MaybePurgeSubmitter destroys the item's author account when requested
// and authorized. An unauthorized request is a silent no-op, not an error.
// A remover failure comes back as *domain.CascadeError so callers can tell
// it apart from a primary transition failure.
func (c *Coordinator) MaybePurgeSubmitter(
	ctx context.Context,
	item *domain.QueuedItem,
	moderatorID int64,
	requested bool,
) error {
	if !requested {
		return nil
	}

	if !c.authorizer.CanRemoveAccount(ctx, moderatorID, item.AuthorID) {
		c.logger.Info("submitter purge skipped: moderator lacks permission",
			zap.String("item_id", item.ID),
			zap.Int64("moderator_id", moderatorID),
			zap.Int64("author_id", item.AuthorID),
		)
		return nil
	}

	opts := accounts.RemovalOptions{
		Context:         fmt.Sprintf("rejected in review queue by moderator %d", moderatorID),
		DeletePosts:     true,
		DeleteAsSpammer: true,
		BlockEmail:      c.blockAccess,
		BlockIP:         c.blockAccess,
	}

	if err := c.remover.Remove(ctx, item.AuthorID, opts); err != nil {
		return &domain.CascadeError{Cause: err}
	}

	c.logger.Info("submitter account purged",
		zap.String("item_id", item.ID),
		zap.Int64("author_id", item.AuthorID),
		zap.Int64("moderator_id", moderatorID),
		zap.Bool("access_blocked", c.blockAccess),
	)
	return nil
}
