package accounts

import "context"

// RemovalOptions carries the policy flags for an account purge.
// Context is a human-readable note naming the acting moderator; it ends up
// in the account service's audit log.
type RemovalOptions struct {
	Context         string `json:"context"`
	DeletePosts     bool   `json:"delete_posts"`
	DeleteAsSpammer bool   `json:"delete_as_spammer"`
	BlockEmail      bool   `json:"block_email"`
	BlockIP         bool   `json:"block_ip"`
}

// Remover abstracts the external account service that destroys a
// submitter's account after a rejection.
type Remover interface {
	Remove(ctx context.Context, userID int64, opts RemovalOptions) error
}
