package publisher

import (
	"context"

	"github.com/modhub/review-queue/internal/domain"
)

// PublishRequest is the JSON body posted to the publishing pipeline.
// The submitted payload and the moderator edit overlay travel separately;
// merging them is the pipeline's job, not the queue's.
type PublishRequest struct {
	ItemID   string          `json:"item_id"`
	Kind     domain.ItemKind `json:"kind"`
	AuthorID int64           `json:"author_id"`
	TopicID  *int64          `json:"topic_id,omitempty"`
	Payload  domain.Payload  `json:"payload"`
	Changes  domain.Changes  `json:"changes,omitempty"`
}

// PublishResponse maps the pipeline's 201 Created response body.
// ContentRef identifies the live post or topic that was materialized.
type PublishResponse struct {
	ContentRef string `json:"contentRef"`
	Status     string `json:"status"`
}

// Publisher abstracts the external content-publishing pipeline invoked on
// approval. Mocking this interface in tests gives full control over
// publish outcomes without real HTTP calls.
type Publisher interface {
	Publish(ctx context.Context, item *domain.QueuedItem) (*PublishResponse, error)
}
