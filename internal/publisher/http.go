package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/modhub/review-queue/internal/domain"
)

// HTTPPublisher materializes approved content by POSTing to the publishing
// service. The base URL is injected from config so tests can point to a
// local mock.
type HTTPPublisher struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPPublisher(baseURL string, timeout time.Duration) *HTTPPublisher {
	return &HTTPPublisher{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Publish posts the item's payload and edit overlay to the publishing
// service and expects a 201 Created response naming the content reference.
func (p *HTTPPublisher) Publish(ctx context.Context, item *domain.QueuedItem) (*PublishResponse, error) {
	body, err := json.Marshal(PublishRequest{
		ItemID:   item.ID,
		Kind:     item.Kind,
		AuthorID: item.AuthorID,
		TopicID:  item.TopicID,
		Payload:  item.Payload,
		Changes:  item.Changes,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/posts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("unexpected publisher status: %d", resp.StatusCode)
	}

	var pubResp PublishResponse
	if err := json.NewDecoder(resp.Body).Decode(&pubResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &pubResp, nil
}

// compile-time check that HTTPPublisher implements Publisher
var _ Publisher = (*HTTPPublisher)(nil)
