package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPRemover destroys accounts by calling the account service.
type HTTPRemover struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPRemover(baseURL string, timeout time.Duration) *HTTPRemover {
	return &HTTPRemover{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Remove posts the removal request and expects 204 No Content.
func (r *HTTPRemover) Remove(ctx context.Context, userID int64, opts RemovalOptions) error {
	body, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/users/%d/destroy", r.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected account service status: %d", resp.StatusCode)
	}
	return nil
}

// compile-time check that HTTPRemover implements Remover
var _ Remover = (*HTTPRemover)(nil)
