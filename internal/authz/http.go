package authz

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/modhub/review-queue/internal/domain"
)

// HTTPAuthorizer asks the permission service yes/no questions.
// Any transport error or non-200 answer is treated as "no": permission
// checks fail closed.
type HTTPAuthorizer struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPAuthorizer(baseURL string, timeout time.Duration) *HTTPAuthorizer {
	return &HTTPAuthorizer{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (a *HTTPAuthorizer) CanViewItem(ctx context.Context, viewerID int64, item *domain.QueuedItem) bool {
	url := fmt.Sprintf("%s/can-view-item?viewer=%d&item=%s", a.baseURL, viewerID, item.ID)
	return a.ask(ctx, url)
}

func (a *HTTPAuthorizer) CanRemoveAccount(ctx context.Context, moderatorID, targetUserID int64) bool {
	url := fmt.Sprintf("%s/can-remove-account?moderator=%d&target=%d", a.baseURL, moderatorID, targetUserID)
	return a.ask(ctx, url)
}

func (a *HTTPAuthorizer) ask(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// compile-time check that HTTPAuthorizer implements Authorizer
var _ Authorizer = (*HTTPAuthorizer)(nil)
