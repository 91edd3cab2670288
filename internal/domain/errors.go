package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound         = errors.New("queued item not found")
	ErrAlreadyProcessed = errors.New("item was already approved or rejected")
	ErrInvalidKind      = errors.New("invalid kind: must be topic or reply")
	ErrInvalidAuthor    = errors.New("author id must be positive")
	ErrMissingRaw       = errors.New("raw content must not be empty")
	ErrMissingTitle     = errors.New("a queued topic requires a title")
	ErrMissingTopic     = errors.New("a queued reply requires a topic id")
	ErrRateLimited      = errors.New("decision rate limit exceeded, try again later")
)

// PublishError is a primary failure: the content publisher rejected the
// approval, so the transition was aborted and the item remains new.
type PublishError struct {
	Cause error
}

func (e *PublishError) Error() string { return "publish failed: " + e.Cause.Error() }
func (e *PublishError) Unwrap() error { return e.Cause }

// CascadeError is a secondary failure: the rejection itself committed, but
// the requested submitter purge did not complete. Callers must not treat
// this as a failed rejection.
type CascadeError struct {
	Cause error
}

func (e *CascadeError) Error() string { return "account purge failed: " + e.Cause.Error() }
func (e *CascadeError) Unwrap() error { return e.Cause }
