package domain

import "time"

// ItemKind distinguishes a submission that would create a new topic from
// one that replies into an existing topic. The kind is fixed at submission
// time and controls which fields a moderator may edit.
type ItemKind string

const (
	KindTopic ItemKind = "topic"
	KindReply ItemKind = "reply"
)

func (k ItemKind) IsValid() bool {
	switch k {
	case KindTopic, KindReply:
		return true
	}
	return false
}

// ItemState tracks the moderation lifecycle. Every item starts as new;
// approved and rejected are terminal.
type ItemState string

const (
	StateNew      ItemState = "new"
	StateApproved ItemState = "approved"
	StateRejected ItemState = "rejected"
)

func (s ItemState) IsValid() bool {
	switch s {
	case StateNew, StateApproved, StateRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition may leave this state.
func (s ItemState) IsTerminal() bool {
	return s == StateApproved || s == StateRejected
}

// Payload is the content exactly as the author submitted it.
// It is written once at intake and never mutated afterwards; all
// moderator-proposed edits live in the Changes overlay instead.
type Payload struct {
	Raw        string   `json:"raw"`
	Title      string   `json:"title,omitempty"`
	CategoryID int64    `json:"category_id,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// QueuedItem is the core domain entity: one submission awaiting review.
type QueuedItem struct {
	ID        string    `json:"id"`
	Kind      ItemKind  `json:"kind"`
	State     ItemState `json:"state"`
	AuthorID  int64     `json:"author_id"`
	TopicID   *int64    `json:"topic_id,omitempty"`
	Payload   Payload   `json:"payload"`
	Changes   Changes   `json:"changes,omitempty"`
	Visible   bool      `json:"visible"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubmitRequest is the inbound payload for queueing a new submission.
type SubmitRequest struct {
	Kind       ItemKind `json:"kind"`
	AuthorID   int64    `json:"author_id"`
	TopicID    *int64   `json:"topic_id,omitempty"`
	Raw        string   `json:"raw"`
	Title      string   `json:"title,omitempty"`
	CategoryID int64    `json:"category_id,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

func (r *SubmitRequest) Validate() error {
	if !r.Kind.IsValid() {
		return ErrInvalidKind
	}
	if r.AuthorID <= 0 {
		return ErrInvalidAuthor
	}
	if r.Raw == "" {
		return ErrMissingRaw
	}
	if r.Kind == KindTopic && r.Title == "" {
		return ErrMissingTitle
	}
	if r.Kind == KindReply && r.TopicID == nil {
		return ErrMissingTopic
	}
	return nil
}

// ListFilter holds the query parameters for queue listing.
// A zero State means the default (new).
type ListFilter struct {
	State ItemState
}
