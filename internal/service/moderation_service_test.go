package service_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/modhub/review-queue/internal/accounts"
	"github.com/modhub/review-queue/internal/authz"
	"github.com/modhub/review-queue/internal/cascade"
	"github.com/modhub/review-queue/internal/domain"
	"github.com/modhub/review-queue/internal/publisher"
	"github.com/modhub/review-queue/internal/repository"
	"github.com/modhub/review-queue/internal/service"
)

type fixture struct {
	svc     *service.ModerationService
	repo    *repository.MockQueueRepository
	pub     *publisher.MockPublisher
	remover *accounts.MockRemover
	auth    *authz.MockAuthorizer
}

func newFixture(blockAccess bool) *fixture {
	repo := repository.NewMockQueueRepository()
	pub := &publisher.MockPublisher{}
	remover := &accounts.MockRemover{}
	auth := &authz.MockAuthorizer{}
	coordinator := cascade.NewCoordinator(auth, remover, blockAccess, zap.NewNop())
	svc := service.NewModerationService(repo, pub, coordinator, auth, service.MetricHooks{}, zap.NewNop())
	return &fixture{svc: svc, repo: repo, pub: pub, remover: remover, auth: auth}
}

func seedItem(t *testing.T, f *fixture, item *domain.QueuedItem) {
	t.Helper()
	if item.State == "" {
		item.State = domain.StateNew
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	item.UpdatedAt = item.CreatedAt
	item.Visible = true
	if err := f.repo.Create(context.Background(), item); err != nil {
		t.Fatalf("seed item: %v", err)
	}
}

func newReply(id string) *domain.QueuedItem {
	topicID := int64(42)
	return &domain.QueuedItem{
		ID:       id,
		Kind:     domain.KindReply,
		AuthorID: 100,
		TopicID:  &topicID,
		Payload:  domain.Payload{Raw: "original reply"},
	}
}

func newTopic(id string) *domain.QueuedItem {
	return &domain.QueuedItem{
		ID:       id,
		Kind:     domain.KindTopic,
		AuthorID: 100,
		Payload: domain.Payload{
			Raw:        "original topic",
			Title:      "original title",
			CategoryID: 3,
			Tags:       []string{"original"},
		},
	}
}

func TestSubmit(t *testing.T) {
	f := newFixture(false)

	item, err := f.svc.Submit(context.Background(), domain.SubmitRequest{
		Kind:     domain.KindTopic,
		AuthorID: 100,
		Raw:      "hello",
		Title:    "a topic",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.ID == "" {
		t.Fatal("expected a non-empty ID")
	}
	if item.State != domain.StateNew {
		t.Fatalf("expected state=new, got %s", item.State)
	}
	if !item.Visible {
		t.Fatal("expected new submission to be visible")
	}
}

func TestSubmit_Validation(t *testing.T) {
	topicID := int64(1)
	tests := []struct {
		name        string
		req         domain.SubmitRequest
		expectedErr error
	}{
		{"invalid kind", domain.SubmitRequest{Kind: "page", AuthorID: 1, Raw: "x"}, domain.ErrInvalidKind},
		{"missing author", domain.SubmitRequest{Kind: domain.KindTopic, Raw: "x", Title: "t"}, domain.ErrInvalidAuthor},
		{"missing raw", domain.SubmitRequest{Kind: domain.KindTopic, AuthorID: 1, Title: "t"}, domain.ErrMissingRaw},
		{"topic without title", domain.SubmitRequest{Kind: domain.KindTopic, AuthorID: 1, Raw: "x"}, domain.ErrMissingTitle},
		{"reply without topic", domain.SubmitRequest{Kind: domain.KindReply, AuthorID: 1, Raw: "x"}, domain.ErrMissingTopic},
		{"valid reply", domain.SubmitRequest{Kind: domain.KindReply, AuthorID: 1, Raw: "x", TopicID: &topicID}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(false)
			_, err := f.svc.Submit(context.Background(), tc.req)
			if !errors.Is(err, tc.expectedErr) {
				t.Fatalf("expected %v, got %v", tc.expectedErr, err)
			}
		})
	}
}

func TestProposeEdit_ReplyWhitelist(t *testing.T) {
	f := newFixture(false)
	seedItem(t, f, newReply("r1"))

	item, err := f.svc.ProposeEdit(context.Background(), "r1", map[string]any{
		"title": "X",
		"raw":   "Y",
	}, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if item.Changes["raw"] != "Y" {
		t.Fatalf("expected raw=Y in changes, got %v", item.Changes["raw"])
	}
	if _, ok := item.Changes["title"]; ok {
		t.Fatal("title must not be editable on a reply")
	}
	if item.Changes["editor_id"] != int64(7) {
		t.Fatalf("expected editor_id=7, got %v", item.Changes["editor_id"])
	}
}

func TestProposeEdit_ReplacesOverlayWholesale(t *testing.T) {
	f := newFixture(false)
	seedItem(t, f, newTopic("t1"))
	ctx := context.Background()

	_, err := f.svc.ProposeEdit(ctx, "t1", map[string]any{
		"raw":  "first",
		"tags": []string{"a"},
	}, 7)
	if err != nil {
		t.Fatalf("first proposal: %v", err)
	}

	item, err := f.svc.ProposeEdit(ctx, "t1", map[string]any{
		"raw": "second",
	}, 7)
	if err != nil {
		t.Fatalf("second proposal: %v", err)
	}

	if item.Changes["raw"] != "second" {
		t.Fatalf("expected raw=second, got %v", item.Changes["raw"])
	}
	if _, ok := item.Changes["tags"]; ok {
		t.Fatal("tags omitted in the second proposal must not survive from the first")
	}
}

func TestProposeEdit_EmptyFilteredSetWritesNothing(t *testing.T) {
	f := newFixture(false)
	seedItem(t, f, newReply("r1"))
	ctx := context.Background()

	if _, err := f.svc.ProposeEdit(ctx, "r1", map[string]any{"raw": "kept"}, 7); err != nil {
		t.Fatalf("first proposal: %v", err)
	}

	// For a reply, title and unknown keys both filter to nothing.
	item, err := f.svc.ProposeEdit(ctx, "r1", map[string]any{
		"title":    "ignored",
		"whatever": true,
	}, 8)
	if err != nil {
		t.Fatalf("second proposal: %v", err)
	}

	if item.Changes["raw"] != "kept" {
		t.Fatalf("prior overlay must stay untouched, got %v", item.Changes)
	}
	if item.Changes["editor_id"] != int64(7) {
		t.Fatalf("editor must remain the prior proposer, got %v", item.Changes["editor_id"])
	}
}

func TestProposeEdit_CategoryCoercion(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected any // nil = field dropped
	}{
		{"json number", float64(10), int64(10)},
		{"numeric string", "10", int64(10)},
		{"garbage string", "not-a-number", nil},
		{"bool", true, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(false)
			seedItem(t, f, newTopic("t1"))

			item, err := f.svc.ProposeEdit(context.Background(), "t1", map[string]any{
				"raw":         "r",
				"category_id": tc.value,
			}, 7)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got, ok := item.Changes["category_id"]
			if tc.expected == nil {
				if ok {
					t.Fatalf("expected category_id dropped, got %v", got)
				}
				return
			}
			if got != tc.expected {
				t.Fatalf("expected category_id=%v, got %v", tc.expected, got)
			}
		})
	}
}

func TestProposeEdit_NeverMutatesPayload(t *testing.T) {
	f := newFixture(false)
	seedItem(t, f, newTopic("t1"))
	ctx := context.Background()

	before, err := f.repo.GetByID(ctx, "t1")
	if err != nil {
		t.Fatalf("get before: %v", err)
	}

	proposals := []map[string]any{
		{"raw": "new raw", "title": "new title", "category_id": float64(9), "tags": []string{"x"}},
		{"raw": "another raw"},
		{"edit_reason": "cleanup"},
	}
	for _, p := range proposals {
		if _, err := f.svc.ProposeEdit(ctx, "t1", p, 7); err != nil {
			t.Fatalf("propose: %v", err)
		}
	}

	after, err := f.repo.GetByID(ctx, "t1")
	if err != nil {
		t.Fatalf("get after: %v", err)
	}
	if !reflect.DeepEqual(before.Payload, after.Payload) {
		t.Fatalf("submitted payload changed: before=%+v after=%+v", before.Payload, after.Payload)
	}
}

func TestProposeEdit_NotFound(t *testing.T) {
	f := newFixture(false)
	_, err := f.svc.ProposeEdit(context.Background(), "missing", map[string]any{"raw": "x"}, 7)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDecide_Approve(t *testing.T) {
	f := newFixture(false)
	seedItem(t, f, newReply("r1"))

	item, err := f.svc.Decide(context.Background(), "r1", "approved", 7, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.State != domain.StateApproved {
		t.Fatalf("expected state=approved, got %s", item.State)
	}
	if f.pub.PublishCount() != 1 {
		t.Fatalf("expected exactly one publish, got %d", f.pub.PublishCount())
	}

	stored, _ := f.repo.GetByID(context.Background(), "r1")
	if stored.State != domain.StateApproved {
		t.Fatalf("expected persisted state=approved, got %s", stored.State)
	}
}

func TestDecide_ApprovePublishFails(t *testing.T) {
	f := newFixture(false)
	seedItem(t, f, newReply("r1"))
	f.pub.PublishErr = errors.New("pipeline down")

	_, err := f.svc.Decide(context.Background(), "r1", "approved", 7, false)

	var publishErr *domain.PublishError
	if !errors.As(err, &publishErr) {
		t.Fatalf("expected *domain.PublishError, got %v", err)
	}

	stored, _ := f.repo.GetByID(context.Background(), "r1")
	if stored.State != domain.StateNew {
		t.Fatalf("failed publish must leave state=new, got %s", stored.State)
	}
}

func TestDecide_AlreadyProcessed(t *testing.T) {
	f := newFixture(false)
	item := newReply("r1")
	seedItem(t, f, item)
	ctx := context.Background()

	if _, err := f.svc.Decide(ctx, "r1", "approved", 7, false); err != nil {
		t.Fatalf("first decision: %v", err)
	}

	_, err := f.svc.Decide(ctx, "r1", "rejected", 8, false)
	if !errors.Is(err, domain.ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}

	stored, _ := f.repo.GetByID(ctx, "r1")
	if stored.State != domain.StateApproved {
		t.Fatalf("second decision must not override the first, got %s", stored.State)
	}
}

func TestDecide_UnrecognizedTargetIsNoOp(t *testing.T) {
	f := newFixture(false)
	seedItem(t, f, newReply("r1"))

	item, err := f.svc.Decide(context.Background(), "r1", "bogus-state", 7, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.State != domain.StateNew {
		t.Fatalf("expected state unchanged, got %s", item.State)
	}
	if f.pub.PublishCount() != 0 {
		t.Fatal("no-op decision must not publish")
	}
}

func TestDecide_NotFound(t *testing.T) {
	f := newFixture(false)
	_, err := f.svc.Decide(context.Background(), "missing", "approved", 7, false)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDecide_RejectWithPurge(t *testing.T) {
	f := newFixture(false)
	seedItem(t, f, newReply("r1"))

	item, err := f.svc.Decide(context.Background(), "r1", "rejected", 7, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.State != domain.StateRejected {
		t.Fatalf("expected state=rejected, got %s", item.State)
	}

	call := f.remover.LastCall()
	if call == nil {
		t.Fatal("expected the account remover to be called")
	}
	if call.UserID != 100 {
		t.Fatalf("expected purge of author 100, got %d", call.UserID)
	}
	if !call.Options.DeletePosts || !call.Options.DeleteAsSpammer {
		t.Fatalf("expected delete_posts and delete_as_spammer, got %+v", call.Options)
	}
	if call.Options.BlockEmail || call.Options.BlockIP {
		t.Fatalf("staging purge must not block email/IP, got %+v", call.Options)
	}
}

func TestDecide_RejectWithPurge_BlocksAccessInProduction(t *testing.T) {
	f := newFixture(true)
	seedItem(t, f, newReply("r1"))

	if _, err := f.svc.Decide(context.Background(), "r1", "rejected", 7, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call := f.remover.LastCall()
	if call == nil {
		t.Fatal("expected the account remover to be called")
	}
	if !call.Options.BlockEmail || !call.Options.BlockIP {
		t.Fatalf("production purge must block email and IP, got %+v", call.Options)
	}
}

func TestDecide_RejectWithoutPurge(t *testing.T) {
	f := newFixture(false)
	seedItem(t, f, newReply("r1"))

	if _, err := f.svc.Decide(context.Background(), "r1", "rejected", 7, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.remover.LastCall() != nil {
		t.Fatal("purge must not run unless requested")
	}
}

func TestDecide_RejectPurgeUnauthorizedIsSilent(t *testing.T) {
	f := newFixture(false)
	seedItem(t, f, newReply("r1"))
	f.auth.CanRemoveAccountFn = func(int64, int64) bool { return false }

	item, err := f.svc.Decide(context.Background(), "r1", "rejected", 7, true)
	if err != nil {
		t.Fatalf("unauthorized purge must be a silent no-op, got %v", err)
	}
	if item.State != domain.StateRejected {
		t.Fatalf("expected state=rejected, got %s", item.State)
	}
	if f.remover.LastCall() != nil {
		t.Fatal("unauthorized purge must not reach the account service")
	}
}

func TestDecide_RejectCascadeFailureKeepsRejection(t *testing.T) {
	f := newFixture(false)
	seedItem(t, f, newReply("r1"))
	f.remover.RemoveErr = errors.New("account service down")

	item, err := f.svc.Decide(context.Background(), "r1", "rejected", 7, true)

	var cascadeErr *domain.CascadeError
	if !errors.As(err, &cascadeErr) {
		t.Fatalf("expected *domain.CascadeError, got %v", err)
	}
	if item == nil || item.State != domain.StateRejected {
		t.Fatal("cascade failure must not unwind the rejection")
	}

	stored, _ := f.repo.GetByID(context.Background(), "r1")
	if stored.State != domain.StateRejected {
		t.Fatalf("expected persisted state=rejected, got %s", stored.State)
	}
}

func TestDecide_ConcurrentRace(t *testing.T) {
	f := newFixture(false)
	seedItem(t, f, newReply("r1"))
	ctx := context.Background()

	targets := []string{"approved", "rejected", "approved", "rejected", "approved", "rejected"}
	results := make([]error, len(targets))
	states := make([]domain.ItemState, len(targets))

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()
			item, err := f.svc.Decide(ctx, "r1", target, int64(i+1), false)
			results[i] = err
			if err == nil {
				states[i] = item.State
			}
		}(i, target)
	}
	wg.Wait()

	var winners int
	var winnerState domain.ItemState
	for i, err := range results {
		switch {
		case err == nil:
			winners++
			winnerState = states[i]
		case errors.Is(err, domain.ErrAlreadyProcessed):
		default:
			t.Fatalf("unexpected error from racer %d: %v", i, err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winning decision, got %d", winners)
	}

	stored, _ := f.repo.GetByID(ctx, "r1")
	if stored.State != winnerState {
		t.Fatalf("final state %s does not match winner's %s", stored.State, winnerState)
	}
}

func TestListQueue(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()

	older := newReply("r1")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	seedItem(t, f, older)

	newer := newTopic("t1")
	newer.CreatedAt = time.Now().UTC()
	seedItem(t, f, newer)

	approved := newReply("r2")
	approved.State = domain.StateApproved
	seedItem(t, f, approved)

	items, err := f.svc.ListQueue(ctx, domain.StateNew, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 new items, got %d", len(items))
	}
	if items[0].ID != "r1" || items[1].ID != "t1" {
		t.Fatalf("expected oldest-first ordering, got %s then %s", items[0].ID, items[1].ID)
	}
}

func TestListQueue_AuthorizerFiltersItems(t *testing.T) {
	f := newFixture(false)
	seedItem(t, f, newReply("r1"))
	seedItem(t, f, newTopic("t1"))

	f.auth.CanViewItemFn = func(_ int64, item *domain.QueuedItem) bool {
		return item.Kind == domain.KindTopic
	}

	items, err := f.svc.ListQueue(context.Background(), domain.StateNew, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "t1" {
		t.Fatalf("expected only the viewable topic, got %v", items)
	}
}

// Full lifecycle: a reply gets a whitelisted edit, then is approved and
// the publisher receives the overlay.
func TestReplyEditThenApprove(t *testing.T) {
	f := newFixture(false)
	seedItem(t, f, newReply("1"))
	ctx := context.Background()

	item, err := f.svc.ProposeEdit(ctx, "1", map[string]any{
		"raw":         "new raw",
		"title":       "ignored",
		"edit_reason": "fix typo",
	}, 7)
	if err != nil {
		t.Fatalf("propose edit: %v", err)
	}

	expected := domain.Changes{
		"raw":         "new raw",
		"edit_reason": "fix typo",
		"editor_id":   int64(7),
	}
	if !reflect.DeepEqual(item.Changes, expected) {
		t.Fatalf("expected changes %v, got %v", expected, item.Changes)
	}

	item, err = f.svc.Decide(ctx, "1", "approved", 7, false)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if item.State != domain.StateApproved {
		t.Fatalf("expected state=approved, got %s", item.State)
	}

	if f.pub.PublishCount() != 1 {
		t.Fatalf("expected one publish, got %d", f.pub.PublishCount())
	}
	published := f.pub.Published[0]
	if published.Changes["raw"] != "new raw" {
		t.Fatalf("publisher must receive the edit overlay, got %v", published.Changes)
	}
	if published.Payload.Raw != "original reply" {
		t.Fatalf("publisher must receive the untouched payload, got %q", published.Payload.Raw)
	}
}
