package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/modhub/review-queue/internal/authz"
	"github.com/modhub/review-queue/internal/cascade"
	"github.com/modhub/review-queue/internal/domain"
	"github.com/modhub/review-queue/internal/publisher"
	"github.com/modhub/review-queue/internal/repository"
)

// MetricHooks carries the metric callback functions injected by main.
// Using a struct keeps the service constructor signature clean.
type MetricHooks struct {
	OnSubmitted     func(kind domain.ItemKind)
	OnDecided       func(outcome domain.ItemState, latency time.Duration)
	OnEditProposed  func(kind domain.ItemKind)
	OnCascadeFailed func()
}

// ModerationService is the queued-item lifecycle engine. All business
// rules live here: the edit whitelist and overlay replacement, the
// new→terminal state machine with its at-most-once guarantee, and the
// post-rejection purge orchestration. HTTP handlers depend on this
// service, never on the repository or collaborators directly.
type ModerationService struct {
	repo       repository.QueueRepository
	pub        publisher.Publisher
	cascade    *cascade.Coordinator
	authorizer authz.Authorizer
	hooks      MetricHooks
	logger     *zap.Logger
}

// NewModerationService constructs the service. The hooks fields are
// optional (nil = no-op).
func NewModerationService(
	repo repository.QueueRepository,
	pub publisher.Publisher,
	coordinator *cascade.Coordinator,
	authorizer authz.Authorizer,
	hooks MetricHooks,
	logger *zap.Logger,
) *ModerationService {
	if hooks.OnSubmitted == nil {
		hooks.OnSubmitted = func(domain.ItemKind) {}
	}
	if hooks.OnDecided == nil {
		hooks.OnDecided = func(domain.ItemState, time.Duration) {}
	}
	if hooks.OnEditProposed == nil {
		hooks.OnEditProposed = func(domain.ItemKind) {}
	}
	if hooks.OnCascadeFailed == nil {
		hooks.OnCascadeFailed = func() {}
	}
	return &ModerationService{
		repo:       repo,
		pub:        pub,
		cascade:    coordinator,
		authorizer: authorizer,
		hooks:      hooks,
		logger:     logger,
	}
}

// Submit validates and persists a new submission entering moderation.
func (s *ModerationService) Submit(ctx context.Context, req domain.SubmitRequest) (*domain.QueuedItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &domain.QueuedItem{
		ID:       uuid.New().String(),
		Kind:     req.Kind,
		State:    domain.StateNew,
		AuthorID: req.AuthorID,
		TopicID:  req.TopicID,
		Payload: domain.Payload{
			Raw:        req.Raw,
			Title:      req.Title,
			CategoryID: req.CategoryID,
			Tags:       req.Tags,
		},
		Visible:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("persist queued item: %w", err)
	}

	s.hooks.OnSubmitted(item.Kind)
	s.logger.Info("submission queued",
		zap.String("item_id", item.ID),
		zap.String("kind", string(item.Kind)),
		zap.Int64("author_id", item.AuthorID),
	)
	return item, nil
}

func (s *ModerationService) GetByID(ctx context.Context, id string) (*domain.QueuedItem, error) {
	return s.repo.GetByID(ctx, id)
}

// ListQueue returns the visible items in the requested state (default
// new), oldest first, excluding items the viewer is not allowed to see.
func (s *ModerationService) ListQueue(ctx context.Context, state domain.ItemState, viewerID int64) ([]*domain.QueuedItem, error) {
	items, err := s.repo.List(ctx, domain.ListFilter{State: state})
	if err != nil {
		return nil, err
	}

	visible := make([]*domain.QueuedItem, 0, len(items))
	for _, item := range items {
		if s.authorizer.CanViewItem(ctx, viewerID, item) {
			visible = append(visible, item)
		}
	}
	return visible, nil
}

func (s *ModerationService) Counts(ctx context.Context) (map[domain.ItemState]int, error) {
	return s.repo.CountByState(ctx)
}

// ProposeEdit filters the raw edit payload against the kind's whitelist
// and, when anything editable remains, stores it as the item's new edit
// overlay. The overlay is replaced wholesale: fields the caller omitted do
// not survive from a previous proposal. An empty filtered set writes
// nothing at all, so the prior overlay stays exactly as it was.
// The submitted payload is never touched.
func (s *ModerationService) ProposeEdit(ctx context.Context, id string, payload map[string]any, editorID int64) (*domain.QueuedItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := domain.FilterChanges(item.Kind, payload)
	if len(changes) == 0 {
		return item, nil
	}
	changes[domain.FieldEditorID] = editorID

	if err := s.repo.SaveChanges(ctx, item.ID, changes); err != nil {
		return nil, err
	}
	item.Changes = changes

	s.hooks.OnEditProposed(item.Kind)
	s.logger.Info("edit proposed",
		zap.String("item_id", item.ID),
		zap.Int64("editor_id", editorID),
	)
	return item, nil
}

// Decide moves an item out of the new state. The target arrives as a raw
// string; anything other than "approved" or "rejected" is a no-op that
// returns the item unchanged, matching the permissive legacy contract.
func (s *ModerationService) Decide(
	ctx context.Context,
	id string,
	target string,
	moderatorID int64,
	purgeSubmitter bool,
) (*domain.QueuedItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	switch domain.ItemState(target) {
	case domain.StateApproved:
		item, err = s.approve(ctx, item)
	case domain.StateRejected:
		item, err = s.reject(ctx, item, moderatorID, purgeSubmitter)
	default:
		s.logger.Debug("ignoring unrecognized target state",
			zap.String("item_id", item.ID),
			zap.String("target", target),
		)
		return item, nil
	}
	// A cascade failure still returns the rejected item: the primary
	// transition committed, so it counts as a decision.
	if item != nil && item.State.IsTerminal() {
		s.hooks.OnDecided(item.State, time.Since(start))
	}
	return item, err
}

// approve publishes first and commits the state only on success, so a
// failed publish leaves the item in the queue untouched. The compare-and-
// set after publishing is what makes concurrent approvals at-most-once:
// the loser's UPDATE matches no row and surfaces ErrAlreadyProcessed.
func (s *ModerationService) approve(ctx context.Context, item *domain.QueuedItem) (*domain.QueuedItem, error) {
	if item.State != domain.StateNew {
		return nil, domain.ErrAlreadyProcessed
	}

	if _, err := s.pub.Publish(ctx, item); err != nil {
		s.logger.Warn("publish failed, approval aborted",
			zap.String("item_id", item.ID),
			zap.Error(err),
		)
		return nil, &domain.PublishError{Cause: err}
	}

	ok, err := s.repo.TransitionState(ctx, item.ID, domain.StateNew, domain.StateApproved)
	if err != nil {
		return nil, fmt.Errorf("commit approval: %w", err)
	}
	if !ok {
		return nil, domain.ErrAlreadyProcessed
	}
	item.State = domain.StateApproved

	s.logger.Info("item approved", zap.String("item_id", item.ID))
	return item, nil
}

// reject commits the terminal state before the purge runs, so the slow
// external call happens on an already-final row. A cascade failure is
// reported to the caller but the rejection stands.
func (s *ModerationService) reject(ctx context.Context, item *domain.QueuedItem, moderatorID int64, purgeSubmitter bool) (*domain.QueuedItem, error) {
	if item.State != domain.StateNew {
		return nil, domain.ErrAlreadyProcessed
	}

	ok, err := s.repo.TransitionState(ctx, item.ID, domain.StateNew, domain.StateRejected)
	if err != nil {
		return nil, fmt.Errorf("commit rejection: %w", err)
	}
	if !ok {
		return nil, domain.ErrAlreadyProcessed
	}
	item.State = domain.StateRejected
	s.logger.Info("item rejected", zap.String("item_id", item.ID))

	if err := s.cascade.MaybePurgeSubmitter(ctx, item, moderatorID, purgeSubmitter); err != nil {
		s.hooks.OnCascadeFailed()
		s.logger.Warn("submitter purge failed after rejection",
			zap.String("item_id", item.ID),
			zap.Int64("author_id", item.AuthorID),
			zap.Error(err),
		)
		return item, err
	}
	return item, nil
}
