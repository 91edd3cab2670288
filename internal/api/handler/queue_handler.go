package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/modhub/review-queue/internal/api/middleware"
	"github.com/modhub/review-queue/internal/domain"
	"github.com/modhub/review-queue/internal/ratelimiter"
	"github.com/modhub/review-queue/internal/service"
)

// QueueHandler handles the review-queue endpoints.
type QueueHandler struct {
	svc     *service.ModerationService
	limiter *ratelimiter.ModeratorLimiters
	logger  *zap.Logger
}

func NewQueueHandler(svc *service.ModerationService, limiter *ratelimiter.ModeratorLimiters, logger *zap.Logger) *QueueHandler {
	return &QueueHandler{svc: svc, limiter: limiter, logger: logger}
}

// decisionRequest is the inbound payload for POST /queue/{id}/decision.
type decisionRequest struct {
	State      string `json:"state"`
	DeleteUser bool   `json:"delete_user"`
}

// Submit handles POST /api/v1/queue
//
// @Summary     Queue a submission for review
// @Tags        queue
// @Accept      json
// @Produce     json
// @Param       body  body      domain.SubmitRequest  true  "Submission payload"
// @Success     201   {object}  domain.QueuedItem
// @Failure     422   {object}  map[string]string
// @Router      /api/v1/queue [post]
func (h *QueueHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	item, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		h.logger.Warn("submit failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

// List handles GET /api/v1/queue
//
// An unrecognized state value falls back to the default (new) rather than
// erroring, same as an absent one.
//
// @Summary  List visible queued items awaiting the given state
// @Tags     queue
// @Produce  json
// @Param    state  query     string  false  "Item state (default new)"
// @Success  200    {object}  map[string]any
// @Router   /api/v1/queue [get]
func (h *QueueHandler) List(w http.ResponseWriter, r *http.Request) {
	state := domain.ItemState(r.URL.Query().Get("state"))
	if !state.IsValid() {
		state = domain.StateNew
	}

	items, err := h.svc.ListQueue(r.Context(), state, apimw.GetModeratorID(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list queue")
		return
	}
	if items == nil {
		items = []*domain.QueuedItem{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"state": state,
	})
}

// Stats handles GET /api/v1/queue/stats
//
// @Summary  Per-state counts of visible queued items
// @Tags     queue
// @Produce  json
// @Success  200  {object}  map[string]int
// @Router   /api/v1/queue/stats [get]
func (h *QueueHandler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.Counts(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count queue")
		return
	}
	respondJSON(w, http.StatusOK, counts)
}

// GetByID handles GET /api/v1/queue/{id}
//
// @Summary  Get a queued item by ID
// @Tags     queue
// @Produce  json
// @Param    id   path      string  true  "Item UUID"
// @Success  200  {object}  domain.QueuedItem
// @Failure  404  {object}  map[string]string
// @Router   /api/v1/queue/{id} [get]
func (h *QueueHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// ProposeEdit handles PUT /api/v1/queue/{id}/edits
//
// The body is a free-form JSON object; only whitelisted fields for the
// item's kind are kept, the rest are ignored.
//
// @Summary  Propose a moderator edit overlay for a queued item
// @Tags     queue
// @Accept   json
// @Produce  json
// @Param    id    path      string          true  "Item UUID"
// @Param    body  body      map[string]any  true  "Candidate field edits"
// @Success  200   {object}  domain.QueuedItem
// @Failure  404   {object}  map[string]string
// @Router   /api/v1/queue/{id}/edits [put]
func (h *QueueHandler) ProposeEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	item, err := h.svc.ProposeEdit(r.Context(), id, payload, apimw.GetModeratorID(r.Context()))
	if err != nil {
		h.logger.Warn("propose edit failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.String("item_id", id),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// Decide handles POST /api/v1/queue/{id}/decision
//
// A cascade failure after a committed rejection answers 200 with the
// rejected item plus a warning, so callers never mistake it for a failed
// rejection.
//
// @Summary  Approve or reject a queued item
// @Tags     queue
// @Accept   json
// @Produce  json
// @Param    id    path      string           true  "Item UUID"
// @Param    body  body      decisionRequest  true  "Decision payload"
// @Success  200   {object}  map[string]any
// @Failure  404   {object}  map[string]string
// @Failure  409   {object}  map[string]string
// @Failure  429   {object}  map[string]string
// @Failure  502   {object}  map[string]string
// @Router   /api/v1/queue/{id}/decision [post]
func (h *QueueHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	moderatorID := apimw.GetModeratorID(r.Context())

	if !h.limiter.Allow(moderatorID) {
		mapError(w, domain.ErrRateLimited)
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	item, err := h.svc.Decide(r.Context(), id, req.State, moderatorID, req.DeleteUser)
	if err != nil {
		var cascadeErr *domain.CascadeError
		if errors.As(err, &cascadeErr) {
			respondJSON(w, http.StatusOK, map[string]any{
				"item":    item,
				"warning": cascadeErr.Error(),
			})
			return
		}

		h.logger.Warn("decision failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.String("item_id", id),
			zap.String("target", req.State),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"item": item})
}
