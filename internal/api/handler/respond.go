package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/modhub/review-queue/internal/domain"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// mapError translates domain sentinel errors to HTTP status codes.
// All mapping lives here so individual handlers stay concise.
// *domain.CascadeError never reaches this function: the decision handler
// treats it as a success with a warning because the rejection committed.
func mapError(w http.ResponseWriter, err error) {
	var publishErr *domain.PublishError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyProcessed):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		respondError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrInvalidAuthor),
		errors.Is(err, domain.ErrMissingRaw),
		errors.Is(err, domain.ErrMissingTitle),
		errors.Is(err, domain.ErrMissingTopic):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &publishErr):
		respondError(w, http.StatusBadGateway, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
