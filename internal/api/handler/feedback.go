package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/deploymedic/deploymedic/internal/api/response"
	"github.com/deploymedic/deploymedic/internal/store"
	"github.com/deploymedic/deploymedic/pkg/models"
	"github.com/google/uuid"
)

// FeedbackRecorder defines the interface the handler depends on.
type FeedbackRecorder interface {
	RecordFeedback(ctx context.Context, feedback *models.Feedback) error
}

// NewFeedbackHandler returns an http.HandlerFunc for POST /api/v1/feedback.
func NewFeedbackHandler(recorder FeedbackRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PatternKey string `json:"pattern_key"`
			Rating     string `json:"rating"`
			Helpful    bool   `json:"helpful"`
			Comment    string `json:"comment"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if strings.TrimSpace(req.PatternKey) == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "pattern_key is required", nil)
			return
		}
		if !validRating(req.Rating) {
			response.Error(w, http.StatusBadRequest, "INVALID_RATING",
				"rating must be one of: excellent, good, fair, poor", nil)
			return
		}

		feedback := &models.Feedback{
			ID:         uuid.New(),
			PatternKey: req.PatternKey,
			Rating:     req.Rating,
			Helpful:    req.Helpful,
			Comment:    req.Comment,
			CreatedAt:  time.Now().UTC(),
		}

		if err := recorder.RecordFeedback(r.Context(), feedback); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "PATTERN_NOT_FOUND",
					"No stored pattern with that key", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to record feedback", nil)
			return
		}

		response.Created(w, map[string]any{
			"pattern_key": req.PatternKey,
			"rating":      req.Rating,
		})
	}
}

// validRating accepts the four known ratings and the empty string;
// rating-less feedback falls back to the helpful flag downstream.
func validRating(rating string) bool {
	switch rating {
	case "", models.RatingExcellent, models.RatingGood, models.RatingFair, models.RatingPoor:
		return true
	}
	return false
}
