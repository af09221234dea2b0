package handler

import (
	"context"
	"net/http"

	"github.com/deploymedic/deploymedic/internal/api/response"
	"github.com/deploymedic/deploymedic/pkg/models"
)

// StatsProvider defines the interface the handler depends on.
type StatsProvider interface {
	Stats(ctx context.Context) (*models.PatternStats, error)
}

// NewStatsHandler returns an http.HandlerFunc for GET /api/v1/patterns/stats.
func NewStatsHandler(provider StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := provider.Stats(r.Context())
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to load pattern statistics", nil)
			return
		}
		response.JSON(w, stats)
	}
}
