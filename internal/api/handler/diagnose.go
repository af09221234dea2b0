package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/deploymedic/deploymedic/internal/api/response"
	"github.com/deploymedic/deploymedic/internal/simstore"
	"github.com/deploymedic/deploymedic/pkg/models"
)

// maxLogBytes caps the request body size. Deployment logs beyond this are
// truncated client-side anyway before they reach the oracle.
const maxLogBytes = 1 << 20

// Diagnoser defines the interface the handler depends on.
type Diagnoser interface {
	Diagnose(ctx context.Context, logText, sourceHint string) (*models.AnalysisResult, error)
}

// ResultCache caches completed analyses keyed by the log's pattern key.
type ResultCache interface {
	GetAnalysisResult(ctx context.Context, patternKey string) (*models.AnalysisResult, bool, error)
	SetAnalysisResult(ctx context.Context, patternKey string, result *models.AnalysisResult, ttl time.Duration) error
}

// NewDiagnoseHandler returns an http.HandlerFunc for POST /api/v1/diagnose.
// The cache may be nil; every request then runs the full pipeline.
func NewDiagnoseHandler(svc Diagnoser, results ResultCache, ttl time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxLogBytes)

		var req struct {
			LogText string `json:"log_text"`
			Source  string `json:"source"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if strings.TrimSpace(req.LogText) == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "log_text is required", nil)
			return
		}

		// Identical logs produce identical results, so serve repeats from
		// the cache.
		patternKey := simstore.Key(req.LogText)
		if results != nil {
			if cached, ok, err := results.GetAnalysisResult(r.Context(), patternKey); err == nil && ok {
				w.Header().Set("X-Cache", "HIT")
				response.JSON(w, cached)
				return
			}
		}

		result, err := svc.Diagnose(r.Context(), req.LogText, req.Source)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		if results != nil {
			// Cache failures are not worth failing the request over.
			_ = results.SetAnalysisResult(r.Context(), patternKey, result, ttl)
		}

		w.Header().Set("X-Cache", "MISS")
		response.JSON(w, result)
	}
}
