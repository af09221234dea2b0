// Package simstore is the similarity memory: every analysis is stored
// with a vector embedding of its log, and future analyses can reuse
// solutions from sufficiently similar past failures.
//
// Postgres is the system of record; the in-process chromem index is a
// derived structure rebuilt from it at startup. Lookup and store-back
// failures are deliberately non-fatal since analysis must keep working
// without the memory.
package simstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"

	chromem "github.com/philippgille/chromem-go"

	"github.com/deploymedic/deploymedic/internal/config"
	"github.com/deploymedic/deploymedic/internal/store"
	"github.com/deploymedic/deploymedic/pkg/models"
)

const collectionName = "deployment-patterns"

// successRateDecay controls how fast feedback moves a stored pattern's
// success rate toward the observed outcome.
const successRateDecay = 0.8

// Key derives the stable pattern key for a log. Identical logs map to
// the same key so repeats bump usage instead of creating new rows.
func Key(logText string) string {
	sum := sha256.Sum256([]byte(logText))
	return hex.EncodeToString(sum[:])
}

// PatternStore pairs the durable pattern table with a vector index.
type PatternStore struct {
	store      store.Store
	embedder   models.Embedder
	collection *chromem.Collection
	logger     *slog.Logger
	maxResults int
}

// NewPatternStore builds the store and rebuilds the vector index from
// the pattern table. With an empty IndexPath the index is memory-only
// and rebuilt on every start.
func NewPatternStore(ctx context.Context, st store.Store, embedder models.Embedder, cfg config.PatternConfig, logger *slog.Logger) (*PatternStore, error) {
	var db *chromem.DB
	var err error
	if cfg.IndexPath != "" {
		db, err = chromem.NewPersistentDB(cfg.IndexPath, false)
		if err != nil {
			return nil, fmt.Errorf("open pattern index: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	embeddingFunc := chromem.EmbeddingFunc(func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	})
	collection, err := db.GetOrCreateCollection(collectionName, nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("create pattern collection: %w", err)
	}

	ps := &PatternStore{
		store:      st,
		embedder:   embedder,
		collection: collection,
		logger:     logger,
		maxResults: cfg.MaxResults,
	}

	if err := ps.rebuildIndex(ctx, cfg.Concurrency); err != nil {
		return nil, fmt.Errorf("rebuild pattern index: %w", err)
	}
	return ps, nil
}

// rebuildIndex loads every stored pattern into the vector index. Rows
// persisted with an embedding reuse it; older rows are re-embedded.
func (ps *PatternStore) rebuildIndex(ctx context.Context, concurrency int) error {
	records, err := ps.store.ListPatterns(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	docs := make([]chromem.Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, chromem.Document{
			ID:        r.PatternKey,
			Content:   r.LogText,
			Embedding: r.Embedding,
		})
	}
	if err := ps.collection.AddDocuments(ctx, docs, concurrency); err != nil {
		return err
	}

	ps.logger.Info("pattern index rebuilt", "patterns", len(docs))
	return nil
}

// FindSimilar returns stored candidates ranked by similarity to the
// given log. Failures degrade to no candidates.
func (ps *PatternStore) FindSimilar(ctx context.Context, logText string) []models.StoredCandidate {
	count := ps.collection.Count()
	if count == 0 || logText == "" {
		return nil
	}
	k := ps.maxResults
	if k > count {
		k = count
	}

	results, err := ps.collection.Query(ctx, logText, k, nil, nil)
	if err != nil {
		ps.logger.Warn("pattern similarity query failed", "error", err)
		return nil
	}

	keys := make([]string, 0, len(results))
	for _, r := range results {
		keys = append(keys, r.ID)
	}
	records, err := ps.store.GetPatternsByKeys(ctx, keys)
	if err != nil {
		ps.logger.Warn("loading similar patterns failed", "error", err)
		return nil
	}
	byKey := make(map[string]*models.PatternRecord, len(records))
	for _, r := range records {
		byKey[r.PatternKey] = r
	}

	candidates := make([]models.StoredCandidate, 0, len(results))
	for _, r := range results {
		record, ok := byKey[r.ID]
		if !ok {
			continue
		}
		var bundle models.RemediationBundle
		if err := json.Unmarshal(record.BundleJSON, &bundle); err != nil {
			ps.logger.Warn("stored pattern has malformed solution", "pattern_key", record.PatternKey, "error", err)
			continue
		}
		candidates = append(candidates, models.StoredCandidate{
			PatternKey:  record.PatternKey,
			Bundle:      bundle,
			Similarity:  float64(r.Similarity),
			SuccessRate: record.SuccessRate,
			UsageCount:  record.UsageCount,
		})
	}
	return candidates
}

// StorePattern persists an analysis outcome and indexes it for future
// similarity lookups. The pattern key is returned even when persistence
// fails so callers can still reference the analysis.
func (ps *PatternStore) StorePattern(ctx context.Context, logText string, issues []models.DetectedIssue, bundle models.RemediationBundle, successRate float64) string {
	key := Key(logText)

	issuesJSON, err := json.Marshal(issues)
	if err != nil {
		ps.logger.Warn("encoding issues failed", "pattern_key", key, "error", err)
		return key
	}
	bundleJSON, err := json.Marshal(bundle)
	if err != nil {
		ps.logger.Warn("encoding solution failed", "pattern_key", key, "error", err)
		return key
	}
	embedding, err := ps.embedder.Embed(ctx, logText)
	if err != nil {
		ps.logger.Warn("embedding log failed", "pattern_key", key, "error", err)
		return key
	}

	err = ps.store.UpsertPattern(ctx, &models.PatternRecord{
		PatternKey:  key,
		LogText:     logText,
		IssuesJSON:  issuesJSON,
		BundleJSON:  bundleJSON,
		SuccessRate: successRate,
		UsageCount:  1,
		Embedding:   embedding,
	})
	if err != nil {
		ps.logger.Warn("storing pattern failed", "pattern_key", key, "error", err)
		return key
	}

	err = ps.collection.AddDocuments(ctx, []chromem.Document{{
		ID:        key,
		Content:   logText,
		Embedding: embedding,
	}}, 1)
	if err != nil {
		ps.logger.Warn("indexing pattern failed", "pattern_key", key, "error", err)
	}
	return key
}

// RecordFeedback stores the verdict and nudges the pattern's success
// rate toward the observed outcome.
func (ps *PatternStore) RecordFeedback(ctx context.Context, feedback *models.Feedback) error {
	if err := ps.store.InsertFeedback(ctx, feedback); err != nil {
		return err
	}

	record, err := ps.store.GetPattern(ctx, feedback.PatternKey)
	if err != nil {
		return err
	}
	updated := successRateDecay*record.SuccessRate + (1-successRateDecay)*feedbackScore(feedback)
	return ps.store.UpdatePatternSuccessRate(ctx, feedback.PatternKey, updated)
}

// Stats reports what the store has learned so far.
func (ps *PatternStore) Stats(ctx context.Context) (*models.PatternStats, error) {
	return ps.store.PatternStats(ctx)
}

// feedbackScore maps a verdict to a success observation in [0, 1].
func feedbackScore(feedback *models.Feedback) float64 {
	switch feedback.Rating {
	case models.RatingExcellent:
		return 1.0
	case models.RatingGood:
		return 0.8
	case models.RatingFair:
		return 0.5
	case models.RatingPoor:
		return 0.2
	}
	if feedback.Helpful {
		return 0.8
	}
	return 0.2
}
