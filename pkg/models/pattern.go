package models

import (
	"context"
	"time"
)

// Embedder turns text into a fixed-dimension vector. The model behind it
// is an external concern; the core only requires determinism per input.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// StoredCandidate is a previously validated solution surfaced by
// similarity lookup. Similarity is normalized so 1.0 means identical.
type StoredCandidate struct {
	PatternKey  string
	Bundle      RemediationBundle
	Similarity  float64
	SuccessRate float64
	UsageCount  int
}

// PatternRecord is the persisted shape of a stored analysis pattern.
// PatternKey is a sha256 hex digest of the log content, so repeated
// identical logs map to the same row and bump UsageCount.
type PatternRecord struct {
	PatternKey  string    `db:"pattern_key"  json:"pattern_key"`
	LogText     string    `db:"log_text"     json:"log_text"`
	IssuesJSON  []byte    `db:"issues"       json:"-"`
	BundleJSON  []byte    `db:"solution"     json:"-"`
	SuccessRate float64   `db:"success_rate" json:"success_rate"`
	UsageCount  int       `db:"usage_count"  json:"usage_count"`
	Embedding   []float32 `db:"embedding"    json:"-"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updated_at"`
}

// PatternStats summarizes what the store has learned so far.
type PatternStats struct {
	Patterns       int     `json:"patterns"`
	AvgSuccessRate float64 `json:"avg_success_rate"`
	TotalUsage     int     `json:"total_usage"`
	FeedbackCount  int     `json:"feedback_count"`
}
