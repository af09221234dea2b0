package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey represents an authentication key for CLI and API access.
// Raw keys are shown once at creation; only the bcrypt hash is stored.
type APIKey struct {
	ID         uuid.UUID  `db:"id"           json:"id"`
	Name       string     `db:"name"         json:"name"`
	KeyHash    string     `db:"key_hash"     json:"-"`
	KeyPrefix  string     `db:"key_prefix"   json:"key_prefix"`
	Scopes     []string   `db:"scopes"       json:"scopes"`
	LastUsedAt *time.Time `db:"last_used_at" json:"last_used_at,omitempty"`
	DeletedAt  *time.Time `db:"deleted_at"   json:"-"`
	CreatedAt  time.Time  `db:"created_at"   json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"   json:"updated_at"`
}

// Feedback is a user's verdict on a previously returned solution. It feeds
// back into the stored pattern's success rate.
type Feedback struct {
	ID         uuid.UUID `db:"id"          json:"id"`
	PatternKey string    `db:"pattern_key" json:"pattern_key"`
	Rating     string    `db:"rating"      json:"rating"`
	Helpful    bool      `db:"helpful"     json:"helpful"`
	Comment    string    `db:"comment"     json:"comment,omitempty"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
}

// Valid feedback ratings, mirroring the persisted enum.
const (
	RatingExcellent = "excellent"
	RatingGood      = "good"
	RatingFair      = "fair"
	RatingPoor      = "poor"
)
