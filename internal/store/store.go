package store

import (
	"context"
	"errors"

	"github.com/deploymedic/deploymedic/pkg/models"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error

	UpsertPattern(ctx context.Context, record *models.PatternRecord) error
	GetPattern(ctx context.Context, patternKey string) (*models.PatternRecord, error)
	GetPatternsByKeys(ctx context.Context, keys []string) ([]*models.PatternRecord, error)
	ListPatterns(ctx context.Context) ([]*models.PatternRecord, error)
	UpdatePatternSuccessRate(ctx context.Context, patternKey string, rate float64) error

	InsertFeedback(ctx context.Context, feedback *models.Feedback) error
	PatternStats(ctx context.Context) (*models.PatternStats, error)
}
