package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deploymedic/deploymedic/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	return scanAPIKeys(rows)
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		key.ID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE deleted_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	return scanAPIKeys(rows)
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAPIKeys(rows pgx.Rows) ([]*models.APIKey, error) {
	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

// --- Patterns ---

const patternColumns = `pattern_key, log_text, issues, solution, success_rate, usage_count, embedding, created_at, updated_at`

// UpsertPattern inserts a new pattern or, when the key already exists,
// bumps its usage count. Success rate and solution are kept from the
// first observation; feedback adjusts them separately.
func (s *PostgresStore) UpsertPattern(ctx context.Context, record *models.PatternRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO patterns (pattern_key, log_text, issues, solution, success_rate, usage_count, embedding, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		 ON CONFLICT (pattern_key)
		 DO UPDATE SET usage_count = patterns.usage_count + 1, updated_at = NOW()`,
		record.PatternKey, record.LogText, record.IssuesJSON, record.BundleJSON,
		record.SuccessRate, record.UsageCount, record.Embedding)
	if err != nil {
		return fmt.Errorf("upsert pattern: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPattern(ctx context.Context, patternKey string) (*models.PatternRecord, error) {
	var r models.PatternRecord
	err := s.pool.QueryRow(ctx,
		`SELECT `+patternColumns+` FROM patterns WHERE pattern_key = $1`, patternKey,
	).Scan(&r.PatternKey, &r.LogText, &r.IssuesJSON, &r.BundleJSON,
		&r.SuccessRate, &r.UsageCount, &r.Embedding, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pattern: %w", err)
	}
	return &r, nil
}

func (s *PostgresStore) GetPatternsByKeys(ctx context.Context, keys []string) ([]*models.PatternRecord, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+patternColumns+` FROM patterns WHERE pattern_key = ANY($1)`, keys)
	if err != nil {
		return nil, fmt.Errorf("get patterns by keys: %w", err)
	}
	defer rows.Close()

	return scanPatterns(rows)
}

func (s *PostgresStore) ListPatterns(ctx context.Context) ([]*models.PatternRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+patternColumns+` FROM patterns ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list patterns: %w", err)
	}
	defer rows.Close()

	return scanPatterns(rows)
}

func (s *PostgresStore) UpdatePatternSuccessRate(ctx context.Context, patternKey string, rate float64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE patterns SET success_rate = $2, updated_at = NOW() WHERE pattern_key = $1`,
		patternKey, rate)
	if err != nil {
		return fmt.Errorf("update pattern success rate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPatterns(rows pgx.Rows) ([]*models.PatternRecord, error) {
	var records []*models.PatternRecord
	for rows.Next() {
		var r models.PatternRecord
		if err := rows.Scan(&r.PatternKey, &r.LogText, &r.IssuesJSON, &r.BundleJSON,
			&r.SuccessRate, &r.UsageCount, &r.Embedding, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		records = append(records, &r)
	}
	return records, rows.Err()
}

// --- Feedback ---

func (s *PostgresStore) InsertFeedback(ctx context.Context, feedback *models.Feedback) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO solution_feedback (id, pattern_key, rating, helpful, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		feedback.ID, feedback.PatternKey, feedback.Rating, feedback.Helpful,
		feedback.Comment, feedback.CreatedAt)
	if err != nil {
		if isForeignKeyError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (s *PostgresStore) PatternStats(ctx context.Context) (*models.PatternStats, error) {
	var stats models.PatternStats
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(AVG(success_rate), 0),
		        COALESCE(SUM(usage_count), 0),
		        (SELECT COUNT(*) FROM solution_feedback)
		 FROM patterns`,
	).Scan(&stats.Patterns, &stats.AvgSuccessRate, &stats.TotalUsage, &stats.FeedbackCount)
	if err != nil {
		return nil, fmt.Errorf("pattern stats: %w", err)
	}
	return &stats, nil
}

// --- Helpers ---

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "duplicate key")
}

func isForeignKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}
