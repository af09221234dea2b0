package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deploymedic/deploymedic/internal/analysis"
	"github.com/deploymedic/deploymedic/internal/api"
	"github.com/deploymedic/deploymedic/internal/api/handler"
	mw "github.com/deploymedic/deploymedic/internal/api/middleware"
	"github.com/deploymedic/deploymedic/internal/cache"
	"github.com/deploymedic/deploymedic/internal/catalog"
	"github.com/deploymedic/deploymedic/internal/diagnose"
	"github.com/deploymedic/deploymedic/internal/store"
	"github.com/deploymedic/deploymedic/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- test fixtures ---

var (
	testRawKey    = "dm_test_contract_key_1234567890"
	testPrefix    = testRawKey[:8]
	knownPattern  = "a3f5c0ffee00000000000000000000000000000000000000000000000000beef"
	dockerFailLog = "Step 4/9 : COPY app.jar /srv/\nCOPY failed: file not found in Docker build context"
)

func testKeyHash() string {
	h, _ := bcrypt.GenerateFromPassword([]byte(testRawKey), bcrypt.MinCost)
	return string(h)
}

// --- mock store ---

type mockStore struct {
	keys []*models.APIKey
}

func newMockStore() *mockStore {
	return &mockStore{
		keys: []*models.APIKey{{
			ID:        uuid.New(),
			Name:      "test-key",
			KeyHash:   testKeyHash(),
			KeyPrefix: testPrefix,
			Scopes:    []string{"diagnose", "admin"},
			CreatedAt: time.Now(),
		}},
	}
}

func (s *mockStore) Ping(_ context.Context) error { return nil }

func (s *mockStore) GetAPIKeyByPrefix(_ context.Context, prefix string) ([]*models.APIKey, error) {
	var out []*models.APIKey
	for _, k := range s.keys {
		if k.KeyPrefix == prefix && k.DeletedAt == nil {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *mockStore) UpdateAPIKeyLastUsed(_ context.Context, _ uuid.UUID) error { return nil }

func (s *mockStore) CreateAPIKey(_ context.Context, key *models.APIKey) error {
	for _, existing := range s.keys {
		if existing.Name == key.Name && existing.DeletedAt == nil {
			return store.ErrDuplicateKey
		}
	}
	s.keys = append(s.keys, key)
	return nil
}

func (s *mockStore) ListAPIKeys(_ context.Context) ([]*models.APIKey, error) {
	var out []*models.APIKey
	for _, k := range s.keys {
		if k.DeletedAt == nil {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *mockStore) RevokeAPIKey(_ context.Context, id uuid.UUID) error {
	for _, k := range s.keys {
		if k.ID == id && k.DeletedAt == nil {
			now := time.Now()
			k.DeletedAt = &now
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *mockStore) UpsertPattern(_ context.Context, _ *models.PatternRecord) error { return nil }
func (s *mockStore) GetPattern(_ context.Context, _ string) (*models.PatternRecord, error) {
	return nil, store.ErrNotFound
}
func (s *mockStore) GetPatternsByKeys(_ context.Context, _ []string) ([]*models.PatternRecord, error) {
	return nil, nil
}
func (s *mockStore) ListPatterns(_ context.Context) ([]*models.PatternRecord, error) {
	return nil, nil
}
func (s *mockStore) UpdatePatternSuccessRate(_ context.Context, _ string, _ float64) error {
	return nil
}
func (s *mockStore) InsertFeedback(_ context.Context, _ *models.Feedback) error { return nil }
func (s *mockStore) PatternStats(_ context.Context) (*models.PatternStats, error) {
	return &models.PatternStats{Patterns: 3, AvgSuccessRate: 0.78, TotalUsage: 12, FeedbackCount: 4}, nil
}

// Stats satisfies handler.StatsProvider on top of the store interface.
func (s *mockStore) Stats(ctx context.Context) (*models.PatternStats, error) {
	return s.PatternStats(ctx)
}

var _ store.Store = (*mockStore)(nil)

// --- mock cache ---

type mockCache struct {
	counters map[string]int64
	results  map[string]*models.AnalysisResult
}

func newMockCache() *mockCache {
	return &mockCache{
		counters: make(map[string]int64),
		results:  make(map[string]*models.AnalysisResult),
	}
}

func (c *mockCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error { return nil }
func (c *mockCache) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}
func (c *mockCache) Delete(_ context.Context, _ string) error { return nil }
func (c *mockCache) Ping(_ context.Context) error             { return nil }
func (c *mockCache) SetAnalysisResult(_ context.Context, key string, result *models.AnalysisResult, _ time.Duration) error {
	c.results[key] = result
	return nil
}
func (c *mockCache) GetAnalysisResult(_ context.Context, key string) (*models.AnalysisResult, bool, error) {
	r, ok := c.results[key]
	return r, ok, nil
}
func (c *mockCache) IncrWithExpiry(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.counters[key]++
	return c.counters[key], nil
}

var _ cache.Cache = (*mockCache)(nil)

// --- fake feedback recorder ---

type fakeRecorder struct {
	known    map[string]bool
	recorded []*models.Feedback
}

func (f *fakeRecorder) RecordFeedback(_ context.Context, feedback *models.Feedback) error {
	if !f.known[feedback.PatternKey] {
		return store.ErrNotFound
	}
	f.recorded = append(f.recorded, feedback)
	return nil
}

// --- test harness ---

type testServer struct {
	server   *httptest.Server
	store    *mockStore
	cache    *mockCache
	recorder *fakeRecorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ms := newMockStore()
	mc := newMockCache()
	rec := &fakeRecorder{known: map[string]bool{knownPattern: true}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	matcher := analysis.NewMatcher(catalog.Signatures())
	resolver := analysis.NewResolver(catalog.Lookup, catalog.GenericFallback())
	analyzer := diagnose.NewAnalyzer(matcher, resolver, nil, nil, logger)

	deps := api.Dependencies{
		Auth:      mw.NewAuth(ms),
		RateLimit: mw.NewRateLimit(mc, 10), // low limit for rate-limit tests

		HealthHandler:   handler.NewHealthHandler(ms, mc),
		DiagnoseHandler: handler.NewDiagnoseHandler(analyzer, mc, time.Minute),
		FeedbackHandler: handler.NewFeedbackHandler(rec),
		StatsHandler:    handler.NewStatsHandler(ms),

		CreateKeyHandler: handler.NewCreateKeyHandler(ms),
		ListKeysHandler:  handler.NewListKeysHandler(ms),
		RevokeKeyHandler: handler.NewRevokeKeyHandler(ms),
	}

	router := api.NewRouter(deps)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{server: srv, store: ms, cache: mc, recorder: rec}
}

func (ts *testServer) authRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, ts.server.URL+path, &buf)
	req.Header.Set("Authorization", "Bearer "+testRawKey)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (ts *testServer) unauthRequest(method, path string) *http.Request {
	req, _ := http.NewRequest(method, ts.server.URL+path, nil)
	return req
}

func parseBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// ========================================
// GET /api/v1/health
// ========================================

func TestHealth_200_AllOK(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.DefaultClient.Do(ts.unauthRequest("GET", "/api/v1/health"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := parseBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, "ok", data["status"])
}

func TestHealth_NoAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.DefaultClient.Do(ts.unauthRequest("GET", "/api/v1/health"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ========================================
// POST /api/v1/diagnose
// ========================================

func TestDiagnose_200_CatalogMatch(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.DefaultClient.Do(ts.authRequest("POST", "/api/v1/diagnose", map[string]string{
		"log_text": dockerFailLog,
	}))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := parseBody(t, resp)
	data := body["data"].(map[string]any)

	issues := data["issues"].([]any)
	require.NotEmpty(t, issues)
	first := issues[0].(map[string]any)
	assert.Equal(t, "docker-copy-missing", first["signature_id"])
	assert.Equal(t, "critical", first["severity"])

	solution := data["chosen_solution"].(map[string]any)
	assert.NotEmpty(t, solution["title"])
	assert.NotEmpty(t, solution["steps"])

	assert.Equal(t, "critical", data["overall_severity"])
	assert.InDelta(t, 0.65, data["confidence"], 1e-9)
	assert.Equal(t, "docker", data["source"])
	assert.NotEmpty(t, data["pattern_key"])
}

func TestDiagnose_CacheHitOnRepeat(t *testing.T) {
	ts := newTestServer(t)

	first, err := http.DefaultClient.Do(ts.authRequest("POST", "/api/v1/diagnose", map[string]string{
		"log_text": dockerFailLog,
	}))
	require.NoError(t, err)
	first.Body.Close()
	assert.Equal(t, "MISS", first.Header.Get("X-Cache"))

	second, err := http.DefaultClient.Do(ts.authRequest("POST", "/api/v1/diagnose", map[string]string{
		"log_text": dockerFailLog,
	}))
	require.NoError(t, err)
	defer second.Body.Close()

	assert.Equal(t, http.StatusOK, second.StatusCode)
	assert.Equal(t, "HIT", second.Header.Get("X-Cache"))

	body := parseBody(t, second)
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["pattern_key"])
}

func TestDiagnose_400_MissingLogText(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.DefaultClient.Do(ts.authRequest("POST", "/api/v1/diagnose", map[string]string{
		"log_text": "   ",
	}))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := parseBody(t, resp)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "INVALID_REQUEST", errObj["code"])
}

func TestDiagnose_400_InvalidJSON(t *testing.T) {
	ts := newTestServer(t)

	req, _ := http.NewRequest("POST", ts.server.URL+"/api/v1/diagnose", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+testRawKey)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDiagnose_401_MissingToken(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.DefaultClient.Do(ts.unauthRequest("POST", "/api/v1/diagnose"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := parseBody(t, resp)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "INVALID_TOKEN", errObj["code"])
}

func TestDiagnose_SourceHintWins(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.DefaultClient.Do(ts.authRequest("POST", "/api/v1/diagnose", map[string]string{
		"log_text": dockerFailLog,
		"source":   "ci",
	}))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := parseBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, "ci", data["source"])
}

// ========================================
// POST /api/v1/feedback
// ========================================

func TestFeedback_201_Recorded(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.DefaultClient.Do(ts.authRequest("POST", "/api/v1/feedback", map[string]any{
		"pattern_key": knownPattern,
		"rating":      "good",
		"helpful":     true,
		"comment":     "fixed it on the first try",
	}))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body := parseBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, knownPattern, data["pattern_key"])
	assert.Equal(t, "good", data["rating"])

	require.Len(t, ts.recorder.recorded, 1)
	assert.True(t, ts.recorder.recorded[0].Helpful)
}

func TestFeedback_AssignsDistinctIDs(t *testing.T) {
	ts := newTestServer(t)

	for i := 0; i < 2; i++ {
		resp, err := http.DefaultClient.Do(ts.authRequest("POST", "/api/v1/feedback", map[string]any{
			"pattern_key": knownPattern,
			"rating":      "fair",
		}))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	require.Len(t, ts.recorder.recorded, 2)
	first, second := ts.recorder.recorded[0], ts.recorder.recorded[1]
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.NotEqual(t, uuid.Nil, second.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, first.CreatedAt.IsZero())
	assert.False(t, second.CreatedAt.IsZero())
}

func TestFeedback_201_HelpfulOnly(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.DefaultClient.Do(ts.authRequest("POST", "/api/v1/feedback", map[string]any{
		"pattern_key": knownPattern,
		"helpful":     true,
	}))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, ts.recorder.recorded, 1)
	assert.Empty(t, ts.recorder.recorded[0].Rating)
	assert.True(t, ts.recorder.recorded[0].Helpful)
}

func TestFeedback_404_UnknownPattern(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.DefaultClient.Do(ts.authRequest("POST", "/api/v1/feedback", map[string]any{
		"pattern_key": "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		"rating":      "poor",
	}))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := parseBody(t, resp)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "PATTERN_NOT_FOUND", errObj["code"])
}

func TestFeedback_400_InvalidRating(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.DefaultClient.Do(ts.authRequest("POST", "/api/v1/feedback", map[string]any{
		"pattern_key": knownPattern,
		"rating":      "amazing",
	}))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := parseBody(t, resp)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "INVALID_RATING", errObj["code"])
}

func TestFeedback_400_MissingPatternKey(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.DefaultClient.Do(ts.authRequest("POST", "/api/v1/feedback", map[string]any{
		"rating": "good",
	}))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ========================================
// GET /api/v1/patterns/stats
// ========================================

func TestStats_200(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.DefaultClient.Do(ts.authRequest("GET", "/api/v1/patterns/stats", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := parseBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(3), data["patterns"])
	assert.InDelta(t, 0.78, data["avg_success_rate"], 1e-9)
	assert.Equal(t, float64(12), data["total_usage"])
	assert.Equal(t, float64(4), data["feedback_count"])
}

// ========================================
// POST /api/v1/admin/keys
// ========================================

func TestCreateKey_201_WithRawKey(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.DefaultClient.Do(ts.authRequest("POST", "/api/v1/admin/keys", map[string]any{
		"name":   "my-new-key",
		"scopes": []string{"diagnose"},
	}))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body := parseBody(t, resp)
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["id"])
	assert.Equal(t, "my-new-key", data["name"])

	rawKey := data["key"].(string)
	assert.True(t, len(rawKey) > 8)
	assert.Equal(t, rawKey[:8], data["key_prefix"])
	assert.Equal(t, "dm_", rawKey[:3])
}

func TestCreateKey_409_DuplicateName(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.DefaultClient.Do(ts.authRequest("POST", "/api/v1/admin/keys", map[string]any{
		"name": "test-key", // already seeded in the mock store
	}))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := parseBody(t, resp)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "DUPLICATE_KEY", errObj["code"])
}

func TestCreateKey_400_MissingName(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.DefaultClient.Do(ts.authRequest("POST", "/api/v1/admin/keys", map[string]any{
		"scopes": []string{"diagnose"},
	}))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListKeys_DoesNotExposeRawKey(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.DefaultClient.Do(ts.authRequest("GET", "/api/v1/admin/keys", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := parseBody(t, resp)
	data := body["data"].([]any)
	require.NotEmpty(t, data)

	firstKey := data[0].(map[string]any)
	assert.NotEmpty(t, firstKey["key_prefix"])
	assert.Nil(t, firstKey["key"])
	assert.Nil(t, firstKey["key_hash"])
}

func TestRevokeKey_204(t *testing.T) {
	ts := newTestServer(t)

	keyID := ts.store.keys[0].ID

	resp, err := http.DefaultClient.Do(ts.authRequest("DELETE", "/api/v1/admin/keys/"+keyID.String(), nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestRevokeKey_404_Missing(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.DefaultClient.Do(ts.authRequest("DELETE", "/api/v1/admin/keys/"+uuid.NewString(), nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := parseBody(t, resp)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "KEY_NOT_FOUND", errObj["code"])
}

func TestRevokeKey_400_InvalidID(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.DefaultClient.Do(ts.authRequest("DELETE", "/api/v1/admin/keys/not-a-uuid", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ========================================
// Auth and rate limit contracts
// ========================================

func TestAuth_AllProtectedEndpoints_Reject401(t *testing.T) {
	ts := newTestServer(t)

	endpoints := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/diagnose"},
		{"POST", "/api/v1/feedback"},
		{"GET", "/api/v1/patterns/stats"},
		{"POST", "/api/v1/admin/keys"},
		{"GET", "/api/v1/admin/keys"},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			resp, err := http.DefaultClient.Do(ts.unauthRequest(ep.method, ep.path))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			body := parseBody(t, resp)
			errObj := body["error"].(map[string]any)
			assert.Equal(t, "INVALID_TOKEN", errObj["code"])
		})
	}
}

func TestRateLimit_Headers_Present(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.DefaultClient.Do(ts.authRequest("GET", "/api/v1/patterns/stats", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Reset"))
}

func TestRateLimit_429_Exceeded(t *testing.T) {
	ts := newTestServer(t)

	// The limit is 10 in newTestServer; the 11th request must be rejected.
	var lastResp *http.Response
	for i := 0; i < 11; i++ {
		resp, err := http.DefaultClient.Do(ts.authRequest("GET", "/api/v1/patterns/stats", nil))
		require.NoError(t, err)
		if i < 10 {
			resp.Body.Close()
		} else {
			lastResp = resp
		}
	}
	defer lastResp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, lastResp.StatusCode)
	assert.NotEmpty(t, lastResp.Header.Get("Retry-After"))

	body := parseBody(t, lastResp)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", errObj["code"])
}

// ========================================
// Admin scope contract
// ========================================

func TestAdminEndpoints_403_WithoutAdminScope(t *testing.T) {
	ts := newTestServer(t)

	noAdminKey := "dm_noadmin_1234567890abcdef"
	noAdminHash, _ := bcrypt.GenerateFromPassword([]byte(noAdminKey), bcrypt.MinCost)
	ts.store.keys = append(ts.store.keys, &models.APIKey{
		ID:        uuid.New(),
		Name:      "no-admin-key",
		KeyHash:   string(noAdminHash),
		KeyPrefix: noAdminKey[:8],
		Scopes:    []string{"diagnose"},
	})

	adminEndpoints := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/admin/keys"},
		{"GET", "/api/v1/admin/keys"},
	}

	for _, ep := range adminEndpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			req, _ := http.NewRequest(ep.method, ts.server.URL+ep.path, bytes.NewBufferString(`{"name":"x"}`))
			req.Header.Set("Authorization", "Bearer "+noAdminKey)
			req.Header.Set("Content-Type", "application/json")

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			body := parseBody(t, resp)
			errObj := body["error"].(map[string]any)
			assert.Equal(t, "FORBIDDEN", errObj["code"])
		})
	}
}

// ========================================
// Response format contract
// ========================================

func TestResponseFormat_SuccessEnvelope(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.DefaultClient.Do(ts.unauthRequest("GET", "/api/v1/health"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	body := parseBody(t, resp)
	assert.Contains(t, body, "data")
}

func TestResponseFormat_ErrorEnvelope(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.DefaultClient.Do(ts.unauthRequest("POST", "/api/v1/diagnose"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	body := parseBody(t, resp)
	assert.Contains(t, body, "error")
	errObj := body["error"].(map[string]any)
	assert.NotEmpty(t, errObj["code"])
	assert.NotEmpty(t, errObj["message"])
}
