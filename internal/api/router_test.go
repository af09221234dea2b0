package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deploymedic/deploymedic/internal/api"
	"github.com/deploymedic/deploymedic/internal/api/middleware"
	"github.com/deploymedic/deploymedic/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type routerStore struct {
	keys []*models.APIKey
}

func (s *routerStore) Ping(_ context.Context) error { return nil }
func (s *routerStore) GetAPIKeyByPrefix(_ context.Context, _ string) ([]*models.APIKey, error) {
	return s.keys, nil
}
func (s *routerStore) UpdateAPIKeyLastUsed(_ context.Context, _ uuid.UUID) error { return nil }
func (s *routerStore) CreateAPIKey(_ context.Context, _ *models.APIKey) error    { return nil }
func (s *routerStore) ListAPIKeys(_ context.Context) ([]*models.APIKey, error)   { return nil, nil }
func (s *routerStore) RevokeAPIKey(_ context.Context, _ uuid.UUID) error         { return nil }
func (s *routerStore) UpsertPattern(_ context.Context, _ *models.PatternRecord) error {
	return nil
}
func (s *routerStore) GetPattern(_ context.Context, _ string) (*models.PatternRecord, error) {
	return nil, nil
}
func (s *routerStore) GetPatternsByKeys(_ context.Context, _ []string) ([]*models.PatternRecord, error) {
	return nil, nil
}
func (s *routerStore) ListPatterns(_ context.Context) ([]*models.PatternRecord, error) {
	return nil, nil
}
func (s *routerStore) UpdatePatternSuccessRate(_ context.Context, _ string, _ float64) error {
	return nil
}
func (s *routerStore) InsertFeedback(_ context.Context, _ *models.Feedback) error { return nil }
func (s *routerStore) PatternStats(_ context.Context) (*models.PatternStats, error) {
	return &models.PatternStats{}, nil
}

type routerCache struct {
	counter int64
}

func (c *routerCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error { return nil }
func (c *routerCache) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}
func (c *routerCache) Delete(_ context.Context, _ string) error { return nil }
func (c *routerCache) Ping(_ context.Context) error             { return nil }
func (c *routerCache) SetAnalysisResult(_ context.Context, _ string, _ *models.AnalysisResult, _ time.Duration) error {
	return nil
}
func (c *routerCache) GetAnalysisResult(_ context.Context, _ string) (*models.AnalysisResult, bool, error) {
	return nil, false, nil
}
func (c *routerCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	c.counter++
	return c.counter, nil
}

func newTestRouter(t *testing.T, scopes []string, deps api.Dependencies) (http.Handler, string) {
	t.Helper()

	rawKey := "dm_router_test_1234567890"
	hash, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcrypt.MinCost)
	require.NoError(t, err)

	st := &routerStore{keys: []*models.APIKey{{
		ID:        uuid.New(),
		KeyHash:   string(hash),
		KeyPrefix: rawKey[:8],
		Scopes:    scopes,
	}}}

	deps.Auth = middleware.NewAuth(st)
	deps.RateLimit = middleware.NewRateLimit(&routerCache{}, 60)

	return api.NewRouter(deps), rawKey
}

func namedHandler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(name))
	}
}

func TestRouter_HealthIsPublic(t *testing.T) {
	router, _ := newTestRouter(t, nil, api.Dependencies{
		HealthHandler: namedHandler("health"),
	})

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "health", w.Body.String())
}

func TestRouter_DiagnoseRequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t, []string{"diagnose"}, api.Dependencies{
		DiagnoseHandler: namedHandler("diagnose"),
	})

	req := httptest.NewRequest("POST", "/api/v1/diagnose", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_ProtectedRoutesDispatch(t *testing.T) {
	router, rawKey := newTestRouter(t, []string{"diagnose"}, api.Dependencies{
		DiagnoseHandler: namedHandler("diagnose"),
		FeedbackHandler: namedHandler("feedback"),
		StatsHandler:    namedHandler("stats"),
	})

	cases := []struct {
		method string
		path   string
		want   string
	}{
		{"POST", "/api/v1/diagnose", "diagnose"},
		{"POST", "/api/v1/feedback", "feedback"},
		{"GET", "/api/v1/patterns/stats", "stats"},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			req.Header.Set("Authorization", "Bearer "+rawKey)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tc.want, w.Body.String())
		})
	}
}

func TestRouter_AdminRoutesRequireAdminScope(t *testing.T) {
	router, rawKey := newTestRouter(t, []string{"diagnose"}, api.Dependencies{
		CreateKeyHandler: namedHandler("create"),
		ListKeysHandler:  namedHandler("list"),
	})

	req := httptest.NewRequest("GET", "/api/v1/admin/keys", nil)
	req.Header.Set("Authorization", "Bearer "+rawKey)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_AdminRoutesDispatchWithAdminScope(t *testing.T) {
	router, rawKey := newTestRouter(t, []string{"diagnose", "admin"}, api.Dependencies{
		CreateKeyHandler: namedHandler("create"),
		ListKeysHandler:  namedHandler("list"),
		RevokeKeyHandler: namedHandler("revoke"),
	})

	cases := []struct {
		method string
		path   string
		want   string
	}{
		{"POST", "/api/v1/admin/keys", "create"},
		{"GET", "/api/v1/admin/keys", "list"},
		{"DELETE", "/api/v1/admin/keys/" + uuid.NewString(), "revoke"},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			req.Header.Set("Authorization", "Bearer "+rawKey)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tc.want, w.Body.String())
		})
	}
}

func TestRouter_MissingHandlerReturns501(t *testing.T) {
	router, rawKey := newTestRouter(t, []string{"diagnose"}, api.Dependencies{})

	req := httptest.NewRequest("POST", "/api/v1/diagnose", nil)
	req.Header.Set("Authorization", "Bearer "+rawKey)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestRouter_UnknownRoute404(t *testing.T) {
	router, _ := newTestRouter(t, nil, api.Dependencies{})

	req := httptest.NewRequest("GET", "/api/v1/nonexistent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
