package catalog

import (
	"sort"
	"strings"
	"testing"

	"github.com/deploymedic/deploymedic/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatures_WellFormed(t *testing.T) {
	sigs := Signatures()
	require.NotEmpty(t, sigs)

	validSeverities := map[models.Severity]bool{
		models.SeverityCritical: true,
		models.SeverityHigh:     true,
		models.SeverityMedium:   true,
		models.SeverityLow:      true,
	}

	for _, sig := range sigs {
		t.Run(sig.ID, func(t *testing.T) {
			assert.NotEmpty(t, sig.ID)
			assert.NotEmpty(t, sig.Title)
			assert.NotEmpty(t, sig.Description)
			assert.True(t, validSeverities[sig.Severity], "severity %q", sig.Severity)

			require.NotEmpty(t, sig.RequiredKeywords)
			for _, kw := range sig.RequiredKeywords {
				assert.NotEmpty(t, strings.TrimSpace(kw))
				// Matching lowercases the line; keywords must already be
				// lowercase or the match could never fire.
				assert.Equal(t, strings.ToLower(kw), kw)
			}

			assertBundleWellFormed(t, sig.Remediation)
		})
	}
}

func TestSignatures_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for _, sig := range Signatures() {
		assert.False(t, seen[sig.ID], "duplicate id %s", sig.ID)
		seen[sig.ID] = true
	}
}

// Two signatures with identical keyword sets would make the later one
// unreachable under first-match-wins.
func TestSignatures_UniqueKeywordSets(t *testing.T) {
	seen := make(map[string]string)
	for _, sig := range Signatures() {
		sorted := append([]string(nil), sig.RequiredKeywords...)
		sort.Strings(sorted)
		key := strings.Join(sorted, "\x00")
		if prev, dup := seen[key]; dup {
			t.Errorf("signatures %s and %s share keyword set %v", prev, sig.ID, sig.RequiredKeywords)
		}
		seen[key] = sig.ID
	}
}

func TestSignatures_ExpectedFamiliesPresent(t *testing.T) {
	byFamily := map[string]bool{}
	for _, sig := range Signatures() {
		switch {
		case strings.HasPrefix(sig.ID, "docker-"), sig.ID == "dockerfile-missing":
			byFamily["docker"] = true
		case strings.HasPrefix(sig.ID, "k8s-"):
			byFamily["kubernetes"] = true
		case strings.HasPrefix(sig.ID, "pg-"), strings.HasPrefix(sig.ID, "db-"):
			byFamily["database"] = true
		case strings.HasPrefix(sig.ID, "env-"):
			byFamily["environment"] = true
		}
	}
	for _, family := range []string{"docker", "kubernetes", "database", "environment"} {
		assert.True(t, byFamily[family], "no signatures for %s", family)
	}
}

func TestLookup(t *testing.T) {
	sig, ok := Lookup("docker-port-allocated")
	require.True(t, ok)
	assert.Equal(t, "Docker Port Conflict", sig.Title)

	_, ok = Lookup("no-such-signature")
	assert.False(t, ok)
}

func TestLookup_CoversEverySignature(t *testing.T) {
	for _, sig := range Signatures() {
		got, ok := Lookup(sig.ID)
		require.True(t, ok, sig.ID)
		assert.Equal(t, sig.ID, got.ID)
	}
}

func TestGenericFallback(t *testing.T) {
	assertBundleWellFormed(t, GenericFallback())
}

func assertBundleWellFormed(t *testing.T, b models.RemediationBundle) {
	t.Helper()
	assert.NotEmpty(t, b.Title)
	assert.NotEmpty(t, b.Steps)
	assert.NotEmpty(t, b.ExampleCode)
	assert.LessOrEqual(t, b.EstimatedMinutes.Lo, b.EstimatedMinutes.Hi)
	assert.Greater(t, b.EstimatedMinutes.Lo, 0)
	assert.GreaterOrEqual(t, b.SuccessRate, 0.0)
	assert.LessOrEqual(t, b.SuccessRate, 1.0)
}
