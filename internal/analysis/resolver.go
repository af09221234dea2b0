package analysis

import (
	"sort"
	"strings"

	"github.com/deploymedic/deploymedic/pkg/models"
)

// Confidence policy: a catalog match starts at a base confidence and gains
// an additive bonus per corroborating signal, hard-capped below 1.0 so a
// pile of weak evidence never reads as certainty.
const (
	storedSimilarityThreshold = 0.7
	catalogBaseConfidence     = 0.65
	corroborationStep         = 0.05
	corroborationCap          = 0.15
	oracleAgreementBonus      = 0.10
	confidenceCap             = 0.95
	oracleOnlyConfidence      = 0.8
	fallbackConfidence        = 0.65
	maxOracleSteps            = 5
)

// Resolver merges catalog, oracle and stored-pattern candidates into one
// AnalysisResult with exactly one chosen remediation bundle.
type Resolver struct {
	lookup   func(id string) (models.IssueSignature, bool)
	fallback models.RemediationBundle
}

// NewResolver creates a Resolver. lookup resolves a catalog issue's
// signature id to its signature; fallback is returned when nothing
// better can be chosen.
func NewResolver(lookup func(id string) (models.IssueSignature, bool), fallback models.RemediationBundle) *Resolver {
	return &Resolver{lookup: lookup, fallback: fallback}
}

// Resolve selects the single best remediation. Candidate sources are
// tried in trust order: a highly similar stored pattern, then the
// catalog, then oracle recommendations, then the generic fallback.
// A nil consultation means the oracle was absent or failed; it is treated
// exactly like an oracle with zero findings.
func (r *Resolver) Resolve(catalogIssues []models.DetectedIssue, oracle *models.Consultation, stored []models.StoredCandidate) models.AnalysisResult {
	var oracleIssues []models.DetectedIssue
	var oracleRecs []string
	if oracle != nil {
		oracleIssues = oracle.Issues
		oracleRecs = oracle.Recommendations
	}

	issues := mergeIssues(catalogIssues, oracleIssues)

	result := models.AnalysisResult{
		Issues:          issues,
		OverallSeverity: overallSeverity(issues),
	}

	if best, ok := bestStored(stored); ok {
		result.ChosenSolution = best.Bundle
		result.Confidence = clamp(best.SuccessRate, 0, confidenceCap)
		return result
	}

	if len(catalogIssues) > 0 {
		primary := primaryIssue(catalogIssues)
		result.ChosenSolution = r.bundleFor(primary)
		result.Confidence = r.catalogConfidence(primary, catalogIssues, oracleIssues)
		return result
	}

	if len(oracleIssues) > 0 {
		result.ChosenSolution = synthesizeOracleBundle(oracleRecs)
		result.Confidence = oracleOnlyConfidence
		return result
	}

	result.ChosenSolution = r.fallback
	result.Confidence = fallbackConfidence
	return result
}

// mergeIssues concatenates catalog issues (higher trust) before oracle
// issues, drops duplicates by case-insensitive description (first wins),
// and ranks by severity with a stable discovery-order tie-break.
func mergeIssues(catalogIssues, oracleIssues []models.DetectedIssue) []models.DetectedIssue {
	merged := make([]models.DetectedIssue, 0, len(catalogIssues)+len(oracleIssues))
	seen := make(map[string]bool)

	for _, issue := range append(append([]models.DetectedIssue{}, catalogIssues...), oracleIssues...) {
		key := strings.ToLower(issue.Description)
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, issue)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Severity.Rank() > merged[j].Severity.Rank()
	})
	return merged
}

func overallSeverity(issues []models.DetectedIssue) models.Severity {
	if len(issues) == 0 {
		return models.SeverityInfo
	}
	max := issues[0].Severity
	for _, issue := range issues[1:] {
		if issue.Severity.Rank() > max.Rank() {
			max = issue.Severity
		}
	}
	return max
}

// bestStored returns the stored candidate with the highest similarity,
// if it clears the high-confidence threshold.
func bestStored(stored []models.StoredCandidate) (models.StoredCandidate, bool) {
	var best models.StoredCandidate
	found := false
	for _, c := range stored {
		if !found || c.Similarity > best.Similarity {
			best = c
			found = true
		}
	}
	if !found || best.Similarity < storedSimilarityThreshold {
		return models.StoredCandidate{}, false
	}
	return best, true
}

// primaryIssue picks the highest-severity catalog issue, earliest
// discovery order breaking ties.
func primaryIssue(catalogIssues []models.DetectedIssue) models.DetectedIssue {
	primary := catalogIssues[0]
	for _, issue := range catalogIssues[1:] {
		if issue.Severity.Rank() > primary.Severity.Rank() {
			primary = issue
		}
	}
	return primary
}

func (r *Resolver) bundleFor(issue models.DetectedIssue) models.RemediationBundle {
	if sig, ok := r.lookup(issue.SignatureID); ok {
		return sig.Remediation
	}
	return r.fallback
}

// catalogConfidence implements the additive corroboration policy: base
// 0.65, +0.05 per additional distinct catalog issue (at most +0.15),
// +0.10 when the oracle agrees with the primary issue, capped at 0.95.
func (r *Resolver) catalogConfidence(primary models.DetectedIssue, catalogIssues, oracleIssues []models.DetectedIssue) float64 {
	confidence := catalogBaseConfidence

	extra := float64(distinctCount(catalogIssues)-1) * corroborationStep
	if extra > corroborationCap {
		extra = corroborationCap
	}
	if extra > 0 {
		confidence += extra
	}

	if r.oracleAgrees(primary, oracleIssues) {
		confidence += oracleAgreementBonus
	}

	return clamp(confidence, 0, confidenceCap)
}

func distinctCount(issues []models.DetectedIssue) int {
	seen := make(map[string]bool, len(issues))
	for _, issue := range issues {
		seen[strings.ToLower(issue.Description)] = true
	}
	return len(seen)
}

// oracleAgrees reports whether any oracle issue shares a significant
// token with the primary issue's title or signature keywords.
func (r *Resolver) oracleAgrees(primary models.DetectedIssue, oracleIssues []models.DetectedIssue) bool {
	if len(oracleIssues) == 0 {
		return false
	}

	primaryText := primary.Title
	if sig, ok := r.lookup(primary.SignatureID); ok {
		primaryText += " " + strings.Join(sig.RequiredKeywords, " ")
	}
	primaryTokens := tokenize(primaryText)

	for _, issue := range oracleIssues {
		for tok := range tokenize(issue.Title + " " + issue.Description) {
			if primaryTokens[tok] {
				return true
			}
		}
	}
	return false
}

// tokenStopwords are too generic to count as agreement on their own.
var tokenStopwords = map[string]bool{
	"error": true, "errors": true, "failed": true, "failure": true,
	"issue": true, "issues": true, "detected": true, "deployment": true,
	"missing": true, "found": true,
}

func tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, field := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if len(field) >= 4 && !tokenStopwords[field] {
			tokens[field] = true
		}
	}
	return tokens
}

// synthesizeOracleBundle builds a remediation from free-text oracle
// recommendations: one step per recommendation, at most five. With no
// recommendations at all, a minimal analyze/apply/verify placeholder is
// returned so the result is still actionable.
func synthesizeOracleBundle(recommendations []string) models.RemediationBundle {
	steps := make([]string, 0, maxOracleSteps)
	for _, rec := range recommendations {
		rec = strings.TrimSpace(rec)
		if rec == "" {
			continue
		}
		steps = append(steps, rec)
		if len(steps) == maxOracleSteps {
			break
		}
	}
	if len(steps) == 0 {
		steps = []string{
			"Analyze the reported issues in detail",
			"Apply the recommended configuration changes",
			"Verify the system recovers and monitor for recurrence",
		}
	}

	return models.RemediationBundle{
		Title:            "AI-Guided Remediation",
		Steps:            steps,
		ExampleCode:      "# No example commands available for AI-derived fixes",
		EstimatedMinutes: models.MinutesRange{Lo: 5, Hi: 15},
		SuccessRate:      oracleOnlyConfidence,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
