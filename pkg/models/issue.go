// Package models contains shared data models used across the DeployMedic codebase.
package models

// Severity classifies how bad a detected issue is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Rank maps a severity to a numeric weight for ordering.
// critical > high > medium > low > info.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Origin tags where a detected issue came from.
type Origin string

const (
	OriginCatalog       Origin = "catalog"
	OriginOracle        Origin = "oracle"
	OriginStoredPattern Origin = "stored_pattern"
)

// MinutesRange is an estimated time-to-fix window in minutes.
type MinutesRange struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

// RemediationBundle is a single chosen fix: ordered steps plus an example
// command template. ExampleCode may contain placeholder tokens (host, port,
// user) that the caller substitutes; it is returned as-is.
type RemediationBundle struct {
	Title            string       `json:"title"`
	Steps            []string     `json:"steps"`
	ExampleCode      string       `json:"example_code"`
	EstimatedMinutes MinutesRange `json:"estimated_minutes"`
	SuccessRate      float64      `json:"success_rate"`
}

// IssueSignature is a catalog entry: a hand-authored issue pattern.
// A log line matches when every keyword in RequiredKeywords is a
// case-insensitive substring of that line. Signatures are immutable and
// loaded once per process; declaration order is the matching priority.
type IssueSignature struct {
	ID               string
	RequiredKeywords []string
	Severity         Severity
	Title            string
	Description      string
	Remediation      RemediationBundle
}

// DetectedIssue is one finding for a single analysis request. Issues are
// consumed by the resolver in the same request and never persisted
// individually; only the chosen bundle and input log are stored.
type DetectedIssue struct {
	SignatureID string   `json:"signature_id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	MatchedLine string   `json:"matched_line"`
	Origin      Origin   `json:"origin"`
}

// AnalysisResult is the complete output of one analysis call.
// Issues are ranked catalog-first, then by severity with discovery-order
// tie-break. ChosenSolution is always populated; when nothing matched it
// is the generic fallback bundle.
type AnalysisResult struct {
	Issues          []DetectedIssue   `json:"issues"`
	ChosenSolution  RemediationBundle `json:"chosen_solution"`
	OverallSeverity Severity          `json:"overall_severity"`
	Confidence      float64           `json:"confidence"`
	Source          string            `json:"source,omitempty"`
	PatternKey      string            `json:"pattern_key,omitempty"`
}
