// Package analysis contains the pure decision logic of DeployMedic: the
// line-oriented pattern matcher and the resolver that ranks candidates
// into a single remediation. Both are deterministic string computations
// with no I/O.
package analysis

import (
	"strings"

	"github.com/deploymedic/deploymedic/pkg/models"
)

// infoMarker suppresses a line entirely: info-level output never matches,
// even when it also contains signature keywords.
const infoMarker = "[info]"

// genericMarkers flag a line as error-ish when no signature matched it.
var genericMarkers = []string{"[error]", "[critical]", "error:", "failed:"}

// GenericSignatureID tags the at-most-one generic fallback issue emitted
// per log.
const GenericSignatureID = "generic-error"

// Matcher scans log text line-by-line against an ordered signature list.
type Matcher struct {
	signatures []models.IssueSignature
}

// NewMatcher creates a Matcher over the given catalog. Slice order is the
// matching priority.
func NewMatcher(signatures []models.IssueSignature) *Matcher {
	return &Matcher{signatures: signatures}
}

// Match returns detected issues in line order. A line matches at most one
// signature (first in priority order wins). Lines that match no signature
// but contain a generic error marker produce a single medium-severity
// fallback issue for the whole log, however many such lines there are.
func (m *Matcher) Match(logText string) []models.DetectedIssue {
	var issues []models.DetectedIssue
	genericEmitted := false

	for _, line := range strings.Split(logText, "\n") {
		lower := strings.ToLower(strings.TrimSpace(line))
		if lower == "" || strings.Contains(lower, infoMarker) {
			continue
		}

		if sig, ok := m.firstMatch(lower); ok {
			issues = append(issues, models.DetectedIssue{
				SignatureID: sig.ID,
				Title:       sig.Title,
				Description: sig.Description,
				Severity:    sig.Severity,
				MatchedLine: line,
				Origin:      models.OriginCatalog,
			})
			continue
		}

		if genericEmitted || !hasGenericMarker(lower) {
			continue
		}
		issues = append(issues, models.DetectedIssue{
			SignatureID: GenericSignatureID,
			Title:       "General Error Detected",
			Description: "Error found in deployment logs",
			Severity:    models.SeverityMedium,
			MatchedLine: line,
			Origin:      models.OriginCatalog,
		})
		genericEmitted = true
	}

	return issues
}

func (m *Matcher) firstMatch(lowerLine string) (models.IssueSignature, bool) {
	for _, sig := range m.signatures {
		if matchesAll(lowerLine, sig.RequiredKeywords) {
			return sig, true
		}
	}
	return models.IssueSignature{}, false
}

func matchesAll(lowerLine string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.Contains(lowerLine, strings.ToLower(kw)) {
			return false
		}
	}
	return len(keywords) > 0
}

func hasGenericMarker(lowerLine string) bool {
	for _, marker := range genericMarkers {
		if strings.Contains(lowerLine, marker) {
			return true
		}
	}
	return false
}
