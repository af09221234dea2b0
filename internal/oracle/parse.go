package oracle

import (
	"strings"

	"github.com/deploymedic/deploymedic/pkg/models"
)

const maxRecommendations = 8

var (
	issueHeaders = []string{"issues found", "problems", "errors", "**issues**"}
	recHeaders   = []string{"recommendations", "solutions", "fixes", "**recommendations**", "solution 1", "solution 2"}

	actionVerbs = []string{"increase", "add", "upgrade", "configure", "implement", "monitor", "check", "review"}
)

// ParseConsultation extracts structured issues and recommendations from a
// free-text model response. The response is expected to have ISSUES FOUND
// and RECOMMENDATIONS sections with bulleted or numbered items, but the
// section sniffing is deliberately loose since models vary in formatting.
func ParseConsultation(response string) models.Consultation {
	var consultation models.Consultation

	section := ""
	lines := strings.Split(response, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		if containsAny(lower, issueHeaders) {
			section = "issues"
			continue
		}
		if containsAny(lower, recHeaders) {
			section = "recommendations"
			continue
		}
		if strings.Contains(lower, "root causes") {
			section = "causes"
			continue
		}

		switch section {
		case "issues":
			if isListItem(line) {
				consultation.Issues = append(consultation.Issues, models.DetectedIssue{
					Title:       "AI-Detected Issue",
					Description: cleanItem(line),
					Severity:    severityFromText(lower),
					Origin:      models.OriginOracle,
				})
			}
		case "recommendations":
			if isListItem(line) || strings.Contains(lower, "solution") {
				if rec := cleanItem(line); len(rec) > 10 {
					consultation.Recommendations = append(consultation.Recommendations, rec)
				}
			}
		}
	}

	// Unstructured responses still often contain actionable advice; scan
	// for imperative lines so the consultation is not empty-handed.
	if len(consultation.Recommendations) == 0 {
		for _, line := range lines {
			line = strings.TrimSpace(line)
			if len(line) <= 20 {
				continue
			}
			if containsAny(strings.ToLower(line), actionVerbs) {
				consultation.Recommendations = append(consultation.Recommendations, cleanItem(line))
			}
		}
	}

	if len(consultation.Recommendations) > maxRecommendations {
		consultation.Recommendations = consultation.Recommendations[:maxRecommendations]
	}
	return consultation
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// isListItem reports whether a line looks like a bullet or numbered item.
func isListItem(line string) bool {
	if line == "" {
		return false
	}
	switch line[0] {
	case '-', '*':
		return true
	}
	if strings.HasPrefix(line, "•") || strings.HasPrefix(line, "\t*") {
		return true
	}
	return line[0] >= '0' && line[0] <= '9'
}

// cleanItem strips list markers and markdown emphasis.
func cleanItem(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "-•*\t0123456789. ")
	line = strings.ReplaceAll(line, "**", "")
	line = strings.ReplaceAll(line, "*", "")
	return strings.TrimSpace(line)
}

func severityFromText(lower string) models.Severity {
	switch {
	case containsAny(lower, []string{"critical", "fatal", "severe", "emergency"}):
		return models.SeverityCritical
	case containsAny(lower, []string{"high", "major", "important"}):
		return models.SeverityHigh
	case containsAny(lower, []string{"medium", "moderate"}):
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}
