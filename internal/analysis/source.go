package analysis

import "strings"

// sourceIndicators maps a log source to keywords that suggest it.
// Scoring is a simple indicator count; ties resolve in slice order.
var sourceIndicators = []struct {
	source     string
	indicators []string
}{
	{"docker", []string{"docker", "container", "image", "dockerfile"}},
	{"kubernetes", []string{"kubectl", "kubernetes", "k8s", "pod", "deployment", "replicaset"}},
	{"database", []string{"postgresql", "mysql", "relation", "sql", "database"}},
	{"ci", []string{"jenkins", "pipeline", "workflow", "github actions"}},
	{"application", []string{"exception", "traceback", "stack trace", "panic"}},
}

// DetectSource guesses where a log came from. The caller's explicit hint
// always wins; detection only fills the gap when the hint is empty or
// "unknown".
func DetectSource(logText, hint string) string {
	if hint != "" && hint != "unknown" {
		return hint
	}

	lower := strings.ToLower(logText)
	bestSource := "unknown"
	bestScore := 0
	for _, entry := range sourceIndicators {
		score := 0
		for _, indicator := range entry.indicators {
			if strings.Contains(lower, indicator) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestSource = entry.source
		}
	}
	return bestSource
}
