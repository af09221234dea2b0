package models

import "context"

// Oracle is an optional external text-generation backend consulted for a
// second opinion on a log. Never call a specific backend directly — always
// inject this interface. The core must produce a correct result with the
// oracle entirely absent (nil), failing, or timing out.
type Oracle interface {
	// Consult asks the oracle for issues and free-text recommendations.
	// Implementations must honor ctx cancellation and return within the
	// caller-supplied deadline.
	Consult(ctx context.Context, logText, sourceHint string) (*Consultation, error)
	// Name returns the backend identifier (e.g. "groq", "openai").
	Name() string
}

// Consultation is the normalized output of an oracle call. Issues carry
// Origin = oracle and an empty MatchedLine since oracle text is not a
// verbatim catalog match.
type Consultation struct {
	Issues          []DetectedIssue
	Recommendations []string
}
