// Package diagnose orchestrates one analysis request: catalog matching,
// the optional oracle consultation, similarity lookup, and resolution
// into a single remediation.
package diagnose

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/deploymedic/deploymedic/internal/analysis"
	"github.com/deploymedic/deploymedic/internal/simstore"
	"github.com/deploymedic/deploymedic/pkg/models"
)

// PatternMemory is the slice of the similarity store the analyzer needs.
type PatternMemory interface {
	FindSimilar(ctx context.Context, logText string) []models.StoredCandidate
	StorePattern(ctx context.Context, logText string, issues []models.DetectedIssue, bundle models.RemediationBundle, successRate float64) string
}

// Analyzer runs the full diagnosis pipeline. Oracle and memory may be
// nil; the pipeline then runs on the catalog alone.
type Analyzer struct {
	matcher  *analysis.Matcher
	resolver *analysis.Resolver
	oracle   models.Oracle
	memory   PatternMemory
	logger   *slog.Logger
}

func NewAnalyzer(matcher *analysis.Matcher, resolver *analysis.Resolver, oracle models.Oracle, memory PatternMemory, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		matcher:  matcher,
		resolver: resolver,
		oracle:   oracle,
		memory:   memory,
		logger:   logger,
	}
}

// Diagnose analyzes a deployment log. The catalog match runs inline;
// the oracle consultation and the similarity lookup run concurrently
// since both are independent network-ish calls. The outcome is written
// back to the pattern memory without blocking the response.
func (a *Analyzer) Diagnose(ctx context.Context, logText, sourceHint string) (*models.AnalysisResult, error) {
	catalogIssues := a.matcher.Match(logText)

	var (
		wg           sync.WaitGroup
		consultation *models.Consultation
		stored       []models.StoredCandidate
	)

	if a.oracle != nil && strings.TrimSpace(logText) != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := a.oracle.Consult(ctx, logText, sourceHint)
			if err != nil {
				a.logger.Warn("oracle consultation failed", "provider", a.oracle.Name(), "error", err)
				return
			}
			consultation = c
		}()
	}

	if a.memory != nil && strings.TrimSpace(logText) != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stored = a.memory.FindSimilar(ctx, logText)
		}()
	}

	wg.Wait()

	result := a.resolver.Resolve(catalogIssues, consultation, stored)
	result.Source = analysis.DetectSource(logText, sourceHint)
	result.PatternKey = simstore.Key(logText)

	a.storeAsync(logText, &result)

	a.logger.Info("log diagnosed",
		"source", result.Source,
		"issues", len(result.Issues),
		"overall_severity", result.OverallSeverity,
		"confidence", result.Confidence,
	)
	return &result, nil
}

// storeAsync writes the outcome back to the pattern memory in the
// background. A panic in the write-back must never take the server down.
func (a *Analyzer) storeAsync(logText string, result *models.AnalysisResult) {
	if a.memory == nil || strings.TrimSpace(logText) == "" {
		return
	}

	issues := make([]models.DetectedIssue, len(result.Issues))
	copy(issues, result.Issues)
	bundle := result.ChosenSolution
	successRate := result.Confidence

	go func() {
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error("pattern write-back panicked", "panic", r)
			}
		}()
		ctx := context.Background()
		a.memory.StorePattern(ctx, logText, issues, bundle, successRate)
	}()
}
