// Package oracle adapts external language-model APIs into advisory
// consultations. The oracle is strictly optional: every caller must
// degrade gracefully when it is disabled or failing.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/deploymedic/deploymedic/pkg/models"
)

const systemPrompt = "You are an expert DevOps engineer specializing in log analysis. Provide structured, actionable insights."

// maxLogChars bounds the log excerpt sent to the model so the prompt
// fits comfortably in small context windows.
const maxLogChars = 3000

// completer is the raw text-in text-out surface a backend must provide.
type completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Name() string
}

// provider turns a raw completer into a models.Oracle by owning the
// prompt, the timeout and the response parsing.
type provider struct {
	c       completer
	timeout time.Duration
}

func newProvider(c completer, timeout time.Duration) *provider {
	return &provider{c: c, timeout: timeout}
}

func (p *provider) Name() string { return p.c.Name() }

func (p *provider) Consult(ctx context.Context, logText, sourceHint string) (*models.Consultation, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	raw, err := p.c.Complete(ctx, systemPrompt, buildPrompt(logText, sourceHint))
	if err != nil {
		return nil, classifyError(err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty completion", ErrInvalidResponse)
	}

	consultation := ParseConsultation(raw)
	return &consultation, nil
}

func buildPrompt(logText, sourceHint string) string {
	if len(logText) > maxLogChars {
		logText = logText[:maxLogChars]
	}
	context := sourceHint
	if context == "" {
		context = "unknown"
	}

	return fmt.Sprintf(`Analyze the following DevOps log for issues, errors, and problems:

Context: %s

Log Content:
%s

Please provide:
1. ISSUES FOUND: List specific issues with severity (critical, high, medium, low)
2. ROOT CAUSES: Explain likely causes for each issue
3. RECOMMENDATIONS: Provide specific actionable solutions
4. PRIORITY: Order fixes by urgency

Format your response clearly with sections.
`, context, logText)
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrConsultTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrConsultTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}

	return fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
}
