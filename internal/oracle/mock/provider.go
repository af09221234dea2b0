package mock

import (
	"context"

	"github.com/deploymedic/deploymedic/internal/oracle"
	"github.com/deploymedic/deploymedic/pkg/models"
)

// MockOracle satisfies models.Oracle for testing.
type MockOracle struct {
	Name_       string
	ConsultFunc func(ctx context.Context, logText, sourceHint string) (*models.Consultation, error)
}

func (m *MockOracle) Name() string { return m.Name_ }

func (m *MockOracle) Consult(ctx context.Context, logText, sourceHint string) (*models.Consultation, error) {
	if m.ConsultFunc != nil {
		return m.ConsultFunc(ctx, logText, sourceHint)
	}
	return &models.Consultation{}, nil
}

// NewMockOracle returns a MockOracle with a sensible default response.
func NewMockOracle() *MockOracle {
	return &MockOracle{
		Name_: "mock",
		ConsultFunc: func(_ context.Context, _, _ string) (*models.Consultation, error) {
			return &models.Consultation{
				Issues: []models.DetectedIssue{{
					Title:       "AI-Detected Issue",
					Description: "Simulated issue from mock oracle",
					Severity:    models.SeverityMedium,
					Origin:      models.OriginOracle,
				}},
				Recommendations: []string{
					"Check application logs for more context",
				},
			}, nil
		},
	}
}

// NewFailingOracle returns a MockOracle that always returns the given error.
func NewFailingOracle(err error) *MockOracle {
	return &MockOracle{
		Name_: "mock-failing",
		ConsultFunc: func(_ context.Context, _, _ string) (*models.Consultation, error) {
			return nil, err
		},
	}
}

// NewTimeoutOracle returns a MockOracle that blocks until context is cancelled.
func NewTimeoutOracle() *MockOracle {
	return &MockOracle{
		Name_: "mock-timeout",
		ConsultFunc: func(ctx context.Context, _, _ string) (*models.Consultation, error) {
			<-ctx.Done()
			return nil, oracle.ErrConsultTimeout
		},
	}
}

// Compile-time check that MockOracle implements Oracle.
var _ models.Oracle = (*MockOracle)(nil)
