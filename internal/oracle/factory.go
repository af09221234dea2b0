package oracle

import (
	"fmt"

	"github.com/deploymedic/deploymedic/internal/config"
	"github.com/deploymedic/deploymedic/internal/oracle/groq"
	"github.com/deploymedic/deploymedic/internal/oracle/openai"
	"github.com/deploymedic/deploymedic/pkg/models"
)

// NewOracle constructs the configured oracle. Called once at server
// startup. Provider "none" returns a nil oracle; callers treat that as
// "no oracle configured" rather than an error.
func NewOracle(cfg config.OracleConfig) (models.Oracle, error) {
	switch cfg.Provider {
	case "groq":
		return newProvider(groq.NewClient(cfg.Groq), cfg.ConsultTimeout), nil
	case "openai":
		return newProvider(openai.NewClient(cfg.OpenAI), cfg.ConsultTimeout), nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown oracle provider %q: must be one of groq, openai, none", cfg.Provider)
	}
}
