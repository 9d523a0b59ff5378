package flow

import (
	"context"

	"go.uber.org/zap"

	"github.com/brisdel/langflow-api/internal/config"
)

// Provider runs one normalized payload against a workflow backend and returns
// the raw response envelope. Failures come back as *RelayError.
type Provider interface {
	Name() string
	Run(ctx context.Context, payload Payload) (any, error)
}

// NewProviderFromConfig selects the configured backend. The mock provider
// exists so the full pipeline, unwrapping included, runs without upstream
// access.
func NewProviderFromConfig(cfg config.FlowConfig, log *zap.Logger) Provider {
	if cfg.Provider == "mock" {
		return NewMockProvider()
	}
	return NewClient(cfg, log)
}
