package wiring

import (
	"go.uber.org/zap"

	"github.com/bskcorona-github/studyflow/internal/infrastructure/config"
	infraai "github.com/bskcorona-github/studyflow/pkg/ai"
	domainai "github.com/bskcorona-github/studyflow/pkg/domain/ai"
)

// LoadAIProvider builds the configured provider wrapped with retry and
// timeout handling.
func LoadAIProvider(cfg config.AIConfig) (domainai.Provider, error) {
	base, err := infraai.NewProvider(cfg.Provider, cfg.Model, cfg.APIKey)
	if err != nil {
		return nil, err
	}
	return infraai.NewResilientProviderWithConfig(base, cfg.Resilience()), nil
}

// ReloadAI swaps the active provider for the one cfg describes. A provider
// that cannot be built leaves the current one in place.
func ReloadAI(swap *infraai.SwappableProvider, logger *zap.Logger) func(*config.Config) {
	return func(cfg *config.Config) {
		next, err := LoadAIProvider(cfg.AI)
		if err != nil {
			logger.Warn("keeping current AI provider", zap.Error(err))
			return
		}
		old := swap.Swap(next)
		logger.Info("AI provider swapped", zap.String("from", old.ID()), zap.String("to", next.ID()))
	}
}
