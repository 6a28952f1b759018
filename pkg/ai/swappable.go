package ai

import (
	"context"
	"sync/atomic"

	"github.com/bskcorona-github/studyflow/pkg/domain/ai"
)

type providerBox struct {
	p ai.Provider
}

// SwappableProvider forwards to whichever provider was stored last, so a
// config reload can change models while requests are in flight.
type SwappableProvider struct {
	current atomic.Pointer[providerBox]
}

func NewSwappableProvider(initial ai.Provider) *SwappableProvider {
	s := &SwappableProvider{}
	s.Swap(initial)
	return s
}

// Swap installs next and returns the provider it replaced.
func (s *SwappableProvider) Swap(next ai.Provider) ai.Provider {
	old := s.current.Swap(&providerBox{p: next})
	if old == nil {
		return nil
	}
	return old.p
}

// Current returns the active provider.
func (s *SwappableProvider) Current() ai.Provider {
	return s.current.Load().p
}

func (s *SwappableProvider) ID() string {
	return s.Current().ID()
}

func (s *SwappableProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	return s.Current().Complete(ctx, req)
}
