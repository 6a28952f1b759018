package ai

import (
	"fmt"
	"strings"

	"github.com/bskcorona-github/studyflow/pkg/domain/ai"
)

// NewProvider builds the named backend. An empty name selects gemini.
func NewProvider(providerName, modelName, apiKey string) (ai.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(providerName)) {
	case "gemini", "":
		return NewGeminiProvider(modelName, apiKey), nil
	case "genai":
		return NewGenAIProvider(modelName, apiKey), nil
	case "mock":
		if modelName == "" {
			modelName = "canned"
		}
		return &MockProvider{Model: modelName}, nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", providerName)
	}
}
