package config

import (
	"fmt"
	"strings"
	"time"

	infraai "github.com/bskcorona-github/studyflow/pkg/ai"
)

// AIConfig selects the model provider and bounds its calls.
type AIConfig struct {
	Provider     string `yaml:"provider"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"-"`
	JSONMode     bool   `yaml:"json_mode"`
	MaxRetries   int    `yaml:"max_retries"`
	RetryDelayMs int    `yaml:"retry_delay_ms"`
	TimeoutSec   int    `yaml:"timeout_sec"`
}

func DefaultAIConfig() AIConfig {
	def := infraai.DefaultResilienceConfig()
	return AIConfig{
		Provider:     "gemini",
		Model:        "gemini-1.5-flash",
		MaxRetries:   def.MaxRetries,
		RetryDelayMs: int(def.RetryDelay / time.Millisecond),
		TimeoutSec:   int(def.Timeout / time.Second),
	}
}

func (c AIConfig) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Provider)) {
	case "", "gemini", "genai", "mock":
	default:
		return fmt.Errorf("ai.provider %q is not one of gemini, genai, mock", c.Provider)
	}
	if c.MaxRetries < 0 || c.RetryDelayMs < 0 || c.TimeoutSec < 0 {
		return fmt.Errorf("ai retry settings must not be negative")
	}
	return nil
}

// Resilience converts the retry settings; zero values fall back to the
// provider defaults.
func (c AIConfig) Resilience() infraai.ResilienceConfig {
	return infraai.ResilienceConfig{
		MaxRetries: c.MaxRetries,
		RetryDelay: time.Duration(c.RetryDelayMs) * time.Millisecond,
		Timeout:    time.Duration(c.TimeoutSec) * time.Second,
	}
}
