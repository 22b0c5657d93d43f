package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/smartcharts/coursetrack-engine/pkg/config"
)

// NewClient creates the chat client selected by configuration.
func NewClient(cfg *config.AIConfig, logger *zap.Logger) (ChatClient, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(cfg.BaseURL, cfg.Model, cfg.APIKey, logger)
	case "anthropic":
		return NewAnthropicClient(cfg.BaseURL, cfg.Model, cfg.APIKey, logger)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
