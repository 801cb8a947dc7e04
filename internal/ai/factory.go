package ai

import (
	"fmt"
	"os"
	"strings"

	"github.com/studydesk/prio/internal/config"
)

// New returns the Ranker selected by cfg.
func New(cfg config.AIConfig) (Ranker, error) {
	timeout := cfg.RequestTimeout()
	switch strings.ToLower(cfg.Provider) {
	case "", "http":
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("ai.endpoint is not set (run: prio config set ai.endpoint <url>)")
		}
		return NewHTTPRanker(cfg.Endpoint, cfg.APIKey(), timeout), nil
	case "claude":
		key := cfg.APIKey()
		if key == "" {
			key = strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
		}
		if key == "" {
			return nil, fmt.Errorf("no API key for claude (set %s or ANTHROPIC_API_KEY)", cfg.APIKeyEnv)
		}
		return NewProviderRanker(NewClaudeProvider(key, cfg.Model, timeout), cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q (use http or claude)", cfg.Provider)
	}
}
