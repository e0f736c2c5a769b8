package generativeAI

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/FACorreiaa/go-culture-routes/config"
)

const (
	ProviderDeepSeek = "deepseek"
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"

	DefaultTimeout = 300 * time.Second
)

var defaultEndpoints = map[string]struct{ url, model string }{
	ProviderDeepSeek: {"https://api.deepseek.com/v1/chat/completions", "deepseek-chat"},
	ProviderOpenAI:   {"https://api.openai.com/v1/chat/completions", "gpt-3.5-turbo"},
	ProviderGemini:   {"", "gemini-2.0-flash"},
}

var placeholderKeys = []string{
	"your-deepseek-api-key",
	"your-openai-api-key",
	"your-gemini-api-key",
}

// ProviderConfig is the resolved configuration of the active provider.
type ProviderConfig struct {
	Name    string
	APIKey  string
	APIURL  string
	Model   string
	Timeout time.Duration
}

// Configured reports whether the provider has a usable API key.
func (p ProviderConfig) Configured() bool {
	return !IsAPIKeyMissing(p.APIKey)
}

// IsAPIKeyMissing treats blank keys and the shipped placeholder values as absent.
func IsAPIKeyMissing(key string) bool {
	k := strings.TrimSpace(key)
	if k == "" {
		return true
	}
	for _, p := range placeholderKeys {
		if strings.EqualFold(k, p) {
			return true
		}
	}
	return false
}

// ResolveProvider selects the active provider from configuration. Unknown names fall back to openai.
func ResolveProvider(cfg config.AIConfig) ProviderConfig {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	var settings config.ProviderSettings
	switch name {
	case "", ProviderDeepSeek:
		name = ProviderDeepSeek
		settings = cfg.DeepSeek
	case ProviderGemini:
		settings = cfg.Gemini
	default:
		name = ProviderOpenAI
		settings = cfg.OpenAI
	}

	defaults := defaultEndpoints[name]
	pc := ProviderConfig{
		Name:    name,
		APIKey:  strings.TrimSpace(settings.APIKey),
		APIURL:  settings.APIURL,
		Model:   settings.Model,
		Timeout: cfg.Timeout,
	}
	if pc.APIURL == "" {
		pc.APIURL = defaults.url
	}
	if pc.Model == "" {
		pc.Model = defaults.model
	}
	if pc.Timeout <= 0 {
		pc.Timeout = DefaultTimeout
	}
	return pc
}

// NewClient builds the client for a configured provider.
func NewClient(ctx context.Context, pc ProviderConfig, logger *slog.Logger) (Client, error) {
	if !pc.Configured() {
		return nil, fmt.Errorf("provider %s has no API key configured", pc.Name)
	}
	if pc.Name == ProviderGemini {
		return NewGeminiClient(ctx, pc, logger)
	}
	return NewChatCompletionClient(pc, logger), nil
}
