// Package llm holds the text generation providers used by the advice composer.
package llm

import (
	"fmt"
	"log/slog"
	"net/http"

	"finance-tracker/internal/config"
	"finance-tracker/internal/services"
)

// New returns the generator for cfg.Provider, wrapped in a circuit breaker
// when thresholds are configured.
func New(cfg *config.AIConfig, metrics services.MetricsRecorderInterface, audit services.AuditLoggerInterface) (services.TextGenerator, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	var gen services.TextGenerator
	switch cfg.Provider {
	case config.AIProviderOpenAI:
		gen = NewOpenAIGenerator(cfg.APIKey, cfg.BaseURL, httpClient)
	case config.AIProviderOllama:
		gen = NewOllamaGenerator(cfg.BaseURL, httpClient)
	case config.AIProviderDisabled, "":
		slog.Warn("text generation disabled, advice requests will return the fallback message")
		return DisabledGenerator{}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}

	if cfg.CircuitBreakerFailures <= 0 {
		return gen, nil
	}

	breakerCfg := services.DefaultCircuitBreakerConfig()
	breakerCfg.MaxFailures = cfg.CircuitBreakerFailures
	if cfg.CircuitBreakerResetTime > 0 {
		breakerCfg.ResetTimeout = cfg.CircuitBreakerResetTime
	}
	breaker := services.NewCircuitBreaker(breakerCfg)
	return services.NewCircuitBreakingGenerator(gen, breaker, cfg.Provider, metrics, audit), nil
}
