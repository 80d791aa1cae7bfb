// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/report-engine/internal/provider"
	"github.com/pdiddy/report-engine/internal/secrets"
	"github.com/pdiddy/report-engine/pkg/types"
)

// Configuration defaults. Flags override config file values; the config file
// overrides these.
const (
	defaultModel          = "gemini-2.5-flash"
	defaultAnthropicModel = "claude-sonnet-4-5"
	defaultCallTimeout    = 2 * time.Minute
	defaultUserAgent      = "report-engine/0.1"
)

var defaultFallbackModels = []string{"gemini-2.0-flash", "gemini-1.5-flash"}

// generationConfig assembles the generation stage configuration from the
// config file, environment, and secrets.
func generationConfig() types.GenerationConfig {
	cfg := types.GenerationConfig{
		ProviderConfig: types.ProviderConfig{
			Model:           viper.GetString("generation.model"),
			FallbackModels:  viper.GetStringSlice("generation.fallback_models"),
			GeminiAPIKey:    secrets.Get(loadedSecrets, "gemini-api-key", viper.GetString("generation.gemini_api_key")),
			AnthropicAPIKey: secrets.Get(loadedSecrets, "anthropic-api-key", viper.GetString("generation.anthropic_api_key")),
			AnthropicModel:  viper.GetString("generation.anthropic_model"),
			CallTimeout:     viper.GetDuration("generation.call_timeout"),
		},
		MaxAttempts:           viper.GetInt("generation.max_attempts"),
		BaseDelay:             viper.GetDuration("generation.base_delay"),
		QuotaDelay:            viper.GetDuration("generation.quota_delay"),
		PromptThreshold:       viper.GetInt("generation.prompt_threshold"),
		SectionDelay:          viper.GetDuration("generation.section_delay"),
		Workers:               viper.GetInt("generation.workers"),
		MaxExcerpts:           viper.GetInt("generation.max_excerpts"),
		MaxDownloadedExcerpts: viper.GetInt("generation.max_downloaded_excerpts"),
	}

	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if len(cfg.FallbackModels) == 0 {
		cfg.FallbackModels = defaultFallbackModels
	}
	if cfg.AnthropicModel == "" {
		cfg.AnthropicModel = defaultAnthropicModel
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	if cfg.SectionDelay < 0 {
		cfg.SectionDelay = 0
	} else if cfg.SectionDelay == 0 {
		cfg.SectionDelay = time.Second
	}
	return cfg
}

// discoveryConfig assembles the discovery stage configuration.
func discoveryConfig() types.DiscoveryConfig {
	cfg := types.DiscoveryConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("discovery.timeout"),
			UserAgent: viper.GetString("discovery.user_agent"),
		},
		OpenAlexEmail: secrets.Get(loadedSecrets, "openalex-email", viper.GetString("discovery.openalex_email")),
		MaxSources:    viper.GetInt("discovery.max_sources"),
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	return cfg
}

// reportConfig assembles output settings.
func reportConfig() types.ReportConfig {
	cfg := types.ReportConfig{
		OutputDir: viper.GetString("report.output_dir"),
		DBPath:    viper.GetString("report.db_path"),
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output/reports"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "output/report.db"
	}
	return cfg
}

// buildProviders assembles the ordered provider chain: the primary Gemini
// model, Gemini fallback models in order, then an Anthropic model when an
// API key is configured.
func buildProviders(ctx context.Context, cfg types.GenerationConfig) ([]provider.Provider, error) {
	var providers []provider.Provider

	if cfg.GeminiAPIKey != "" {
		client, err := provider.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		providers = append(providers, provider.NewGemini(client, cfg.Model, cfg.CallTimeout))
		for _, model := range cfg.FallbackModels {
			providers = append(providers, provider.NewGemini(client, model, cfg.CallTimeout))
		}
	}

	if cfg.AnthropicAPIKey != "" {
		providers = append(providers, &provider.Anthropic{
			APIKey: cfg.AnthropicAPIKey,
			Model:  cfg.AnthropicModel,
			Client: &http.Client{Timeout: cfg.CallTimeout},
		})
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no provider configured: set gemini-api-key or anthropic-api-key in .secrets/")
	}
	return providers, nil
}
