// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "report-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ProviderConfig holds settings shared by all generation provider adapters.
type ProviderConfig struct {
	// Model is the primary model identifier (e.g. "gemini-2.5-flash").
	Model string `json:"model" yaml:"model"`

	// FallbackModels are tried in order when the primary model's quota is
	// exhausted on the final permitted attempt of a call.
	FallbackModels []string `json:"fallback_models,omitempty" yaml:"fallback_models,omitempty"`

	// GeminiAPIKey authenticates against the Gemini API.
	GeminiAPIKey string `json:"gemini_api_key,omitempty" yaml:"gemini_api_key,omitempty"`

	// AnthropicAPIKey authenticates against the Anthropic API. When set, an
	// Anthropic provider is appended to the fallback chain.
	AnthropicAPIKey string `json:"anthropic_api_key,omitempty" yaml:"anthropic_api_key,omitempty"`

	// AnthropicModel is the model used by the Anthropic fallback provider.
	AnthropicModel string `json:"anthropic_model,omitempty" yaml:"anthropic_model,omitempty"`

	// CallTimeout bounds each individual provider call. A timeout is treated
	// as a transient failure.
	CallTimeout time.Duration `json:"call_timeout" yaml:"call_timeout"`
}

// GenerationConfig holds settings for the generation stage.
type GenerationConfig struct {
	ProviderConfig `yaml:",inline"`

	// MaxAttempts is the retry ceiling per provider call (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// BaseDelay is the starting backoff for transient failures; it doubles
	// each attempt (default 1s).
	BaseDelay time.Duration `json:"base_delay" yaml:"base_delay"`

	// QuotaDelay is the wait after a quota failure when the provider does not
	// suggest its own retry delay (default 60s).
	QuotaDelay time.Duration `json:"quota_delay" yaml:"quota_delay"`

	// PromptThreshold is the maximum prompt size in bytes for a single
	// provider call. Longer prompts are segmented and reduced (default 8000).
	PromptThreshold int `json:"prompt_threshold" yaml:"prompt_threshold"`

	// SectionDelay is the pause between consecutive section generations in
	// sequential mode (default 1s).
	SectionDelay time.Duration `json:"section_delay" yaml:"section_delay"`

	// Workers is the number of sections generated concurrently. Values <= 1
	// mean sequential generation.
	Workers int `json:"workers" yaml:"workers"`

	// MaxExcerpts caps the total source excerpts embedded per section prompt
	// (default 20).
	MaxExcerpts int `json:"max_excerpts" yaml:"max_excerpts"`

	// MaxDownloadedExcerpts caps how many of those slots go to full-text
	// sources (default 15).
	MaxDownloadedExcerpts int `json:"max_downloaded_excerpts" yaml:"max_downloaded_excerpts"`
}

// DiscoveryConfig holds settings for the source discovery stage.
type DiscoveryConfig struct {
	HTTPConfig `yaml:",inline"`

	// OpenAlexEmail is sent as the mailto parameter for polite pool access.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty"`

	// MaxSources caps the number of candidate sources fetched per author
	// (default 50).
	MaxSources int `json:"max_sources" yaml:"max_sources"`
}

// ReportConfig holds settings for report assembly and rendering.
type ReportConfig struct {
	// OutputDir is the directory for rendered reports and checklists
	// (e.g. "output/reports/").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// DBPath is the SQLite run store location (e.g. "output/report.db").
	DBPath string `json:"db_path" yaml:"db_path"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Discovery  DiscoveryConfig  `json:"discovery" yaml:"discovery"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Report     ReportConfig     `json:"report" yaml:"report"`
}
