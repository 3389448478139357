// Package config provides settings loading for primus.
//
// Settings come from hardcoded defaults, an optional YAML file and the
// process environment, in increasing order of precedence. API keys are held
// as Secret values so they never show up in logs or serialized output.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotConfigured is returned when an operation needs an LLM API key and none is set.
var ErrNotConfigured = errors.New("no LLM API key configured (set OPENAI_API_KEY or ANTHROPIC_API_KEY)")

// Provider names accepted in llm.provider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Settings holds the complete primus configuration.
type Settings struct {
	LLM        LLMConfig        `koanf:"llm"`
	Runtime    RuntimeConfig    `koanf:"runtime"`
	Scan       ScanConfig       `koanf:"scan"`
	Extraction ExtractionConfig `koanf:"extraction"`
	Logging    LoggingConfig    `koanf:"logging"`
	Server     ServerConfig     `koanf:"server"`
	Secrets    SecretsConfig    `koanf:"secrets"`
	Paths      PathsConfig      `koanf:"paths"`
}

// LLMConfig holds hosted model settings.
type LLMConfig struct {
	Provider        string `koanf:"provider"`
	OpenAIAPIKey    Secret `koanf:"openai_api_key"`
	AnthropicAPIKey Secret `koanf:"anthropic_api_key"`
	DefaultModel    string `koanf:"default_model"`
	EmbeddingModel  string `koanf:"embedding_model"`
	BaseURL         string `koanf:"base_url"`
}

// RuntimeConfig holds performance tunables.
type RuntimeConfig struct {
	MaxConcurrentTasks int `koanf:"max_concurrent_tasks"`
	// RequestTimeout is in seconds.
	RequestTimeout int `koanf:"request_timeout"`
}

// ScanConfig controls the source reader.
type ScanConfig struct {
	TextExtensions     []string `koanf:"text_extensions"`
	DocumentExtensions []string `koanf:"document_extensions"`
	MaxFileSize        int64    `koanf:"max_file_size"`
	UserAgent          string   `koanf:"user_agent"`
	IgnoreFiles        []string `koanf:"ignore_files"`
}

// ExtractionConfig overrides the default cue phrase table when Rules is non-empty.
type ExtractionConfig struct {
	Rules []RuleConfig `koanf:"rules"`
}

// RuleConfig is one labelled cue phrase pattern.
type RuleConfig struct {
	Label   string `koanf:"label"`
	Pattern string `koanf:"pattern"`
}

// LoggingConfig holds the subset of logging options exposed to users.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
}

// ServerConfig holds HTTP API configuration.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// Secret scrubbing engines.
const (
	EngineBuiltin  = "builtin"
	EngineGitleaks = "gitleaks"
	EngineOff      = "off"
)

// SecretsConfig controls scrubbing of text sent to LLM providers.
type SecretsConfig struct {
	Engine    string   `koanf:"engine"`
	AllowList []string `koanf:"allow_list"`
}

// PathsConfig holds filesystem locations.
type PathsConfig struct {
	ConfigDir string `koanf:"config_dir"`
}

// IsConfigured reports whether at least one LLM API key is set.
func (s *Settings) IsConfigured() bool {
	return s.LLM.OpenAIAPIKey.IsSet() || s.LLM.AnthropicAPIKey.IsSet()
}

// ActiveAPIKey returns the key for the configured provider, falling back to
// whichever key is present when the provider has none.
func (s *Settings) ActiveAPIKey() (provider string, key Secret) {
	switch s.LLM.Provider {
	case ProviderAnthropic:
		if s.LLM.AnthropicAPIKey.IsSet() {
			return ProviderAnthropic, s.LLM.AnthropicAPIKey
		}
	default:
		if s.LLM.OpenAIAPIKey.IsSet() {
			return ProviderOpenAI, s.LLM.OpenAIAPIKey
		}
	}
	if s.LLM.OpenAIAPIKey.IsSet() {
		return ProviderOpenAI, s.LLM.OpenAIAPIKey
	}
	if s.LLM.AnthropicAPIKey.IsSet() {
		return ProviderAnthropic, s.LLM.AnthropicAPIKey
	}
	return s.LLM.Provider, ""
}

// RequestTimeout returns the runtime timeout as a time.Duration.
func (s *Settings) RequestTimeout() time.Duration {
	return time.Duration(s.Runtime.RequestTimeout) * time.Second
}

// LogFilePath resolves the log file location. Relative names live in the config dir.
func (s *Settings) LogFilePath() string {
	if s.Logging.File == "" {
		return ""
	}
	if filepath.IsAbs(s.Logging.File) {
		return s.Logging.File
	}
	return filepath.Join(s.Paths.ConfigDir, s.Logging.File)
}

// Validate validates the settings.
func (s *Settings) Validate() error {
	switch s.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("invalid llm provider %q (must be %s or %s)", s.LLM.Provider, ProviderOpenAI, ProviderAnthropic)
	}

	if s.LLM.DefaultModel == "" {
		return errors.New("default model cannot be empty")
	}

	if s.Runtime.MaxConcurrentTasks < 1 {
		return fmt.Errorf("max concurrent tasks must be positive, got %d", s.Runtime.MaxConcurrentTasks)
	}

	if s.Runtime.RequestTimeout < 1 {
		return fmt.Errorf("request timeout must be positive, got %d", s.Runtime.RequestTimeout)
	}

	if s.Scan.MaxFileSize < 0 {
		return fmt.Errorf("max file size cannot be negative: %d", s.Scan.MaxFileSize)
	}

	for _, ext := range append(append([]string{}, s.Scan.TextExtensions...), s.Scan.DocumentExtensions...) {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}

	for i, r := range s.Extraction.Rules {
		if r.Label == "" || r.Pattern == "" {
			return fmt.Errorf("extraction rule %d: label and pattern are required", i)
		}
	}

	switch s.Secrets.Engine {
	case EngineBuiltin, EngineGitleaks, EngineOff:
	default:
		return fmt.Errorf("invalid secrets engine %q (must be %s, %s or %s)", s.Secrets.Engine, EngineBuiltin, EngineGitleaks, EngineOff)
	}

	if s.Server.Port < 1 || s.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", s.Server.Port)
	}

	return nil
}

// EnsureConfigDir creates the primus config directory if it doesn't exist.
// The directory is created with 0700 permissions (owner read/write/execute only).
func EnsureConfigDir(s *Settings) error {
	if s.Paths.ConfigDir == "" {
		return errors.New("config dir is not set")
	}
	if err := os.MkdirAll(s.Paths.ConfigDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", s.Paths.ConfigDir, err)
	}
	return nil
}

// ValidateAPIKey checks the shape of an API key for the given provider.
// It does not contact the provider.
func ValidateAPIKey(apiKey, provider string) bool {
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		return strings.HasPrefix(apiKey, "sk-") && len(apiKey) > 20
	case ProviderAnthropic:
		return strings.HasPrefix(apiKey, "sk-ant-") && len(apiKey) > 30
	}
	return false
}
