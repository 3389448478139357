package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	defaultConfigDirName  = ".primus-os"
	defaultConfigFileName = "config.yaml"
	envPrefix             = "PRIMUS_"
)

// legacyEnv maps the environment variable names the tool has always honoured
// onto their koanf keys. Everything else uses the PRIMUS_<SECTION>_<FIELD> form.
var legacyEnv = map[string]string{
	"OPENAI_API_KEY":        "llm.openai_api_key",
	"ANTHROPIC_API_KEY":     "llm.anthropic_api_key",
	"PRIMUS_DEFAULT_MODEL":  "llm.default_model",
	"PRIMUS_MAX_CONCURRENT": "runtime.max_concurrent_tasks",
	"PRIMUS_TIMEOUT":        "runtime.request_timeout",
}

// Load loads settings from a YAML file, then overrides with environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (OPENAI_API_KEY, PRIMUS_TIMEOUT, PRIMUS_SCAN_USER_AGENT, etc.)
//  2. YAML config file (~/.primus-os/config.yaml)
//  3. Hardcoded defaults
//
// If configPath is empty the default path is used, and a missing file is not
// an error. Config files may hold API keys, so they must be 0600 or 0400 and
// no larger than 1MB.
//
// # Environment Variable Mapping
//
//	OPENAI_API_KEY         -> llm.openai_api_key
//	ANTHROPIC_API_KEY      -> llm.anthropic_api_key
//	PRIMUS_DEFAULT_MODEL   -> llm.default_model
//	PRIMUS_MAX_CONCURRENT  -> runtime.max_concurrent_tasks
//	PRIMUS_TIMEOUT         -> runtime.request_timeout
//	PRIMUS_SCAN_USER_AGENT -> scan.user_agent
func Load(configPath string) (*Settings, error) {
	k := koanf.New(".")

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, defaultConfigDirName, defaultConfigFileName)
	}

	if _, err := os.Stat(configPath); err == nil {
		content, err := readConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyDefaults(&s); err != nil {
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &s, nil
}

// Default returns settings built from defaults alone.
func Default() (*Settings, error) {
	var s Settings
	if err := applyDefaults(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// envKey maps an environment variable name to a koanf key.
// Returning "" drops the variable.
func envKey(s string) string {
	if key, ok := legacyEnv[s]; ok {
		return key
	}
	if !strings.HasPrefix(s, envPrefix) {
		return ""
	}

	// Split on first underscore only (section.field_name pattern)
	rest := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	parts := strings.SplitN(rest, "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return ""
	}
	return parts[0] + "." + parts[1]
}

// readConfigFile opens the file once and validates it through the same
// descriptor to avoid a TOCTOU race.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if err := validateConfigFileProperties(info); err != nil {
		return nil, fmt.Errorf("config file validation failed: %w", err)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// validateConfigFileProperties checks file permissions and size.
func validateConfigFileProperties(info os.FileInfo) error {
	if info.IsDir() {
		return fmt.Errorf("config path is a directory")
	}

	// Skip on Windows (different permission model)
	if runtime.GOOS != "windows" {
		perm := info.Mode().Perm()
		if perm != 0600 && perm != 0400 {
			return fmt.Errorf("insecure config file permissions: %v (expected 0600 or 0400)", perm)
		}
	}

	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(s *Settings) error {
	if s.LLM.Provider == "" {
		s.LLM.Provider = ProviderOpenAI
	}
	s.LLM.Provider = strings.ToLower(s.LLM.Provider)
	if s.LLM.DefaultModel == "" {
		s.LLM.DefaultModel = "gpt-4"
	}
	if s.LLM.EmbeddingModel == "" {
		s.LLM.EmbeddingModel = "text-embedding-ada-002"
	}

	if s.Runtime.MaxConcurrentTasks == 0 {
		s.Runtime.MaxConcurrentTasks = 5
	}
	if s.Runtime.RequestTimeout == 0 {
		s.Runtime.RequestTimeout = 30
	}

	if len(s.Scan.TextExtensions) == 0 {
		s.Scan.TextExtensions = []string{".md", ".txt"}
	}
	if len(s.Scan.DocumentExtensions) == 0 {
		s.Scan.DocumentExtensions = []string{".pdf", ".doc"}
	}
	if s.Scan.MaxFileSize == 0 {
		s.Scan.MaxFileSize = 10 * 1024 * 1024
	}
	if s.Scan.UserAgent == "" {
		s.Scan.UserAgent = "primus-scanner/1.0"
	}
	if len(s.Scan.IgnoreFiles) == 0 {
		s.Scan.IgnoreFiles = []string{".gitignore", ".primusignore"}
	}

	if s.Logging.Level == "" {
		s.Logging.Level = "warn"
	}
	if s.Logging.Format == "" {
		s.Logging.Format = "console"
	}

	if s.Server.Host == "" {
		s.Server.Host = "127.0.0.1"
	}
	if s.Server.Port == 0 {
		s.Server.Port = 8765
	}

	if s.Secrets.Engine == "" {
		s.Secrets.Engine = EngineBuiltin
	}
	s.Secrets.Engine = strings.ToLower(s.Secrets.Engine)

	if s.Paths.ConfigDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		s.Paths.ConfigDir = filepath.Join(home, defaultConfigDirName)
	} else {
		dir, err := expandHome(s.Paths.ConfigDir)
		if err != nil {
			return err
		}
		s.Paths.ConfigDir = dir
	}

	return nil
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
