package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/primus/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show, save, validate or export settings",
	}
	cmd.AddCommand(
		newConfigShowCmd(a),
		newConfigSaveCmd(a),
		newConfigValidateCmd(a),
		newConfigExportCmd(a),
	)
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective settings with API keys masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.settings
			p := a.printer(cmd)

			p.Section("LLM")
			p.KeyValue("provider", s.LLM.Provider)
			p.KeyValue("openai_api_key", s.LLM.OpenAIAPIKey.Masked())
			p.KeyValue("anthropic_api_key", s.LLM.AnthropicAPIKey.Masked())
			p.KeyValue("default_model", s.LLM.DefaultModel)
			p.KeyValue("embedding_model", s.LLM.EmbeddingModel)
			if s.LLM.BaseURL != "" {
				p.KeyValue("base_url", s.LLM.BaseURL)
			}

			p.Section("Runtime")
			p.KeyValue("max_concurrent_tasks", strconv.Itoa(s.Runtime.MaxConcurrentTasks))
			p.KeyValue("request_timeout", s.RequestTimeout().String())

			p.Section("Scan")
			p.KeyValue("text_extensions", strings.Join(s.Scan.TextExtensions, " "))
			p.KeyValue("document_extensions", strings.Join(s.Scan.DocumentExtensions, " "))
			p.KeyValue("max_file_size", strconv.FormatInt(s.Scan.MaxFileSize, 10))
			p.KeyValue("ignore_files", strings.Join(s.Scan.IgnoreFiles, " "))
			p.KeyValue("extraction_rules", ruleSummary(s))

			p.Section("Other")
			p.KeyValue("secrets_engine", s.Secrets.Engine)
			p.KeyValue("log_level", s.Logging.Level)
			p.KeyValue("server", fmt.Sprintf("%s:%d", s.Server.Host, s.Server.Port))
			p.KeyValue("config_dir", s.Paths.ConfigDir)

			p.Plain("")
			if s.IsConfigured() {
				p.Success("LLM access configured")
			} else {
				p.Warning(config.ErrNotConfigured.Error())
			}
			return nil
		},
	}
}

func ruleSummary(s *config.Settings) string {
	if len(s.Extraction.Rules) == 0 {
		return "default"
	}
	return strconv.Itoa(len(s.Extraction.Rules)) + " custom"
}

func newConfigSaveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Write the current API keys and tunables to the .env file",
		Long: `Write OPENAI_API_KEY, ANTHROPIC_API_KEY, PRIMUS_DEFAULT_MODEL,
PRIMUS_MAX_CONCURRENT and PRIMUS_TIMEOUT to the file named by --env-file.
The file is created with 0600 permissions and holds keys in clear text.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.envFile == "" {
				return fmt.Errorf("%w: --env-file is empty", errNoInput)
			}
			if err := config.SaveEnvFile(a.envFile, a.settings); err != nil {
				return err
			}
			a.printer(cmd).Success("settings saved to " + a.envFile)
			return nil
		},
	}
}

func newConfigValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check settings and the shape of configured API keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.settings
			p := a.printer(cmd)

			if err := s.Validate(); err != nil {
				return fmt.Errorf("invalid settings: %w", err)
			}
			if !s.IsConfigured() {
				return config.ErrNotConfigured
			}

			keys := []struct {
				provider string
				key      config.Secret
			}{
				{config.ProviderOpenAI, s.LLM.OpenAIAPIKey},
				{config.ProviderAnthropic, s.LLM.AnthropicAPIKey},
			}
			for _, k := range keys {
				if !k.key.IsSet() {
					continue
				}
				if config.ValidateAPIKey(k.key.Value(), k.provider) {
					p.Success(k.provider + " API key looks valid")
				} else {
					p.Warning(k.provider + " API key has an unexpected format")
				}
			}

			provider, _ := s.ActiveAPIKey()
			p.Success("settings valid; agents will use " + provider)
			return nil
		},
	}
}

func newConfigExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Export the effective settings as JSON, YAML or TOML",
		Long: `Write the effective settings to file. The format follows the extension
(.json, .yaml, .yml or .toml). API keys are masked.

Examples:
  primus config export settings.yaml
  primus config export settings.toml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SaveFile(args[0], exportMap(a.settings)); err != nil {
				return err
			}
			a.printer(cmd).Success("settings exported to " + args[0])
			return nil
		},
	}
}

// exportMap mirrors the config file layout with keys masked.
func exportMap(s *config.Settings) map[string]any {
	rules := make([]map[string]any, 0, len(s.Extraction.Rules))
	for _, r := range s.Extraction.Rules {
		rules = append(rules, map[string]any{"label": r.Label, "pattern": r.Pattern})
	}
	return map[string]any{
		"llm": map[string]any{
			"provider":          s.LLM.Provider,
			"openai_api_key":    s.LLM.OpenAIAPIKey.Masked(),
			"anthropic_api_key": s.LLM.AnthropicAPIKey.Masked(),
			"default_model":     s.LLM.DefaultModel,
			"embedding_model":   s.LLM.EmbeddingModel,
			"base_url":          s.LLM.BaseURL,
		},
		"runtime": map[string]any{
			"max_concurrent_tasks": s.Runtime.MaxConcurrentTasks,
			"request_timeout":      s.Runtime.RequestTimeout,
		},
		"scan": map[string]any{
			"text_extensions":     s.Scan.TextExtensions,
			"document_extensions": s.Scan.DocumentExtensions,
			"max_file_size":       s.Scan.MaxFileSize,
			"user_agent":          s.Scan.UserAgent,
			"ignore_files":        s.Scan.IgnoreFiles,
		},
		"extraction": map[string]any{
			"rules": rules,
		},
		"logging": map[string]any{
			"level":  s.Logging.Level,
			"format": s.Logging.Format,
			"file":   s.Logging.File,
		},
		"server": map[string]any{
			"host": s.Server.Host,
			"port": s.Server.Port,
		},
		"secrets": map[string]any{
			"engine":     s.Secrets.Engine,
			"allow_list": s.Secrets.AllowList,
		},
		"paths": map[string]any{
			"config_dir": s.Paths.ConfigDir,
		},
	}
}
