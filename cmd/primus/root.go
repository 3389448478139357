package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/primus/internal/agents"
	"github.com/fyrsmithlabs/primus/internal/config"
	"github.com/fyrsmithlabs/primus/internal/logging"
	"github.com/fyrsmithlabs/primus/internal/render"
	"github.com/fyrsmithlabs/primus/internal/secrets"
)

// skipSetup marks commands that run without settings or a logger.
const skipSetup = "primus/skip-setup"

// app holds the state shared by every command of one invocation.
type app struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string

	settings *config.Settings
	logger   *logging.Logger
	scrubber secrets.Scrubber

	// newClient builds the LLM client; tests replace it.
	newClient func(*config.Settings, secrets.Scrubber, *logging.Logger) (agents.Client, error)
}

func newApp() *app {
	return &app{
		newClient: agents.FromSettings,
	}
}

// execute runs root and releases the logger whether or not the command failed.
// Cobra skips post-run hooks when RunE errors, so teardown cannot live there.
func (a *app) execute(ctx context.Context, root *cobra.Command) error {
	defer a.teardown()
	return root.ExecuteContext(ctx)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "primus",
		Short: "Find manual tasks and plan their automation",
		Long: `primus scans files, directories, web pages and free text for descriptions of
manual, repetitive work ("Manual process: ...", "Human intervention: ...") and
helps automate it with LLM agents.

Configuration is read from ~/.primus-os/config.yaml, a .env file and the
environment (OPENAI_API_KEY, ANTHROPIC_API_KEY, PRIMUS_*).`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.primus-os/config.yaml)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format (console, json)")

	root.AddCommand(
		newScanCmd(a),
		newAnalyzeCmd(a),
		newGenerateCmd(a),
		newOptimizeCmd(a),
		newRecommendCmd(a),
		newInitCmd(a),
		newConfigCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads .env, settings, the logger and the secret scrubber.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[skipSetup] == "true" {
		return nil
	}

	if a.envFile != "" {
		if _, err := config.LoadEnvFile(a.envFile); err != nil {
			return err
		}
	}

	settings, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		settings.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		settings.Logging.Format = a.logFormat
	}
	a.settings = settings

	logger, err := a.buildLogger()
	if err != nil {
		return err
	}
	a.logger = logger

	scrubber, err := secrets.FromSettings(settings.Secrets)
	if err != nil {
		return fmt.Errorf("failed to create secret scrubber: %w", err)
	}
	a.scrubber = scrubber

	a.logger.Debug(cmd.Context(), "settings loaded",
		zap.String("command", cmd.CommandPath()),
		zap.String("provider", settings.LLM.Provider),
		zap.Bool("configured", settings.IsConfigured()))
	return nil
}

func (a *app) buildLogger() (*logging.Logger, error) {
	cfg := logging.NewDefaultConfig()
	level, err := logging.LevelFromString(a.settings.Logging.Level)
	if err != nil {
		return nil, err
	}
	cfg.Level = level
	cfg.Format = a.settings.Logging.Format

	if file := a.settings.LogFilePath(); file != "" {
		if err := config.EnsureConfigDir(a.settings); err != nil {
			return nil, err
		}
		cfg.Output.File = file
	}

	logger, err := logging.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

func (a *app) teardown() {
	if a.logger != nil {
		_ = a.logger.Close()
	}
}

// client returns the configured LLM client, wrapped in a response cache.
func (a *app) client() (agents.Client, error) {
	if !a.settings.IsConfigured() {
		return nil, config.ErrNotConfigured
	}
	c, err := a.newClient(a.settings, a.scrubber, a.logger)
	if err != nil {
		return nil, err
	}
	cached, err := agents.NewCachingClient(c, 0)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

func (a *app) printer(cmd *cobra.Command) *render.Printer {
	return render.NewPrinter(cmd.OutOrStdout())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Annotations: map[string]string{skipSetup: "true"},
		Args:        cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "primus by Fyrsmith Labs\n")
			fmt.Fprintf(out, "Version:    %s\n", version)
			fmt.Fprintf(out, "Commit:     %s\n", gitCommit)
			fmt.Fprintf(out, "Build Date: %s\n", buildDate)
		},
	}
}

// errNoInput is returned when a command needs text and got none.
var errNoInput = errors.New("no input given")
