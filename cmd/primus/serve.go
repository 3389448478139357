package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/primus/internal/agents"
	"github.com/fyrsmithlabs/primus/internal/config"
	"github.com/fyrsmithlabs/primus/internal/extraction"
	httpserver "github.com/fyrsmithlabs/primus/internal/http"
	"github.com/fyrsmithlabs/primus/internal/scanner"
	"github.com/fyrsmithlabs/primus/internal/tasks"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the scanner, extractor and agents over HTTP.

Endpoints:
  GET  /health
  GET  /metrics
  POST /api/v1/scan       {"targets": [...]}
  POST /api/v1/extract    {"text": "..."}
  POST /api/v1/recommend  {"content": "..."}
  POST /api/v1/analyze    {"task": "..."}   (needs an API key)
  POST /api/v1/scrub      {"text": "..."}

Examples:
  primus serve
  primus serve --host 0.0.0.0 --port 9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &httpserver.Config{Host: a.settings.Server.Host, Port: a.settings.Server.Port}
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			return a.serve(cmd, cfg)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (default from server.host)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from server.port)")
	return cmd
}

func (a *app) serve(cmd *cobra.Command, cfg *httpserver.Config) error {
	ctx := cmd.Context()
	extractor, err := extraction.FromSettings(a.settings.Extraction)
	if err != nil {
		return err
	}
	reader := scanner.NewReader(scanner.OptionsFromSettings(a.settings), a.logger)

	deps := httpserver.Deps{
		Scanner:   tasks.NewScanner(reader, extractor, a.logger),
		Extractor: extractor,
		Scrubber:  a.scrubber,
	}
	client, err := a.client()
	switch {
	case err == nil:
		deps.Analyzer = agents.NewTaskAnalyzer(client)
	case errors.Is(err, config.ErrNotConfigured):
		a.logger.Warn(ctx, "no LLM API key configured, /api/v1/analyze disabled")
	default:
		return err
	}

	server, err := httpserver.NewServer(deps, a.logger, cfg)
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()
	a.printer(cmd).Success("listening on http://" + server.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error(shutdownCtx, "http server shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
