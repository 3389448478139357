package main

import (
	"context"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/primus/internal/agents"
	"github.com/fyrsmithlabs/primus/internal/extraction"
	"github.com/fyrsmithlabs/primus/internal/scanner"
	"github.com/fyrsmithlabs/primus/internal/tasks"
)

type scanOptions struct {
	json     bool
	verbose  bool
	analyze  bool
	watch    bool
	debounce time.Duration
}

func newScanCmd(a *app) *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan <target>...",
		Short: "Scan files, directories, URLs or text for manual tasks",
		Long: `Scan one or more targets for descriptions of manual work.

A target is a file or directory path, an http(s) URL, or literal text.
Directories are walked recursively; .md and .txt files are read, .pdf and
.doc files are listed for review, and .gitignore / .primusignore patterns
are honoured.

Examples:
  # Scan a directory
  primus scan ./runbooks

  # Scan text and a web page, print JSON
  primus scan "Manual process: monthly invoice export" https://example.com/ops --json

  # Analyze every task with the configured LLM
  primus scan ./runbooks --analyze

  # Rescan whenever files change
  primus scan ./runbooks --watch`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScan(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print results as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "show the rule and source of each task")
	cmd.Flags().BoolVar(&opts.analyze, "analyze", false, "analyze each task with the LLM task analyzer")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "rescan when files under path targets change")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 500*time.Millisecond, "quiet period before a rescan in watch mode")
	return cmd
}

// scanOutput is the --json document.
type scanOutput struct {
	*tasks.Result
	Analyses []*agents.Report `json:"analyses,omitempty"`
}

func (a *app) runScan(cmd *cobra.Command, targets []string, opts scanOptions) error {
	extractor, err := extraction.FromSettings(a.settings.Extraction)
	if err != nil {
		return err
	}
	reader := scanner.NewReader(scanner.OptionsFromSettings(a.settings), a.logger)
	svc := tasks.NewScanner(reader, extractor, a.logger)

	var analyzer *agents.TaskAnalyzer
	if opts.analyze {
		client, err := a.client()
		if err != nil {
			return err
		}
		analyzer = agents.NewTaskAnalyzer(client)
	}

	once := func(ctx context.Context) error {
		ctx, result := svc.ScanWithContext(ctx, targets...)
		return a.printScan(ctx, cmd, result, analyzer, opts)
	}

	if !opts.watch {
		return once(cmd.Context())
	}

	ctx := cmd.Context()
	return reader.Watch(ctx, targets, opts.debounce, func() {
		if err := once(ctx); err != nil {
			a.logger.Error(ctx, "rescan failed", zap.Error(err))
		}
	})
}

func (a *app) printScan(ctx context.Context, cmd *cobra.Command, result *tasks.Result, analyzer *agents.TaskAnalyzer, opts scanOptions) error {
	out := scanOutput{Result: result}

	var analyzeErr error
	if analyzer != nil && !result.Empty() {
		out.Analyses, analyzeErr = a.analyzeAll(ctx, cmd, analyzer, result.Tasks, !opts.json)
	}

	if opts.json {
		if err := writeJSON(cmd, out); err != nil {
			return err
		}
		return analyzeErr
	}

	p := a.printer(cmd)
	p.ScanResult(result, opts.verbose)
	for i, report := range out.Analyses {
		if report == nil {
			continue
		}
		p.Plain("")
		p.Report(fmt.Sprintf("Analysis %d/%d", i+1, len(out.Analyses)), report)
	}
	if analyzeErr != nil {
		p.Plain("")
		p.Warning(analyzeErr.Error())
	}
	return analyzeErr
}

// analyzeAll runs the task analyzer over every task with a progress bar on
// stderr when output is interactive.
func (a *app) analyzeAll(ctx context.Context, cmd *cobra.Command, analyzer *agents.TaskAnalyzer, found []string, showProgress bool) ([]*agents.Report, error) {
	var onDone func()
	if showProgress {
		bar := progressbar.NewOptions(len(found),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("Analyzing tasks"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()
		onDone = func() { _ = bar.Add(1) }
	}

	reports, err := analyzer.AnalyzeAll(ctx, found, a.settings.Runtime.MaxConcurrentTasks, onDone)
	if err != nil {
		return reports, fmt.Errorf("some tasks could not be analyzed: %w", err)
	}
	return reports, nil
}
