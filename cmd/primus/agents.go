package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/primus/internal/agents"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze <task>",
		Short: "Analyze a manual task and recommend how to automate it",
		Long: `Send a task description to the task analyzer agent.

The reply covers complexity, time savings, suggested technologies and
implementation steps. Secrets in the description are redacted before it
leaves the machine.

Examples:
  primus analyze "Copy order totals from email into the finance sheet"
  primus analyze "Weekly KPI report" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			report, err := agents.NewTaskAnalyzer(client).Analyze(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, report)
			}
			a.printer(cmd).Report("Task analysis", report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func newGenerateCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "generate <task>",
		Short: "Generate Python code that automates a manual task",
		Long: `Ask the automation builder agent for a script that automates the task.

Examples:
  primus generate "Rename scanned invoices by vendor and date"
  primus generate "Rename scanned invoices" --output automations/rename.py`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			code, err := agents.NewAutomationBuilder(client).Generate(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if output == "" {
				a.printer(cmd).Plain(code)
				return nil
			}
			if err := os.WriteFile(output, []byte(code+"\n"), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			a.printer(cmd).Success("automation written to " + output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the generated code to this file")
	return cmd
}

func newOptimizeCmd(a *app) *cobra.Command {
	var (
		file   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "optimize [step]...",
		Short: "Suggest optimizations for a multi-step workflow",
		Long: `Send workflow steps to the workflow optimizer agent.

Steps come from the arguments, or from --file with one step per line.

Examples:
  primus optimize "Download CSV" "Clean columns" "Upload to CRM"
  primus optimize --file onboarding-steps.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := args
			if file != "" {
				fromFile, err := readLines(file)
				if err != nil {
					return err
				}
				steps = append(steps, fromFile...)
			}
			if len(steps) == 0 {
				return fmt.Errorf("%w: pass workflow steps as arguments or with --file", errNoInput)
			}

			client, err := a.client()
			if err != nil {
				return err
			}
			report, err := agents.NewWorkflowOptimizer(client).Optimize(cmd.Context(), steps)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, report)
			}
			a.printer(cmd).Report("Workflow optimization", report)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read workflow steps from a file, one per line")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

// readLines returns the non-blank lines of a file.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
