package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/primus/internal/extraction"
)

func newRecommendCmd(a *app) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "recommend [file]",
		Short: "Recommend automation approaches for a workflow description",
		Long: `Match a workflow description against keyword rules (email, data entry,
reports, approvals) and print automation recommendations. No LLM is used.

Examples:
  primus recommend docs/month-end.md
  primus recommend --text "Managers approve expense reports by email"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var workflows extraction.WorkflowAnalyzer

			var recs []string
			switch {
			case len(args) == 1:
				var err error
				if recs, err = workflows.RecommendFile(args[0]); err != nil {
					return err
				}
			case strings.TrimSpace(text) != "":
				recs = workflows.Recommend(text)
			default:
				return errNoInput
			}

			a.printer(cmd).Recommendations(recs)
			return nil
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "workflow description to analyze instead of a file")
	return cmd
}
