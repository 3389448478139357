package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/primus/internal/project"
	"github.com/fyrsmithlabs/primus/internal/render"
)

func newInitCmd(a *app) *cobra.Command {
	var (
		name      string
		structure string
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Scaffold an automation project",
		Long: `Create an automation project layout in dir (default: current directory).

The default layout holds README.md, tasks.yaml, automations/ and logs/.
A custom layout can be given as YAML where a mapping is a directory and a
string is file content. Existing files are never overwritten.

Examples:
  primus init invoices
  primus init . --name month-end --structure layout.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			var root *project.Node
			if structure != "" {
				var err error
				if root, err = project.LoadStructure(structure); err != nil {
					return err
				}
			}

			p, report, err := project.Init(dir, name, root)
			if err != nil {
				return err
			}

			out := a.printer(cmd)
			for _, path := range report.Created {
				out.KeyValue("created", path)
			}
			for _, path := range report.Skipped {
				out.KeyValue("kept", path)
			}
			out.Success(fmt.Sprintf("project %q ready in %s (%s created)", p.Name, p.Path,
				render.Plural(len(report.Created), "path")))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "project name (default: directory name)")
	cmd.Flags().StringVar(&structure, "structure", "", "YAML file describing a custom layout")
	return cmd
}
