// Package cli implements the workpairs command line: serve runs the upload
// service, analyze processes a single file.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dd0wney/workpairs/pkg/config"
)

var version = "dev"

// SetVersion sets the version reported by --version. Empty is ignored.
func SetVersion(v string) {
	if v == "" {
		return
	}
	version = v
}

type rootOptions struct {
	envFiles []string
	noColor  bool
}

// newRootCmd builds the command tree. Each call returns independent flag
// state.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:     "workpairs",
		Version: version,
		Short:   "Find the pair of employees who worked together the longest",
		Long: `workpairs reads employee project assignments (EmpID, ProjectID, DateFrom, DateTo)
and reports, for every pair of employees, how many days they worked on the same
projects at the same time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", config.DefaultEnvFiles,
		"Env files loaded before reading the environment")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(newServeCmd(opts), newAnalyzeCmd(opts))
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
