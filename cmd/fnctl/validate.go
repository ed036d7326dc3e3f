// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newValidateCommand creates the `fnctl validate` command. It enforces
// that a source directory is deployable: the functions SDK is installed
// and recent enough, and any exported manifest parses.
func newValidateCommand(app *App) *cobra.Command {
	var project string

	validateCmd := &cobra.Command{
		Use:   "validate [source-dir]",
		Short: "Validate a functions source directory",
		Long: `Validate that a functions source directory is deployable.

Validation is strict where discovery is lenient: a functions SDK below
the minimum supported version fails validation even though discovery
would fall back to legacy analysis for it.

Examples:
  fnctl validate                Validate the current directory
  fnctl validate ./my-fns       Validate a specific directory`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceDir := ""
			if len(args) > 0 {
				sourceDir = args[0]
			}

			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}

			d, err := app.delegateFor(cfg, sourceDir, project)
			if err != nil {
				return err
			}

			if err := d.Validate(cmd.Context()); err != nil {
				return newServiceError(err, classifyIssue(err),
					ErrorStyle.Render("Validation failed")+"\n"+formatErrorForDisplay(err, verbose)+"\n")
			}

			fmt.Fprintln(app.stdout, SuccessStyle.Render("✓")+" source is deployable ("+d.RuntimeID()+")")
			return nil
		},
	}

	validateCmd.Flags().StringVarP(&project, "project", "p", "", "deploy target project (defaults to the configured default project)")

	return validateCmd
}
