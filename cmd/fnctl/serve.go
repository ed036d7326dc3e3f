// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"fnctl-cli/pkg/types"
)

// newServeCommand creates the `fnctl serve` command: run the functions
// server locally under supervision until interrupted.
func newServeCommand(app *App) *cobra.Command {
	var (
		project   string
		port      int
		setValues []string
		envValues []string
	)

	serveCmd := &cobra.Command{
		Use:   "serve [source-dir]",
		Short: "Run the functions server locally",
		Long: `Run the functions server locally under supervision.

The server binds a loopback port (allocated from the configured port
range unless --port is given) and runs until interrupted. Shutdown is
graceful first, then forced if the process does not exit in time.

Examples:
  fnctl serve                    Serve the current directory
  fnctl serve --port 8080        Serve on a fixed port`,
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

			runtimeCfg, err := parseKeyValues(setValues)
			if err != nil {
				return err
			}
			env, err := parseEnvValues(envValues)
			if err != nil {
				return err
			}

			d, err := app.delegateFor(cfg, sourceDir, project)
			if err != nil {
				return err
			}

			handle, err := d.Serve(cmd.Context(), types.ListenPort(port), runtimeCfg, env)
			if err != nil {
				return newServiceError(err, classifyIssue(err),
					ErrorStyle.Render("Failed to start functions server")+"\n"+formatErrorForDisplay(err, verbose)+"\n")
			}

			fmt.Fprintln(app.stdout, SuccessStyle.Render("✓")+" serving functions on "+CmdStyle.Render("http://"+handle.Port().LoopbackAddr()))
			fmt.Fprintln(app.stdout, SubtitleStyle.Render("Press Ctrl+C to stop"))

			// fang forwards the interrupt as context cancellation.
			<-cmd.Context().Done()

			// Shutdown must not be cut short by the same cancellation that
			// triggered it.
			if err := handle.Terminate(context.WithoutCancel(cmd.Context())); err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, SubtitleStyle.Render("functions server stopped"))
			return nil
		},
	}

	serveCmd.Flags().StringVarP(&project, "project", "p", "", "deploy target project (defaults to the configured default project)")
	serveCmd.Flags().IntVar(&port, "port", 0, "loopback port to bind (0 allocates one from the configured range)")
	serveCmd.Flags().StringArrayVar(&setValues, "set", nil, "runtime configuration values forwarded to the functions process (key=value)")
	serveCmd.Flags().StringArrayVar(&envValues, "env", nil, "environment variables for the functions process (KEY=VALUE)")

	return serveCmd
}
