// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"fnctl-cli/internal/runtime"
)

// newDiscoverCommand creates the `fnctl discover` command. It runs the
// discovery strategy chain and prints the resulting build document as
// YAML on stdout.
func newDiscoverCommand(app *App) *cobra.Command {
	var (
		project   string
		setValues []string
		envValues []string
	)

	discoverCmd := &cobra.Command{
		Use:   "discover [source-dir]",
		Short: "Discover the functions a source directory declares",
		Long: `Discover the functions a source directory declares and print the
resulting build document as YAML.

Discovery prefers the exported functions.yaml manifest: when one is
present, no process runs. Without a manifest, the function server is
briefly started under supervision and asked for its declarations; it is
always shut down before this command returns. Sources on pre-manifest
SDK releases are analyzed statically instead.

Examples:
  fnctl discover                          Discover the current directory
  fnctl discover ./my-fns                 Discover a specific directory
  fnctl discover --set region=us-east1    Forward runtime configuration`,
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

			build, err := d.DiscoverBuild(cmd.Context(), runtimeCfg, env)
			if err != nil {
				return newServiceError(err, classifyIssue(err),
					ErrorStyle.Render("Discovery failed")+"\n"+formatErrorForDisplay(err, verbose)+"\n")
			}

			out, err := yaml.Marshal(build)
			if err != nil {
				return fmt.Errorf("failed to encode build document: %w", err)
			}
			fmt.Fprint(app.stdout, string(out))
			return nil
		},
	}

	discoverCmd.Flags().StringVarP(&project, "project", "p", "", "deploy target project (defaults to the configured default project)")
	discoverCmd.Flags().StringArrayVar(&setValues, "set", nil, "runtime configuration values forwarded to the functions process (key=value)")
	discoverCmd.Flags().StringArrayVar(&envValues, "env", nil, "environment variables for the functions process (KEY=VALUE)")

	return discoverCmd
}

// parseKeyValues parses repeated key=value flags into a runtime config.
func parseKeyValues(pairs []string) (runtime.Config, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	cfg := make(runtime.Config, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set value %q: expected key=value", pair)
		}
		cfg[key] = value
	}
	return cfg, nil
}

// parseEnvValues parses repeated KEY=VALUE flags into an env map.
func parseEnvValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --env value %q: expected KEY=VALUE", pair)
		}
		env[key] = value
	}
	return env, nil
}
