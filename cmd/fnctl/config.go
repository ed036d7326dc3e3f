// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"fnctl-cli/internal/config"
	"fnctl-cli/internal/issue"
)

// newConfigCommand creates the `fnctl config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage fnctl configuration",
		Long: `Manage fnctl configuration.

Configuration is stored in:
  - Linux: ~/.config/fnctl/config.cue
  - macOS: ~/Library/Application Support/fnctl/config.cue
  - Windows: %APPDATA%\fnctl\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), app, args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{})
			if err != nil {
				return err
			}

			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{})
	if err != nil {
		if entry := issue.Get(issue.ConfigLoadFailedId); entry != nil {
			rendered, _ := entry.Render("dark")
			fmt.Fprint(app.stderr, rendered)
		}
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(app.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(app.stdout)

	cfgDir, dirErr := config.ConfigDir()
	if dirErr == nil && fileExistsCheck(cfgDir+"/config.cue") {
		fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("Config file"), cfgDir+"/config.cue")
	} else {
		fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(app.stdout)

	project := cfg.DefaultProject
	if project == "" {
		project = "(none configured)"
	}
	nodeBinary := cfg.NodeBinary.String()
	if nodeBinary == "" {
		nodeBinary = "(resolved from PATH)"
	}
	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("default_project"), valueStyle.Render(project))
	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("node_binary"), valueStyle.Render(nodeBinary))

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("discovery"))
	fmt.Fprintf(app.stdout, "  liveness_window_secs: %s\n", valueStyle.Render(strconv.Itoa(cfg.Discovery.LivenessWindowSecs)))
	fmt.Fprintf(app.stdout, "  kill_fallback_secs: %s\n", valueStyle.Render(strconv.Itoa(cfg.Discovery.KillFallbackSecs)))
	fmt.Fprintf(app.stdout, "  retry_interval_msecs: %s\n", valueStyle.Render(strconv.Itoa(cfg.Discovery.RetryIntervalMsecs)))

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("port_range"))
	fmt.Fprintf(app.stdout, "  min: %s\n", valueStyle.Render(strconv.Itoa(cfg.PortRange.Min)))
	fmt.Fprintf(app.stdout, "  max: %s\n", valueStyle.Render(strconv.Itoa(cfg.PortRange.Max)))

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(app.stdout, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(app.stdout, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

func initConfig(app *App) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	if err = config.CreateDefaultConfig(); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	fmt.Fprintf(app.stdout, "%s Created default configuration at %s/config.cue\n", SuccessStyle.Render("✓"), cfgDir)
	return nil
}

func showConfigPath(app *App) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(app.stdout, "Config file: %s/config.cue\n", cfgDir)
	return nil
}

func setConfigValue(ctx context.Context, app *App, key, value string) error {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{})
	if err != nil {
		return err
	}

	switch key {
	case "default_project":
		cfg.DefaultProject = value

	case "node_binary":
		cfg.NodeBinary = config.NodeBinaryPath(value)

	case "discovery.liveness_window_secs":
		secs, parseErr := strconv.Atoi(value)
		if parseErr != nil {
			return fmt.Errorf("invalid discovery.liveness_window_secs: %w", parseErr)
		}
		cfg.Discovery.LivenessWindowSecs = secs

	case "discovery.kill_fallback_secs":
		secs, parseErr := strconv.Atoi(value)
		if parseErr != nil {
			return fmt.Errorf("invalid discovery.kill_fallback_secs: %w", parseErr)
		}
		cfg.Discovery.KillFallbackSecs = secs

	case "discovery.retry_interval_msecs":
		msecs, parseErr := strconv.Atoi(value)
		if parseErr != nil {
			return fmt.Errorf("invalid discovery.retry_interval_msecs: %w", parseErr)
		}
		cfg.Discovery.RetryIntervalMsecs = msecs

	case "port_range.min":
		minPort, parseErr := strconv.Atoi(value)
		if parseErr != nil {
			return fmt.Errorf("invalid port_range.min: %w", parseErr)
		}
		cfg.PortRange.Min = minPort

	case "port_range.max":
		maxPort, parseErr := strconv.Atoi(value)
		if parseErr != nil {
			return fmt.Errorf("invalid port_range.max: %w", parseErr)
		}
		cfg.PortRange.Max = maxPort

	case "ui.color_scheme":
		cfg.UI.ColorScheme = config.ColorScheme(value)

	case "ui.verbose":
		cfg.UI.Verbose = value == "true" || value == "1"

	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	// Re-validate before persisting so a bad `set` never writes a config
	// the next load would reject.
	if valid, errs := cfg.IsValid(); !valid {
		return fmt.Errorf("invalid value for %s: %w", key, errs[0])
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(app.stdout, "%s Set %s = %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(key), value)
	return nil
}

// fileExistsCheck reports whether a path exists and is a regular file.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
