package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"showrunner/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigPathCommand())

	return configCmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Validate and summarize the active configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config file:  %s\n", ctx.configPath)
			fmt.Fprintf(out, "Show:         %s\n", cfg.Show.Name)
			fmt.Fprintf(out, "Run at:       %s\n", cfg.Workflow.RunAt)
			fmt.Fprintf(out, "Feeds:        %d source(s)\n", len(cfg.Feeds.Sources))
			fmt.Fprintf(out, "Data dir:     %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "Output dir:   %s\n", cfg.Paths.OutputDir)
			if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
				fmt.Fprintln(out, "Alerts:       disabled (no ntfy topic)")
			} else {
				fmt.Fprintf(out, "Alerts:       %s\n", cfg.Notifications.NtfyTopic)
			}
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}
			if err := config.WriteSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sample configuration written to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "output", "o", "", "Destination path for the sample config")
	return cmd
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the default configuration file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			defaultPath, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), defaultPath)
			return nil
		},
	}
}
