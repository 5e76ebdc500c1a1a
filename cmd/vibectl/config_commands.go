package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write the vibectl configuration",
	}
	cmd.AddCommand(newConfigShowCommand(ctx))
	cmd.AddCommand(newConfigSaveCommand(ctx))
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			token := "(none)"
			if cfg.Token != "" {
				token = "(set)"
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]string{
					"path": ctx.configPath, "server": cfg.Server, "token": token, "output": cfg.Output,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Key", "Value"},
				[][]string{
					{"path", ctx.configPath},
					{"server", cfg.Server},
					{"token", token},
					{"output", cfg.Output},
				},
				nil,
			))
			return nil
		},
	}
}

func newConfigSaveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Write the effective server, token and output to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := saveCLIConfig(ctx.configPath, cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", ctx.configPath)
			return nil
		},
	}
}
