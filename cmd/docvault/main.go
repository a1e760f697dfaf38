// Package main implements the docvault MCP server and its maintenance
// commands.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/taigrr/docvault/internal/config"
)

func main() {
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:   "docvault",
		Short: "Per-project document vaults over MCP",
		Long: `docvault is a Model Context Protocol (MCP) server that keeps
per-project vaults of markdown, PDF and image documents. Every
change goes through the vault engine, which rescans the vault
afterwards so the document index never drifts from storage.`,
		Example: `docvault --base-dir ~/docvaults
docvault tree 42
docvault import 42 ~/Downloads/report.pdf --folder /Inbox`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd.Context(), v, configFile(cmd))
			if err != nil {
				return err
			}
			defer app.Close()
			return app.serve(cmd.Context())
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default "+config.DefaultConfigFile()+")")
	flags.String("base-dir", "", "directory holding one vault per project")
	flags.String("mode", "", "storage mode: filesystem or legacy")
	flags.String("database", "", "sqlite database used in legacy mode")
	flags.String("locale", "", "language of user-facing messages (en, zh)")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (json, console)")
	flags.String("log-output", "", "log destination: stderr, stdout or a file path")
	bindFlags(v, cmd)

	cmd.AddCommand(newTreeCommand(v), newImportCommand(v))

	if err := fang.Execute(
		context.Background(),
		cmd,
		fang.WithVersion(version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}

var flagKeys = map[string]string{
	"base-dir":     "base_dir",
	"mode":         "mode",
	"database":     "database",
	"locale":       "locale",
	"metrics-addr": "metrics_addr",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"log-output":   "log.output",
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	for flag, key := range flagKeys {
		_ = v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag))
	}
}

func configFile(cmd *cobra.Command) string {
	if f := cmd.Flag("config"); f != nil {
		return f.Value.String()
	}
	return ""
}
