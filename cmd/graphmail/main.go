// Package main is the entry point for the graphmail command-line tool.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shineum/graphmail-lite/internal/config"
	"github.com/shineum/graphmail-lite/internal/graph"
)

// app carries state shared by all subcommands once the root command has
// loaded configuration.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
	stdout     io.Writer
	stderr     io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree around a.
func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "graphmail",
		Short: "Send, search and triage a Microsoft Graph mailbox",
		Long: `graphmail drives a single Microsoft 365 mailbox through the Graph API
using OAuth2 client credentials.

Configuration comes from environment variables, optionally layered over a
YAML file given with --config.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(a.configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			a.cfg = cfg
			a.logger = setupLogger(cfg.Logging.Level, a.stderr)
			return nil
		},
	}

	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to YAML configuration file (optional)")

	root.AddCommand(
		newTokenCmd(a),
		newSearchCmd(a),
		newReceiveCmd(a),
		newMarkReadCmd(a),
		newSendCmd(a),
		newClearBoxCmd(a),
	)
	return root
}

// loadConfig loads configuration from the specified path (YAML + env override)
// or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// parseLevel maps a configured level name to a slog level, defaulting to info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupLogger installs a JSON slog handler writing to w as the default
// logger and returns it. Stdout stays reserved for command output.
func setupLogger(level string, w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
	slog.SetDefault(logger)
	return logger
}

// graphSettingsMissing lists the environment variables that must still be set
// before a Graph client can authenticate. The mailbox is only checked when
// needMailbox is true.
func graphSettingsMissing(cfg *config.Config, needMailbox bool) []string {
	var missing []string
	if cfg.Graph.TenantID == "" && cfg.Graph.TokenURL == "" {
		missing = append(missing, "GRAPH_TENANT_ID")
	}
	if cfg.Graph.ClientID == "" {
		missing = append(missing, "GRAPH_CLIENT_ID")
	}
	if cfg.Graph.ClientSecret == "" {
		missing = append(missing, "GRAPH_CLIENT_SECRET")
	}
	if needMailbox && cfg.Graph.Mailbox == "" {
		missing = append(missing, "GRAPH_MAILBOX")
	}
	return missing
}

// newGraphClient builds a Graph client from configuration.
func newGraphClient(cfg *config.Config, logger *slog.Logger, needMailbox bool) (*graph.Client, error) {
	if missing := graphSettingsMissing(cfg, needMailbox); len(missing) > 0 {
		return nil, fmt.Errorf("graph is not configured: %s required", strings.Join(missing, ", "))
	}

	opts := []graph.Option{
		graph.WithLogger(logger),
		graph.WithRateLimit(cfg.Graph.RateLimit, 1),
	}
	if cfg.Graph.BaseURL != "" {
		opts = append(opts, graph.WithBaseURL(cfg.Graph.BaseURL))
	}

	client, err := graph.New(graph.Config{
		TokenURL:     cfg.Graph.TokenURL,
		ClientID:     cfg.Graph.ClientID,
		ClientSecret: cfg.Graph.ClientSecret,
		TenantID:     cfg.Graph.TenantID,
		ProxyURL:     cfg.Graph.ProxyURL,
		Mailbox:      cfg.Graph.Mailbox,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph client: %w", err)
	}
	return client, nil
}
