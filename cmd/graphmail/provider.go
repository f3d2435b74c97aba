package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/shineum/graphmail-lite/internal/config"
	"github.com/shineum/graphmail-lite/internal/provider"
	"github.com/shineum/graphmail-lite/internal/provider/ses"
	"github.com/shineum/graphmail-lite/internal/provider/stdout"
)

// selectProvider chooses the outbound backend. A non-empty override wins over
// cfg.Provider; with neither set, Graph is used when configured, then SES,
// then the stdout dry run.
func selectProvider(ctx context.Context, cfg *config.Config, override string, logger *slog.Logger, out io.Writer) (provider.Provider, error) {
	name := cfg.Provider
	if override != "" {
		name = override
	}

	switch name {
	case "graph", "msgraph":
		logger.Info("using Microsoft Graph provider", "mailbox", cfg.Graph.Mailbox)
		return newGraphProvider(cfg, logger)

	case "ses":
		if !cfg.SESConfigured() {
			return nil, fmt.Errorf("SES provider selected but SES_REGION and SES_SENDER are required")
		}
		logger.Info("using AWS SES provider", "region", cfg.SES.Region, "sender", cfg.SES.Sender)
		return newSESProvider(ctx, cfg)

	case "stdout":
		logger.Info("using stdout provider")
		return stdout.NewWithWriter(out), nil

	case "":
		if cfg.GraphConfigured() {
			logger.Info("using Microsoft Graph provider (auto-detected)", "mailbox", cfg.Graph.Mailbox)
			return newGraphProvider(cfg, logger)
		}
		if cfg.SESConfigured() {
			logger.Info("using AWS SES provider (auto-detected)", "region", cfg.SES.Region)
			return newSESProvider(ctx, cfg)
		}
		logger.Info("no provider configured, using stdout provider")
		return stdout.NewWithWriter(out), nil

	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

// newGraphProvider requires a mailbox so a send without --from still has a
// sender path.
func newGraphProvider(cfg *config.Config, logger *slog.Logger) (provider.Provider, error) {
	client, err := newGraphClient(cfg, logger, true)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func newSESProvider(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
	p, err := ses.New(ctx, ses.Config{
		Region:          cfg.SES.Region,
		AccessKeyID:     cfg.SES.AccessKeyID,
		SecretAccessKey: cfg.SES.SecretAccessKey,
		Sender:          cfg.SES.Sender,
		MaxAttempts:     cfg.SES.MaxAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create SES provider: %w", err)
	}
	return p, nil
}
