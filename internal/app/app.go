// Package app wires configuration into the logger, Telegram client, notifier
// and relay. Every entry point (CLI, Lambda, Vercel) builds through it.
package app

import (
	"fmt"
	"io"

	"github.com/aliqulovx561-ai/writing-set-two/internal/config"
	"github.com/aliqulovx561-ai/writing-set-two/internal/logger"
	"github.com/aliqulovx561-ai/writing-set-two/internal/notifier"
	"github.com/aliqulovx561-ai/writing-set-two/internal/relay"
	"github.com/aliqulovx561-ai/writing-set-two/internal/telegram"
)

// App is the wired notifier stack.
type App struct {
	Config  config.Config
	Log     *logger.Logger
	Metrics *logger.Metrics

	// Client and Notifier stay nil when credentials are missing outside
	// dry-run. The relay answers 500 before touching either.
	Client   *telegram.Client
	Notifier notifier.Notifier

	closer io.Closer
}

// Build creates the stack for cfg. Logs go to logOut (and LOG_FILE when set);
// dry-run output goes to out.
func Build(cfg config.Config, out, logOut io.Writer) (*App, error) {
	a := &App{Config: cfg, Metrics: logger.DefaultMetrics(), closer: nopCloser{}}

	level := logger.ParseLevel(cfg.LogLevel)
	if cfg.LogFile != "" {
		log, closer, err := logger.NewRotating(level, logger.RotateOptions{
			Filename:   cfg.LogFile,
			MaxSizeMB:  cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAgeDays: cfg.LogMaxAgeDays,
			Console:    logOut,
		})
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		a.Log, a.closer = log, closer
	} else {
		a.Log = logger.New(level, logOut)
	}
	logger.SetDefault(a.Log)

	if cfg.HasCredentials() {
		client, err := telegram.NewClient(cfg.BotToken, cfg.ChatID,
			telegram.WithBaseURL(cfg.TelegramAPIURL),
			telegram.WithTimeout(cfg.TelegramTimeout),
		)
		if err != nil {
			a.closer.Close() // nolint:errcheck
			return nil, fmt.Errorf("creating telegram client: %w", err)
		}
		a.Client = client
	}

	switch {
	case cfg.DryRun:
		a.Notifier = notifier.NewDryRunNotifier(out)
	case a.Client != nil:
		a.Notifier = notifier.NewTelegramNotifier(a.Client, notifier.RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			MaxElapsed: cfg.RetryMaxElapsed,
		}, a.Log)
	default:
		a.Log.Warn("Missing configuration: BOT_TOKEN or CHAT_ID; submissions will be rejected", nil)
	}

	return a, nil
}

// Relay returns the submission handler backed by this stack.
func (a *App) Relay() *relay.Relay {
	return relay.New(a.Config, a.Notifier, a.Log, a.Metrics)
}

// Close flushes and closes the log file, if any.
func (a *App) Close() error {
	return a.closer.Close()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
