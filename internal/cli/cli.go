package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aliqulovx561-ai/writing-set-two/internal/config"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	envFile    string
	botToken   string
	chatID     string
	logLevel   string
	maxRetries int
	timeout    time.Duration
	dryRun     bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "submission-relay",
		Short: "Relay writing-test submissions to a Telegram chat",
		Long: `Receives test submissions over HTTP and forwards each message to the
examiner's Telegram chat through the Bot API.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.envFile, "env-file", "", "Load environment from this file (default: .env if present)")
	flags.StringVar(&opts.botToken, "bot-token", "", "Telegram bot token (or env: BOT_TOKEN)")
	flags.StringVar(&opts.chatID, "chat-id", "", "Telegram chat ID (or env: CHAT_ID)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (or env: LOG_LEVEL)")
	flags.IntVar(&opts.maxRetries, "max-retries", 0, "Extra Telegram attempts per message part (or env: TELEGRAM_MAX_RETRIES)")
	flags.DurationVar(&opts.timeout, "timeout", config.DefaultTelegramTimeout, "Telegram HTTP timeout (or env: TELEGRAM_TIMEOUT)")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Print messages instead of sending them (or env: RELAY_DRY_RUN)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newSendCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))

	return cmd
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}

// loadConfig reads the environment and applies the flags that were set.
// Subcommand overrides run after the persistent ones.
func (o *rootOptions) loadConfig(flags *pflag.FlagSet, overrides ...func(*config.Config)) (config.Config, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return config.Config{}, err
	}

	o.apply(flags, &cfg)
	for _, override := range overrides {
		override(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (o *rootOptions) apply(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("bot-token") {
		cfg.BotToken = o.botToken
	}
	if flags.Changed("chat-id") {
		cfg.ChatID = o.chatID
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("max-retries") {
		cfg.MaxRetries = o.maxRetries
	}
	if flags.Changed("timeout") {
		cfg.TelegramTimeout = o.timeout
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = o.dryRun
	}
}
