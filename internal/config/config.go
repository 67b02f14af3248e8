// Package config builds the relay configuration once at process start.
//
// Values come from the environment, optionally seeded from a .env file. Missing
// Telegram credentials are not a load error: the relay reports them per request.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultAddr            = ":8080"
	DefaultPath            = "/api/telegram"
	DefaultTelegramAPIURL  = "https://api.telegram.org"
	DefaultTelegramTimeout = 10 * time.Second
	DefaultRetryMaxElapsed = 30 * time.Second
	DefaultEnvFile         = ".env"
)

// Config holds everything the relay needs at runtime
type Config struct {
	BotToken string
	ChatID   string

	Addr string
	Path string

	// AcknowledgeOnIntake reports success to the caller even when Telegram
	// delivery fails.
	AcknowledgeOnIntake bool
	DryRun              bool

	TelegramAPIURL  string
	TelegramTimeout time.Duration
	MaxRetries      int
	RetryMaxElapsed time.Duration

	LogLevel      string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

// Load reads the configuration from the environment. If envFile is set, it is
// loaded first and must exist; otherwise a .env in the working directory is
// loaded when present. Variables already set in the environment win.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	} else if _, err := os.Stat(DefaultEnvFile); err == nil {
		if err := godotenv.Load(DefaultEnvFile); err != nil {
			return Config{}, fmt.Errorf("loading env file %s: %w", DefaultEnvFile, err)
		}
	}

	v := newViper()

	ack, err := parseBool(v, "RELAY_ACK_ON_INTAKE")
	if err != nil {
		return Config{}, err
	}
	dryRun, err := parseBool(v, "RELAY_DRY_RUN")
	if err != nil {
		return Config{}, err
	}
	timeout, err := parseDuration(v, "TELEGRAM_TIMEOUT")
	if err != nil {
		return Config{}, err
	}
	maxRetries, err := parseInt(v, "TELEGRAM_MAX_RETRIES")
	if err != nil {
		return Config{}, err
	}
	retryMaxElapsed, err := parseDuration(v, "TELEGRAM_RETRY_MAX_ELAPSED")
	if err != nil {
		return Config{}, err
	}
	logMaxSize, err := parseInt(v, "LOG_MAX_SIZE_MB")
	if err != nil {
		return Config{}, err
	}
	logMaxBackups, err := parseInt(v, "LOG_MAX_BACKUPS")
	if err != nil {
		return Config{}, err
	}
	logMaxAge, err := parseInt(v, "LOG_MAX_AGE_DAYS")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		BotToken:            getString(v, "BOT_TOKEN"),
		ChatID:              getString(v, "CHAT_ID"),
		Addr:                getString(v, "RELAY_ADDR"),
		Path:                getString(v, "RELAY_PATH"),
		AcknowledgeOnIntake: ack,
		DryRun:              dryRun,
		TelegramAPIURL:      strings.TrimRight(getString(v, "TELEGRAM_API_URL"), "/"),
		TelegramTimeout:     timeout,
		MaxRetries:          maxRetries,
		RetryMaxElapsed:     retryMaxElapsed,
		LogLevel:            getString(v, "LOG_LEVEL"),
		LogFile:             getString(v, "LOG_FILE"),
		LogMaxSizeMB:        logMaxSize,
		LogMaxBackups:       logMaxBackups,
		LogMaxAgeDays:       logMaxAge,
	}

	return cfg, nil
}

// HasCredentials reports whether both the bot token and the chat ID are set.
func (c Config) HasCredentials() bool {
	return c.BotToken != "" && c.ChatID != ""
}

// Validate checks the non-credential settings.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("RELAY_ADDR is required")
	}
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("RELAY_PATH must start with /: got %q", c.Path)
	}
	if c.TelegramTimeout <= 0 {
		return fmt.Errorf("TELEGRAM_TIMEOUT must be > 0: got %s", c.TelegramTimeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("TELEGRAM_MAX_RETRIES must be >= 0: got %d", c.MaxRetries)
	}
	if c.MaxRetries > 0 && c.RetryMaxElapsed <= 0 {
		return fmt.Errorf("TELEGRAM_RETRY_MAX_ELAPSED must be > 0 when retries are enabled: got %s", c.RetryMaxElapsed)
	}
	if !strings.HasPrefix(c.TelegramAPIURL, "http://") && !strings.HasPrefix(c.TelegramAPIURL, "https://") {
		return fmt.Errorf("TELEGRAM_API_URL must be an http(s) URL: got %q", c.TelegramAPIURL)
	}
	return nil
}

// newViper returns an environment-backed viper with every default registered.
// Empty variables count as unset.
func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("RELAY_ADDR", DefaultAddr)
	v.SetDefault("RELAY_PATH", DefaultPath)
	v.SetDefault("RELAY_ACK_ON_INTAKE", "true")
	v.SetDefault("RELAY_DRY_RUN", "false")
	v.SetDefault("TELEGRAM_API_URL", DefaultTelegramAPIURL)
	v.SetDefault("TELEGRAM_TIMEOUT", DefaultTelegramTimeout.String())
	v.SetDefault("TELEGRAM_MAX_RETRIES", "0")
	v.SetDefault("TELEGRAM_RETRY_MAX_ELAPSED", DefaultRetryMaxElapsed.String())
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_MAX_SIZE_MB", "10")
	v.SetDefault("LOG_MAX_BACKUPS", "5")
	v.SetDefault("LOG_MAX_AGE_DAYS", "14")

	return v
}

func getString(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}

// The parse helpers read the raw string so malformed values are errors rather
// than silently zero.

func parseInt(v *viper.Viper, key string) (int, error) {
	n, err := strconv.Atoi(getString(v, key))
	if err != nil {
		return 0, fmt.Errorf("%s must be integer: %w", key, err)
	}
	return n, nil
}

func parseBool(v *viper.Viper, key string) (bool, error) {
	b, err := strconv.ParseBool(getString(v, key))
	if err != nil {
		return false, fmt.Errorf("%s must be boolean: %w", key, err)
	}
	return b, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(getString(v, key))
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
