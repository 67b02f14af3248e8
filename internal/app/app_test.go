package app

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aliqulovx561-ai/writing-set-two/internal/config"
	"github.com/aliqulovx561-ai/writing-set-two/internal/notifier"
)

func baseConfig() config.Config {
	return config.Config{
		Addr:                config.DefaultAddr,
		Path:                config.DefaultPath,
		AcknowledgeOnIntake: true,
		TelegramAPIURL:      config.DefaultTelegramAPIURL,
		TelegramTimeout:     config.DefaultTelegramTimeout,
		LogLevel:            "info",
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(*config.Config)
		wantClient   bool
		wantNotifier string
	}{
		{
			name: "telegram",
			mutate: func(c *config.Config) {
				c.BotToken, c.ChatID = "test-token", "12345"
			},
			wantClient:   true,
			wantNotifier: "telegram",
		},
		{
			name: "dry run without credentials",
			mutate: func(c *config.Config) {
				c.DryRun = true
			},
			wantNotifier: "dry-run",
		},
		{
			name:   "missing credentials",
			mutate: func(c *config.Config) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(&cfg)

			var out, logs bytes.Buffer
			a, err := Build(cfg, &out, &logs)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			defer a.Close() // nolint:errcheck

			if (a.Client != nil) != tt.wantClient {
				t.Errorf("Client = %v, want present %v", a.Client, tt.wantClient)
			}

			var got string
			switch a.Notifier.(type) {
			case *notifier.TelegramNotifier:
				got = "telegram"
			case *notifier.DryRunNotifier:
				got = "dry-run"
			}
			if got != tt.wantNotifier {
				t.Errorf("Notifier = %q, want %q", got, tt.wantNotifier)
			}

			if tt.wantNotifier == "" && !strings.Contains(logs.String(), "Missing configuration") {
				t.Errorf("logs = %s, want a missing configuration warning", logs.String())
			}
		})
	}
}

func TestBuild_RelayWithoutCredentials(t *testing.T) {
	var out, logs bytes.Buffer
	a, err := Build(baseConfig(), &out, &logs)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	rec := httptest.NewRecorder()
	a.Relay().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/telegram", strings.NewReader(`{"message":"hi"}`)))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 without credentials", rec.Code)
	}
}

func TestBuild_LogFile(t *testing.T) {
	cfg := baseConfig()
	cfg.DryRun = true
	cfg.LogFile = filepath.Join(t.TempDir(), "relay.log")
	cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays = 1, 1, 1

	var out, logs bytes.Buffer
	a, err := Build(cfg, &out, &logs)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	a.Log.Info("submission recorded", nil)
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "submission recorded") {
		t.Errorf("log file = %q, want the logged line", data)
	}
	if !strings.Contains(logs.String(), "submission recorded") {
		t.Errorf("console = %q, want the logged line", logs.String())
	}
}
