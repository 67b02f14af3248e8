package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aliqulovx561-ai/writing-set-two/internal/telegram"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(name string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(name)))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", name)
	}
	return format, nil
}

// OutputResult contains data to be output
type OutputResult struct {
	Command   string         `json:"command"`
	CheckedAt time.Time      `json:"checked_at"`
	ChatID    string         `json:"chat_id,omitempty"`
	MessageID int            `json:"message_id,omitempty"`
	Parts     int            `json:"parts,omitempty"`
	Attempts  int            `json:"attempts,omitempty"`
	PlainText bool           `json:"plain_text,omitempty"`
	DryRun    bool           `json:"dry_run,omitempty"`
	Bot       *telegram.User `json:"bot,omitempty"`
	// Result is the Bot API result for the first sent part.
	Result json.RawMessage `json:"result,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult) error {
	switch result.Command {
	case "check":
		if result.Bot == nil {
			return fmt.Errorf("check result has no bot")
		}
		name := result.Bot.FirstName
		if result.Bot.Username != "" {
			name = "@" + result.Bot.Username
		}
		fmt.Fprintf(w, "Bot %s (id %d) is ready to send to chat %s\n", name, result.Bot.ID, result.ChatID)

	case "send":
		if result.DryRun {
			fmt.Fprintf(w, "Dry run: %d %s printed, nothing sent\n", result.Parts, pluralize(result.Parts, "part"))
			return nil
		}
		fmt.Fprintf(w, "Sent message %d to chat %s (%d %s, %d %s)\n",
			result.MessageID, result.ChatID,
			result.Parts, pluralize(result.Parts, "part"),
			result.Attempts, pluralize(result.Attempts, "attempt"))
		if result.PlainText {
			fmt.Fprintln(w, "Telegram rejected the HTML markup; sent as plain text")
		}

	default:
		return fmt.Errorf("unknown command result: %s", result.Command)
	}
	return nil
}

func pluralize(count int, noun string) string {
	if count == 1 {
		return noun
	}
	return noun + "s"
}
