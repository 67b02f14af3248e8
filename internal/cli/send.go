package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aliqulovx561-ai/writing-set-two/internal/app"
)

func newSendCmd(opts *rootOptions) *cobra.Command {
	var message, format string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one message through the relay's notifier",
		Long: `Sends a single message to the configured chat with the same splitting,
plain-text fallback and retry behavior the server uses. The message is
taken from --message or, when that flag is absent, read from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := ParseFormat(format)
			if err != nil {
				return err
			}

			text := message
			if !cmd.Flags().Changed("message") {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				text = string(data)
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("message is empty")
			}

			cfg, err := opts.loadConfig(cmd.Flags())
			if err != nil {
				return err
			}

			a, err := app.Build(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close() // nolint:errcheck

			if a.Notifier == nil {
				return errors.New("BOT_TOKEN and CHAT_ID are required (or use --dry-run)")
			}

			delivery, err := a.Notifier.Notify(cmd.Context(), text)
			if err != nil {
				return fmt.Errorf("sending message: %w", err)
			}

			return WriteOutput(cmd.OutOrStdout(), &OutputResult{
				Command:   "send",
				CheckedAt: time.Now().UTC(),
				ChatID:    cfg.ChatID,
				MessageID: delivery.MessageID,
				Parts:     delivery.Parts,
				Attempts:  delivery.Attempts,
				PlainText: delivery.PlainText,
				DryRun:    cfg.DryRun,
				Result:    delivery.Raw,
			}, outFormat)
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Message text (HTML); read from stdin when omitted")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")

	return cmd
}
