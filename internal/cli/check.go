package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aliqulovx561-ai/writing-set-two/internal/app"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the bot token with Telegram's getMe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := ParseFormat(format)
			if err != nil {
				return err
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

			if a.Client == nil {
				return errors.New("BOT_TOKEN and CHAT_ID are required")
			}

			bot, err := a.Client.GetMe(cmd.Context())
			if err != nil {
				return fmt.Errorf("checking bot token: %w", err)
			}

			return WriteOutput(cmd.OutOrStdout(), &OutputResult{
				Command:   "check",
				CheckedAt: time.Now().UTC(),
				ChatID:    a.Client.ChatID(),
				Bot:       bot,
			}, outFormat)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")

	return cmd
}
