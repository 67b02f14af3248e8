package notifier

import (
	"context"
	"fmt"
	"io"

	"github.com/aliqulovx561-ai/writing-set-two/internal/telegram"
)

// DryRunNotifier prints what would be sent without contacting Telegram
type DryRunNotifier struct {
	out io.Writer
}

// NewDryRunNotifier creates a new dry-run notifier writing to out
func NewDryRunNotifier(out io.Writer) *DryRunNotifier {
	return &DryRunNotifier{out: out}
}

// Notify prints the messages that would be sent
func (n *DryRunNotifier) Notify(ctx context.Context, text string) (*Delivery, error) {
	parts := telegram.SplitMessage(text, telegram.MaxMessageLength)
	for i, part := range parts {
		fmt.Fprintf(n.out, "--- Message %d/%d ---\n", i+1, len(parts))
		fmt.Fprintln(n.out, part)
		fmt.Fprintf(n.out, "\n(Length: %d characters)\n\n", len([]rune(part)))
	}
	return &Delivery{Parts: len(parts)}, nil
}
