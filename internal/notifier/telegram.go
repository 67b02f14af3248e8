package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/aliqulovx561-ai/writing-set-two/internal/logger"
	"github.com/aliqulovx561-ai/writing-set-two/internal/telegram"
)

const defaultInitialInterval = 500 * time.Millisecond

// Sender sends one message to the destination chat
type Sender interface {
	SendMessage(ctx context.Context, text, parseMode string) (*telegram.SentMessage, error)
}

// RetryPolicy bounds how hard a single part is pushed through.
// The zero value makes exactly one attempt.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxElapsed      time.Duration
}

// TelegramNotifier relays messages through the Telegram Bot API
type TelegramNotifier struct {
	sender Sender
	retry  RetryPolicy
	limit  int
	log    *logger.Logger
}

// NewTelegramNotifier creates a notifier sending through sender. A nil log uses
// the package-level logger.
func NewTelegramNotifier(sender Sender, retry RetryPolicy, log *logger.Logger) *TelegramNotifier {
	if log == nil {
		log = logger.Default()
	}
	return &TelegramNotifier{
		sender: sender,
		retry:  retry,
		limit:  telegram.MaxMessageLength,
		log:    log,
	}
}

// Notify sends text, split into as many messages as Telegram's length limit
// requires. Parts go out in order; the first failing part fails the delivery.
func (n *TelegramNotifier) Notify(ctx context.Context, text string) (*Delivery, error) {
	parts := telegram.SplitMessage(text, n.limit)
	delivery := &Delivery{Parts: len(parts)}

	for i, part := range parts {
		sent, attempts, plain, err := n.sendPart(ctx, part)
		delivery.Attempts += attempts
		if err != nil {
			if len(parts) > 1 {
				n.log.Warn("Multi-part delivery stopped", logger.Fields{
					"part":      i + 1,
					"parts":     len(parts),
					"delivered": i,
				})
				return nil, fmt.Errorf("part %d of %d: %w", i+1, len(parts), err)
			}
			return nil, err
		}

		if i == 0 {
			delivery.MessageID = sent.MessageID
			delivery.Raw = sent.Raw
		}
		if plain {
			delivery.PlainText = true
		}
	}

	return delivery, nil
}

// sendPart sends one part as HTML, falling back to plain text once if Telegram
// cannot parse the markup.
func (n *TelegramNotifier) sendPart(ctx context.Context, part string) (*telegram.SentMessage, int, bool, error) {
	attempts := 0

	sent, err := n.sendWithRetry(ctx, part, telegram.ParseModeHTML, &attempts)

	var apiErr *telegram.APIError
	if err != nil && errors.As(err, &apiErr) && apiErr.IsParseError() {
		n.log.Warn("Telegram rejected HTML, resending as plain text", logger.Fields{
			"description": apiErr.Description,
		})
		sent, err = n.sendWithRetry(ctx, telegram.PlainText(part), "", &attempts)
		return sent, attempts, true, err
	}

	return sent, attempts, false, err
}

func (n *TelegramNotifier) sendWithRetry(ctx context.Context, text, parseMode string, attempts *int) (*telegram.SentMessage, error) {
	var sent *telegram.SentMessage
	policy := n.newBackOff(ctx)

	operation := func() error {
		*attempts++
		var err error
		sent, err = n.sender.SendMessage(ctx, text, parseMode)
		if err == nil {
			return nil
		}
		if !retryable(ctx, err) {
			return backoff.Permanent(err)
		}
		var apiErr *telegram.APIError
		if errors.As(err, &apiErr) {
			policy.hint = apiErr.RetryAfter
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		n.log.Warn("Telegram send failed, retrying", logger.Fields{
			"attempt": *attempts,
			"wait":    wait.String(),
			"reason":  telegram.Description(err),
		})
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, err
	}
	return sent, nil
}

// retryAfterBackOff waits at least as long as Telegram's retry_after hint,
// and stops once the hinted wait would overrun maxElapsed.
type retryAfterBackOff struct {
	backoff.BackOff
	hint       time.Duration
	maxElapsed time.Duration
	start      time.Time
}

func (b *retryAfterBackOff) Reset() {
	b.BackOff.Reset()
	b.hint = 0
	b.start = time.Now()
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	if b.hint > next {
		next = b.hint
	}
	b.hint = 0
	if b.maxElapsed > 0 && time.Since(b.start)+next > b.maxElapsed {
		return backoff.Stop
	}
	return next
}

func (n *TelegramNotifier) newBackOff(ctx context.Context) *retryAfterBackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = defaultInitialInterval
	if n.retry.InitialInterval > 0 {
		exp.InitialInterval = n.retry.InitialInterval
	}
	exp.MaxElapsedTime = n.retry.MaxElapsed
	exp.Reset()

	retries := n.retry.MaxRetries
	if retries < 0 {
		retries = 0
	}

	return &retryAfterBackOff{
		BackOff:    backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx),
		maxElapsed: n.retry.MaxElapsed,
		start:      time.Now(),
	}
}

// retryable reports whether repeating a failed send may help: transport
// failures, rate limiting and Telegram-side errors qualify while the request
// context is still live.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *telegram.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return true
}
