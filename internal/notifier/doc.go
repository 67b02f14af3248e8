// Package notifier delivers submission messages to the examiner chat.
//
// TelegramNotifier wraps the Telegram client with the delivery policy: long texts are
// split into several messages, HTML that Telegram cannot parse is resent as plain text,
// and failed sends can be retried with exponential backoff when retries are enabled.
// DryRunNotifier prints what would be sent instead of calling Telegram.
package notifier
