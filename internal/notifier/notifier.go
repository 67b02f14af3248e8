package notifier

import (
	"context"
	"encoding/json"
)

// Delivery describes a message that reached the destination chat
type Delivery struct {
	// MessageID is the Telegram id of the first part.
	MessageID int
	// Raw is the Bot API result object for the first part.
	Raw json.RawMessage
	// Parts is how many messages the text was split into.
	Parts int
	// Attempts counts every sendMessage call, retries included.
	Attempts int
	// PlainText is set when a part had to be resent without HTML formatting.
	PlainText bool
}

// Notifier defines the interface for relaying a submission message
type Notifier interface {
	// Notify delivers text to the examiner chat
	Notify(ctx context.Context, text string) (*Delivery, error)
}
