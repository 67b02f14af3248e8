// Package cli implements the command-line interface for submission-relay.
//
// The cli package provides the Cobra-based CLI: serve runs the relay as an
// HTTP server, send pushes one message through the same notifier stack the
// server uses, and check verifies the bot token against Telegram. Every
// command builds its configuration from the environment (and an optional
// .env file) and then applies any flags given explicitly on the command line.
package cli
