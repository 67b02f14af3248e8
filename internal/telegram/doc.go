// Package telegram provides the Telegram Bot API client used to relay test submissions.
//
// The client sends HTML-formatted messages with sendMessage and checks credentials with
// getMe, using plain HTTP requests. Failures Telegram answers are returned as *APIError
// so callers can tell temporary errors from permanent ones.
//
// Authentication requires a bot token (from @BotFather) and chat ID.
package telegram
