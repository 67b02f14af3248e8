// Package relay implements the submission endpoint.
//
// A Relay accepts a test submission over HTTP, forwards its pre-formatted message to
// the examiner chat through a notifier.Notifier, and answers the caller in JSON. With
// the acknowledge-on-intake policy (the default) a failed Telegram delivery is logged
// with the full message and the caller still receives a success response.
package relay
