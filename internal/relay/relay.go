package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/aliqulovx561-ai/writing-set-two/internal/config"
	"github.com/aliqulovx561-ai/writing-set-two/internal/logger"
	"github.com/aliqulovx561-ai/writing-set-two/internal/notifier"
	"github.com/aliqulovx561-ai/writing-set-two/internal/telegram"
)

// Relay is the http.Handler for the submission endpoint
type Relay struct {
	cfg      config.Config
	notifier notifier.Notifier
	log      *logger.Logger
	metrics  *logger.Metrics
	newID    func() string
	inflight atomic.Int64
}

// New creates a relay. cfg supplies the credentials check and the
// acknowledge-on-intake policy; n performs the delivery. Nil log and metrics
// fall back to the package-level defaults.
func New(cfg config.Config, n notifier.Notifier, log *logger.Logger, metrics *logger.Metrics) *Relay {
	if log == nil {
		log = logger.Default()
	}
	if metrics == nil {
		metrics = logger.DefaultMetrics()
	}
	return &Relay{
		cfg:      cfg,
		notifier: n,
		log:      log,
		metrics:  metrics,
		newID:    uuid.NewString,
	}
}

// DeliveryOutcome is the result of relaying one message downstream.
type DeliveryOutcome struct {
	Success   bool
	MessageID int
	Data      json.RawMessage
	Parts     int
	Error     string
}

// ServeHTTP answers preflight requests, rejects everything but POST and
// relays submissions.
func (rl *Relay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w.Header())

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
		rl.handleSubmission(w, r)
	default:
		writeJSON(w, rl.log, http.StatusMethodNotAllowed, errorResponse{Error: msgMethodNotAllowed})
	}
}

func (rl *Relay) handleSubmission(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("%v", rec)
			rl.metrics.IncrCounter("submissions.panic")
			rl.log.Error("Server error", logger.Fields{"stack": string(debug.Stack())}, err)
			writeJSON(w, rl.log, http.StatusInternalServerError, submitResponse{
				Success: false,
				Message: msgInternalError,
				Error:   err.Error(),
			})
		}
	}()

	if !rl.cfg.DryRun && !rl.cfg.HasCredentials() {
		rl.metrics.IncrCounter("submissions.config_error")
		rl.log.Error("Missing configuration: BOT_TOKEN or CHAT_ID", nil, nil)
		writeJSON(w, rl.log, http.StatusInternalServerError, submitResponse{
			Success: false,
			Message: msgConfigError,
		})
		return
	}

	sub, err := decodeSubmission(w, r)
	if err != nil {
		rl.metrics.IncrCounter("submissions.invalid")
		rl.log.Warn("Rejected submission", logger.Fields{"reason": err.Error()})
		if errors.Is(err, errMissingMessage) {
			writeJSON(w, rl.log, http.StatusBadRequest, submitResponse{Success: false, Message: msgMissingMessage})
			return
		}
		writeJSON(w, rl.log, http.StatusBadRequest, submitResponse{
			Success: false,
			Message: msgInvalidBody,
			Error:   err.Error(),
		})
		return
	}

	id := rl.newID()
	w.Header().Set("X-Submission-Id", id)

	fields := sub.logFields()
	fields["submission_id"] = id
	rl.metrics.IncrCounter("submissions.received")
	rl.log.Info("Received test submission", fields)

	// A student closing the tab must not cancel delivery of their test.
	outcome := rl.deliver(context.WithoutCancel(r.Context()), id, sub.Message)

	if outcome.Success {
		rl.metrics.IncrCounter("delivery.succeeded")
		rl.log.Info("Telegram submission successful", logger.Fields{
			"submission_id": id,
			"student":       sub.StudentName,
			"message_id":    outcome.MessageID,
			"parts":         outcome.Parts,
		})
		rl.log.Debug("Telegram result", logger.Fields{
			"submission_id": id,
			"result":        string(outcome.Data),
		})
		messageID := outcome.MessageID
		writeJSON(w, rl.log, http.StatusOK, submitResponse{
			Success:           true,
			Message:           msgDelivered,
			TelegramMessageID: &messageID,
		})
		return
	}

	rl.metrics.IncrCounter("delivery.failed")
	rl.log.Warn("Telegram failed, submission logged locally", logger.Fields{
		"submission_id":  id,
		"student":        sub.StudentName,
		"telegram_error": outcome.Error,
		"message":        sub.Message,
	})

	if !rl.cfg.AcknowledgeOnIntake {
		writeJSON(w, rl.log, http.StatusBadGateway, submitResponse{
			Success:       false,
			Message:       msgDeliveryFailed,
			TelegramError: outcome.Error,
		})
		return
	}

	writeJSON(w, rl.log, http.StatusOK, submitResponse{
		Success:       true,
		Message:       msgAcknowledged,
		TelegramError: outcome.Error,
	})
}

// deliver makes the downstream attempt and turns every failure into an outcome.
func (rl *Relay) deliver(ctx context.Context, id, text string) DeliveryOutcome {
	rl.metrics.SetGauge("deliveries.inflight", float64(rl.inflight.Add(1)))
	defer func() {
		rl.metrics.SetGauge("deliveries.inflight", float64(rl.inflight.Add(-1)))
	}()

	start := time.Now()
	delivery, err := rl.notifier.Notify(ctx, text)
	rl.metrics.RecordTiming("telegram.send", time.Since(start))

	if err != nil {
		reason := telegram.Description(err)
		if reason == "" {
			reason = "unknown delivery error"
		}
		rl.log.Error("Telegram API error", logger.Fields{"submission_id": id}, err)
		return DeliveryOutcome{Error: reason}
	}

	return DeliveryOutcome{
		Success:   true,
		MessageID: delivery.MessageID,
		Data:      delivery.Raw,
		Parts:     delivery.Parts,
	}
}
