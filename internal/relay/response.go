package relay

import (
	"encoding/json"
	"net/http"

	"github.com/aliqulovx561-ai/writing-set-two/internal/logger"
)

const (
	msgDelivered        = "Test submitted successfully and sent to examiner"
	msgAcknowledged     = "Test submitted successfully (Telegram delivery failed, but logged locally)"
	msgDeliveryFailed   = "Telegram delivery failed"
	msgConfigError      = "Server configuration error"
	msgInternalError    = "Internal server error"
	msgInvalidBody      = "Invalid request body"
	msgMissingMessage   = "Missing required field: message"
	msgMethodNotAllowed = "Method not allowed"
)

// submitResponse is the JSON body of every POST outcome.
type submitResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	TelegramMessageID *int   `json:"telegramMessageId,omitempty"`
	TelegramError     string `json:"telegramError,omitempty"`
	Error             string `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, log *logger.Logger, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("Encoding response failed", logger.Fields{"status": status}, err)
	}
}
