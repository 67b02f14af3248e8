package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newTestClient returns a client whose Bot API base URL is the given test server.
func newTestClient(server *httptest.Server) *Client {
	return &Client{
		botToken:   "test-token",
		chatID:     "12345",
		baseURL:    server.URL,
		httpClient: &http.Client{},
	}
}

// TestSendMessage_Success tests successful message sending
func TestSendMessage_Success(t *testing.T) {
	var gotPayload map[string]interface{}

	// Create a test server that mimics Telegram API
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		if r.URL.Path != "/bottest-token/sendMessage" {
			t.Errorf("Path = %s, want /bottest-token/sendMessage", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected Content-Type application/json, got %s", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decoding payload: %v", err)
		}

		response := map[string]interface{}{
			"ok": true,
			"result": map[string]interface{}{
				"message_id": 42,
				"date":       1760000000,
				"chat": map[string]interface{}{
					"id":   12345,
					"type": "private",
				},
				"text": "Test message",
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response) // nolint:errcheck
	}))
	defer server.Close()

	client := newTestClient(server)

	msg, err := client.SendMessage(context.Background(), "<b>Test</b> message", ParseModeHTML)
	if err != nil {
		t.Fatalf("SendMessage() unexpected error: %v", err)
	}

	if msg.MessageID != 42 {
		t.Errorf("MessageID = %d, want 42", msg.MessageID)
	}
	if msg.Chat.ID != 12345 {
		t.Errorf("Chat.ID = %d, want 12345", msg.Chat.ID)
	}
	if !strings.Contains(string(msg.Raw), `"message_id":42`) {
		t.Errorf("Raw = %s, want the raw result object", msg.Raw)
	}

	if gotPayload["chat_id"] != "12345" {
		t.Errorf("chat_id = %v, want 12345", gotPayload["chat_id"])
	}
	if gotPayload["text"] != "<b>Test</b> message" {
		t.Errorf("text = %v, want original text", gotPayload["text"])
	}
	if gotPayload["parse_mode"] != "HTML" {
		t.Errorf("parse_mode = %v, want HTML", gotPayload["parse_mode"])
	}
}

// TestSendMessage_PlainOmitsParseMode tests that an empty parse mode is not sent
func TestSendMessage_PlainOmitsParseMode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload) // nolint:errcheck
		if _, ok := payload["parse_mode"]; ok {
			t.Errorf("parse_mode present in plain send: %v", payload["parse_mode"])
		}
		w.Write([]byte(`{"ok":true,"result":{"message_id":7}}`)) // nolint:errcheck
	}))
	defer server.Close()

	msg, err := newTestClient(server).SendMessage(context.Background(), "plain", "")
	if err != nil {
		t.Fatalf("SendMessage() unexpected error: %v", err)
	}
	if msg.MessageID != 7 {
		t.Errorf("MessageID = %d, want 7", msg.MessageID)
	}
}

// TestSendMessage_APIError tests API error handling
func TestSendMessage_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)) // nolint:errcheck
	}))
	defer server.Close()

	_, err := newTestClient(server).SendMessage(context.Background(), "Test message", ParseModeHTML)
	if err == nil {
		t.Fatal("SendMessage() expected error for API failure, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("SendMessage() error = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", apiErr.StatusCode)
	}
	if apiErr.Description != "Bad Request: chat not found" {
		t.Errorf("Description = %q, want 'Bad Request: chat not found'", apiErr.Description)
	}
	if apiErr.Method != "sendMessage" {
		t.Errorf("Method = %q, want sendMessage", apiErr.Method)
	}
}

// TestSendMessage_NotOK tests a 200 response that still reports failure
func TestSendMessage_NotOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"Forbidden: bot was blocked by the user"}`)) // nolint:errcheck
	}))
	defer server.Close()

	_, err := newTestClient(server).SendMessage(context.Background(), "Test", ParseModeHTML)
	if err == nil || !strings.Contains(err.Error(), "bot was blocked") {
		t.Errorf("SendMessage() error = %v, want error containing 'bot was blocked'", err)
	}
}

// TestSendMessage_HTTPError tests HTTP error handling with a non-JSON body
func TestSendMessage_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error")) // nolint:errcheck
	}))
	defer server.Close()

	_, err := newTestClient(server).SendMessage(context.Background(), "Test message", ParseModeHTML)
	if err == nil {
		t.Fatal("SendMessage() expected error for HTTP error, got nil")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("SendMessage() error = %v, want error containing 'status 500'", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.Temporary() {
		t.Errorf("SendMessage() error = %v, want temporary *APIError", err)
	}
}

// TestSendMessage_RetryAfter tests that flood-control hints are decoded
func TestSendMessage_RetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 5","parameters":{"retry_after":5}}`)) // nolint:errcheck
	}))
	defer server.Close()

	_, err := newTestClient(server).SendMessage(context.Background(), "Test", ParseModeHTML)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("SendMessage() error = %v, want *APIError", err)
	}
	if apiErr.RetryAfter != 5*time.Second {
		t.Errorf("RetryAfter = %v, want 5s", apiErr.RetryAfter)
	}
}

// TestSendMessage_MalformedSuccess tests a 200 response that is not JSON
func TestSendMessage_MalformedSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>proxy page</html>")) // nolint:errcheck
	}))
	defer server.Close()

	_, err := newTestClient(server).SendMessage(context.Background(), "Test", ParseModeHTML)
	if err == nil || !strings.Contains(err.Error(), "parsing response") {
		t.Errorf("SendMessage() error = %v, want parsing error", err)
	}
}

// TestSendMessage_TransportErrorHidesToken tests that the token never leaks into errors
func TestSendMessage_TransportErrorHidesToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(server)
	client.botToken = "123456:SECRET"
	server.Close()

	_, err := client.SendMessage(context.Background(), "Test", ParseModeHTML)
	if err == nil {
		t.Fatal("SendMessage() expected error for closed server, got nil")
	}
	if strings.Contains(err.Error(), "SECRET") {
		t.Errorf("SendMessage() error = %v, must not contain the bot token", err)
	}
	if !strings.HasPrefix(err.Error(), "sending request:") {
		t.Errorf("SendMessage() error = %v, want 'sending request:' prefix", err)
	}
}

// TestSendMessage_ContextCanceled tests that the request honors its context
func TestSendMessage_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`)) // nolint:errcheck
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(server).SendMessage(ctx, "Test", ParseModeHTML)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("SendMessage() error = %v, want context.Canceled", err)
	}
}

// TestGetMe tests the credential check call
func TestGetMe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottest-token/getMe" {
			t.Errorf("Path = %s, want /bottest-token/getMe", r.URL.Path)
		}
		w.Write([]byte(`{"ok":true,"result":{"id":99,"is_bot":true,"first_name":"Examiner","username":"examiner_bot"}}`)) // nolint:errcheck
	}))
	defer server.Close()

	user, err := newTestClient(server).GetMe(context.Background())
	if err != nil {
		t.Fatalf("GetMe() unexpected error: %v", err)
	}
	if user.Username != "examiner_bot" || !user.IsBot {
		t.Errorf("GetMe() = %+v, want examiner_bot bot user", user)
	}
}

// TestGetMe_Unauthorized tests the credential check with a bad token
func TestGetMe_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`)) // nolint:errcheck
	}))
	defer server.Close()

	_, err := newTestClient(server).GetMe(context.Background())
	if Description(err) != "Unauthorized" {
		t.Errorf("Description(GetMe() error) = %q, want Unauthorized", Description(err))
	}
}
