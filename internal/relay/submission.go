package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aliqulovx561-ai/writing-set-two/internal/logger"
)

// maxBodyBytes caps the size of a submission body.
const maxBodyBytes = 1 << 20

var errMissingMessage = errors.New("missing required field: message")

// SubmissionRequest is the body the test page posts. Only Message is relayed;
// the other fields are recorded in the logs.
type SubmissionRequest struct {
	Message        string          `json:"message"`
	StudentName    string          `json:"studentName,omitempty"`
	Task1WordCount *int            `json:"task1WordCount,omitempty"`
	Task2WordCount *int            `json:"task2WordCount,omitempty"`
	Violations     json.RawMessage `json:"violations,omitempty"`
	Duration       json.RawMessage `json:"duration,omitempty"`
}

// decodeSubmission reads and validates the request body. It returns
// errMissingMessage when the body is well-formed but has no message.
func decodeSubmission(w http.ResponseWriter, r *http.Request) (SubmissionRequest, error) {
	var req SubmissionRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return req, errors.New("request body is empty")
		case errors.As(err, &maxErr):
			return req, fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		default:
			return req, err
		}
	}

	if err := req.validate(); err != nil {
		return req, err
	}
	return req, nil
}

func (s SubmissionRequest) validate() error {
	if strings.TrimSpace(s.Message) == "" {
		return errMissingMessage
	}
	if s.Task1WordCount != nil && *s.Task1WordCount < 0 {
		return fmt.Errorf("task1WordCount must be >= 0: got %d", *s.Task1WordCount)
	}
	if s.Task2WordCount != nil && *s.Task2WordCount < 0 {
		return fmt.Errorf("task2WordCount must be >= 0: got %d", *s.Task2WordCount)
	}
	return nil
}

// logFields returns the metadata worth recording for a submission.
func (s SubmissionRequest) logFields() logger.Fields {
	fields := logger.Fields{
		"student": s.StudentName,
	}
	if s.Task1WordCount != nil {
		fields["task1_words"] = *s.Task1WordCount
	}
	if s.Task2WordCount != nil {
		fields["task2_words"] = *s.Task2WordCount
	}
	if len(s.Violations) > 0 {
		fields["violations"] = s.Violations
	}
	if len(s.Duration) > 0 {
		fields["duration"] = s.Duration
	}
	return fields
}
