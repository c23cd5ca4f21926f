package httpx

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrRequestFailed is returned for every non-2xx response. Body is the raw
// response payload, untouched.
type ErrRequestFailed struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       []byte
}

func (e *ErrRequestFailed) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("httpx: %s %s: %d: %s", e.Method, e.URL, e.StatusCode, msg)
	}
	return fmt.Sprintf("httpx: %s %s: %s", e.Method, e.URL, e.Status)
}

// Message returns the server supplied error message, if the body is the
// usual {"success": false, "message": "..."} envelope or an {"error": "..."}
// object. It returns "" otherwise.
func (e *ErrRequestFailed) Message() string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return strings.TrimSpace(envelope.Message)
	}
	return strings.TrimSpace(envelope.Error)
}
