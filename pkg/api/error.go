package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Error is a non-2xx backend response. Message/Err come from the JSON error
// envelope when the body carried one; the synthesized display string falls
// back to the HTTP status line otherwise.
type Error struct {
	Status     int
	StatusText string
	Message    string
	Err        string
	Details    []string
}

func (e *Error) Error() string {
	base := e.Message
	if base == "" {
		base = e.Err
	}
	if base == "" {
		base = strings.TrimSpace(fmt.Sprintf("%d %s", e.Status, e.StatusText))
	}
	if len(e.Details) > 0 {
		return fmt.Sprintf("%s (%s)", base, strings.Join(e.Details, "; "))
	}
	return base
}

func parseError(resp *http.Response) error {
	apiErr := &Error{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
	}
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var envelope struct {
			Message string   `json:"message"`
			Err     string   `json:"error"`
			Details []string `json:"details"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
			apiErr.Message = envelope.Message
			apiErr.Err = envelope.Err
			apiErr.Details = envelope.Details
		}
	}
	return apiErr
}
