package tesla

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrVehicleUnavailable = errors.New("vehicle unavailable")
	ErrRateLimited        = errors.New("rate limited")
)

// CommandError is returned when the vehicle refuses a command.
type CommandError struct {
	Command string
	Reason  string
}

func (e *CommandError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("command %s rejected", e.Command)
	}
	return fmt.Sprintf("command %s rejected: %s", e.Command, e.Reason)
}

// getError turns a non-2xx response into an error, preferring the message
// the service put into the body.
func getError(res *http.Response) error {
	var sentinel error
	switch res.StatusCode {
	case http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case http.StatusRequestTimeout:
		sentinel = ErrVehicleUnavailable
	case http.StatusTooManyRequests:
		sentinel = ErrRateLimited
	}

	body, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	var errorResponse ErrorResponse
	msg := ""
	if err := json.Unmarshal(body, &errorResponse); err == nil {
		msg = errorResponse.Error
		if errorResponse.ErrorDescription != "" {
			msg += ": " + errorResponse.ErrorDescription
		}
	}

	if sentinel != nil {
		if msg == "" {
			return sentinel
		}
		return fmt.Errorf("%w: %s", sentinel, msg)
	}
	if msg == "" {
		return fmt.Errorf("unexpected status %s", res.Status)
	}
	return fmt.Errorf("unexpected status %s: %s", res.Status, msg)
}
