package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/designer/pkg/httpx"
)

// ErrNoRefreshToken is returned when a session needs a refresh but holds
// no refresh token, e.g. after Logout.
var ErrNoRefreshToken = errors.New("authsdk: no refresh token available")

// APIError is a non-2xx response from the designer API.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// parseErrorResponse turns an error body into an *APIError. It accepts
// both the {"message": ...} shape and the token error list.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var msg httpx.Message
	if err := json.Unmarshal(body, &msg); err == nil && msg.Message != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: msg.Message}
	}

	var fields []httpx.FieldError
	if err := json.Unmarshal(body, &fields); err == nil && len(fields) > 0 {
		return &APIError{StatusCode: resp.StatusCode, Message: fields[0].ErrorMessage}
	}

	return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
}
