package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/petal-labs/latitude-go/core"
)

// apiErrorResponse represents an error response body from the Latitude
// API.
type apiErrorResponse struct {
	Name       string           `json:"name"`
	Message    string           `json:"message"`
	Details    json.RawMessage  `json:"details"`
	ErrorCode  string           `json:"errorCode"`
	DBErrorRef *core.DBErrorRef `json:"dbErrorRef"`
}

// normalizeError converts an HTTP error response to an APIError with
// the appropriate sentinel.
func normalizeError(status int, body []byte) error {
	// Parse the error body if possible
	var errResp apiErrorResponse
	_ = json.Unmarshal(body, &errResp)

	message := errResp.Message
	if message == "" {
		message = http.StatusText(status)
	}

	// Determine sentinel error based on status
	var sentinel error
	switch {
	case status == http.StatusBadRequest:
		sentinel = core.ErrBadRequest
	case status == http.StatusUnauthorized:
		sentinel = core.ErrUnauthorized
	case status == http.StatusForbidden:
		sentinel = core.ErrForbidden
	case status == http.StatusNotFound:
		sentinel = core.ErrNotFound
	case status == http.StatusConflict:
		sentinel = core.ErrConflict
	case status == http.StatusUnprocessableEntity:
		sentinel = core.ErrUnprocessable
	case status == http.StatusTooManyRequests:
		sentinel = core.ErrRateLimited
	case status >= 500:
		sentinel = core.ErrServer
	default:
		// Remaining 4xx statuses will not resolve on retry.
		sentinel = core.ErrBadRequest
	}

	return &core.APIError{
		Status:  status,
		Code:    errResp.ErrorCode,
		Name:    errResp.Name,
		Message: message,
		Details: errResp.Details,
		DBRef:   errResp.DBErrorRef,
		Err:     sentinel,
	}
}

// newNetworkError creates an APIError for network-level failures.
func newNetworkError(err error) error {
	return &core.APIError{
		Message: err.Error(),
		Err:     core.ErrNetwork,
	}
}

// newDecodeError creates an APIError for response decode failures.
func newDecodeError(err error) error {
	return &core.APIError{
		Message: err.Error(),
		Err:     core.ErrDecode,
	}
}
