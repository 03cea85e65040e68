package datastore

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Common data store errors
var (
	// ErrNoUser is returned when the auth backend answers without a user
	ErrNoUser = errors.New("no user for token")

	// ErrMissingToken is returned when a user lookup is attempted without a token
	ErrMissingToken = errors.New("token is required")

	// ErrMalformedResponse is returned when a success reply cannot be decoded
	ErrMalformedResponse = errors.New("malformed data store response")
)

// APIError is a non-2xx reply from the auth or REST endpoints.
// Message carries the backend's own wording (PostgREST "message", GoTrue
// "msg" or "error_description") so it can be shown to the caller.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details string
	Hint    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("data store returned status %d", e.Status)
}

// IsPolicyViolation reports whether PostgREST rejected the write under a
// row-level-security policy (SQLSTATE 42501).
func (e *APIError) IsPolicyViolation() bool {
	return e.Code == "42501"
}

// errorBody covers both the PostgREST and GoTrue error envelopes
type errorBody struct {
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
	Message          string          `json:"message"`
	Msg              string          `json:"msg"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	Details          *string         `json:"details"`
	Hint             *string         `json:"hint"`
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	apiErr.Code = strings.Trim(string(eb.Code), `"`)
	if apiErr.Code == "" || apiErr.Code == "null" {
		apiErr.Code = eb.ErrorCode
	}
	for _, m := range []string{eb.Message, eb.Msg, eb.ErrorDescription, eb.Error} {
		if m != "" {
			apiErr.Message = m
			break
		}
	}
	if eb.Details != nil {
		apiErr.Details = *eb.Details
	}
	if eb.Hint != nil {
		apiErr.Hint = *eb.Hint
	}
	return apiErr
}

// StatusOf returns the HTTP status of an APIError anywhere in err's chain, or 0
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
