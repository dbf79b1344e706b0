package adminapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIError carries the backend's error payload alongside its status code.
// The taxonomy: 401 is recovered inside the transport and only surfaces
// here when refresh itself failed; 403 means denied with no retry; 4xx
// with field errors is a validation failure presented inline; 5xx is a
// generic server failure.
type APIError struct {
	StatusCode  int
	Message     string
	FieldErrors map[string]string
}

// Error renders the status and message.
func (apiErr *APIError) Error() string {
	if apiErr.Message == "" {
		return fmt.Sprintf("api_client.status_%d", apiErr.StatusCode)
	}
	return fmt.Sprintf("api_client.status_%d: %s", apiErr.StatusCode, apiErr.Message)
}

// IsUnauthorized reports an authentication failure that refresh could not recover.
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

// IsForbidden reports an authorization failure; callers present it as a
// blocking message and never retry.
func IsForbidden(err error) bool {
	return statusOf(err) == http.StatusForbidden
}

// IsValidation reports a 4xx failure carrying per-field messages.
func IsValidation(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 && len(apiErr.FieldErrors) > 0
}

// IsServerError reports a 5xx failure.
func IsServerError(err error) bool {
	return statusOf(err) >= 500
}

func statusOf(err error) int {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return 0
	}
	return apiErr.StatusCode
}

// decodeAPIError reads whichever error body shape the backend produced:
// {"error": "..."}, {"message": "..."}, or {"errors": {field: message}}.
func decodeAPIError(response *http.Response) error {
	apiErr := &APIError{StatusCode: response.StatusCode}
	raw, readErr := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if readErr != nil || len(raw) == 0 {
		return apiErr
	}
	var decoded struct {
		Error   string            `json:"error"`
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	if json.Unmarshal(raw, &decoded) != nil {
		apiErr.Message = strings.TrimSpace(string(raw))
		return apiErr
	}
	switch {
	case decoded.Error != "":
		apiErr.Message = decoded.Error
	case decoded.Message != "":
		apiErr.Message = decoded.Message
	}
	apiErr.FieldErrors = decoded.Errors
	return apiErr
}
