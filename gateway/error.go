package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind tags the failure class so callers branch on an explicit
// discriminator instead of probing which fields happen to be set.
type ErrorKind string

const (
	// KindValidation marks locally detected, field-scoped failures that
	// never reached the network.
	KindValidation ErrorKind = "validation"

	// KindRequest marks non-2xx HTTP responses.
	KindRequest ErrorKind = "request"

	// KindTransport marks failures where no response was received at
	// all. Status is always 0.
	KindTransport ErrorKind = "transport"
)

// APIError is the one error shape every backend call can fail with.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	// Fields maps field name to message for validation failures. Keys
	// are as the server sent them; see authflow for name normalization.
	Fields map[string]string
	// Body is the raw error response body, when there was one.
	Body []byte
}

func (e *APIError) Error() string {
	if e.Kind == KindTransport {
		return fmt.Sprintf("transport error: %s", e.Message)
	}
	return fmt.Sprintf("%s error (%d): %s", e.Kind, e.Status, e.Message)
}

// NewValidationError builds a local validation failure from a field
// error map.
func NewValidationError(fields map[string]string) *APIError {
	message := "validation failed"
	for _, v := range fields {
		message = v
		break
	}
	return &APIError{
		Kind:    KindValidation,
		Message: message,
		Fields:  fields,
	}
}

func newTransportError(err error) *APIError {
	message := "Network error. Please check your connection."
	if err != nil && err.Error() != "" {
		message = err.Error()
	}
	return &APIError{
		Kind:    KindTransport,
		Status:  0,
		Message: message,
	}
}

// errorBody is the shape the backend uses for error responses. The
// message may live under "message" or "error"; field errors under
// "errors" arrive either as a name->message map or a list of
// {field, message} objects.
type errorBody struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Errors  json.RawMessage `json:"errors"`
}

// normalizeError turns a non-2xx response into an APIError. A body
// that is not parseable JSON falls back to the status line's reason
// phrase.
func normalizeError(status int, body []byte) *APIError {
	apiErr := &APIError{
		Kind:   KindRequest,
		Status: status,
		Body:   body,
	}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		apiErr.Message = http.StatusText(status)
		if apiErr.Message == "" {
			apiErr.Message = "An error occurred"
		}
		return apiErr
	}

	switch {
	case parsed.Message != "":
		apiErr.Message = parsed.Message
	case parsed.Error != "":
		apiErr.Message = parsed.Error
	default:
		apiErr.Message = http.StatusText(status)
		if apiErr.Message == "" {
			apiErr.Message = "An error occurred"
		}
	}

	apiErr.Fields = parseFieldErrors(parsed.Errors)
	return apiErr
}

func parseFieldErrors(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}

	var asMap map[string]string
	if err := json.Unmarshal(raw, &asMap); err == nil && len(asMap) > 0 {
		return asMap
	}

	var asList []struct {
		Field   string `json:"field"`
		Param   string `json:"param"`
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &asList); err == nil {
		fields := make(map[string]string, len(asList))
		for _, item := range asList {
			name := item.Field
			if name == "" {
				name = item.Param
			}
			message := item.Message
			if message == "" {
				message = item.Msg
			}
			if name != "" && message != "" {
				fields[name] = message
			}
		}
		if len(fields) > 0 {
			return fields
		}
	}
	return nil
}

// AsAPIError unwraps err to an *APIError if there is one in the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// IsAuthError reports whether err is an authentication-rejected
// response (401 or 403). Consumers treat these specially: logout or
// redirect rather than inline field errors.
func IsAuthError(err error) bool {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return false
	}
	return apiErr.Kind == KindRequest &&
		(apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden)
}
