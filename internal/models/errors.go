package models

import (
	"encoding/json"
	"fmt"
)

// InvalidInvocationError means the caller broke the invocation contract:
// neither or both of recipe/freeform, or an unknown recipe name. Always
// raised before any network call.
type InvalidInvocationError struct {
	Reason string
}

func (e *InvalidInvocationError) Error() string {
	return fmt.Sprintf("invalid invocation: %v", e.Reason)
}

// BackendUnavailableError wraps connection or timeout failures. It is
// retryable by the caller but never retried internally, since silently
// re-issuing a prompt to a model is not free.
type BackendUnavailableError struct {
	Cause error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("backend unavailable: %v", e.Cause)
}

func (e *BackendUnavailableError) Unwrap() error {
	return e.Cause
}

// BackendProtocolError is a non-success response from the backend, carrying
// the raw status and body for diagnosis.
type BackendProtocolError struct {
	Status int
	Body   string
}

const bodyGlimpseLen = 200

func (e *BackendProtocolError) Error() string {
	return fmt.Sprintf("backend request failed (status: %v), message: %v", e.Status, e.Message())
}

// Message attempts to extract 'error.message' or 'error' from the raw body,
// falling back to a glimpse of the body itself
func (e *BackendProtocolError) Message() string {
	var structured struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal([]byte(e.Body), &structured); err == nil && len(structured.Error) > 0 {
		var errObj struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(structured.Error, &errObj); err == nil && errObj.Message != "" {
			return errObj.Message
		}
		var errStr string
		if err := json.Unmarshal(structured.Error, &errStr); err == nil && errStr != "" {
			return errStr
		}
	}
	glimpse := e.Body
	if len(glimpse) > bodyGlimpseLen {
		glimpse = glimpse[:bodyGlimpseLen] + "..."
	}
	return glimpse
}
