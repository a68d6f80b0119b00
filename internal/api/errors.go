// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     api
// Description: Error types for backend requests
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// APIError is a failure reported by the backend
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned status %d", e.Status)
}

// ValidationError is a client-side rejection before any request
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IsValidationError reports whether err is a client-side rejection
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsAPIKeyError reports whether a failure is caused by a missing or
// invalid API key, the one error class the UI words differently.
func IsAPIKeyError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "api key")
}

// decodeAPIError turns an error response body into an APIError. The
// backend uses "detail" for upload errors and "error" elsewhere.
func decodeAPIError(status int, body []byte) error {
	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)

	msg := payload.Detail
	if msg == "" {
		msg = payload.Error
	}
	return &APIError{Status: status, Message: msg}
}
