// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by all backends.
var (
	// ErrNotConfigured indicates the credential for a backend is not set.
	ErrNotConfigured = errors.New("completion service credential not configured")

	// ErrAuthFailed indicates the backend rejected the credential.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates the backend throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelNotFound indicates the configured model does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrMalformedStream indicates the response could not be decoded.
	ErrMalformedStream = errors.New("malformed stream")

	// ErrUnknownProvider indicates no backend is registered under a name.
	ErrUnknownProvider = errors.New("unknown provider")
)

// ServiceError is an error reported by a completion backend.
type ServiceError struct {
	Provider string
	Status   int
	Code     string
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	switch {
	case e.Code != "" && e.Status != 0:
		return fmt.Sprintf("%s error [%s] (HTTP %d): %s", e.Provider, e.Code, e.Status, e.Message)
	case e.Code != "":
		return fmt.Sprintf("%s error [%s]: %s", e.Provider, e.Code, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s error (HTTP %d): %s", e.Provider, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s error: %s", e.Provider, e.Message)
	}
}

// Unwrap returns the mapped sentinel, if any.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// StatusError builds a ServiceError for an HTTP status, mapping well-known
// codes to the shared sentinels.
func StatusError(provider string, status int, code, message string) *ServiceError {
	e := &ServiceError{Provider: provider, Status: status, Code: code, Message: message}
	switch status {
	case 401, 403:
		e.Err = ErrAuthFailed
	case 404:
		e.Err = ErrModelNotFound
	case 429:
		e.Err = ErrRateLimited
	}
	return e
}

// IsNotConfigured reports whether err is caused by a missing credential.
func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}

// IsAuthFailed reports whether err is an authentication failure.
func IsAuthFailed(err error) bool {
	return errors.Is(err, ErrAuthFailed)
}

// IsRateLimited reports whether err is a throttling error.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
