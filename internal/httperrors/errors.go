// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors provides user-friendly error handling for HTTP requests.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/pterm/pterm"
)

// StatusError carries the HTTP status and server message of a failed request.
// It is the typed form the session machine classifies on.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// NewStatus builds a StatusError from a response status and body text.
func NewStatus(status int, body string) *StatusError {
	return &StatusError{Status: status, Message: strings.TrimSpace(body)}
}

// Status returns the HTTP status carried by err, or 0 when err has none
// (network failure, context cancellation, decode error).
func Status(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// IsAuthStatus reports whether err is a 401 or 403 response. The session
// machine treats these as terminal for the session.
func IsAuthStatus(err error) bool {
	s := Status(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}

// IsTransient reports whether err should be retried on a later evaluation:
// any network-level failure or a 5xx response.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	s := Status(err)
	if s >= 500 {
		return true
	}
	if s != 0 {
		return false
	}
	return true // no status = network-level failure
}

// FormatNetworkError converts technical HTTP/network errors into user-friendly messages.
// It detects common error types (timeout, DNS, connection refused, server errors)
// and displays helpful troubleshooting information.
func FormatNetworkError(err error, context string) error {
	if err == nil {
		return nil
	}

	displayErrorMessage(err, context)

	return fmt.Errorf("network error: %w", err)
}

// displayErrorMessage shows a formatted error message to the user based on error type.
func displayErrorMessage(err error, context string) {
	if isTimeoutError(err) {
		pterm.Error.Printfln("%s timed out", context)
		pterm.Info.Println("The Logistiq backend took too long to respond. Try again shortly.")
		return
	}

	if isDNSError(err) {
		pterm.Error.Printfln("%s failed: cannot resolve host", context)
		pterm.Info.Println("Check your internet connection and DNS settings.")
		return
	}

	if isConnectionRefusedError(err) {
		pterm.Error.Printfln("%s failed: connection refused", context)
		pterm.Info.Println("The Logistiq backend may be down or blocked by a firewall.")
		return
	}

	if s := Status(err); s >= 500 {
		pterm.Error.Printfln("%s failed: server error (%d)", context, s)
		pterm.Info.Println("This is a problem on our side. Please retry in a moment.")
		return
	}

	pterm.Error.Printfln("%s failed: %v", context, err)
}

// isTimeoutError checks if the error is a timeout error.
func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}

// isDNSError checks if the error is a DNS resolution error.
func isDNSError(err error) bool {
	if err == nil {
		return false
	}

	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// isConnectionRefusedError checks if the error indicates a refused connection.
func isConnectionRefusedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}
