package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ValidationError reports input rejected before (or by) the server. Local
// validation errors never reach the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// ConflictError reports that one or more seats are already part of an active
// booking. SeatIDs is empty when the server did not say which seats.
type ConflictError struct {
	SeatIDs []int64
	Message string
}

func (e *ConflictError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "seat already booked"
	}
	if len(e.SeatIDs) == 0 {
		return "conflict: " + msg
	}
	return fmt.Sprintf("conflict: %s (seats %s)", msg, joinIDs(e.SeatIDs))
}

// AuthError reports a missing, expired or rejected identity token.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	if e.Reason == "" {
		return "authentication required"
	}
	return "authentication required: " + e.Reason
}

// NetworkError wraps a transport failure.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is returned for 5xx responses.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("server error: %d: %s", e.StatusCode, e.Message)
}

// APIError is returned when the backend responds with a non-2xx status that
// has no more specific class.
type APIError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e == nil {
		return "booking api error"
	}
	return fmt.Sprintf("booking api error: %s: %s", e.Status, e.Body)
}

// IsNotFound reports whether the error represents a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsAuth(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

// IsRetryable reports whether a manual retry of the same request may succeed.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr *NetworkError
	var srvErr *ServerError
	return errors.As(err, &netErr) || errors.As(err, &srvErr)
}

// ConflictSeats returns the seat ids named by a ConflictError, if any.
func ConflictSeats(err error) []int64 {
	var target *ConflictError
	if errors.As(err, &target) {
		return target.SeatIDs
	}
	return nil
}

// UserMessage turns an error into an actionable sentence for a person.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var (
		valErr      *ValidationError
		conflictErr *ConflictError
		authErr     *AuthError
	)
	switch {
	case errors.As(err, &valErr):
		return capitalize(valErr.Message)
	case errors.As(err, &conflictErr):
		if len(conflictErr.SeatIDs) > 0 {
			return fmt.Sprintf("Seat no longer available (%s), please re-select.", joinIDs(conflictErr.SeatIDs))
		}
		return "Seat no longer available, please re-select."
	case errors.As(err, &authErr):
		return "Your session is missing or expired. Please sign in again."
	case IsRetryable(err):
		return "Could not reach the booking server. Please try again."
	case IsNotFound(err):
		return "Not found."
	}
	return err.Error()
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
