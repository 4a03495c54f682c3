package types

import (
	"errors"
	"time"
)

const (
	// DefaultBaseURL is the default therapist API base URL
	DefaultBaseURL = "https://api.therapist-portal.com/api/v1"

	// DefaultTimeout is the per-request client deadline
	DefaultTimeout = 30 * time.Second

	// UserAgent is the user agent string
	UserAgent = "therapist-go/1.0.0"

	// StorageKey is the namespace of the persisted session slot
	StorageKey = "therapist-auth-storage"
)

// Common errors
var (
	// ErrNotAuthenticated is returned when authentication is required
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionExpired is returned when the session was forcibly ended
	ErrSessionExpired = errors.New("session expired")

	// ErrInvalidCredentials is returned when sign in is rejected
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPermissionDenied is returned for forbidden requests
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUserNotFound is returned when the account does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrTimeout is returned on timeout
	ErrTimeout = errors.New("request timeout")

	// ErrNetwork is returned when the backend is unreachable
	ErrNetwork = errors.New("network unreachable")

	// ErrServerError is returned for server errors
	ErrServerError = errors.New("server error")

	// ErrUnsupportedMethod is returned for HTTP verbs the gateway does not dispatch
	ErrUnsupportedMethod = errors.New("unsupported method")
)
