package therapist

import (
	"net/http"

	internalTypes "github.com/eshaffer321/therapist-go/internal/types"
	"github.com/pkg/errors"
)

var (
	// ErrNotAuthenticated is returned when authentication is required
	ErrNotAuthenticated = internalTypes.ErrNotAuthenticated

	// ErrSessionExpired is returned when the session was forcibly ended
	ErrSessionExpired = internalTypes.ErrSessionExpired

	// ErrInvalidCredentials is returned when sign in is rejected
	ErrInvalidCredentials = internalTypes.ErrInvalidCredentials

	// ErrPermissionDenied is returned for forbidden requests
	ErrPermissionDenied = internalTypes.ErrPermissionDenied

	// ErrUserNotFound is returned when the account does not exist
	ErrUserNotFound = internalTypes.ErrUserNotFound

	// ErrTimeout is returned on timeout
	ErrTimeout = internalTypes.ErrTimeout

	// ErrNetwork is returned when the backend is unreachable
	ErrNetwork = internalTypes.ErrNetwork

	// ErrServerError is returned for server errors
	ErrServerError = internalTypes.ErrServerError

	// ErrUnsupportedMethod is returned for HTTP verbs the gateway does not dispatch
	ErrUnsupportedMethod = internalTypes.ErrUnsupportedMethod

	// ErrUnexpected is returned when no response could be interpreted
	ErrUnexpected = errors.New("unexpected error")
)

// Error represents an API error. Envelope is what OnError received.
type Error = internalTypes.Error

var outcomeCodes = map[OutcomeKind]struct {
	code string
	err  error
}{
	OutcomePasswordChanged:      {"PASSWORD_CHANGED", ErrSessionExpired},
	OutcomeInvalidCredentials:   {"INVALID_CREDENTIALS", ErrInvalidCredentials},
	OutcomeOldPasswordIncorrect: {"OLD_PASSWORD_INCORRECT", ErrInvalidCredentials},
	OutcomeRoleMismatch:         {"ROLE_MISMATCH", ErrInvalidCredentials},
	OutcomeUnauthorized:         {"UNAUTHORIZED", ErrSessionExpired},
	OutcomeUserNotFound:         {"USER_NOT_FOUND", ErrUserNotFound},
	OutcomeTimeout:              {"TIMEOUT", ErrTimeout},
	OutcomeNetwork:              {"NETWORK", ErrNetwork},
	OutcomePermissionDenied:     {"PERMISSION_DENIED", ErrPermissionDenied},
	OutcomeServerError:          {"HTTP_ERROR", nil},
	OutcomeUnexpected:           {"UNEXPECTED", ErrUnexpected},
}

// outcomeError converts a failed outcome into an *Error
func outcomeError(outcome Outcome) error {
	mapped, ok := outcomeCodes[outcome.Kind]
	if !ok {
		mapped.code = "UNKNOWN"
		mapped.err = ErrUnexpected
	}

	apiErr := &Error{
		Code:     mapped.code,
		Message:  outcome.Notify,
		Envelope: outcome.Envelope,
		Err:      mapped.err,
	}
	if env := outcome.Envelope; env != nil {
		apiErr.StatusCode = env.Status
		if env.Message != "" {
			apiErr.Message = env.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = MessageGenericFailure
	}
	if outcome.Kind == OutcomeServerError && apiErr.StatusCode >= http.StatusInternalServerError {
		apiErr.Code = "SERVER_ERROR"
		apiErr.Err = ErrServerError
	}
	return apiErr
}

// IsAuthError checks if error is authentication related
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrSessionExpired)
}

// IsRetryable checks if error is worth retrying later
func IsRetryable(err error) bool {
	if errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrNetwork) ||
		errors.Is(err, ErrServerError) {
		return true
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500 || apiErr.StatusCode == http.StatusTooManyRequests
	}

	return false
}

// EnvelopeOf returns the envelope carried by an *Error, if any
func EnvelopeOf(err error) *Envelope {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Envelope
	}
	return nil
}
