package therapist

import (
	"context"
	"net/http"
	"strings"
	"unicode"

	internalTypes "github.com/eshaffer321/therapist-go/internal/types"
	"github.com/pkg/errors"
)

// Backend wording the classifier keys on. All string matching against
// server messages lives in this file.
const (
	PasswordChangedMessage = "User recently changed password please login again!"

	ErrorTypeInvalidPassword = "INVALID_PASSWORD"
	ErrorTypeUserNotFound    = "USER_NOT_FOUND"

	MessageInvalidCredentials = "Invalid credentials"
	MessageRoleMismatch       = "Please sign in with a therapist account."
	MessageUserNotFound       = "User not found"
	MessageTimeout            = "Request timed out. Please try again."
	MessageNetwork            = "Network connection failed. Please check your internet connection."
	MessageUnexpected         = "An unexpected error occurred."
	MessageAuthFailed         = "Your session has ended. Please sign in again."
	MessageGenericFailure     = "Something went wrong. Please try again."
)

// maxRefreshes bounds refresh-and-retry cycles per call
const maxRefreshes = 2

var (
	expiryPhrases      = []string{"jwt expired", "token expired", "access token expired", "expired token"}
	credentialPhrases  = []string{"password", "invalid credentials"}
	oldPasswordPhrases = []string{"old password", "incorrect"}
	rolePhrases        = []string{"role", "instructor", "only therapist"}
	notFoundPhrases    = []string{"phone", "user not found"}
	permissionPhrases  = []string{"permission", "forbidden", "not authorized", "not authorised"}
)

// OutcomeKind is the terminal (or recoverable) class of a call
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomePasswordChanged
	OutcomeRefresh
	OutcomeInvalidCredentials
	OutcomeOldPasswordIncorrect
	OutcomeRoleMismatch
	OutcomeUnauthorized
	OutcomeUserNotFound
	OutcomeTimeout
	OutcomeNetwork
	OutcomePermissionDenied
	OutcomeServerError
	OutcomeUnexpected
)

var outcomeNames = map[OutcomeKind]string{
	OutcomeSuccess:              "success",
	OutcomePasswordChanged:      "password_changed",
	OutcomeRefresh:              "refresh",
	OutcomeInvalidCredentials:   "invalid_credentials",
	OutcomeOldPasswordIncorrect: "old_password_incorrect",
	OutcomeRoleMismatch:         "role_mismatch",
	OutcomeUnauthorized:         "unauthorized",
	OutcomeUserNotFound:         "user_not_found",
	OutcomeTimeout:              "timeout",
	OutcomeNetwork:              "network",
	OutcomePermissionDenied:     "permission_denied",
	OutcomeServerError:          "server_error",
	OutcomeUnexpected:           "unexpected",
}

// String returns the metric/tag label for k
func (k OutcomeKind) String() string {
	if name, ok := outcomeNames[k]; ok {
		return name
	}
	return "unknown"
}

// Attempt is everything the classifier needs to know about one dispatch
type Attempt struct {
	Endpoint string

	// StatusCode is 0 when no response was received
	StatusCode int

	// Envelope is the parsed body, nil when absent or not JSON
	Envelope *Envelope

	// Err is the transport error when no response was received
	Err error

	RetryCount      int
	HasRefreshToken bool

	// RefreshFailed is set when a refresh for this attempt was tried and failed
	RefreshFailed bool

	// Password is the password submitted to the sign-in endpoint
	Password string
}

// Outcome is the classifier's decision. At most one of Logout, an OnSuccess
// delivery (Kind == OutcomeSuccess) or an OnError delivery (Deliver) applies.
type Outcome struct {
	Kind OutcomeKind

	// Envelope is what the callback receives
	Envelope *Envelope

	// Deliver is true when OnError should receive Envelope
	Deliver bool

	// Notify is the user-facing message; empty means stay quiet
	Notify string

	// Logout forces the session store to log out
	Logout bool

	// Cancelled is set when the caller gave up before a response arrived
	Cancelled bool
}

// Classify decides what a finished dispatch means
func Classify(a Attempt) Outcome {
	endpoint := endpointPath(a.Endpoint)
	env := a.Envelope
	message := ""
	errorType := ""
	if env != nil {
		message = env.Message
		errorType = env.ErrorType
	}
	lower := strings.ToLower(message)
	received := a.Err == nil && a.StatusCode != 0

	// Password changed elsewhere wins over any status
	if received && message == PasswordChangedMessage {
		return Outcome{Kind: OutcomePasswordChanged, Notify: message, Logout: true}
	}

	if received && a.StatusCode >= 200 && a.StatusCode < 300 {
		if env == nil {
			env = &Envelope{Status: a.StatusCode}
		}
		return Outcome{Kind: OutcomeSuccess, Envelope: env}
	}

	if received && a.StatusCode == http.StatusUnauthorized {
		switch {
		case endpoint == EndpointSignIn && (containsAny(lower, credentialPhrases) || errorType == ErrorTypeInvalidPassword):
			return synthesized(OutcomeInvalidCredentials, MessageInvalidCredentials)

		case containsAny(lower, expiryPhrases) && a.RetryCount < maxRefreshes && a.HasRefreshToken && !a.RefreshFailed:
			return Outcome{Kind: OutcomeRefresh}

		case endpoint == EndpointUpdatePassword && containsAny(lower, oldPasswordPhrases):
			return Outcome{Kind: OutcomeOldPasswordIncorrect, Envelope: env, Deliver: true, Notify: message}

		case endpoint == EndpointSignIn:
			out := Outcome{Kind: OutcomeInvalidCredentials, Envelope: orStatus(env, a.StatusCode), Deliver: true, Notify: MessageInvalidCredentials}
			if containsAny(lower, rolePhrases) {
				out.Kind = OutcomeRoleMismatch
				out.Notify = MessageRoleMismatch
			}
			return out

		default:
			return Outcome{Kind: OutcomeUnauthorized, Notify: fallback(message, MessageAuthFailed), Logout: true}
		}
	}

	if received && env != nil {
		if containsAny(lower, credentialPhrases) || errorType == ErrorTypeInvalidPassword {
			return synthesized(OutcomeInvalidCredentials, MessageInvalidCredentials)
		}
		if containsAny(lower, notFoundPhrases) || errorType == ErrorTypeUserNotFound {
			if endpoint == EndpointSignIn && IsStrongPassword(a.Password) {
				return synthesized(OutcomeInvalidCredentials, MessageInvalidCredentials)
			}
			return synthesized(OutcomeUserNotFound, MessageUserNotFound)
		}
	}

	if a.Err != nil {
		switch {
		case errors.Is(a.Err, internalTypes.ErrTimeout):
			return synthesized(OutcomeTimeout, MessageTimeout)
		case errors.Is(a.Err, internalTypes.ErrNetwork):
			return synthesized(OutcomeNetwork, MessageNetwork)
		case errors.Is(a.Err, context.Canceled):
			return Outcome{
				Kind:      OutcomeUnexpected,
				Envelope:  &Envelope{Message: MessageUnexpected},
				Deliver:   true,
				Cancelled: true,
			}
		}
	}

	if received {
		out := Outcome{Kind: OutcomeServerError, Envelope: orStatus(env, a.StatusCode), Deliver: true}
		if a.StatusCode == http.StatusForbidden || containsAny(lower, permissionPhrases) {
			out.Kind = OutcomePermissionDenied
			return out
		}
		if endpoint == EndpointLogout {
			return out
		}
		out.Notify = fallback(message, MessageGenericFailure)
		return out
	}

	return synthesized(OutcomeUnexpected, MessageUnexpected)
}

// IsStrongPassword reports whether password has an upper-case letter, a
// lower-case letter, a digit, a symbol and at least eight characters.
func IsStrongPassword(password string) bool {
	if len([]rune(password)) < 8 {
		return false
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// IsTokenExpiredMessage reports whether message signals an expired access token
func IsTokenExpiredMessage(message string) bool {
	return containsAny(strings.ToLower(message), expiryPhrases)
}

func synthesized(kind OutcomeKind, message string) Outcome {
	return Outcome{
		Kind:     kind,
		Envelope: &Envelope{Message: message},
		Deliver:  true,
		Notify:   message,
	}
}

func orStatus(env *Envelope, statusCode int) *Envelope {
	if env != nil {
		return env
	}
	return &Envelope{Status: statusCode}
}

func fallback(message, def string) string {
	if strings.TrimSpace(message) == "" {
		return def
	}
	return message
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
