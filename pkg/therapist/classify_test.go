package therapist

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(status int, message string) *Envelope {
	return &Envelope{Status: status, Message: message}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		attempt     Attempt
		wantKind    OutcomeKind
		wantEnv     *Envelope
		wantDeliver bool
		wantNotify  string
		wantLogout  bool
	}{
		{
			name:       "password changed beats success status",
			attempt:    Attempt{Endpoint: EndpointMyAppointments, StatusCode: 200, Envelope: env(200, PasswordChangedMessage)},
			wantKind:   OutcomePasswordChanged,
			wantNotify: PasswordChangedMessage,
			wantLogout: true,
		},
		{
			name:       "password changed on error status",
			attempt:    Attempt{Endpoint: EndpointProfileMe, StatusCode: 403, Envelope: env(403, PasswordChangedMessage)},
			wantKind:   OutcomePasswordChanged,
			wantNotify: PasswordChangedMessage,
			wantLogout: true,
		},
		{
			name:     "success",
			attempt:  Attempt{Endpoint: EndpointWorkouts, StatusCode: 200, Envelope: env(200, "ok")},
			wantKind: OutcomeSuccess,
			wantEnv:  env(200, "ok"),
		},
		{
			name:     "success without body",
			attempt:  Attempt{Endpoint: EndpointWorkouts, StatusCode: 204},
			wantKind: OutcomeSuccess,
			wantEnv:  &Envelope{Status: 204},
		},
		{
			name:        "sign in with bad password",
			attempt:     Attempt{Endpoint: EndpointSignIn, StatusCode: 401, Envelope: env(401, "Invalid password")},
			wantKind:    OutcomeInvalidCredentials,
			wantEnv:     &Envelope{Message: MessageInvalidCredentials},
			wantDeliver: true,
			wantNotify:  MessageInvalidCredentials,
		},
		{
			name: "sign in keyed on error type",
			attempt: Attempt{Endpoint: EndpointSignIn, StatusCode: 401,
				Envelope: &Envelope{Status: 401, Message: "nope", ErrorType: ErrorTypeInvalidPassword}},
			wantKind:    OutcomeInvalidCredentials,
			wantEnv:     &Envelope{Message: MessageInvalidCredentials},
			wantDeliver: true,
			wantNotify:  MessageInvalidCredentials,
		},
		{
			name:     "expired token with refresh token",
			attempt:  Attempt{Endpoint: EndpointMyAppointments, StatusCode: 401, Envelope: env(401, "jwt expired"), HasRefreshToken: true},
			wantKind: OutcomeRefresh,
		},
		{
			name:     "second expiry still refreshes",
			attempt:  Attempt{Endpoint: EndpointMyAppointments, StatusCode: 401, Envelope: env(401, "Token expired"), HasRefreshToken: true, RetryCount: 1},
			wantKind: OutcomeRefresh,
		},
		{
			name:       "expired token refresh exhausted after two refreshes",
			attempt:    Attempt{Endpoint: EndpointMyAppointments, StatusCode: 401, Envelope: env(401, "jwt expired"), HasRefreshToken: true, RetryCount: 2},
			wantKind:   OutcomeUnauthorized,
			wantNotify: "jwt expired",
			wantLogout: true,
		},
		{
			name:       "expired token refresh needs a refresh token",
			attempt:    Attempt{Endpoint: EndpointMyAppointments, StatusCode: 401, Envelope: env(401, "jwt expired")},
			wantKind:   OutcomeUnauthorized,
			wantNotify: "jwt expired",
			wantLogout: true,
		},
		{
			name:       "expired token refresh skipped after failed refresh",
			attempt:    Attempt{Endpoint: EndpointMyAppointments, StatusCode: 401, Envelope: env(401, "jwt expired"), HasRefreshToken: true, RefreshFailed: true},
			wantKind:   OutcomeUnauthorized,
			wantNotify: "jwt expired",
			wantLogout: true,
		},
		{
			name:        "wrong old password",
			attempt:     Attempt{Endpoint: EndpointUpdatePassword, StatusCode: 401, Envelope: env(401, "Old password is incorrect")},
			wantKind:    OutcomeOldPasswordIncorrect,
			wantEnv:     env(401, "Old password is incorrect"),
			wantDeliver: true,
			wantNotify:  "Old password is incorrect",
		},
		{
			name:        "role mismatch on sign in",
			attempt:     Attempt{Endpoint: EndpointSignIn, StatusCode: 401, Envelope: env(401, "Only therapist accounts may sign in")},
			wantKind:    OutcomeRoleMismatch,
			wantEnv:     env(401, "Only therapist accounts may sign in"),
			wantDeliver: true,
			wantNotify:  MessageRoleMismatch,
		},
		{
			name:        "other sign in rejection",
			attempt:     Attempt{Endpoint: EndpointSignIn + "?lang=en", StatusCode: 401, Envelope: env(401, "Account locked")},
			wantKind:    OutcomeInvalidCredentials,
			wantEnv:     env(401, "Account locked"),
			wantDeliver: true,
			wantNotify:  MessageInvalidCredentials,
		},
		{
			name:       "unauthorized elsewhere",
			attempt:    Attempt{Endpoint: EndpointProfileMe, StatusCode: 401, Envelope: env(401, "Unauthorized")},
			wantKind:   OutcomeUnauthorized,
			wantNotify: "Unauthorized",
			wantLogout: true,
		},
		{
			name:       "unauthorized without body",
			attempt:    Attempt{Endpoint: EndpointProfileMe, StatusCode: 401},
			wantKind:   OutcomeUnauthorized,
			wantNotify: MessageAuthFailed,
			wantLogout: true,
		},
		{
			name:        "credential message on other status",
			attempt:     Attempt{Endpoint: EndpointResetPassword, StatusCode: 400, Envelope: env(400, "Password too short")},
			wantKind:    OutcomeInvalidCredentials,
			wantEnv:     &Envelope{Message: MessageInvalidCredentials},
			wantDeliver: true,
			wantNotify:  MessageInvalidCredentials,
		},
		{
			name:        "user not found",
			attempt:     Attempt{Endpoint: EndpointForgotPassword, StatusCode: 404, Envelope: env(404, "User not found")},
			wantKind:    OutcomeUserNotFound,
			wantEnv:     &Envelope{Message: MessageUserNotFound},
			wantDeliver: true,
			wantNotify:  MessageUserNotFound,
		},
		{
			name:        "unknown phone with strong password reads as bad credentials",
			attempt:     Attempt{Endpoint: EndpointSignIn, StatusCode: 404, Envelope: env(404, "No account for this phone"), Password: "Str0ng!Pass"},
			wantKind:    OutcomeInvalidCredentials,
			wantEnv:     &Envelope{Message: MessageInvalidCredentials},
			wantDeliver: true,
			wantNotify:  MessageInvalidCredentials,
		},
		{
			name:        "unknown phone with weak password",
			attempt:     Attempt{Endpoint: EndpointSignIn, StatusCode: 404, Envelope: env(404, "No account for this phone"), Password: "weak"},
			wantKind:    OutcomeUserNotFound,
			wantEnv:     &Envelope{Message: MessageUserNotFound},
			wantDeliver: true,
			wantNotify:  MessageUserNotFound,
		},
		{
			name:        "timeout",
			attempt:     Attempt{Endpoint: EndpointWorkouts, Err: fmt.Errorf("%w: deadline", ErrTimeout)},
			wantKind:    OutcomeTimeout,
			wantEnv:     &Envelope{Message: MessageTimeout},
			wantDeliver: true,
			wantNotify:  MessageTimeout,
		},
		{
			name:        "network",
			attempt:     Attempt{Endpoint: EndpointWorkouts, Err: fmt.Errorf("%w: refused", ErrNetwork)},
			wantKind:    OutcomeNetwork,
			wantEnv:     &Envelope{Message: MessageNetwork},
			wantDeliver: true,
			wantNotify:  MessageNetwork,
		},
		{
			name:        "server error",
			attempt:     Attempt{Endpoint: EndpointWorkouts, StatusCode: 500, Envelope: env(500, "Database down")},
			wantKind:    OutcomeServerError,
			wantEnv:     env(500, "Database down"),
			wantDeliver: true,
			wantNotify:  "Database down",
		},
		{
			name:        "non JSON error page",
			attempt:     Attempt{Endpoint: EndpointWorkouts, StatusCode: 502},
			wantKind:    OutcomeServerError,
			wantEnv:     &Envelope{Status: 502},
			wantDeliver: true,
			wantNotify:  MessageGenericFailure,
		},
		{
			name:        "forbidden stays quiet",
			attempt:     Attempt{Endpoint: EndpointAttendanceSummary, StatusCode: 403, Envelope: env(403, "Access denied")},
			wantKind:    OutcomePermissionDenied,
			wantEnv:     env(403, "Access denied"),
			wantDeliver: true,
		},
		{
			name:        "permission wording stays quiet",
			attempt:     Attempt{Endpoint: EndpointAttendanceSummary, StatusCode: 400, Envelope: env(400, "You do not have permission")},
			wantKind:    OutcomePermissionDenied,
			wantEnv:     env(400, "You do not have permission"),
			wantDeliver: true,
		},
		{
			name:        "logout failure stays quiet",
			attempt:     Attempt{Endpoint: EndpointLogout, StatusCode: 500, Envelope: env(500, "boom")},
			wantKind:    OutcomeServerError,
			wantEnv:     env(500, "boom"),
			wantDeliver: true,
		},
		{
			name:        "unexpected",
			attempt:     Attempt{Endpoint: EndpointWorkouts, Err: fmt.Errorf("tls: handshake failure")},
			wantKind:    OutcomeUnexpected,
			wantEnv:     &Envelope{Message: MessageUnexpected},
			wantDeliver: true,
			wantNotify:  MessageUnexpected,
		},
		{
			name:        "caller cancelled stays quiet",
			attempt:     Attempt{Endpoint: EndpointWorkouts, Err: fmt.Errorf("rate limiter: %w", context.Canceled)},
			wantKind:    OutcomeUnexpected,
			wantEnv:     &Envelope{Message: MessageUnexpected},
			wantDeliver: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.attempt)

			assert.Equal(t, tt.wantKind, got.Kind, "kind %s", got.Kind)
			assert.Equal(t, tt.wantEnv, got.Envelope)
			assert.Equal(t, tt.wantDeliver, got.Deliver)
			assert.Equal(t, tt.wantNotify, got.Notify)
			assert.Equal(t, tt.wantLogout, got.Logout)
			assert.Equal(t, errors.Is(tt.attempt.Err, context.Canceled), got.Cancelled)
		})
	}
}

func TestClassify_AtMostOneDelivery(t *testing.T) {
	statuses := []int{0, 200, 400, 401, 403, 404, 500}
	messages := []string{"", "jwt expired", "Invalid password", PasswordChangedMessage, "User not found"}

	for _, status := range statuses {
		for _, msg := range messages {
			a := Attempt{Endpoint: EndpointSignIn, StatusCode: status, HasRefreshToken: true}
			if status == 0 {
				a.Err = ErrNetwork
			} else {
				a.Envelope = env(status, msg)
			}

			got := Classify(a)

			delivered := 0
			if got.Kind == OutcomeSuccess {
				delivered++
			}
			if got.Deliver {
				delivered++
			}
			if got.Logout {
				delivered++
			}
			if got.Kind != OutcomeRefresh {
				assert.Equal(t, 1, delivered, "status %d message %q", status, msg)
			}
		}
	}
}

func TestIsStrongPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Str0ng!Pass", true},
		{"Aa1!aaaa", true},
		{"Aa1!aaa", false},
		{"alllower1!", false},
		{"ALLUPPER1!", false},
		{"NoDigits!!", false},
		{"NoSymbol11", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsStrongPassword(tt.password), tt.password)
	}
}

func TestIsTokenExpiredMessage(t *testing.T) {
	assert.True(t, IsTokenExpiredMessage("JWT expired"))
	assert.True(t, IsTokenExpiredMessage("Access token expired, please refresh"))
	assert.False(t, IsTokenExpiredMessage("Unauthorized"))
}

func TestOutcomeKind_String(t *testing.T) {
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "permission_denied", OutcomePermissionDenied.String())
	assert.Equal(t, "unknown", OutcomeKind(99).String())
}

func TestOutcomeError(t *testing.T) {
	err := outcomeError(Outcome{Kind: OutcomeServerError, Envelope: env(503, "maintenance")})

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "SERVER_ERROR", apiErr.Code)
	assert.Equal(t, 503, apiErr.StatusCode)
	assert.Equal(t, "maintenance", apiErr.Message)
	assert.ErrorIs(t, err, ErrServerError)
	assert.True(t, IsRetryable(err))

	err = outcomeError(synthesized(OutcomeInvalidCredentials, MessageInvalidCredentials))
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.True(t, IsAuthError(err))
	assert.False(t, IsRetryable(err))
	assert.Equal(t, MessageInvalidCredentials, EnvelopeOf(err).Message)

	err = outcomeError(Outcome{Kind: OutcomePermissionDenied, Envelope: env(403, "")})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, MessageGenericFailure, err.Error())
}
