package therapist

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// Endpoints relative to the base URL
const (
	EndpointSignIn                  = "auth/signin"
	EndpointRefreshToken            = "auth/refresh-token"
	EndpointForgotPassword          = "auth/forgot-password"
	EndpointVerifyForgotPasswordOTP = "auth/verify-otp-forgot-password"
	EndpointResetPassword           = "auth/reset-password"
	EndpointUpdatePassword          = "auth/update-password"
	EndpointLogout                  = "auth/logout"
	EndpointTherapistAppointments   = "appointments/therapists"
	EndpointMyAppointments          = "appointments/me"
	EndpointProfile                 = "therapist/profile"
	EndpointProfileMe               = "therapist/profile/me"
	EndpointProfileAvailability     = "therapist/profile/availability"
	EndpointAttendanceSummary       = "attendance/summary"
	EndpointMyFeedback              = "feedback/me"
	EndpointPrivacyPolicy           = "privacy-policy"
	EndpointTermsAndConditions      = "terms-and-conditions"
	EndpointWorkouts                = "workouts"
	EndpointUpload                  = "s3/upload"
)

// endpointPath normalizes an endpoint for comparison: no slashes at either
// end and no query string.
func endpointPath(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	return strings.Trim(endpoint, "/")
}

// withQuery appends encoded values to endpoint
func withQuery(endpoint string, values url.Values) string {
	if len(values) == 0 {
		return endpoint
	}
	return endpoint + "?" + values.Encode()
}

// SocketURL swaps the base URL's scheme for its socket variant (http->ws,
// https->wss) and drops the path.
func SocketURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse base URL")
	}

	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	case "http", "ws":
		u.Scheme = "ws"
	default:
		return "", errors.Errorf("unsupported base URL scheme %q", u.Scheme)
	}

	u.Path = ""
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
