package therapist

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// authService implements the AuthService interface
type authService struct {
	client *Client
}

// SignIn authenticates a therapist. On success the tokens and user data are
// written to the session store.
func (s *authService) SignIn(ctx context.Context, phone, password string) (*SignInResult, error) {
	if strings.TrimSpace(phone) == "" || password == "" {
		return nil, &Error{Code: "INVALID_INPUT", Message: "phone and password are required", Err: ErrInvalidCredentials}
	}

	body := map[string]string{
		"phone":    phone,
		"password": password,
	}

	var result SignInResult
	if _, err := s.client.do(ctx, http.MethodPost, EndpointSignIn, body, &result); err != nil {
		return nil, errors.Wrap(err, "failed to sign in")
	}

	if result.AccessToken == "" {
		return nil, &Error{Code: "NO_TOKEN", Message: "no access token in sign in response", Err: ErrNotAuthenticated}
	}

	store := s.client.store
	store.SetToken(result.AccessToken)
	if result.RefreshToken != "" {
		store.SetRefreshToken(result.RefreshToken)
	}
	user := result.User
	if user == nil {
		user = UserData{}
	}
	store.SetUserData(user)

	if s.client.options.Logger != nil {
		s.client.options.Logger.Info("Signed in", "phone", maskPhone(phone))
	}

	return &result, nil
}

// ForgotPassword requests a one-time code
func (s *authService) ForgotPassword(ctx context.Context, phone string) error {
	body := map[string]string{"phone": phone}

	if _, err := s.client.do(ctx, http.MethodPost, EndpointForgotPassword, body, nil); err != nil {
		return errors.Wrap(err, "failed to request password reset")
	}
	return nil
}

// VerifyForgotPasswordOTP checks the one-time code
func (s *authService) VerifyForgotPasswordOTP(ctx context.Context, phone, otp string) (*ResetTicket, error) {
	body := map[string]string{
		"phone": phone,
		"otp":   otp,
	}

	var ticket ResetTicket
	if _, err := s.client.do(ctx, http.MethodPost, EndpointVerifyForgotPasswordOTP, body, &ticket); err != nil {
		return nil, errors.Wrap(err, "failed to verify code")
	}
	return &ticket, nil
}

// ResetPassword sets a new password
func (s *authService) ResetPassword(ctx context.Context, params *ResetPasswordParams) error {
	if params == nil {
		return errors.New("reset password params are required")
	}
	if params.ConfirmPassword != "" && params.ConfirmPassword != params.NewPassword {
		return &Error{Code: "PASSWORD_MISMATCH", Message: "passwords do not match"}
	}

	if _, err := s.client.do(ctx, http.MethodPost, EndpointResetPassword, params, nil); err != nil {
		return errors.Wrap(err, "failed to reset password")
	}
	return nil
}

// UpdatePassword changes the signed-in user's password
func (s *authService) UpdatePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := map[string]string{
		"oldPassword": oldPassword,
		"newPassword": newPassword,
	}

	if _, err := s.client.do(ctx, http.MethodPost, EndpointUpdatePassword, body, nil); err != nil {
		return errors.Wrap(err, "failed to update password")
	}
	return nil
}

// Logout tells the server, then clears the local session whatever the
// server said.
func (s *authService) Logout(ctx context.Context) error {
	_, err := s.client.do(ctx, http.MethodPost, EndpointLogout, nil, nil)
	s.client.store.Logout()
	if err != nil {
		return errors.Wrap(err, "server logout failed")
	}
	return nil
}

// userDataOf converts v into a mergeable map
func userDataOf(v interface{}) (UserData, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out UserData
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// maskPhone keeps the last four digits for logs
func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
