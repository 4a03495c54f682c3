package therapist

import (
	"context"
	"io"
)

// AuthService handles sign in, password recovery and logout
type AuthService interface {
	// SignIn authenticates a therapist and stores the session
	SignIn(ctx context.Context, phone, password string) (*SignInResult, error)

	// ForgotPassword sends a one-time code to phone
	ForgotPassword(ctx context.Context, phone string) error

	// VerifyForgotPasswordOTP exchanges the one-time code for a reset token
	VerifyForgotPasswordOTP(ctx context.Context, phone, otp string) (*ResetTicket, error)

	// ResetPassword sets a new password using a reset ticket
	ResetPassword(ctx context.Context, params *ResetPasswordParams) error

	// UpdatePassword changes the password of the signed-in user
	UpdatePassword(ctx context.Context, oldPassword, newPassword string) error

	// Logout ends the session on the server and always clears it locally
	Logout(ctx context.Context) error
}

// AppointmentService handles appointments
type AppointmentService interface {
	// List retrieves the therapist's appointments
	List(ctx context.Context, params *AppointmentListParams) (*AppointmentPage, error)

	// UpdateStatus moves an appointment to status
	UpdateStatus(ctx context.Context, appointmentID string, status AppointmentStatus) (*Appointment, error)

	// Mine retrieves appointments booked for the signed-in user
	Mine(ctx context.Context) ([]*Appointment, error)
}

// ProfileService handles the therapist profile
type ProfileService interface {
	// Create completes the therapist profile
	Create(ctx context.Context, params *CreateProfileParams) (*TherapistProfile, error)

	// Me retrieves the signed-in therapist's profile
	Me(ctx context.Context) (*TherapistProfile, error)

	// SetAvailability replaces the weekly availability
	SetAvailability(ctx context.Context, slots []*AvailabilitySlot) ([]*AvailabilitySlot, error)
}

// AttendanceService handles client attendance
type AttendanceService interface {
	// Summary retrieves attendance totals for a date range
	Summary(ctx context.Context, params *AttendanceParams) (*AttendanceSummary, error)
}

// FeedbackService handles client feedback
type FeedbackService interface {
	// Mine retrieves feedback left for the signed-in therapist
	Mine(ctx context.Context) ([]*Feedback, error)
}

// ContentService handles static content
type ContentService interface {
	PrivacyPolicy(ctx context.Context) (*Document, error)
	TermsAndConditions(ctx context.Context) (*Document, error)
	Workouts(ctx context.Context) ([]*Workout, error)
}

// UploadService handles file uploads
type UploadService interface {
	// Upload sends a file and returns where it was stored
	Upload(ctx context.Context, filename string, r io.Reader) (*UploadResult, error)
}
