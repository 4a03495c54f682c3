package therapist

import (
	"time"
)

// User is the signed-in account as returned by sign in
type User struct {
	ID                 string `json:"_id"`
	Name               string `json:"name"`
	Phone              string `json:"phone"`
	Email              string `json:"email,omitempty"`
	Role               string `json:"role"`
	Avatar             string `json:"avatar,omitempty"`
	IsProfileCompleted bool   `json:"isProfileCompleted"`
}

// SignInResult is what a successful sign in yields
type SignInResult struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	User         UserData `json:"user"`
}

// ResetTicket authorizes a password reset after OTP verification
type ResetTicket struct {
	ResetToken string `json:"resetToken"`
}

// ResetPasswordParams for resetting a forgotten password
type ResetPasswordParams struct {
	Phone           string `json:"phone"`
	ResetToken      string `json:"resetToken,omitempty"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// AppointmentStatus is the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentNoShow    AppointmentStatus = "no-show"
)

// Valid reports whether s is a known status
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentPending, AppointmentConfirmed, AppointmentCompleted, AppointmentCancelled, AppointmentNoShow:
		return true
	}
	return false
}

// Appointment represents a booked session
type Appointment struct {
	ID        string            `json:"_id"`
	Client    *AppointmentParty `json:"client,omitempty"`
	Therapist *AppointmentParty `json:"therapist,omitempty"`
	Date      Date              `json:"date"`
	StartTime string            `json:"startTime"`
	EndTime   string            `json:"endTime"`
	Status    AppointmentStatus `json:"status"`
	Notes     string            `json:"notes,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// AppointmentParty is one side of an appointment
type AppointmentParty struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// AppointmentListParams filters the appointment list
type AppointmentListParams struct {
	Status AppointmentStatus
	From   *Date
	To     *Date
	Page   int
	Limit  int
}

// Pagination describes a page of results
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// AppointmentPage is one page of appointments
type AppointmentPage struct {
	Appointments []*Appointment `json:"appointments"`
	Pagination   *Pagination    `json:"pagination,omitempty"`
}

// TherapistProfile is the therapist's public profile
type TherapistProfile struct {
	ID              string              `json:"_id,omitempty"`
	Bio             string              `json:"bio"`
	Specialization  []string            `json:"specialization"`
	ExperienceYears int                 `json:"experienceYears"`
	Qualifications  []string            `json:"qualifications,omitempty"`
	Languages       []string            `json:"languages,omitempty"`
	Avatar          string              `json:"avatar,omitempty"`
	Availability    []*AvailabilitySlot `json:"availability,omitempty"`
}

// CreateProfileParams for completing a profile
type CreateProfileParams struct {
	Bio             string   `json:"bio"`
	Specialization  []string `json:"specialization"`
	ExperienceYears int      `json:"experienceYears"`
	Qualifications  []string `json:"qualifications,omitempty"`
	Languages       []string `json:"languages,omitempty"`
	Avatar          string   `json:"avatar,omitempty"`
}

// AvailabilitySlot is a bookable window on a weekday
type AvailabilitySlot struct {
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// AttendanceParams selects the summary range
type AttendanceParams struct {
	From *Date
	To   *Date
}

// AttendanceSummary counts appointment outcomes
type AttendanceSummary struct {
	Total     int     `json:"total"`
	Attended  int     `json:"attended"`
	Missed    int     `json:"missed"`
	Cancelled int     `json:"cancelled"`
	Rate      float64 `json:"attendanceRate"`
}

// Feedback is a client's review of a session
type Feedback struct {
	ID            string            `json:"_id"`
	Client        *AppointmentParty `json:"client,omitempty"`
	AppointmentID string            `json:"appointmentId,omitempty"`
	Rating        int               `json:"rating"`
	Comment       string            `json:"comment"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// Document is a piece of static content
type Document struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Workout is an exercise a therapist can assign
type Workout struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	VideoURL    string `json:"videoUrl,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}

// UploadResult is where an uploaded file ended up
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key,omitempty"`
}
