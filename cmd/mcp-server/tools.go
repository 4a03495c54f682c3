package main

import (
	"context"
	"fmt"

	"github.com/eshaffer321/therapist-go/pkg/therapist"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// therapistTools holds the therapist client and implements all tool handlers
type therapistTools struct {
	client *therapist.Client
}

// GetAppointments tool - lists appointments with optional filters
type GetAppointmentsInput struct {
	Status string `json:"status,omitempty" jsonschema:"Filter by status: pending, confirmed, completed, cancelled or no-show (optional)"`
	From   string `json:"from,omitempty" jsonschema:"Start date in YYYY-MM-DD format (optional)"`
	To     string `json:"to,omitempty" jsonschema:"End date in YYYY-MM-DD format (optional)"`
	Page   int    `json:"page,omitempty" jsonschema:"Page number starting at 1 (optional)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of appointments per page (default: 20)"`
}

type AppointmentEntry struct {
	ID        string `json:"id" jsonschema:"Appointment ID"`
	Date      string `json:"date" jsonschema:"Appointment date (YYYY-MM-DD)"`
	StartTime string `json:"startTime" jsonschema:"Start time"`
	EndTime   string `json:"endTime" jsonschema:"End time"`
	Client    string `json:"client,omitempty" jsonschema:"Client name"`
	Status    string `json:"status" jsonschema:"Appointment status"`
	Notes     string `json:"notes,omitempty" jsonschema:"Appointment notes"`
}

type GetAppointmentsOutput struct {
	Appointments []AppointmentEntry `json:"appointments" jsonschema:"List of appointments"`
	Count        int                `json:"count" jsonschema:"Number of appointments returned"`
	Total        int                `json:"total,omitempty" jsonschema:"Total appointments matching the filters"`
}

func (t *therapistTools) GetAppointments(ctx context.Context, req *mcp.CallToolRequest, input GetAppointmentsInput) (*mcp.CallToolResult, GetAppointmentsOutput, error) {
	params := &therapist.AppointmentListParams{
		Status: therapist.AppointmentStatus(input.Status),
		Page:   input.Page,
		Limit:  input.Limit,
	}
	if params.Status != "" && !params.Status.Valid() {
		return nil, GetAppointmentsOutput{}, fmt.Errorf("unknown status %q", input.Status)
	}
	if params.Limit <= 0 {
		params.Limit = 20
	}

	var err error
	if params.From, err = parseOptionalDate("from", input.From); err != nil {
		return nil, GetAppointmentsOutput{}, err
	}
	if params.To, err = parseOptionalDate("to", input.To); err != nil {
		return nil, GetAppointmentsOutput{}, err
	}

	page, err := t.client.Appointments.List(ctx, params)
	if err != nil {
		return nil, GetAppointmentsOutput{}, fmt.Errorf("failed to fetch appointments: %w", err)
	}

	entries := make([]AppointmentEntry, 0, len(page.Appointments))
	for _, a := range page.Appointments {
		entry := AppointmentEntry{
			ID:        a.ID,
			Date:      a.Date.String(),
			StartTime: a.StartTime,
			EndTime:   a.EndTime,
			Status:    string(a.Status),
			Notes:     a.Notes,
		}
		if a.Client != nil {
			entry.Client = a.Client.Name
		}
		entries = append(entries, entry)
	}

	out := GetAppointmentsOutput{
		Appointments: entries,
		Count:        len(entries),
	}
	if page.Pagination != nil {
		out.Total = page.Pagination.Total
	}
	return nil, out, nil
}

// GetProfile tool - retrieves the therapist profile
type GetProfileInput struct{}

type AvailabilityEntry struct {
	Day       string `json:"day" jsonschema:"Weekday"`
	StartTime string `json:"startTime" jsonschema:"Start of the window"`
	EndTime   string `json:"endTime" jsonschema:"End of the window"`
}

type GetProfileOutput struct {
	Bio             string              `json:"bio" jsonschema:"Therapist bio"`
	Specialization  []string            `json:"specialization" jsonschema:"Areas of specialization"`
	ExperienceYears int                 `json:"experienceYears" jsonschema:"Years of experience"`
	Languages       []string            `json:"languages,omitempty" jsonschema:"Spoken languages"`
	Availability    []AvailabilityEntry `json:"availability,omitempty" jsonschema:"Weekly availability"`
}

func (t *therapistTools) GetProfile(ctx context.Context, req *mcp.CallToolRequest, input GetProfileInput) (*mcp.CallToolResult, GetProfileOutput, error) {
	profile, err := t.client.Profile.Me(ctx)
	if err != nil {
		return nil, GetProfileOutput{}, fmt.Errorf("failed to fetch profile: %w", err)
	}

	out := GetProfileOutput{
		Bio:             profile.Bio,
		Specialization:  profile.Specialization,
		ExperienceYears: profile.ExperienceYears,
		Languages:       profile.Languages,
	}
	for _, slot := range profile.Availability {
		if slot == nil {
			continue
		}
		out.Availability = append(out.Availability, AvailabilityEntry{
			Day:       slot.Day,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		})
	}
	return nil, out, nil
}

// GetAttendanceSummary tool - attendance totals over a range
type GetAttendanceSummaryInput struct {
	From string `json:"from,omitempty" jsonschema:"Start date in YYYY-MM-DD format (optional)"`
	To   string `json:"to,omitempty" jsonschema:"End date in YYYY-MM-DD format (optional)"`
}

type GetAttendanceSummaryOutput struct {
	Total     int     `json:"total" jsonschema:"Appointments in range"`
	Attended  int     `json:"attended" jsonschema:"Appointments attended"`
	Missed    int     `json:"missed" jsonschema:"Appointments missed"`
	Cancelled int     `json:"cancelled" jsonschema:"Appointments cancelled"`
	Rate      float64 `json:"attendanceRate" jsonschema:"Share of appointments attended"`
}

func (t *therapistTools) GetAttendanceSummary(ctx context.Context, req *mcp.CallToolRequest, input GetAttendanceSummaryInput) (*mcp.CallToolResult, GetAttendanceSummaryOutput, error) {
	params := &therapist.AttendanceParams{}

	var err error
	if params.From, err = parseOptionalDate("from", input.From); err != nil {
		return nil, GetAttendanceSummaryOutput{}, err
	}
	if params.To, err = parseOptionalDate("to", input.To); err != nil {
		return nil, GetAttendanceSummaryOutput{}, err
	}

	summary, err := t.client.Attendance.Summary(ctx, params)
	if err != nil {
		return nil, GetAttendanceSummaryOutput{}, fmt.Errorf("failed to fetch attendance summary: %w", err)
	}

	return nil, GetAttendanceSummaryOutput{
		Total:     summary.Total,
		Attended:  summary.Attended,
		Missed:    summary.Missed,
		Cancelled: summary.Cancelled,
		Rate:      summary.Rate,
	}, nil
}

// GetFeedback tool - client feedback
type GetFeedbackInput struct{}

type FeedbackEntry struct {
	Client  string `json:"client,omitempty" jsonschema:"Client name"`
	Rating  int    `json:"rating" jsonschema:"Rating from 1 to 5"`
	Comment string `json:"comment,omitempty" jsonschema:"Feedback comment"`
	Date    string `json:"date,omitempty" jsonschema:"When the feedback was left (YYYY-MM-DD)"`
}

type GetFeedbackOutput struct {
	Feedback      []FeedbackEntry `json:"feedback" jsonschema:"List of feedback entries"`
	Count         int             `json:"count" jsonschema:"Number of entries"`
	AverageRating float64         `json:"averageRating" jsonschema:"Mean rating across entries"`
}

func (t *therapistTools) GetFeedback(ctx context.Context, req *mcp.CallToolRequest, input GetFeedbackInput) (*mcp.CallToolResult, GetFeedbackOutput, error) {
	feedback, err := t.client.Feedback.Mine(ctx)
	if err != nil {
		return nil, GetFeedbackOutput{}, fmt.Errorf("failed to fetch feedback: %w", err)
	}

	out := GetFeedbackOutput{Feedback: make([]FeedbackEntry, 0, len(feedback))}
	total := 0
	for _, f := range feedback {
		entry := FeedbackEntry{
			Rating:  f.Rating,
			Comment: f.Comment,
		}
		if f.Client != nil {
			entry.Client = f.Client.Name
		}
		if !f.CreatedAt.IsZero() {
			entry.Date = therapist.NewDate(f.CreatedAt).String()
		}
		total += f.Rating
		out.Feedback = append(out.Feedback, entry)
	}

	out.Count = len(out.Feedback)
	if out.Count > 0 {
		out.AverageRating = float64(total) / float64(out.Count)
	}
	return nil, out, nil
}

func parseOptionalDate(field, value string) (*therapist.Date, error) {
	if value == "" {
		return nil, nil
	}
	d, err := therapist.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s format (expected YYYY-MM-DD): %w", field, err)
	}
	return &d, nil
}
