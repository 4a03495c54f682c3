package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eshaffer321/therapist-go/pkg/therapist"
)

func newTestTools(t *testing.T, routes map[string]string) *therapistTools {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"status":404,"message":"route missing"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)

	client, err := therapist.NewClient(&therapist.ClientOptions{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	client.SetToken("access-1")

	return &therapistTools{client: client}
}

func TestGetAppointmentsTool(t *testing.T) {
	tools := newTestTools(t, map[string]string{
		"/appointments/therapists": `{"status":200,"data":{
			"appointments":[{"_id":"a1","date":"2025-09-01","startTime":"09:00","endTime":"10:00","status":"confirmed","client":{"_id":"c1","name":"Sam"}}],
			"pagination":{"page":1,"limit":20,"total":1,"totalPages":1}}}`,
	})

	_, output, err := tools.GetAppointments(context.Background(), nil, GetAppointmentsInput{Status: "confirmed", From: "2025-09-01"})
	if err != nil {
		t.Fatalf("GetAppointments failed: %v", err)
	}

	if output.Count != 1 {
		t.Fatalf("Count = %d, want 1", output.Count)
	}
	if got := output.Appointments[0]; got.Client != "Sam" || got.Date != "2025-09-01" {
		t.Errorf("unexpected appointment %+v", got)
	}
	if output.Total != 1 {
		t.Errorf("Total = %d, want 1", output.Total)
	}
}

func TestGetAppointmentsTool_RejectsBadInput(t *testing.T) {
	tools := newTestTools(t, nil)

	if _, _, err := tools.GetAppointments(context.Background(), nil, GetAppointmentsInput{Status: "archived"}); err == nil {
		t.Error("expected error for unknown status")
	}
	if _, _, err := tools.GetAppointments(context.Background(), nil, GetAppointmentsInput{From: "09/01/2025"}); err == nil {
		t.Error("expected error for bad date")
	}
}

func TestGetProfileTool(t *testing.T) {
	tools := newTestTools(t, map[string]string{
		"/therapist/profile/me": `{"status":200,"data":{"bio":"Sports rehab","specialization":["knee"],"experienceYears":6,
			"availability":[{"day":"monday","startTime":"09:00","endTime":"12:00"}]}}`,
	})

	_, output, err := tools.GetProfile(context.Background(), nil, GetProfileInput{})
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}

	if output.Bio != "Sports rehab" || output.ExperienceYears != 6 {
		t.Errorf("unexpected profile %+v", output)
	}
	if len(output.Availability) != 1 || output.Availability[0].Day != "monday" {
		t.Errorf("unexpected availability %+v", output.Availability)
	}
}

func TestGetAttendanceSummaryTool(t *testing.T) {
	tools := newTestTools(t, map[string]string{
		"/attendance/summary": `{"status":200,"data":{"total":4,"attended":3,"missed":1,"cancelled":0,"attendanceRate":0.75}}`,
	})

	_, output, err := tools.GetAttendanceSummary(context.Background(), nil, GetAttendanceSummaryInput{From: "2025-09-01", To: "2025-09-30"})
	if err != nil {
		t.Fatalf("GetAttendanceSummary failed: %v", err)
	}

	if output.Attended != 3 || output.Rate != 0.75 {
		t.Errorf("unexpected summary %+v", output)
	}
}

func TestGetFeedbackTool(t *testing.T) {
	tools := newTestTools(t, map[string]string{
		"/feedback/me": `{"status":200,"data":[
			{"_id":"f1","rating":5,"comment":"Great","createdAt":"2025-09-02T10:00:00Z","client":{"_id":"c1","name":"Sam"}},
			{"_id":"f2","rating":4}]}`,
	})

	_, output, err := tools.GetFeedback(context.Background(), nil, GetFeedbackInput{})
	if err != nil {
		t.Fatalf("GetFeedback failed: %v", err)
	}

	if output.Count != 2 {
		t.Fatalf("Count = %d, want 2", output.Count)
	}
	if output.AverageRating != 4.5 {
		t.Errorf("AverageRating = %v, want 4.5", output.AverageRating)
	}
	if output.Feedback[0].Date != "2025-09-02" || output.Feedback[0].Client != "Sam" {
		t.Errorf("unexpected entry %+v", output.Feedback[0])
	}
}

func TestGetFeedbackTool_ServerError(t *testing.T) {
	tools := newTestTools(t, map[string]string{})

	if _, _, err := tools.GetFeedback(context.Background(), nil, GetFeedbackInput{}); err == nil {
		t.Error("expected error when the backend fails")
	}
}
