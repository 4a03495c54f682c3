package therapist

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAppointment_DateAcceptsServerTimestamps(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		want    string
		wantErr bool
	}{
		{name: "calendar day", date: `"2025-08-30"`, want: "2025-08-30"},
		{name: "mongo timestamp", date: `"2025-08-30T09:30:00.000Z"`, want: "2025-08-30"},
		{name: "local timestamp without zone", date: `"2025-08-30T09:30:00"`, want: "2025-08-30"},
		{name: "unscheduled", date: `null`, want: ""},
		{name: "day first", date: `"30/08/2025"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var appt Appointment
			err := json.Unmarshal([]byte(`{"_id":"a-1","status":"pending","date":`+tt.date+`}`), &appt)

			if (err != nil) != tt.wantErr {
				t.Fatalf("unmarshal appointment error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && appt.Date.String() != tt.want {
				t.Errorf("appointment date = %q, want %q", appt.Date.String(), tt.want)
			}
		})
	}
}

func TestAttendanceParams_DateRangeQuery(t *testing.T) {
	from := NewDate(time.Date(2025, 8, 1, 17, 0, 0, 0, time.UTC))
	to, err := ParseDate("2025-08-31T23:59:59")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}

	got, err := json.Marshal(struct {
		From *Date `json:"from"`
		To   *Date `json:"to"`
		Skip *Date `json:"skip"`
	}{From: &from, To: &to, Skip: &Date{}})
	if err != nil {
		t.Fatalf("marshal range error = %v", err)
	}

	want := `{"from":"2025-08-01","to":"2025-08-31","skip":null}`
	if string(got) != want {
		t.Errorf("marshalled range = %s, want %s", got, want)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-08-30T23:15:00Z")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d.String() != "2025-08-30" {
		t.Errorf("ParseDate() = %v, want 2025-08-30", d.String())
	}

	if _, err := ParseDate("30/08/2025"); err == nil {
		t.Error("ParseDate() expected error for unsupported layout")
	}
}

func TestNewDate_DropsClock(t *testing.T) {
	d := NewDate(time.Date(2025, 8, 30, 18, 45, 0, 0, time.UTC))
	if !d.Equal(time.Date(2025, 8, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("NewDate() = %v, want midnight", d.Time)
	}
}

func TestAppointment_DateParsing(t *testing.T) {
	jsonData := `{
		"_id": "123",
		"date": "2025-08-30",
		"startTime": "10:00",
		"endTime": "11:00",
		"status": "confirmed",
		"createdAt": "2025-08-01T09:00:00Z",
		"updatedAt": "2025-08-02T09:00:00Z"
	}`

	var appt Appointment
	err := json.Unmarshal([]byte(jsonData), &appt)
	if err != nil {
		t.Fatalf("Failed to unmarshal appointment: %v", err)
	}

	if appt.Date.String() != "2025-08-30" {
		t.Errorf("Appointment date = %v, want 2025-08-30", appt.Date.String())
	}
	if appt.Status != AppointmentConfirmed {
		t.Errorf("Appointment status = %v, want confirmed", appt.Status)
	}
}
