package therapist

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

// appointmentService implements the AppointmentService interface
type appointmentService struct {
	client *Client
}

// List retrieves the therapist's appointments
func (s *appointmentService) List(ctx context.Context, params *AppointmentListParams) (*AppointmentPage, error) {
	query := url.Values{}
	if params != nil {
		if params.Status != "" {
			query.Set("status", string(params.Status))
		}
		if params.From != nil {
			query.Set("from", params.From.String())
		}
		if params.To != nil {
			query.Set("to", params.To.String())
		}
		if params.Page > 0 {
			query.Set("page", strconv.Itoa(params.Page))
		}
		if params.Limit > 0 {
			query.Set("limit", strconv.Itoa(params.Limit))
		}
	}

	var page AppointmentPage
	if _, err := s.client.do(ctx, http.MethodGet, withQuery(EndpointTherapistAppointments, query), nil, &page); err != nil {
		return nil, errors.Wrap(err, "failed to list appointments")
	}
	return &page, nil
}

// UpdateStatus moves an appointment to status
func (s *appointmentService) UpdateStatus(ctx context.Context, appointmentID string, status AppointmentStatus) (*Appointment, error) {
	if appointmentID == "" {
		return nil, errors.New("appointment ID is required")
	}
	if !status.Valid() {
		return nil, errors.Errorf("unknown appointment status %q", status)
	}

	body := map[string]string{"status": string(status)}
	endpoint := EndpointTherapistAppointments + "/" + url.PathEscape(appointmentID)

	var appt Appointment
	if _, err := s.client.do(ctx, http.MethodPatch, endpoint, body, &appt); err != nil {
		return nil, errors.Wrap(err, "failed to update appointment")
	}
	return &appt, nil
}

// Mine retrieves appointments booked for the signed-in user
func (s *appointmentService) Mine(ctx context.Context) ([]*Appointment, error) {
	var appts []*Appointment
	if _, err := s.client.do(ctx, http.MethodGet, EndpointMyAppointments, nil, &appts); err != nil {
		return nil, errors.Wrap(err, "failed to get appointments")
	}
	return appts, nil
}
