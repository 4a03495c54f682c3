package therapist

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// attendanceService implements the AttendanceService interface
type attendanceService struct {
	client *Client
}

// Summary retrieves attendance totals
func (s *attendanceService) Summary(ctx context.Context, params *AttendanceParams) (*AttendanceSummary, error) {
	query := url.Values{}
	if params != nil {
		if params.From != nil {
			query.Set("from", params.From.String())
		}
		if params.To != nil {
			query.Set("to", params.To.String())
		}
	}

	var summary AttendanceSummary
	if _, err := s.client.do(ctx, http.MethodGet, withQuery(EndpointAttendanceSummary, query), nil, &summary); err != nil {
		return nil, errors.Wrap(err, "failed to get attendance summary")
	}
	return &summary, nil
}
