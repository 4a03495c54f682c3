package therapist

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

// feedbackService implements the FeedbackService interface
type feedbackService struct {
	client *Client
}

// Mine retrieves feedback for the signed-in therapist
func (s *feedbackService) Mine(ctx context.Context) ([]*Feedback, error) {
	var feedback []*Feedback
	if _, err := s.client.do(ctx, http.MethodGet, EndpointMyFeedback, nil, &feedback); err != nil {
		return nil, errors.Wrap(err, "failed to get feedback")
	}
	return feedback, nil
}
