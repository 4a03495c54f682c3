package therapist

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

// contentService implements the ContentService interface
type contentService struct {
	client *Client
}

// PrivacyPolicy retrieves the privacy policy
func (s *contentService) PrivacyPolicy(ctx context.Context) (*Document, error) {
	return s.document(ctx, EndpointPrivacyPolicy)
}

// TermsAndConditions retrieves the terms and conditions
func (s *contentService) TermsAndConditions(ctx context.Context) (*Document, error) {
	return s.document(ctx, EndpointTermsAndConditions)
}

// Workouts retrieves the workout catalogue
func (s *contentService) Workouts(ctx context.Context) ([]*Workout, error) {
	var workouts []*Workout
	if _, err := s.client.do(ctx, http.MethodGet, EndpointWorkouts, nil, &workouts); err != nil {
		return nil, errors.Wrap(err, "failed to get workouts")
	}
	return workouts, nil
}

func (s *contentService) document(ctx context.Context, endpoint string) (*Document, error) {
	var doc Document
	if _, err := s.client.do(ctx, http.MethodGet, endpoint, nil, &doc); err != nil {
		return nil, errors.Wrapf(err, "failed to get %s", endpoint)
	}
	return &doc, nil
}
