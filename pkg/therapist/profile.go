package therapist

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

// profileService implements the ProfileService interface
type profileService struct {
	client *Client
}

// Create completes the profile and marks it completed in the session
func (s *profileService) Create(ctx context.Context, params *CreateProfileParams) (*TherapistProfile, error) {
	if params == nil {
		return nil, errors.New("profile params are required")
	}

	var profile TherapistProfile
	if _, err := s.client.do(ctx, http.MethodPost, EndpointProfile, params, &profile); err != nil {
		return nil, errors.Wrap(err, "failed to create profile")
	}

	s.mergeIntoSession(&profile, true)
	return &profile, nil
}

// Me retrieves the profile and merges it into the session's user data
func (s *profileService) Me(ctx context.Context) (*TherapistProfile, error) {
	var profile TherapistProfile
	if _, err := s.client.do(ctx, http.MethodGet, EndpointProfileMe, nil, &profile); err != nil {
		return nil, errors.Wrap(err, "failed to get profile")
	}

	s.mergeIntoSession(&profile, false)
	return &profile, nil
}

// SetAvailability replaces the weekly availability
func (s *profileService) SetAvailability(ctx context.Context, slots []*AvailabilitySlot) ([]*AvailabilitySlot, error) {
	for i, slot := range slots {
		if slot == nil || slot.Day == "" || slot.StartTime == "" || slot.EndTime == "" {
			return nil, errors.Errorf("availability slot %d is incomplete", i)
		}
	}

	body := map[string]interface{}{"availability": slots}

	var result struct {
		Availability []*AvailabilitySlot `json:"availability"`
	}
	if _, err := s.client.do(ctx, http.MethodPut, EndpointProfileAvailability, body, &result); err != nil {
		return nil, errors.Wrap(err, "failed to set availability")
	}
	return result.Availability, nil
}

func (s *profileService) mergeIntoSession(profile *TherapistProfile, completed bool) {
	data, err := userDataOf(profile)
	if err != nil {
		if s.client.options.Logger != nil {
			s.client.options.Logger.Warn("Failed to convert profile for session", "error", err)
		}
		return
	}

	partial := UserData{"profile": map[string]interface{}(data)}
	if completed {
		partial["isProfileCompleted"] = true
	}
	s.client.store.UpdateUserData(partial)
}
