package therapist

import (
	"golang.org/x/time/rate"
)

// NewRateLimiter returns a token bucket allowing perSecond requests with
// the given burst. A non-positive rate disables limiting.
func NewRateLimiter(perSecond float64, burst int) RateLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
