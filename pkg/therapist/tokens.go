package therapist

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// TokenExpiry reads the exp claim of a JWT without verifying it. The
// signature is the backend's business; the client only wants to know
// whether the token is stale.
func TokenExpiry(token string) (time.Time, error) {
	if token == "" {
		return time.Time{}, ErrNotAuthenticated
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, errors.Wrap(err, "failed to parse token")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, errors.Wrap(err, "invalid exp claim")
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}

// AccessTokenExpiry returns when the stored access token expires. A zero
// time means the token carries no expiry.
func (c *Client) AccessTokenExpiry() (time.Time, error) {
	return TokenExpiry(c.store.AccessToken())
}
