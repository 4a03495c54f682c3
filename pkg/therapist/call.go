package therapist

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/eshaffer321/therapist-go/internal/transport"
	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
)

// Request is one gateway call
type Request struct {
	Method   string
	Endpoint string

	// Body is JSON-encoded, or must be a *Form when Multipart is set
	Body interface{}

	// Headers are layered under the gateway's Accept, Content-Type and
	// Authorization headers
	Headers map[string]string

	Multipart bool

	OnSuccess func(env *Envelope)
	OnError   func(env *Envelope)
}

// Call dispatches req and delivers the result through its callbacks. Server,
// network and auth failures never come back as an error: they reach OnError,
// the notifier or a forced logout. The returned error is reserved for
// programming faults such as an unsupported method.
func (c *Client) Call(ctx context.Context, req *Request) error {
	_, err := c.call(ctx, req)
	return err
}

// call runs the bounded refresh loop and returns the delivered outcome
func (c *Client) call(ctx context.Context, req *Request) (Outcome, error) {
	if req == nil {
		return Outcome{}, errors.New("nil request")
	}
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if !transport.SupportedMethod(method) {
		return Outcome{}, errors.Wrapf(ErrUnsupportedMethod, "method %q", req.Method)
	}

	start := time.Now()
	password := submittedPassword(req)

	var outcome Outcome
	for retryCount := 0; ; retryCount++ {
		attempt := c.dispatch(ctx, method, req, retryCount)
		attempt.Password = password
		outcome = Classify(attempt)

		if outcome.Kind != OutcomeRefresh {
			break
		}

		if c.options.Logger != nil {
			c.options.Logger.Info("Access token expired, refreshing", "endpoint", req.Endpoint, "retryCount", retryCount)
		}
		if err := c.refresh(ctx); err != nil {
			if c.options.Logger != nil {
				c.options.Logger.Warn("Token refresh failed", "endpoint", req.Endpoint, "error", err)
			}
			attempt.RefreshFailed = true
			outcome = Classify(attempt)
			break
		}
	}

	c.deliver(ctx, method, req, outcome)
	c.metrics.ObserveCall(method, req.Endpoint, outcome.Kind.String(), time.Since(start))
	return outcome, nil
}

// dispatch sends one attempt and describes it for the classifier
func (c *Client) dispatch(ctx context.Context, method string, req *Request, retryCount int) Attempt {
	snap := c.store.Snapshot()
	attempt := Attempt{
		Endpoint:        req.Endpoint,
		RetryCount:      retryCount,
		HasRefreshToken: snap.RefreshToken != "",
	}

	if c.options.RateLimiter != nil {
		if err := c.options.RateLimiter.Wait(ctx); err != nil {
			attempt.Err = errors.Wrap(err, "rate limiter")
			return attempt
		}
	}

	resp, err := c.transport.Do(ctx, &transport.Request{
		Method:    method,
		Endpoint:  req.Endpoint,
		Body:      req.Body,
		Headers:   req.Headers,
		Multipart: req.Multipart,
		Token:     snap.AccessToken,
	})
	if err != nil {
		attempt.Err = err
		return attempt
	}

	attempt.StatusCode = resp.StatusCode
	attempt.Envelope = resp.Envelope
	return attempt
}

// deliver applies exactly one of: OnSuccess, OnError, forced logout
func (c *Client) deliver(ctx context.Context, method string, req *Request, outcome Outcome) {
	logger := c.options.Logger

	switch {
	case outcome.Kind == OutcomeSuccess:
		env := outcome.Envelope
		if logger != nil {
			if env.ErrorType != "" {
				logger.Warn("API call succeeded with error type", "endpoint", req.Endpoint, "errorType", env.ErrorType, "message", env.Message)
			} else if env.Message != "" {
				logger.Info("API call succeeded", "endpoint", req.Endpoint, "message", env.Message)
			}
		}
		if req.OnSuccess != nil {
			req.OnSuccess(env)
		}
		return

	case outcome.Logout:
		if logger != nil {
			logger.Warn("Forcing logout", "endpoint", req.Endpoint, "reason", outcome.Kind.String())
		}
		c.store.Logout()

	case outcome.Deliver:
		if logger != nil {
			logger.Debug("API call failed", "endpoint", req.Endpoint, "outcome", outcome.Kind.String())
		}
		if req.OnError != nil {
			req.OnError(outcome.Envelope)
		}
	}

	if outcome.Notify != "" {
		c.notifier.Notify(outcome.Notify, NotifyError)
	}

	c.capture(ctx, method, req.Endpoint, outcome)
}

// refresh mints a new access token from the stored refresh token
func (c *Client) refresh(ctx context.Context) error {
	refreshToken := c.store.RefreshToken()
	if refreshToken == "" {
		return ErrNotAuthenticated
	}

	var err error
	if c.options.SingleFlightRefresh {
		_, err, _ = c.refreshGroup.Do(refreshToken, func() (interface{}, error) {
			return nil, c.doRefresh(ctx, refreshToken)
		})
	} else {
		err = c.doRefresh(ctx, refreshToken)
	}

	result := "ok"
	if err != nil {
		result = "failed"
	}
	c.metrics.ObserveRefresh(result)
	return err
}

func (c *Client) doRefresh(ctx context.Context, refreshToken string) error {
	resp, err := c.transport.Do(ctx, &transport.Request{
		Method:   http.MethodPost,
		Endpoint: EndpointRefreshToken,
		Body:     map[string]string{"refreshToken": refreshToken},
	})
	if err != nil {
		return errors.Wrap(err, "refresh request failed")
	}
	if !resp.OK() || resp.Envelope == nil {
		msg := ""
		if resp.Envelope != nil {
			msg = resp.Envelope.Message
		}
		return &Error{
			Code:       "REFRESH_FAILED",
			Message:    fallback(msg, "refresh rejected"),
			StatusCode: resp.StatusCode,
			Envelope:   resp.Envelope,
			Err:        ErrSessionExpired,
		}
	}

	var tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := resp.Envelope.Decode(&tokens); err != nil {
		return errors.Wrap(err, "failed to parse refresh response")
	}
	if tokens.AccessToken == "" {
		return errors.New("no access token in refresh response")
	}

	c.store.SetToken(tokens.AccessToken)
	if tokens.RefreshToken != "" {
		c.store.SetRefreshToken(tokens.RefreshToken)
	}

	if c.options.Logger != nil {
		c.options.Logger.Info("Access token refreshed")
	}
	return nil
}

// capture sends unexpected failures to Sentry. Credential, permission,
// logout and cancelled outcomes stay out.
func (c *Client) capture(ctx context.Context, method, endpoint string, outcome Outcome) {
	if outcome.Cancelled {
		return
	}
	switch outcome.Kind {
	case OutcomeServerError, OutcomeTimeout, OutcomeNetwork, OutcomeUnexpected:
	default:
		return
	}

	err := outcomeError(outcome)
	configure := func(scope *sentry.Scope) {
		scope.SetTag("api.endpoint", endpointPath(endpoint))
		scope.SetTag("api.method", method)
		scope.SetTag("api.outcome", outcome.Kind.String())
		if outcome.Envelope != nil {
			scope.SetContext("envelope", map[string]interface{}{
				"status":    outcome.Envelope.Status,
				"message":   outcome.Envelope.Message,
				"errorType": outcome.Envelope.ErrorType,
			})
		}
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			configure(scope)
			hub.CaptureException(err)
		})
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		configure(scope)
		sentry.CaptureException(err)
	})
}

// submittedPassword pulls the password out of a sign-in body
func submittedPassword(req *Request) string {
	if endpointPath(req.Endpoint) != EndpointSignIn || req.Body == nil || req.Multipart {
		return ""
	}
	data, err := json.Marshal(req.Body)
	if err != nil {
		return ""
	}
	var creds struct {
		Password string `json:"password"`
	}
	_ = json.Unmarshal(data, &creds)
	return creds.Password
}

// do is the typed helper the services use: it runs the call and decodes
// the envelope data into out.
func (c *Client) do(ctx context.Context, method, endpoint string, body interface{}, out interface{}) (*Envelope, error) {
	return c.doRequest(ctx, &Request{Method: method, Endpoint: endpoint, Body: body}, out)
}

func (c *Client) doRequest(ctx context.Context, req *Request, out interface{}) (*Envelope, error) {
	outcome, err := c.call(ctx, req)
	if err != nil {
		return nil, err
	}
	if outcome.Kind != OutcomeSuccess {
		return outcome.Envelope, outcomeError(outcome)
	}
	if out != nil {
		if err := outcome.Envelope.Decode(out); err != nil {
			return outcome.Envelope, errors.Wrapf(err, "failed to decode %s response", endpointPath(req.Endpoint))
		}
	}
	return outcome.Envelope, nil
}
