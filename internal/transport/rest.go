package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/eshaffer321/therapist-go/internal/types"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

const (
	authHeaderKey    = "Authorization"
	requestIDKey     = "X-Request-ID"
	contentTypeJSON  = "application/json"
	maxLoggedBodyLen = 200
)

// RESTTransport dispatches JSON and multipart requests to the backend
type RESTTransport struct {
	baseURL     string
	httpClient  *http.Client
	retryClient *retryablehttp.Client
	headers     map[string]string
	logger      types.Logger
	hooks       *types.Hooks
}

// Request is a single dispatch
type Request struct {
	Method    string
	Endpoint  string
	Body      interface{}
	Headers   map[string]string
	Multipart bool
	Token     string
}

// Response is a received HTTP response. Envelope is nil when the body is not
// a JSON object.
type Response struct {
	StatusCode int
	Envelope   *types.Envelope
	Body       []byte
	Duration   time.Duration
}

// OK reports whether the status is 2xx
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// NewRESTTransport creates a new REST transport
func NewRESTTransport(opts *Options) *RESTTransport {
	if opts == nil {
		opts = &Options{}
	}

	// Set defaults
	if opts.BaseURL == "" {
		opts.BaseURL = types.DefaultBaseURL
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: types.DefaultTimeout,
		}
	}

	// Create retry client if configured
	var retryClient *retryablehttp.Client
	if opts.RetryConfig != nil {
		retryClient = retryablehttp.NewClient()
		retryClient.HTTPClient = opts.HTTPClient
		retryClient.RetryMax = opts.RetryConfig.MaxRetries
		retryClient.RetryWaitMin = opts.RetryConfig.RetryWait
		retryClient.RetryWaitMax = opts.RetryConfig.MaxWait
		// Hand the last response back instead of a "giving up" error so
		// status classification still sees the envelope.
		retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

		if opts.Logger != nil {
			retryClient.Logger = &retryLogger{logger: opts.Logger}
		} else {
			retryClient.Logger = nil
		}
	}

	headers := map[string]string{
		"User-Agent": types.UserAgent,
	}

	// Merge custom headers
	for k, v := range opts.Headers {
		headers[k] = v
	}

	return &RESTTransport{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		httpClient:  opts.HTTPClient,
		retryClient: retryClient,
		headers:     headers,
		logger:      opts.Logger,
		hooks:       opts.Hooks,
	}
}

// BaseURL returns the configured base URL
func (t *RESTTransport) BaseURL() string {
	return t.baseURL
}

// SupportedMethod reports whether the gateway dispatches method
func SupportedMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// Do sends req. A non-nil error means no response was received; it wraps
// types.ErrTimeout or types.ErrNetwork when the failure is one of those.
func (t *RESTTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	if !SupportedMethod(req.Method) {
		return nil, errors.Wrapf(types.ErrUnsupportedMethod, "method %q", req.Method)
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, t.url(req.Endpoint), body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	// Defaults, then caller headers, then the headers the gateway owns
	for k, v := range t.headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("Accept", contentTypeJSON)
	httpReq.Header.Set("Content-Type", contentType)
	if req.Token != "" {
		httpReq.Header.Set(authHeaderKey, "Bearer "+req.Token)
	}
	if httpReq.Header.Get(requestIDKey) == "" {
		httpReq.Header.Set(requestIDKey, uuid.New().String())
	}

	// Call request hook
	if t.hooks != nil && t.hooks.OnRequest != nil {
		t.hooks.OnRequest(ctx, httpReq)
	}

	if t.logger != nil {
		t.logger.Debug("API request", "method", req.Method, "endpoint", req.Endpoint, "multipart", req.Multipart)
	}

	start := time.Now()
	resp, err := t.doRequest(httpReq)
	duration := time.Since(start)

	if err != nil {
		err = classifyTransportError(err)
		if t.hooks != nil && t.hooks.OnError != nil {
			t.hooks.OnError(ctx, err)
		}
		if t.logger != nil {
			t.logger.Debug("API request failed", "endpoint", req.Endpoint, "duration", duration, "error", err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	// Call response hook
	if t.hooks != nil && t.hooks.OnResponse != nil {
		t.hooks.OnResponse(ctx, resp, duration)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(errors.Wrap(err, "failed to read response"))
	}

	if t.logger != nil {
		t.logger.Debug("API response", "endpoint", req.Endpoint, "status", resp.StatusCode, "duration", duration, "size", len(respBody))
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Duration:   duration,
		Envelope:   parseEnvelope(resp.StatusCode, respBody),
	}
	if out.Envelope == nil && !out.OK() && t.logger != nil {
		t.logger.Debug("Unstructured error response", "status", resp.StatusCode,
			"description", httpStatusDescription(resp.StatusCode), "body", truncate(string(respBody)))
	}

	return out, nil
}

func (t *RESTTransport) url(endpoint string) string {
	return t.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

// doRequest executes the HTTP request with retry if configured
func (t *RESTTransport) doRequest(req *http.Request) (*http.Response, error) {
	if t.retryClient != nil {
		// Convert to retryable request
		retryReq, err := retryablehttp.FromRequest(req)
		if err != nil {
			return nil, err
		}
		return t.retryClient.Do(retryReq)
	}
	return t.httpClient.Do(req)
}

func encodeBody(req *Request) (io.Reader, string, error) {
	if req.Multipart {
		form, ok := req.Body.(*Form)
		if !ok || form == nil {
			return nil, "", errors.Errorf("multipart request to %s needs a *transport.Form body", req.Endpoint)
		}
		buf, contentType, err := form.encode()
		if err != nil {
			return nil, "", err
		}
		return buf, contentType, nil
	}

	if req.Body == nil {
		return nil, contentTypeJSON, nil
	}

	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to marshal request")
	}
	return bytes.NewReader(data), contentTypeJSON, nil
}

// parseEnvelope decodes a JSON object body. Status falls back to the HTTP
// status when the backend omits it.
func parseEnvelope(statusCode int, body []byte) *types.Envelope {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}

	var env types.Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil
	}
	if env.Status == 0 {
		env.Status = statusCode
	}
	return &env
}

// classifyTransportError tags errors raised before a response arrived
func classifyTransportError(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %w", types.ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		return err
	case isNetworkError(err):
		return fmt.Errorf("%w: %w", types.ErrNetwork, err)
	}
	return err
}

func isNetworkError(err error) bool {
	var opErr *net.OpError
	var dnsErr *net.DNSError
	return errors.As(err, &opErr) ||
		errors.As(err, &dnsErr) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

// httpStatusDescription returns a human-readable description for common HTTP status codes.
// This helps users understand errors like 525 (SSL Handshake Failed) which are Cloudflare-specific.
func httpStatusDescription(statusCode int) string {
	descriptions := map[int]string{
		500: "Internal Server Error",
		502: "Bad Gateway",
		503: "Service Unavailable",
		504: "Gateway Timeout",
		520: "Web Server Error",
		521: "Web Server Is Down",
		522: "Connection Timed Out",
		523: "Origin Is Unreachable",
		524: "A Timeout Occurred",
		525: "SSL Handshake Failed",
		526: "Invalid SSL Certificate",
	}
	if desc, ok := descriptions[statusCode]; ok {
		return desc
	}
	return http.StatusText(statusCode)
}

// truncate shortens long bodies for logging
func truncate(s string) string {
	if len(s) <= maxLoggedBodyLen {
		return s
	}
	return s[:maxLoggedBodyLen] + "..."
}

// Options for REST transport
type Options struct {
	BaseURL     string
	HTTPClient  *http.Client
	Headers     map[string]string
	RetryConfig *types.RetryConfig
	Logger      types.Logger
	Hooks       *types.Hooks
}

// retryLogger adapts our logger to retryablehttp
type retryLogger struct {
	logger types.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keysAndValues...)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keysAndValues...)
}
