package therapist

import (
	"context"
	"net/http"
	"time"

	"github.com/eshaffer321/therapist-go/internal/metrics"
	"github.com/eshaffer321/therapist-go/internal/session"
	"github.com/eshaffer321/therapist-go/internal/transport"
	internalTypes "github.com/eshaffer321/therapist-go/internal/types"
	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultBaseURL is the default therapist API base URL
	DefaultBaseURL = internalTypes.DefaultBaseURL

	// DefaultTimeout is the per-request client deadline
	DefaultTimeout = internalTypes.DefaultTimeout

	// UserAgent is the user agent string
	UserAgent = internalTypes.UserAgent
)

type (
	// Session is the persisted authentication state
	Session = internalTypes.Session

	// UserData is the signed-in user's profile as a mergeable map
	UserData = internalTypes.UserData

	// Envelope is the backend's {status, message, data, errorType} wrapper
	Envelope = internalTypes.Envelope

	// Logger is satisfied by *slog.Logger
	Logger = internalTypes.Logger

	// RetryConfig configures transport-level retries
	RetryConfig = internalTypes.RetryConfig

	// Hooks provides lifecycle hooks for requests
	Hooks = internalTypes.Hooks

	// Form is a multipart request body
	Form = transport.Form

	// FormFile is one file part of a Form
	FormFile = transport.FormFile
)

// Client is the therapist API client. Every request goes through Call.
type Client struct {
	// Service interfaces
	Auth         AuthService
	Appointments AppointmentService
	Profile      ProfileService
	Attendance   AttendanceService
	Feedback     FeedbackService
	Content      ContentService
	Uploads      UploadService

	// Internal fields
	baseURL      string
	httpClient   *http.Client
	transport    Transport
	store        SessionStore
	notifier     Notifier
	options      *ClientOptions
	metrics      *metrics.Collector
	refreshGroup singleflight.Group
}

// ClientOptions configures the client
type ClientOptions struct {
	// BaseURL overrides the default API base URL
	BaseURL string

	// HTTPClient allows using a custom HTTP client
	HTTPClient *http.Client

	// Timeout sets the HTTP client timeout
	Timeout time.Duration

	// Headers are sent with every request, e.g. Accept-Language
	Headers map[string]string

	// Store supplies the session store. When nil one is created from SessionDir.
	Store SessionStore

	// SessionDir is where the session slot is persisted. Empty keeps the
	// session in memory.
	SessionDir string

	// Notifier receives user-facing messages. Defaults to a no-op.
	Notifier Notifier

	// Logger for debug logging
	Logger Logger

	// RetryConfig configures transport retries on 5xx and connection errors
	RetryConfig *RetryConfig

	// RateLimiter for rate limiting
	RateLimiter RateLimiter

	// Hooks for observability
	Hooks *Hooks

	// SingleFlightRefresh collapses concurrent refreshes of the same refresh
	// token into one request. Off by default: each expired call refreshes on
	// its own.
	SingleFlightRefresh bool

	// MetricsRegisterer enables Prometheus metrics when set
	MetricsRegisterer prometheus.Registerer

	// SentryDSN enables Sentry error tracking when set
	SentryDSN string

	// SentryOptions allows custom Sentry configuration
	SentryOptions *sentry.ClientOptions
}

// RateLimiter interface for rate limiting. *rate.Limiter satisfies it.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// Transport dispatches a single HTTP request
type Transport interface {
	Do(ctx context.Context, req *transport.Request) (*transport.Response, error)
}

// SessionStore is the session state the gateway reads and mutates
type SessionStore interface {
	Snapshot() Session
	AccessToken() string
	RefreshToken() string
	SetToken(token string)
	SetRefreshToken(token string)
	SetUserData(user UserData)
	UpdateUserData(partial UserData)
	Logout()
	Subscribe(fn func(Session)) func()
}

var _ SessionStore = (*session.Store)(nil)

// NewClient creates a new therapist API client
func NewClient(opts *ClientOptions) (*Client, error) {
	if opts == nil {
		opts = &ClientOptions{}
	}

	// Initialize Sentry if DSN is provided
	if opts.SentryDSN != "" || opts.SentryOptions != nil {
		sentryOpts := sentry.ClientOptions{}

		// Use provided options if available, otherwise create new ones
		if opts.SentryOptions != nil {
			sentryOpts = *opts.SentryOptions
		}

		// Override DSN if provided separately
		if opts.SentryDSN != "" {
			sentryOpts.Dsn = opts.SentryDSN
		}

		// Set default environment if not provided
		if sentryOpts.Environment == "" {
			sentryOpts.Environment = "production"
		}

		// Tokens travel in headers and bodies; keep them out of events
		if sentryOpts.BeforeSend == nil {
			sentryOpts.BeforeSend = scrubEvent
		}

		if err := sentry.Init(sentryOpts); err != nil {
			// Log error but don't fail client creation
			if opts.Logger != nil {
				opts.Logger.Error("Failed to initialize Sentry", "error", err)
			}
		}
	}

	// Set defaults
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: DefaultTimeout,
		}
	}

	if opts.Timeout > 0 {
		opts.HTTPClient.Timeout = opts.Timeout
	} else if opts.HTTPClient.Timeout == 0 {
		opts.HTTPClient.Timeout = DefaultTimeout
	}

	trans := transport.NewRESTTransport(&transport.Options{
		BaseURL:     opts.BaseURL,
		HTTPClient:  opts.HTTPClient,
		Headers:     opts.Headers,
		RetryConfig: opts.RetryConfig,
		Logger:      opts.Logger,
		Hooks:       opts.Hooks,
	})

	store := opts.Store
	if store == nil {
		var persister session.Persister
		if opts.SessionDir != "" {
			persister = session.NewFilePersister(opts.SessionDir)
		}
		store = session.New(persister, opts.Logger)
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}

	c := &Client{
		baseURL:    trans.BaseURL(),
		httpClient: opts.HTTPClient,
		transport:  trans,
		store:      store,
		notifier:   notifier,
		options:    opts,
	}
	if opts.MetricsRegisterer != nil {
		c.metrics = metrics.New(opts.MetricsRegisterer)
	}

	// Initialize services
	c.initServices()

	return c, nil
}

// initServices initializes all service implementations
func (c *Client) initServices() {
	c.Auth = &authService{client: c}
	c.Appointments = &appointmentService{client: c}
	c.Profile = &profileService{client: c}
	c.Attendance = &attendanceService{client: c}
	c.Feedback = &feedbackService{client: c}
	c.Content = &contentService{client: c}
	c.Uploads = &uploadService{client: c}
}

// Store returns the session store the client reads and mutates
func (c *Client) Store() SessionStore {
	return c.store
}

// GetSession returns a snapshot of the current session
func (c *Client) GetSession() Session {
	return c.store.Snapshot()
}

// SetToken sets the access token
func (c *Client) SetToken(token string) {
	c.store.SetToken(token)
}

// SocketURL returns the streaming-socket URL derived from the base URL
func (c *Client) SocketURL() (string, error) {
	return SocketURL(c.baseURL)
}

// Close flushes any pending Sentry events and performs cleanup
func (c *Client) Close() {
	// Flush Sentry events with a 2 second timeout
	sentry.Flush(2 * time.Second)
}

// scrubEvent drops credentials from outgoing Sentry events
func scrubEvent(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	if event.Request != nil {
		event.Request.Cookies = ""
		event.Request.Data = ""
		delete(event.Request.Headers, "Authorization")
	}
	return event
}
