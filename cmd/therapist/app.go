package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/eshaffer321/therapist-go/internal/config"
	"github.com/eshaffer321/therapist-go/pkg/therapist"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const usage = `usage: therapist [flags] <command> [args]

commands:
  signin        sign in and store the session
  logout        end the session
  status        show the stored session
  appointments  list appointments
  complete      mark an appointment completed
  profile       show the therapist profile
  attendance    show attendance totals
  feedback      list client feedback
  workouts      list workouts
  watch         poll today's appointments until interrupted
`

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"signin":       cmdSignIn,
	"logout":       cmdLogout,
	"status":       cmdStatus,
	"appointments": cmdAppointments,
	"complete":     cmdComplete,
	"profile":      cmdProfile,
	"attendance":   cmdAttendance,
	"feedback":     cmdFeedback,
	"workouts":     cmdWorkouts,
	"watch":        cmdWatch,
}

// app is what every command gets
type app struct {
	client   *therapist.Client
	cfg      config.Config
	logger   *slog.Logger
	out      io.Writer
	errOut   io.Writer
	json     bool
	registry *prometheus.Registry
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("therapist", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		fmt.Fprintln(stderr, "\nflags:")
		flags.PrintDefaults()
	}

	configPath := flags.String("config", os.Getenv("THERAPIST_CONFIG"), "Path to config file")
	verbose := flags.Bool("verbose", false, "Verbose output")
	asJSON := flags.Bool("json", false, "Print results as JSON")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	name := flags.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		flags.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}

	a, err := newApp(cfg, *verbose, *asJSON, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to create client: %v\n", err)
		return 1
	}
	defer a.client.Close()

	if err := cmd(ctx, a, flags.Args()[1:]); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 1
	}
	return 0
}

func newApp(cfg config.Config, verbose, asJSON bool, stdout, stderr io.Writer) (*app, error) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	a := &app{
		cfg:    cfg,
		logger: logger,
		out:    stdout,
		errOut: stderr,
		json:   asJSON,
	}

	opts := &therapist.ClientOptions{
		BaseURL:             cfg.BaseURL,
		Timeout:             cfg.Timeout,
		SessionDir:          cfg.SessionDir,
		Headers:             map[string]string{"Accept-Language": cfg.Language},
		Logger:              logger,
		RetryConfig:         cfg.Retry,
		SingleFlightRefresh: cfg.SingleFlightRefresh,
		SentryDSN:           cfg.SentryDSN,
		Notifier:            therapist.NotifierFunc(a.notify),
	}
	if cfg.RateLimit != nil {
		opts.RateLimiter = therapist.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)
	}
	if cfg.MetricsAddr != "" {
		a.registry = prometheus.NewRegistry()
		opts.MetricsRegisterer = a.registry
	}

	client, err := therapist.NewClient(opts)
	if err != nil {
		return nil, err
	}
	a.client = client
	return a, nil
}

func (a *app) notify(message string, kind therapist.NotificationKind) {
	fmt.Fprintf(a.errOut, "%s: %s\n", kind, message)
}

// serveMetrics exposes the registry on cfg.MetricsAddr until ctx is done
func (a *app) serveMetrics(ctx context.Context) {
	if a.registry == nil {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              a.cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	go func() {
		a.logger.Info("Serving metrics", "addr", a.cfg.MetricsAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Metrics server failed", "error", err)
		}
	}()
}
