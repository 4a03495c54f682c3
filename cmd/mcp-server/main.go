package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/eshaffer321/therapist-go/internal/config"
	"github.com/eshaffer321/therapist-go/pkg/therapist"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	cfg, err := config.Load(os.Getenv("THERAPIST_CONFIG"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// stdout carries the MCP stream
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	client, err := therapist.NewClient(&therapist.ClientOptions{
		BaseURL:             cfg.BaseURL,
		Timeout:             cfg.Timeout,
		SessionDir:          cfg.SessionDir,
		Headers:             map[string]string{"Accept-Language": cfg.Language},
		Logger:              logger,
		RetryConfig:         cfg.Retry,
		SingleFlightRefresh: true,
		SentryDSN:           cfg.SentryDSN,
		Notifier: therapist.NotifierFunc(func(message string, kind therapist.NotificationKind) {
			logger.Warn(message, "kind", kind)
		}),
	})
	if err != nil {
		log.Fatalf("failed to initialize therapist client: %v", err)
	}
	defer client.Close()

	if !client.GetSession().IsLoggedIn {
		log.Fatal("no stored session: run `therapist signin` first")
	}

	impl := &mcp.Implementation{
		Name:    "therapist",
		Version: "1.0.0",
	}

	server := mcp.NewServer(impl, nil)

	registerTools(server, client)

	// Run server over stdio transport (for Claude Desktop)
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func registerTools(server *mcp.Server, client *therapist.Client) {
	tools := &therapistTools{client: client}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_appointments",
		Description: "List the therapist's appointments with optional status and date filters. Returns date, time window, client name and status for each appointment.",
	}, tools.GetAppointments)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_profile",
		Description: "Get the signed-in therapist's profile including bio, specializations, experience and weekly availability.",
	}, tools.GetProfile)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_attendance_summary",
		Description: "Get attendance totals (attended, missed, cancelled and attendance rate) for an optional date range.",
	}, tools.GetAttendanceSummary)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_feedback",
		Description: "Get feedback clients left for the therapist, with ratings and comments.",
	}, tools.GetFeedback)
}
