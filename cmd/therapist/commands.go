package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/eshaffer321/therapist-go/pkg/therapist"
)

var errNotSignedIn = errors.New("not signed in: run `therapist signin` first")

func cmdSignIn(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("signin", a)
	phone := fs.String("phone", "", "Phone number")
	password := fs.String("password", os.Getenv("THERAPIST_PASSWORD"), "Password (defaults to $THERAPIST_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *phone == "" || *password == "" {
		return errors.New("-phone and -password are required")
	}

	result, err := a.client.Auth.SignIn(ctx, *phone, *password)
	if err != nil {
		return err
	}

	name, _ := result.User["name"].(string)
	fmt.Fprintf(a.out, "Signed in as %s\n", fallbackString(name, *phone))
	return nil
}

func cmdLogout(ctx context.Context, a *app, args []string) error {
	if !a.client.GetSession().IsLoggedIn {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	if err := a.client.Auth.Logout(ctx); err != nil {
		// The local session is gone either way
		a.logger.Warn("Server logout failed", "error", err)
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

type statusOutput struct {
	LoggedIn     bool       `json:"loggedIn"`
	Name         string     `json:"name,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	ProfileDone  bool       `json:"isProfileCompleted"`
	TokenExpires *time.Time `json:"tokenExpires,omitempty"`
	SocketURL    string     `json:"socketUrl,omitempty"`
}

func cmdStatus(ctx context.Context, a *app, args []string) error {
	sess := a.client.GetSession()

	out := statusOutput{LoggedIn: sess.IsLoggedIn}
	out.Name, _ = sess.UserData["name"].(string)
	out.Phone, _ = sess.UserData["phone"].(string)
	out.ProfileDone, _ = sess.UserData["isProfileCompleted"].(bool)
	if exp, err := a.client.AccessTokenExpiry(); err == nil && !exp.IsZero() {
		out.TokenExpires = &exp
	}
	if socket, err := a.client.SocketURL(); err == nil {
		out.SocketURL = socket
	}

	if a.json {
		return printJSON(a.out, out)
	}

	if !out.LoggedIn {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	tw := newTable(a.out)
	fmt.Fprintf(tw, "Name:\t%s\n", out.Name)
	fmt.Fprintf(tw, "Phone:\t%s\n", out.Phone)
	fmt.Fprintf(tw, "Profile completed:\t%t\n", out.ProfileDone)
	if out.TokenExpires != nil {
		fmt.Fprintf(tw, "Token expires:\t%s\n", out.TokenExpires.Local().Format(time.RFC1123))
	}
	fmt.Fprintf(tw, "Socket:\t%s\n", out.SocketURL)
	return tw.Flush()
}

func cmdAppointments(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("appointments", a)
	status := fs.String("status", "", "Filter by status")
	from := fs.String("from", "", "Start date (YYYY-MM-DD)")
	to := fs.String("to", "", "End date (YYYY-MM-DD)")
	page := fs.Int("page", 1, "Page number")
	limit := fs.Int("limit", 20, "Page size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireSession(a); err != nil {
		return err
	}

	params := &therapist.AppointmentListParams{
		Status: therapist.AppointmentStatus(*status),
		Page:   *page,
		Limit:  *limit,
	}
	var err error
	if params.From, err = optionalDate(*from); err != nil {
		return err
	}
	if params.To, err = optionalDate(*to); err != nil {
		return err
	}

	result, err := a.client.Appointments.List(ctx, params)
	if err != nil {
		return err
	}
	return printAppointments(a, result.Appointments)
}

func cmdComplete(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("complete", a)
	status := fs.String("status", string(therapist.AppointmentCompleted), "Status to set")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: complete [-status s] <appointment-id>")
	}
	if err := requireSession(a); err != nil {
		return err
	}

	appt, err := a.client.Appointments.UpdateStatus(ctx, fs.Arg(0), therapist.AppointmentStatus(*status))
	if err != nil {
		return err
	}
	if a.json {
		return printJSON(a.out, appt)
	}
	fmt.Fprintf(a.out, "Appointment %s is now %s\n", fs.Arg(0), fallbackString(string(appt.Status), *status))
	return nil
}

func cmdProfile(ctx context.Context, a *app, args []string) error {
	if err := requireSession(a); err != nil {
		return err
	}

	profile, err := a.client.Profile.Me(ctx)
	if err != nil {
		return err
	}
	if a.json {
		return printJSON(a.out, profile)
	}

	tw := newTable(a.out)
	fmt.Fprintf(tw, "Bio:\t%s\n", profile.Bio)
	fmt.Fprintf(tw, "Specialization:\t%s\n", strings.Join(profile.Specialization, ", "))
	fmt.Fprintf(tw, "Experience:\t%d years\n", profile.ExperienceYears)
	for _, slot := range profile.Availability {
		if slot != nil {
			fmt.Fprintf(tw, "Available:\t%s %s-%s\n", slot.Day, slot.StartTime, slot.EndTime)
		}
	}
	return tw.Flush()
}

func cmdAttendance(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("attendance", a)
	from := fs.String("from", "", "Start date (YYYY-MM-DD)")
	to := fs.String("to", "", "End date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireSession(a); err != nil {
		return err
	}

	params := &therapist.AttendanceParams{}
	var err error
	if params.From, err = optionalDate(*from); err != nil {
		return err
	}
	if params.To, err = optionalDate(*to); err != nil {
		return err
	}

	summary, err := a.client.Attendance.Summary(ctx, params)
	if err != nil {
		return err
	}
	if a.json {
		return printJSON(a.out, summary)
	}

	tw := newTable(a.out)
	fmt.Fprintf(tw, "Total:\t%d\n", summary.Total)
	fmt.Fprintf(tw, "Attended:\t%d\n", summary.Attended)
	fmt.Fprintf(tw, "Missed:\t%d\n", summary.Missed)
	fmt.Fprintf(tw, "Cancelled:\t%d\n", summary.Cancelled)
	fmt.Fprintf(tw, "Rate:\t%.1f%%\n", summary.Rate*100)
	return tw.Flush()
}

func cmdFeedback(ctx context.Context, a *app, args []string) error {
	if err := requireSession(a); err != nil {
		return err
	}

	feedback, err := a.client.Feedback.Mine(ctx)
	if err != nil {
		return err
	}
	if a.json {
		return printJSON(a.out, feedback)
	}

	tw := newTable(a.out)
	fmt.Fprintln(tw, "RATING\tCLIENT\tCOMMENT")
	for _, f := range feedback {
		client := ""
		if f.Client != nil {
			client = f.Client.Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", f.Rating, client, f.Comment)
	}
	return tw.Flush()
}

func cmdWorkouts(ctx context.Context, a *app, args []string) error {
	workouts, err := a.client.Content.Workouts(ctx)
	if err != nil {
		return err
	}
	if a.json {
		return printJSON(a.out, workouts)
	}

	tw := newTable(a.out)
	fmt.Fprintln(tw, "ID\tTITLE\tMINUTES")
	for _, w := range workouts {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", w.ID, w.Title, w.Duration)
	}
	return tw.Flush()
}

func cmdWatch(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("watch", a)
	interval := fs.Duration("interval", time.Minute, "Polling interval")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *interval <= 0 {
		return errors.New("-interval must be positive")
	}
	if err := requireSession(a); err != nil {
		return err
	}

	a.serveMetrics(ctx)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		today := therapist.NewDate(time.Now())
		result, err := a.client.Appointments.List(ctx, &therapist.AppointmentListParams{From: &today, To: &today})
		if err != nil {
			a.logger.Warn("Failed to poll appointments", "error", err)
		} else if err := printAppointments(a, result.Appointments); err != nil {
			return err
		}

		if !a.client.GetSession().IsLoggedIn {
			return errNotSignedIn
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func printAppointments(a *app, appts []*therapist.Appointment) error {
	if a.json {
		return printJSON(a.out, appts)
	}

	tw := newTable(a.out)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tCLIENT\tSTATUS")
	for _, appt := range appts {
		client := ""
		if appt.Client != nil {
			client = appt.Client.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s-%s\t%s\t%s\n", appt.ID, appt.Date, appt.StartTime, appt.EndTime, client, appt.Status)
	}
	return tw.Flush()
}

func newFlagSet(name string, a *app) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func requireSession(a *app) error {
	if !a.client.GetSession().IsLoggedIn {
		return errNotSignedIn
	}
	return nil
}

func optionalDate(value string) (*therapist.Date, error) {
	if value == "" {
		return nil, nil
	}
	d, err := therapist.ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func fallbackString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
