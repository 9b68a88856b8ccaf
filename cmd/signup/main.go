package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	signup "github.com/gearx-ai/signup"
	"github.com/gearx-ai/signup/internal/analytics"
	"github.com/gearx-ai/signup/internal/config"
	"github.com/gearx-ai/signup/internal/form"
	"github.com/gearx-ai/signup/internal/inquiry"
	"github.com/gearx-ai/signup/internal/logging"
	"github.com/gearx-ai/signup/internal/tui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// CLI is the top-level command structure for signup.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	Form    FormCmd          `cmd:"" default:"1" help:"Fill in the early access sign-up form."`
	Submit  SubmitCmd        `cmd:"" help:"Submit a sign-up without prompting."`
	Track   TrackCmd         `cmd:"" help:"Report page views for routes."`
	Init    InitCmd          `cmd:"" help:"Write the default config to .signup/config.yaml."`
}

// FormCmd runs the interactive form.
type FormCmd struct {
	NoTUI bool   `help:"Force plain line prompts even if stdout is a TTY." default:"false"`
	Page  string `help:"Page URL reported as the current page view." default:"https://gearx.ai/"`
}

// SubmitCmd submits one sign-up from flags.
type SubmitCmd struct {
	Name  string `help:"Full name." required:""`
	Email string `help:"Email address."`
	Phone string `help:"Mobile number." required:""`
}

// TrackCmd reports a page view per route. Routes come from arguments, or one
// per line on stdin when none are given.
type TrackCmd struct {
	Routes []string `arg:"" optional:"" help:"Paths or URLs to report."`
	Site   string   `help:"Base URL that relative routes resolve against." default:"https://gearx.ai/"`
}

// InitCmd writes the default config template.
type InitCmd struct {
	Force bool `help:"Overwrite an existing config file." default:"false"`
}

const (
	exitSuccess    = 0
	exitSubmission = 1
	exitSetup      = 2
)

// loadConfig loads layered config from user and project paths with env overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/signup/config.yaml"),
		".signup/config.yaml",
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// formOptions maps the config section onto form options.
func formOptions(c config.Form) form.Options {
	return form.Options{
		AllowSpaceInName: c.AllowSpaceInName,
		RequireEmail:     c.RequireEmail,
		BlurTouches:      c.BlurTouches,
		TrimName:         c.TrimName,
		TruncatePhone:    c.TruncatePhone,
		Confirmation:     form.Confirmation(c.Confirmation),
		ToastDuration:    c.ToastDuration,
	}
}

// inquirySubmitter delivers form payloads through the inquiry client.
type inquirySubmitter struct {
	client *inquiry.Client
}

func (s inquirySubmitter) Submit(ctx context.Context, p form.Payload) (string, error) {
	res, err := s.client.Submit(ctx, inquiry.Inquiry{
		Name:        p.Name,
		Email:       p.Email,
		PhoneNumber: p.PhoneNumber,
	})
	if err != nil {
		return "", err
	}
	return res.Message, nil
}

func newSubmitter(cfg *config.Config, log *zap.Logger) form.Submitter {
	return inquirySubmitter{client: inquiry.NewClient(cfg.Endpoint,
		inquiry.WithTimeout(cfg.Timeout),
		inquiry.WithLogger(log),
	)}
}

// newReporter wires the Measurement Protocol sender when an API secret is
// configured. Without one the reporter has no event capability and stays silent.
func newReporter(cfg config.Analytics, log *zap.Logger) *analytics.Reporter {
	var send analytics.EventFunc
	if cfg.APISecret != "" {
		mp := analytics.NewMeasurementProtocol(cfg.CollectURL, cfg.MeasurementID, cfg.APISecret,
			analytics.WithLogger(log))
		send = mp.Send
	}
	return analytics.NewReporter(cfg.MeasurementID, send)
}

// Run executes the form command.
func (c *FormCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("form: %w", err)
	}

	route, err := analytics.ParseRoute(c.Page)
	if err != nil {
		return fmt.Errorf("form: invalid --page: %w", err)
	}

	// Console logs would tear the TUI, so they are dropped unless a file is set.
	var fallback io.Writer = os.Stderr
	if !c.NoTUI && isatty.IsTerminal(os.Stdout.Fd()) {
		fallback = nil
	}
	log, err := logging.New(cfg.Log, fallback)
	if err != nil {
		return fmt.Errorf("form: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	display := tui.NewDisplay(tui.DisplayOptions{
		Writer:     os.Stdout,
		Reader:     os.Stdin,
		ForcePlain: c.NoTUI,
		Form:       form.New(formOptions(cfg.Form), form.WithLogger(log)),
		Submitter:  newSubmitter(cfg, log),
		Reporter:   newReporter(cfg.Analytics, log),
		Route:      route,
	})
	return display.Run(ctx)
}

// Run executes the submit command.
func (s *SubmitCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	log, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	f := form.New(formOptions(cfg.Form), form.WithLogger(log))
	return s.run(ctx, os.Stdout, f, newSubmitter(cfg, log))
}

// run fills f from the flags and submits it, enabling testable wiring.
func (s *SubmitCmd) run(ctx context.Context, w io.Writer, f *form.Form, sub form.Submitter) error {
	f.Set(form.FieldName, s.Name)
	f.Set(form.FieldEmail, s.Email)
	f.Set(form.FieldPhone, s.Phone)

	msg, err := f.Submit(ctx, sub)
	var ve *form.ValidationError
	if errors.As(err, &ve) {
		for _, field := range form.Fields {
			if m, ok := ve.Errors[field]; ok {
				_, _ = fmt.Fprintf(w, "  %s: %s\n", field.Label(), m)
			}
		}
	}
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	_, _ = fmt.Fprintf(w, "✓ %s\n", tui.ThankYou)
	if msg != "" {
		_, _ = fmt.Fprintf(w, "  %s\n", msg)
	}
	return nil
}

// Run executes the track command.
func (t *TrackCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("track: %w", err)
	}
	log, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return fmt.Errorf("track: %w", err)
	}
	defer func() { _ = log.Sync() }()

	rep := newReporter(cfg.Analytics, log)
	if !rep.Enabled() {
		return errors.New("track: analytics.measurement_id and analytics.api_secret must be set")
	}
	return t.run(os.Stdin, os.Stdout, rep)
}

// run reports each route through rep, enabling testable wiring.
func (t *TrackCmd) run(r io.Reader, w io.Writer, rep *analytics.Reporter) error {
	site, err := url.Parse(t.Site)
	if err != nil {
		return fmt.Errorf("track: invalid --site: %w", err)
	}

	routes := t.Routes
	if len(routes) == 0 {
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				routes = append(routes, line)
			}
		}
		if err := sc.Err(); err != nil {
			return fmt.Errorf("track: reading routes: %w", err)
		}
	}

	for _, raw := range routes {
		route, err := resolveRoute(site, raw)
		if err != nil {
			return fmt.Errorf("track: %q: %w", raw, err)
		}
		if rep.Observe(route) {
			_, _ = fmt.Fprintf(w, "%s %s\n", analytics.PageView, route.PagePath())
		}
	}
	return nil
}

// resolveRoute turns a path or URL into a Route with an absolute location.
func resolveRoute(site *url.URL, raw string) (analytics.Route, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return analytics.Route{}, err
	}
	if !u.IsAbs() {
		u = site.ResolveReference(u)
	}
	return analytics.ParseRoute(u.String())
}

// Run executes the init command.
func (c *InitCmd) Run() error {
	templates := signup.OverlayFS(os.ExpandEnv("$HOME/.config/signup/templates"), signup.Templates)
	return c.run(os.Stdout, ".signup", templates)
}

// run copies config.yaml from templates into dir, enabling testable wiring.
func (c *InitCmd) run(w io.Writer, dir string, templates fs.FS) error {
	target := filepath.Join(dir, "config.yaml")
	if !c.Force {
		if _, err := os.Stat(target); err == nil {
			return fmt.Errorf("init: %s already exists (use --force to overwrite)", target)
		}
	}

	data, err := fs.ReadFile(templates, "config.yaml")
	if err != nil {
		return fmt.Errorf("init: reading template: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	_, _ = fmt.Fprintf(w, "Wrote %s\n", target)
	return nil
}

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se *inquiry.SubmissionError
	if errors.As(err, &se) {
		return exitSubmission
	}
	// An interrupted submission is a runtime failure, not a setup error.
	if errors.Is(err, context.Canceled) {
		return exitSubmission
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("signup"),
		kong.Description("Sign up for early access."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
