package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/gearx-ai/signup/internal/analytics"
	"github.com/gearx-ai/signup/internal/form"
)

// Display runs the sign-up form until the user finishes or quits.
type Display interface {
	Run(ctx context.Context) error
}

// DisplayOptions configures display creation.
type DisplayOptions struct {
	Writer     io.Writer           // Output destination (default: os.Stdout).
	Reader     io.Reader           // Input source (default: os.Stdin).
	ForcePlain bool                // Force line prompts even if TTY.
	Form       *form.Form          // Form being edited.
	Submitter  form.Submitter      // Delivers the payload on submit.
	Reporter   *analytics.Reporter // Optional page view reporter.
	Route      analytics.Route     // Route reported as the current page.
}

// NewDisplay returns a TUI display when stdout is a TTY, or a plain
// line-prompt display otherwise. ForcePlain overrides TTY detection.
func NewDisplay(opts DisplayOptions) Display {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	if opts.Reader == nil {
		opts.Reader = os.Stdin
	}

	if opts.ForcePlain || !isTTY(opts.Writer) {
		return &PlainDisplay{opts: opts}
	}

	return &TUIDisplay{opts: opts}
}

// isTTY reports whether w is connected to a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PlainDisplay prompts for each field on its own line, re-prompting invalid
// fields until the form validates or input runs out.
type PlainDisplay struct {
	opts DisplayOptions
}

// Run prompts, submits and prints the outcome. It returns the submission
// error, or the validation error once input is exhausted.
func (d *PlainDisplay) Run(ctx context.Context) error {
	w, f := d.opts.Writer, d.opts.Form
	if d.opts.Reporter != nil {
		d.opts.Reporter.Observe(d.opts.Route)
	}

	sc := bufio.NewScanner(d.opts.Reader)
	pending := form.Fields
	eof := false

	for {
		for _, field := range pending {
			_, _ = fmt.Fprintf(w, "%s: ", field.Label())
			if !sc.Scan() {
				_, _ = fmt.Fprintln(w)
				if err := sc.Err(); err != nil {
					return fmt.Errorf("tui: reading %s: %w", field, err)
				}
				eof = true
				break
			}
			f.Set(field, sc.Text())
		}

		msg, err := f.Submit(ctx, d.opts.Submitter)
		var ve *form.ValidationError
		switch {
		case errors.As(err, &ve):
			d.renderErrors()
			if eof {
				return err
			}
			pending = ve.Errors.Fields()
			continue
		case err != nil:
			_, _ = fmt.Fprintf(w, "alert: %s\n", alertText(err))
			return err
		}

		d.renderSuccess(msg)
		return nil
	}
}

func (d *PlainDisplay) renderErrors() {
	for _, field := range form.Fields {
		if msg := d.opts.Form.Visible(field); msg != "" {
			_, _ = fmt.Fprintf(d.opts.Writer, "  %s: %s\n", field.Label(), msg)
		}
	}
}

func (d *PlainDisplay) renderSuccess(serverMsg string) {
	w := d.opts.Writer
	if d.opts.Form.Options().Confirmation == form.ConfirmReloadAlert {
		_, _ = fmt.Fprintf(w, "alert: %s\n", ThankYou)
		d.opts.Form.Reset()
		if d.opts.Reporter != nil {
			d.opts.Reporter.Reset()
			d.opts.Reporter.Observe(d.opts.Route)
		}
	} else {
		_, _ = fmt.Fprintf(w, "✓ %s\n", ThankYou)
	}
	if serverMsg != "" {
		_, _ = fmt.Fprintf(w, "  %s\n", serverMsg)
	}
}

// TUIDisplay runs the form as a Bubble Tea terminal UI.
// Falls back to PlainDisplay if the TUI program fails to start.
type TUIDisplay struct {
	opts DisplayOptions
}

// Run starts the Bubble Tea program and blocks until the user quits.
func (d *TUIDisplay) Run(ctx context.Context) error {
	var mopts []ModelOption
	mopts = append(mopts, WithContext(ctx))
	if d.opts.Reporter != nil {
		mopts = append(mopts, WithReporter(d.opts.Reporter, d.opts.Route))
	}
	model := NewModel(d.opts.Form, d.opts.Submitter, mopts...)

	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(d.opts.Reader),
		tea.WithOutput(d.opts.Writer),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		plain := &PlainDisplay{opts: d.opts}
		return plain.Run(ctx)
	}
	return nil
}
