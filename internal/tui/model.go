package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gearx-ai/signup/internal/analytics"
	"github.com/gearx-ai/signup/internal/form"
)

var placeholders = map[form.Field]string{
	form.FieldName:  "Enter Your Full Name",
	form.FieldEmail: "Enter Your Email Address",
	form.FieldPhone: "Enter Your Mobile Number",
}

// Model is the Bubble Tea model for the sign-up form.
type Model struct {
	form      *form.Form
	submitter form.Submitter
	ctx       context.Context
	reporter  *analytics.Reporter
	route     analytics.Route

	inputs  []textinput.Model // Indexed like form.Fields.
	focus   int               // len(inputs) is the submit control.
	spinner spinner.Model
	help    help.Model
	keys    formKeys
	alerts  alertKeys

	toast    string
	toastSeq int // Incremented per toast; stale expiry messages are ignored.

	alert           string
	reloadOnDismiss bool

	quitting bool
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithContext sets the context passed to the submitter.
func WithContext(ctx context.Context) ModelOption {
	return func(m *Model) { m.ctx = ctx }
}

// WithReporter reports route as a page view on start and after each reload.
func WithReporter(r *analytics.Reporter, route analytics.Route) ModelOption {
	return func(m *Model) {
		m.reporter = r
		m.route = route
	}
}

// NewModel creates a Model editing f and delivering through s.
func NewModel(f *form.Form, s form.Submitter, opts ...ModelOption) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		form:      f,
		submitter: s,
		ctx:       context.Background(),
		spinner:   sp,
		help:      help.New(),
		keys:      FormKeyMap(),
		alerts:    AlertKeyMap(),
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.inputs = make([]textinput.Model, len(form.Fields))
	for i, field := range form.Fields {
		in := textinput.New()
		in.Prompt = "> "
		in.Placeholder = placeholders[field]
		in.SetValue(f.Value(field))
		m.inputs[i] = in
	}
	m.inputs[0].Focus()
	return m
}

// Init starts the cursor blink and reports the initial page view.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.reportCmd())
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case SubmitResultMsg:
		return m.handleResult(msg)

	case ToastExpiredMsg:
		if msg.Seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case spinner.TickMsg:
		if m.form.Status() != form.Submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.alert != "" {
			return m.handleAlertKey(msg)
		}
		return m.handleKey(msg)
	}

	if m.focus < len(m.inputs) {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey processes keys while the form is editable.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		return m.moveFocus(1)
	case key.Matches(msg, m.keys.Prev):
		return m.moveFocus(-1)
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}

	if m.focus >= len(m.inputs) {
		return m, nil
	}
	field := form.Fields[m.focus]
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	raw := m.inputs[m.focus].Value()
	if v := m.form.Set(field, raw); v != raw {
		m.inputs[m.focus].SetValue(v)
	}
	return m, cmd
}

// handleAlertKey swallows everything but dismissal while an alert is up.
func (m Model) handleAlertKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.alerts.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.alerts.Dismiss):
		m.alert = ""
		if m.reloadOnDismiss {
			return m.reload()
		}
	}
	return m, nil
}

// moveFocus cycles focus by delta across the inputs and the submit control.
// The field losing focus is marked blurred.
func (m Model) moveFocus(delta int) (tea.Model, tea.Cmd) {
	if m.focus < len(m.inputs) {
		m.form.Blur(form.Fields[m.focus])
		m.inputs[m.focus].Blur()
	}
	n := len(m.inputs) + 1
	m.focus = ((m.focus+delta)%n + n) % n
	if m.focus < len(m.inputs) {
		return m, m.inputs[m.focus].Focus()
	}
	return m, nil
}

// submit starts a submission unless validation fails or one is in flight.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.focus < len(m.inputs) {
		m.form.Blur(form.Fields[m.focus])
	}
	p, err := m.form.Begin()
	if err != nil {
		// Validation errors are now visible inline; re-entry is ignored.
		return m, nil
	}
	return m, tea.Batch(m.spinner.Tick, submitCmd(m.ctx, m.submitter, p))
}

// handleResult settles the in-flight submission.
func (m Model) handleResult(msg SubmitResultMsg) (tea.Model, tea.Cmd) {
	m.form.Finish(msg.Err)
	if msg.Err != nil {
		m.alert = alertText(msg.Err)
		return m, nil
	}

	m.syncInputs()
	m = m.focusFirst()

	if m.form.Options().Confirmation == form.ConfirmReloadAlert {
		m.alert = ThankYou
		m.reloadOnDismiss = true
		return m, nil
	}

	m.toastSeq++
	m.toast = ThankYou
	return m, toastCmd(m.toastSeq, m.form.Options().ToastDuration)
}

// reload rebuilds the page state, as a browser reload would.
func (m Model) reload() (tea.Model, tea.Cmd) {
	m.form.Reset()
	m.reloadOnDismiss = false
	m.toast = ""
	m.toastSeq++
	m.syncInputs()
	m = m.focusFirst()
	if m.reporter != nil {
		m.reporter.Reset()
	}
	return m, m.reportCmd()
}

func (m Model) focusFirst() Model {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.focus = 0
	m.inputs[0].Focus()
	return m
}

func (m *Model) syncInputs() {
	for i, field := range form.Fields {
		m.inputs[i].SetValue(m.form.Value(field))
	}
}

// reportCmd forwards the current route as a page view off the update loop.
func (m Model) reportCmd() tea.Cmd {
	if m.reporter == nil {
		return nil
	}
	r, route := m.reporter, m.route
	return func() tea.Msg {
		r.Observe(route)
		return nil
	}
}

// alertText returns the user-facing message for a submission failure.
func alertText(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Submission failed"
}

// View renders the form, the submit control, any toast and the help bar.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	if m.alert != "" {
		b.WriteString(AlertBox().Render(m.alert))
		b.WriteString("\n\n")
		b.WriteString(m.help.View(HelpBindings(true)))
		return b.String()
	}

	if m.toast != "" {
		b.WriteString(toastStyle.Render(m.toast))
		b.WriteString("\n\n")
	}

	b.WriteString(titleStyle.Render("Sign Up for Early Access Now!"))
	b.WriteString("\n\n")

	for i, field := range form.Fields {
		b.WriteString(labelStyle.Render(field.Label()))
		b.WriteString("\n")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
		if msg := m.form.Visible(field); msg != "" {
			b.WriteString(errorStyle.Render(msg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	submitting := m.form.Status() == form.Submitting
	label := "Submit"
	if submitting {
		label = m.spinner.View() + " Submitting"
	}
	b.WriteString(ButtonStyle(m.focus == len(m.inputs), submitting).Render(label))
	b.WriteString("\n\n")
	b.WriteString(m.help.View(HelpBindings(false)))

	return b.String()
}
