package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"github.com/gearx-ai/signup/internal/analytics"
	"github.com/gearx-ai/signup/internal/form"
)

// stubSubmitter records payloads and returns a fixed outcome.
type stubSubmitter struct {
	mu    sync.Mutex
	calls []form.Payload
	msg   string
	err   error
}

func (s *stubSubmitter) Submit(_ context.Context, p form.Payload) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, p)
	return s.msg, s.err
}

func (s *stubSubmitter) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func typeRunes(m tea.Model, text string) tea.Model {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func press(m tea.Model, k tea.KeyType) (tea.Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: k})
}

// fillValid types a valid name, email and phone, leaving focus on the button.
func fillValid(m tea.Model) tea.Model {
	m = typeRunes(m, "Jane")
	m, _ = press(m, tea.KeyTab)
	m = typeRunes(m, "jane@example.com")
	m, _ = press(m, tea.KeyTab)
	m = typeRunes(m, "5551234567")
	m, _ = press(m, tea.KeyTab)
	return m
}

func TestNewModel_FocusesFirstField(t *testing.T) {
	m := NewModel(form.New(form.DefaultOptions()), &stubSubmitter{})

	if m.focus != 0 {
		t.Errorf("focus = %d, want 0", m.focus)
	}
	if len(m.inputs) != len(form.Fields) {
		t.Fatalf("inputs = %d, want %d", len(m.inputs), len(form.Fields))
	}
	if !m.inputs[0].Focused() {
		t.Error("first input should be focused")
	}
	if m.inputs[0].Placeholder != "Enter Your Full Name" {
		t.Errorf("placeholder = %q", m.inputs[0].Placeholder)
	}
}

func TestModel_Init_ReturnsCmd(t *testing.T) {
	m := NewModel(form.New(form.DefaultOptions()), &stubSubmitter{})
	if m.Init() == nil {
		t.Fatal("Init() should return a non-nil Cmd for the cursor blink")
	}
}

func TestModel_Typing_NormalizesName(t *testing.T) {
	f := form.New(form.DefaultOptions())
	var m tea.Model = NewModel(f, &stubSubmitter{})

	m = typeRunes(m, "Jo3h n!")

	if got := f.Value(form.FieldName); got != "John" {
		t.Errorf("form name = %q, want %q", got, "John")
	}
	if got := m.(Model).inputs[0].Value(); got != "John" {
		t.Errorf("input name = %q, want %q", got, "John")
	}
}

func TestModel_Typing_NormalizesPhone(t *testing.T) {
	f := form.New(form.DefaultOptions())
	var m tea.Model = NewModel(f, &stubSubmitter{})

	m, _ = press(m, tea.KeyTab)
	m, _ = press(m, tea.KeyTab)
	m = typeRunes(m, "(555) 123-4567")

	if got := f.Value(form.FieldPhone); got != "5551234567" {
		t.Errorf("form phone = %q, want %q", got, "5551234567")
	}
	if got := m.(Model).inputs[2].Value(); got != "5551234567" {
		t.Errorf("input phone = %q, want %q", got, "5551234567")
	}
}

func TestModel_Typing_SpacesAllowedWhenEnabled(t *testing.T) {
	opts := form.DefaultOptions()
	opts.AllowSpaceInName = true
	f := form.New(opts)
	typeRunes(NewModel(f, &stubSubmitter{}), "Ana Lu")

	if got := f.Value(form.FieldName); got != "Ana Lu" {
		t.Errorf("name = %q, want %q", got, "Ana Lu")
	}
}

func TestModel_FocusCycles(t *testing.T) {
	var m tea.Model = NewModel(form.New(form.DefaultOptions()), &stubSubmitter{})

	for i := 1; i <= len(form.Fields); i++ {
		m, _ = press(m, tea.KeyTab)
		if got := m.(Model).focus; got != i {
			t.Fatalf("after %d tabs focus = %d, want %d", i, got, i)
		}
	}
	m, _ = press(m, tea.KeyTab)
	if got := m.(Model).focus; got != 0 {
		t.Errorf("focus should wrap to 0, got %d", got)
	}
	m, _ = press(m, tea.KeyShiftTab)
	if got := m.(Model).focus; got != len(form.Fields) {
		t.Errorf("shift+tab from first field: focus = %d, want %d", got, len(form.Fields))
	}
}

func TestModel_ErrorsHiddenUntilSubmit(t *testing.T) {
	var m tea.Model = NewModel(form.New(form.DefaultOptions()), &stubSubmitter{})

	m, _ = press(m, tea.KeyTab)
	if strings.Contains(m.View(), form.MsgNameRequired) {
		t.Error("errors should stay hidden before a submit attempt")
	}
}

func TestModel_BlurTouchesShowsFieldError(t *testing.T) {
	opts := form.DefaultOptions()
	opts.BlurTouches = true
	var m tea.Model = NewModel(form.New(opts), &stubSubmitter{})

	m, _ = press(m, tea.KeyTab)
	view := m.View()
	if !strings.Contains(view, form.MsgNameRequired) {
		t.Errorf("blurred name should show %q, got:\n%s", form.MsgNameRequired, view)
	}
	if strings.Contains(view, form.MsgPhoneRequired) {
		t.Error("phone was never blurred and should not show an error")
	}
}

func TestModel_SubmitInvalid_ShowsErrorsWithoutNetwork(t *testing.T) {
	sub := &stubSubmitter{}
	f := form.New(form.DefaultOptions())
	var m tea.Model = NewModel(f, sub)

	m = typeRunes(m, "Jane")
	m, cmd := press(m, tea.KeyEnter)

	if cmd != nil {
		t.Error("invalid submit should not start a command")
	}
	if f.Status() != form.Idle {
		t.Errorf("status = %v, want idle", f.Status())
	}
	if !strings.Contains(m.View(), form.MsgPhoneRequired) {
		t.Errorf("view should show %q", form.MsgPhoneRequired)
	}
	if sub.count() != 0 {
		t.Errorf("submitter called %d times, want 0", sub.count())
	}
}

func TestModel_SubmitValid_StartsSubmission(t *testing.T) {
	f := form.New(form.DefaultOptions())
	m := fillValid(NewModel(f, &stubSubmitter{}))

	m, cmd := press(m, tea.KeyEnter)
	if cmd == nil {
		t.Fatal("valid submit should return a command")
	}
	if f.Status() != form.Submitting {
		t.Errorf("status = %v, want submitting", f.Status())
	}
	if !strings.Contains(m.View(), "Submitting") {
		t.Error("button should read Submitting while in flight")
	}
}

func TestModel_SubmitWhileSubmitting_Ignored(t *testing.T) {
	f := form.New(form.DefaultOptions())
	m := fillValid(NewModel(f, &stubSubmitter{}))

	m, _ = press(m, tea.KeyEnter)
	_, cmd := press(m, tea.KeyEnter)

	if cmd != nil {
		t.Error("second submit while in flight should be ignored")
	}
	if f.Status() != form.Submitting {
		t.Errorf("status = %v, want submitting", f.Status())
	}
}

func TestModel_SubmitSuccess_ClearsAndShowsToast(t *testing.T) {
	f := form.New(form.DefaultOptions())
	m := fillValid(NewModel(f, &stubSubmitter{}))
	m, _ = press(m, tea.KeyEnter)

	m, cmd := m.Update(SubmitResultMsg{Message: "ok"})
	updated := m.(Model)

	if cmd == nil {
		t.Error("toast should schedule its dismissal")
	}
	if f.Status() != form.Submitted {
		t.Errorf("status = %v, want submitted", f.Status())
	}
	if updated.toast != ThankYou {
		t.Errorf("toast = %q, want %q", updated.toast, ThankYou)
	}
	for i, in := range updated.inputs {
		if in.Value() != "" {
			t.Errorf("input %d = %q, want empty", i, in.Value())
		}
	}
	if updated.focus != 0 {
		t.Errorf("focus = %d, want 0", updated.focus)
	}
	if strings.Contains(m.View(), form.MsgNameRequired) {
		t.Error("cleared form should not show errors")
	}
}

func TestModel_ToastExpiry(t *testing.T) {
	f := form.New(form.DefaultOptions())
	m := fillValid(NewModel(f, &stubSubmitter{}))
	m, _ = press(m, tea.KeyEnter)
	m, _ = m.Update(SubmitResultMsg{})
	seq := m.(Model).toastSeq

	m, _ = m.Update(ToastExpiredMsg{Seq: seq - 1})
	if m.(Model).toast == "" {
		t.Error("stale expiry should not dismiss the current toast")
	}

	m, _ = m.Update(ToastExpiredMsg{Seq: seq})
	if m.(Model).toast != "" {
		t.Error("matching expiry should dismiss the toast")
	}
}

func TestModel_SubmitFailure_ShowsAlertKeepsValues(t *testing.T) {
	f := form.New(form.DefaultOptions())
	m := fillValid(NewModel(f, &stubSubmitter{}))
	m, _ = press(m, tea.KeyEnter)

	m, _ = m.Update(SubmitResultMsg{Err: errors.New("Duplicate")})
	updated := m.(Model)

	if updated.alert != "Duplicate" {
		t.Errorf("alert = %q, want %q", updated.alert, "Duplicate")
	}
	if f.Status() != form.Idle {
		t.Errorf("status = %v, want idle", f.Status())
	}
	if got := updated.inputs[0].Value(); got != "Jane" {
		t.Errorf("name input = %q, want kept value", got)
	}
	if !strings.Contains(m.View(), "Duplicate") {
		t.Error("view should render the alert")
	}

	m, _ = press(m, tea.KeyEnter)
	if m.(Model).alert != "" {
		t.Error("enter should dismiss the alert")
	}
	if got := f.Value(form.FieldEmail); got != "jane@example.com" {
		t.Errorf("email = %q, values should survive dismissal", got)
	}
}

func TestModel_AlertSwallowsTyping(t *testing.T) {
	f := form.New(form.DefaultOptions())
	m := fillValid(NewModel(f, &stubSubmitter{}))
	m, _ = press(m, tea.KeyEnter)
	m, _ = m.Update(SubmitResultMsg{Err: errors.New("Network error")})

	m = typeRunes(m, "xyz")
	if m.(Model).alert == "" {
		t.Error("typing should not dismiss the alert")
	}
}

func TestModel_ReloadAlert_ResetsAndReportsAgain(t *testing.T) {
	opts := form.DefaultOptions()
	opts.Confirmation = form.ConfirmReloadAlert
	f := form.New(opts)

	var events []map[string]any
	rep := analytics.NewReporter("G-TEST", func(_ string, params map[string]any) {
		events = append(events, params)
	})
	route := analytics.Route{Path: "/", Location: "https://gearx.ai/"}
	rep.Observe(route)

	m := fillValid(NewModel(f, &stubSubmitter{}, WithReporter(rep, route)))
	m, _ = press(m, tea.KeyEnter)
	m, _ = m.Update(SubmitResultMsg{})

	if got := m.(Model).alert; got != ThankYou {
		t.Fatalf("alert = %q, want %q", got, ThankYou)
	}
	if m.(Model).toast != "" {
		t.Error("reload-alert confirmation should not show a toast")
	}

	m, cmd := press(m, tea.KeyEnter)
	if cmd == nil {
		t.Fatal("dismissal should re-report the page view")
	}
	cmd()

	if f.Status() != form.Idle {
		t.Errorf("status after reload = %v, want idle", f.Status())
	}
	if m.(Model).reloadOnDismiss {
		t.Error("reloadOnDismiss should clear after reload")
	}
	if len(events) != 2 {
		t.Errorf("page views = %d, want 2", len(events))
	}
}

func TestModel_SpinnerTickIgnoredWhenIdle(t *testing.T) {
	m := NewModel(form.New(form.DefaultOptions()), &stubSubmitter{})
	_, cmd := m.Update(m.spinner.Tick())
	if cmd != nil {
		t.Error("spinner should not keep ticking while idle")
	}
}

func TestModel_Quit(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyType
	}{
		{"esc", tea.KeyEsc},
		{"ctrl+c", tea.KeyCtrlC},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(form.New(form.DefaultOptions()), &stubSubmitter{})
			newModel, cmd := press(m, tt.key)
			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if !newModel.(Model).quitting {
				t.Error("model should be quitting")
			}
			if newModel.View() != "" {
				t.Error("quitting view should be empty")
			}
		})
	}
}

func TestModel_Update_WindowSizeMsg(t *testing.T) {
	m := NewModel(form.New(form.DefaultOptions()), &stubSubmitter{})

	newModel, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if got := newModel.(Model).help.Width; got != 120 {
		t.Errorf("help width = %d, want 120", got)
	}
}

func TestAlertText_EmptyMessage(t *testing.T) {
	if got := alertText(errors.New("")); got != "Submission failed" {
		t.Errorf("alertText = %q, want %q", got, "Submission failed")
	}
}

// TestModel_Teatest_SubmitFlow drives a full submission through a running program.
func TestModel_Teatest_SubmitFlow(t *testing.T) {
	sub := &stubSubmitter{msg: "Inquiry received"}
	opts := form.DefaultOptions()
	opts.ToastDuration = time.Second
	f := form.New(opts)

	tm := teatest.NewTestModel(t, NewModel(f, sub), teatest.WithInitialTermSize(80, 30))

	tm.Type("Jane")
	tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	tm.Type("jane@example.com")
	tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	tm.Type("555-123-4567")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return strings.Contains(string(b), ThankYou)
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyEsc})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	if sub.count() != 1 {
		t.Fatalf("submitter called %d times, want 1", sub.count())
	}
	want := form.Payload{Name: "Jane", Email: "jane@example.com", PhoneNumber: "5551234567"}
	if sub.calls[0] != want {
		t.Errorf("payload = %+v, want %+v", sub.calls[0], want)
	}
	if f.Status() != form.Submitted {
		t.Errorf("status = %v, want submitted", f.Status())
	}
}
