// Package form implements the early-access sign-up form independent of any
// renderer: field normalization, validation, error visibility and the
// submission state machine.
package form

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Field names a form input. Values match the mutation's variable names.
type Field string

const (
	FieldName  Field = "name"
	FieldEmail Field = "email"
	FieldPhone Field = "phoneNumber"
)

// Fields lists the inputs in display order.
var Fields = []Field{FieldName, FieldEmail, FieldPhone}

// Label returns the human-readable label for the field.
func (f Field) Label() string {
	switch f {
	case FieldName:
		return "Name"
	case FieldEmail:
		return "Email"
	case FieldPhone:
		return "Phone"
	default:
		return string(f)
	}
}

// State holds the current field values.
type State struct {
	Name        string
	Email       string
	PhoneNumber string
}

// Get returns the value of field f.
func (s State) Get(f Field) string {
	switch f {
	case FieldName:
		return s.Name
	case FieldEmail:
		return s.Email
	case FieldPhone:
		return s.PhoneNumber
	default:
		return ""
	}
}

func (s *State) set(f Field, v string) {
	switch f {
	case FieldName:
		s.Name = v
	case FieldEmail:
		s.Email = v
	case FieldPhone:
		s.PhoneNumber = v
	}
}

// Status is the submission lifecycle state.
type Status int

const (
	Idle       Status = iota // Editable, submit enabled.
	Submitting               // Request in flight, submit disabled.
	Submitted                // Last submission succeeded.
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Submitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Confirmation selects how a successful submission is acknowledged.
type Confirmation string

const (
	ConfirmToast       Confirmation = "toast"        // Transient, auto-dismissed message.
	ConfirmReloadAlert Confirmation = "reload-alert" // Blocking alert, then a fresh form.
)

// Options toggles the behaviors that differed between page revisions.
type Options struct {
	AllowSpaceInName bool
	RequireEmail     bool
	BlurTouches      bool
	TrimName         bool
	TruncatePhone    bool
	Confirmation     Confirmation
	ToastDuration    time.Duration
}

// DefaultOptions returns the options of the baseline page.
func DefaultOptions() Options {
	return Options{
		Confirmation:  ConfirmToast,
		ToastDuration: 3 * time.Second,
	}
}

// Payload is the set of mutation variables sent on submit.
type Payload struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// Submitter delivers a payload and returns the server's confirmation message.
type Submitter interface {
	Submit(ctx context.Context, p Payload) (string, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, p Payload) (string, error)

// Submit calls fn.
func (fn SubmitterFunc) Submit(ctx context.Context, p Payload) (string, error) {
	return fn(ctx, p)
}

// Form is the sign-up form state. It is not safe for concurrent use; the
// owning UI loop is the only writer.
type Form struct {
	opts    Options
	state   State
	touched bool
	blurred map[Field]bool
	status  Status
	logger  *zap.Logger

	// Inert anti-spam placeholders, carried but never checked.
	Honeypot string
	Captcha  bool
}

// Option configures a Form.
type Option func(*Form)

// WithLogger sets the logger used to report submission outcomes.
func WithLogger(l *zap.Logger) Option {
	return func(f *Form) { f.logger = l }
}

// New creates an empty Form in the Idle state.
func New(opts Options, fopts ...Option) *Form {
	f := &Form{
		opts:    opts,
		blurred: make(map[Field]bool),
		logger:  zap.NewNop(),
	}
	for _, o := range fopts {
		o(f)
	}
	return f
}

// Options returns the form's options.
func (f *Form) Options() Options { return f.opts }

// State returns a copy of the current field values.
func (f *Form) State() State { return f.state }

// Value returns the current value of field.
func (f *Form) Value(field Field) string { return f.state.Get(field) }

// Status returns the submission status.
func (f *Form) Status() Status { return f.status }

// Touched reports whether a submission has been attempted since the last reset.
func (f *Form) Touched() bool { return f.touched }

// Set normalizes value for field, stores it and returns the stored value.
func (f *Form) Set(field Field, value string) string {
	v := Normalize(field, value, f.opts.AllowSpaceInName)
	f.state.set(field, v)
	return v
}

// Blur records that field lost focus.
func (f *Form) Blur(field Field) {
	f.blurred[field] = true
}

// Errors validates the current state. Nothing is cached.
func (f *Form) Errors() Errors {
	return validate(f.state, f.opts)
}

// Visible returns the error to display for field, or "" when the field is
// valid or not yet touched.
func (f *Form) Visible(field Field) string {
	if !f.touched && !(f.opts.BlurTouches && f.blurred[field]) {
		return ""
	}
	return f.Errors()[field]
}

// Begin starts a submission attempt. It marks the form touched and returns a
// *ValidationError when any field is invalid, ErrSubmitting while a request
// is in flight, or the payload to send.
func (f *Form) Begin() (Payload, error) {
	if f.status == Submitting {
		return Payload{}, ErrSubmitting
	}
	f.touched = true
	if errs := f.Errors(); len(errs) > 0 {
		return Payload{}, &ValidationError{Errors: errs}
	}
	f.status = Submitting
	return f.payload(), nil
}

// Finish settles the in-flight submission. A nil err clears the form and
// moves to Submitted; otherwise the failure is logged, values are kept and
// the form returns to Idle.
func (f *Form) Finish(err error) {
	if f.status != Submitting {
		return
	}
	if err != nil {
		f.logger.Error("inquiry submission failed", zap.Error(err))
		f.status = Idle
		return
	}
	f.logger.Info("inquiry submitted")
	f.clear()
	f.status = Submitted
}

// Submit runs Begin, delivers the payload through s and settles with Finish.
func (f *Form) Submit(ctx context.Context, s Submitter) (string, error) {
	p, err := f.Begin()
	if err != nil {
		return "", err
	}
	msg, err := s.Submit(ctx, p)
	f.Finish(err)
	if err != nil {
		return "", err
	}
	return msg, nil
}

// Reset returns the form to its initial state, as a page reload would.
func (f *Form) Reset() {
	f.clear()
	f.status = Idle
}

func (f *Form) clear() {
	f.state = State{}
	f.touched = false
	f.blurred = make(map[Field]bool)
}

func (f *Form) payload() Payload {
	p := Payload{
		Name:        f.state.Name,
		Email:       f.state.Email,
		PhoneNumber: f.state.PhoneNumber,
	}
	if f.opts.TrimName {
		p.Name = strings.TrimSpace(p.Name)
	}
	if f.opts.TruncatePhone {
		p.PhoneNumber = strings.TrimSpace(p.PhoneNumber)
		if n := len(p.PhoneNumber); n > 10 {
			p.PhoneNumber = p.PhoneNumber[n-10:]
		}
	}
	return p
}
