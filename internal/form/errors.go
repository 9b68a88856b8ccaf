package form

import (
	"errors"
	"strings"
)

// ErrSubmitting is returned by Begin while a submission is in flight.
var ErrSubmitting = errors.New("form: submission already in progress")

// Errors maps a field to its validation message. A missing key means the
// field is valid.
type Errors map[Field]string

// Fields returns the invalid fields in display order.
func (e Errors) Fields() []Field {
	var out []Field
	for _, f := range Fields {
		if _, ok := e[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// ValidationError reports that a submit attempt was blocked by invalid fields.
type ValidationError struct {
	Errors Errors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Errors))
	for _, f := range e.Errors.Fields() {
		names = append(names, string(f))
	}
	return "form: invalid fields: " + strings.Join(names, ", ")
}
