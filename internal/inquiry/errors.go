package inquiry

// SubmissionError reports a failed submission. Message is what the user sees.
type SubmissionError struct {
	Message    string
	StatusCode int   // Zero when no response was received.
	Err        error // Underlying transport or decode error, if any.
}

func (e *SubmissionError) Error() string {
	return e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
