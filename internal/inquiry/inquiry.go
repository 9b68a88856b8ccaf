// Package inquiry posts sign-up inquiries to the GraphQL endpoint.
package inquiry

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	signup "github.com/gearx-ai/signup"
)

// Failure messages surfaced to the user.
const (
	MsgNetwork = "Network error"
	MsgFailed  = "Submission failed"
)

// defaultTimeout is used when no timeout option is provided.
const defaultTimeout = 30 * time.Second

// Inquiry is the set of mutation variables.
type Inquiry struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// Result is the server's acknowledgement of a created inquiry.
type Result struct {
	Message string
}

type request struct {
	Query     string  `json:"query"`
	Variables Inquiry `json:"variables"`
}

type response struct {
	Data struct {
		CreateUserInquirie *struct {
			Message string `json:"message"`
		} `json:"createUserInquirie"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Client sends the CreateUserInquirie mutation. A Client makes exactly one
// request per Submit; it never retries.
type Client struct {
	endpoint string
	query    string
	http     *resty.Client
	logger   *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithHTTPClient replaces the underlying transport client, keeping any
// timeout and headers configured so far.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		prev := c.http
		c.http = resty.NewWithClient(hc).
			SetTimeout(prev.GetClient().Timeout).
			SetRetryCount(0)
		c.http.Header = prev.Header.Clone()
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.http.SetHeader(key, value) }
}

// WithQuery overrides the mutation document.
func WithQuery(q string) Option {
	return func(c *Client) { c.query = q }
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client posting to endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		query:    signup.CreateUserInquiry,
		http:     resty.New().SetTimeout(defaultTimeout).SetRetryCount(0),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit posts in and interprets the response. Any failure is returned as a
// *SubmissionError whose message is safe to show to the user.
func (c *Client) Submit(ctx context.Context, in Inquiry) (Result, error) {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(request{Query: c.query, Variables: in}).
		Post(c.endpoint)
	if err != nil {
		return Result{}, &SubmissionError{Message: MsgNetwork, Err: err}
	}

	c.logger.Debug("inquiry response",
		zap.Int("status", resp.StatusCode()),
		zap.Duration("elapsed", time.Since(start)))

	if !resp.IsSuccess() {
		return Result{}, &SubmissionError{Message: MsgNetwork, StatusCode: resp.StatusCode()}
	}

	var body response
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return Result{}, &SubmissionError{Message: MsgFailed, StatusCode: resp.StatusCode(), Err: err}
	}
	if len(body.Errors) > 0 {
		msg := body.Errors[0].Message
		if msg == "" {
			msg = MsgFailed
		}
		return Result{}, &SubmissionError{Message: msg, StatusCode: resp.StatusCode()}
	}

	var res Result
	if body.Data.CreateUserInquirie != nil {
		res.Message = body.Data.CreateUserInquirie.Message
	}
	return res, nil
}
