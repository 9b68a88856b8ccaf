package analytics

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MeasurementProtocol sends events to a GA4 Measurement Protocol collect
// endpoint. Delivery is best effort: failures are logged and dropped.
type MeasurementProtocol struct {
	collectURL    string
	measurementID string
	apiSecret     string
	clientID      string
	http          *resty.Client
	logger        *zap.Logger
}

// MPOption configures a MeasurementProtocol.
type MPOption func(*MeasurementProtocol)

// WithClientID fixes the client ID instead of generating one.
func WithClientID(id string) MPOption {
	return func(m *MeasurementProtocol) { m.clientID = id }
}

// WithLogger sets the logger for dropped events.
func WithLogger(l *zap.Logger) MPOption {
	return func(m *MeasurementProtocol) { m.logger = l }
}

// WithRestyClient replaces the HTTP client.
func WithRestyClient(c *resty.Client) MPOption {
	return func(m *MeasurementProtocol) { m.http = c }
}

// NewMeasurementProtocol creates a sender for one measurement ID.
func NewMeasurementProtocol(collectURL, measurementID, apiSecret string, opts ...MPOption) *MeasurementProtocol {
	m := &MeasurementProtocol{
		collectURL:    collectURL,
		measurementID: measurementID,
		apiSecret:     apiSecret,
		clientID:      uuid.NewString(),
		http:          resty.New().SetTimeout(5 * time.Second),
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type mpEvent struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params,omitempty"`
}

type mpPayload struct {
	ClientID string    `json:"client_id"`
	Events   []mpEvent `json:"events"`
}

// Send posts a single event. Its signature matches EventFunc.
func (m *MeasurementProtocol) Send(event string, params map[string]any) {
	resp, err := m.http.R().
		SetQueryParams(map[string]string{
			"measurement_id": m.measurementID,
			"api_secret":     m.apiSecret,
		}).
		SetHeader("Content-Type", "application/json").
		SetBody(mpPayload{ClientID: m.clientID, Events: []mpEvent{{Name: event, Params: params}}}).
		Post(m.collectURL)
	if err != nil {
		m.logger.Warn("analytics event dropped", zap.String("event", event), zap.Error(err))
		return
	}
	if !resp.IsSuccess() {
		m.logger.Warn("analytics event rejected",
			zap.String("event", event),
			zap.Int("status", resp.StatusCode()))
		return
	}
	m.logger.Debug("analytics event sent", zap.String("event", event))
}
