package analytics

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestMeasurementProtocol_Send(t *testing.T) {
	// Given: a collect endpoint recording requests
	var (
		gotQuery map[string]string
		gotBody  mpPayload
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"measurement_id": r.URL.Query().Get("measurement_id"),
			"api_secret":     r.URL.Query().Get("api_secret"),
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	mp := NewMeasurementProtocol(srv.URL+"/mp/collect", "G-TEST", "secret",
		WithClientID("client-1"),
		WithRestyClient(resty.NewWithClient(srv.Client())),
	)

	// When: a page view is reported through the Reporter
	r := NewReporter("G-TEST", mp.Send)
	r.Observe(Route{Path: "/", Location: "https://gearx.ai/"})

	// Then: the collect endpoint received one event with credentials
	if gotQuery["measurement_id"] != "G-TEST" || gotQuery["api_secret"] != "secret" {
		t.Errorf("query = %v, want measurement_id and api_secret", gotQuery)
	}
	if gotBody.ClientID != "client-1" {
		t.Errorf("client_id = %q, want %q", gotBody.ClientID, "client-1")
	}
	if len(gotBody.Events) != 1 || gotBody.Events[0].Name != PageView {
		t.Fatalf("events = %+v, want one page_view", gotBody.Events)
	}
	if gotBody.Events[0].Params["page_path"] != "/" {
		t.Errorf("page_path = %v, want /", gotBody.Events[0].Params["page_path"])
	}
}

func TestMeasurementProtocol_GeneratesClientID(t *testing.T) {
	mp := NewMeasurementProtocol("http://unused", "G-TEST", "secret")
	if _, err := uuid.Parse(mp.clientID); err != nil {
		t.Errorf("clientID %q is not a UUID: %v", mp.clientID, err)
	}
}

func TestMeasurementProtocol_FailuresAreLogged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	var logs bytes.Buffer
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(&logs), zap.DebugLevel)
	mp := NewMeasurementProtocol(srv.URL, "G-TEST", "secret",
		WithRestyClient(resty.NewWithClient(srv.Client())),
		WithLogger(zap.New(core)),
	)

	// Send never panics or returns an error; the rejection is only logged.
	mp.Send(PageView, map[string]any{"page_path": "/"})

	if !strings.Contains(logs.String(), "analytics event rejected") {
		t.Errorf("logs = %q, want rejection entry", logs.String())
	}
}
