package delonghi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type staticToken string

func (t staticToken) AccessToken(context.Context) (string, error) {
	return string(t), nil
}

type apiScript struct {
	t     *testing.T
	calls map[string]int

	properties []map[string]any
	datapoints []recordedDatapoint
}

type recordedDatapoint struct {
	path string
	body string
}

func newAPIScript(t *testing.T) *apiScript {
	return &apiScript{
		t:     t,
		calls: make(map[string]int),
		properties: []map[string]any{
			property("product_name", "Basement", "string"),
			property("appliance_model", "DDSX225", "string"),
			property("firmware_version", "1.2.3", "string"),
			property("hardware_version", "A1", "string"),
			property("current_humidity", 61, "integer"),
			property("humidity_setpoint", 50, "integer"),
			property("current_speed", 2, "integer"),
			property("rotation_speed", 3, "integer"),
			property("room_temp", 21, "integer"),
			property("heat_exchanger_temp", 18, "integer"),
			property("filter_life", 87, "integer"),
			property("filter_status", 1, "integer"),
			property("filter_change_alarm", 0, "integer"),
			property("device_status", 1, "integer"),
			property("device_mode", 1, "integer"),
			property("swing", 1, "integer"),
			property("set_eco", 0, "integer"),
		},
	}
}

func property(name string, value any, baseType string) map[string]any {
	return map[string]any{
		"name":         name,
		"value":        value,
		"base_type":    baseType,
		"product_name": "Basement",
	}
}

func (s *apiScript) setProperty(name string, value any) {
	for _, entry := range s.properties {
		if entry["name"] == name {
			entry["value"] = value
			return
		}
	}
	s.t.Fatalf("no scripted property %q", name)
}

func (s *apiScript) serve(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls[r.URL.Path]++

		if got := r.Header.Get("Authorization"); got != "auth_token test-token" {
			t.Errorf("unexpected authorization header %q", got)
		}

		switch {
		case r.URL.Path == "/apiv1/devices.json":
			writeBody(w, `[{"device":{"dsn":"DSN42"}}]`)
		case r.URL.Path == "/apiv1/dsns/DSN42/properties.json":
			wrapped := make([]map[string]any, 0, len(s.properties))
			for _, entry := range s.properties {
				wrapped = append(wrapped, map[string]any{"property": entry})
			}
			data, err := json.Marshal(wrapped)
			if err != nil {
				t.Fatalf("marshal properties: %v", err)
			}
			writeBody(w, string(data))
		case strings.HasSuffix(r.URL.Path, "/datapoints.json") && r.Method == http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			s.datapoints = append(s.datapoints, recordedDatapoint{path: r.URL.Path, body: string(body)})
			writeBody(w, `{"datapoint":{"echo":true}}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	client := &Client{
		baseURL:    server.URL + "/",
		auth:       staticToken("test-token"),
		httpClient: server.Client(),
	}
	return server, client
}

func writeBody(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, body)
}

func TestFirstDeviceMemoized(t *testing.T) {
	script := newAPIScript(t)
	_, client := script.serve(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		dsn, err := client.FirstDevice(ctx)
		if err != nil {
			t.Fatalf("FirstDevice: %v", err)
		}
		if dsn != "DSN42" {
			t.Fatalf("unexpected dsn %q", dsn)
		}
	}
	if script.calls["/apiv1/devices.json"] != 1 {
		t.Fatalf("expected 1 device lookup, got %d", script.calls["/apiv1/devices.json"])
	}
}

func TestFirstDeviceEmptyListFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `[]`)
	}))
	defer server.Close()

	client := &Client{
		baseURL:    server.URL + "/",
		auth:       staticToken("test-token"),
		httpClient: server.Client(),
	}
	if _, err := client.FirstDevice(context.Background()); err == nil {
		t.Fatal("expected error for empty device list")
	}
}

func TestPropertiesServedFromCache(t *testing.T) {
	script := newAPIScript(t)
	_, client := script.serve(t)
	ctx := context.Background()

	if _, err := client.Properties(ctx); err != nil {
		t.Fatalf("Properties: %v", err)
	}
	script.setProperty("current_humidity", 70)

	humidity, err := client.CurrentHumidity(ctx)
	if err != nil {
		t.Fatalf("CurrentHumidity: %v", err)
	}
	if humidity != 61 {
		t.Fatalf("expected stale cached reading 61, got %d", humidity)
	}
	if script.calls["/apiv1/dsns/DSN42/properties.json"] != 1 {
		t.Fatalf("expected 1 property fetch, got %d", script.calls["/apiv1/dsns/DSN42/properties.json"])
	}
}

func TestPropertiesRefetchedAfterTTL(t *testing.T) {
	script := newAPIScript(t)
	_, client := script.serve(t)
	ctx := context.Background()

	if _, err := client.Properties(ctx); err != nil {
		t.Fatalf("Properties: %v", err)
	}
	script.setProperty("current_humidity", 70)

	// Age the snapshot past the freshness window.
	client.mu.Lock()
	client.propertiesFetchedAt = time.Now().Add(-propertyTTL - time.Second)
	client.mu.Unlock()

	humidity, err := client.CurrentHumidity(ctx)
	if err != nil {
		t.Fatalf("CurrentHumidity: %v", err)
	}
	if humidity != 70 {
		t.Fatalf("expected fresh reading 70, got %d", humidity)
	}
	if script.calls["/apiv1/dsns/DSN42/properties.json"] != 2 {
		t.Fatalf("expected 2 property fetches, got %d", script.calls["/apiv1/dsns/DSN42/properties.json"])
	}
}

func TestState(t *testing.T) {
	script := newAPIScript(t)
	_, client := script.serve(t)

	state, err := client.State(context.Background())
	if err != nil {
		t.Fatalf("State: %v", err)
	}

	if state.Status != StatusOn {
		t.Fatalf("unexpected status %v", state.Status)
	}
	if state.Mode != ModeDehumidify {
		t.Fatalf("unexpected mode %v", state.Mode)
	}
	if state.CurrentHumidity != 61 || state.HumiditySetpoint != 50 {
		t.Fatalf("unexpected humidity readings %d/%d", state.CurrentHumidity, state.HumiditySetpoint)
	}
	if state.FilterStatus != FilterGood || state.FilterChangeAlarm != Off {
		t.Fatalf("unexpected filter state %v/%v", state.FilterStatus, state.FilterChangeAlarm)
	}
	if state.Swing != On || state.Eco != Off {
		t.Fatalf("unexpected toggle state swing=%v eco=%v", state.Swing, state.Eco)
	}

	// The full snapshot costs one device lookup and one property fetch.
	if script.calls["/apiv1/devices.json"] != 1 {
		t.Fatalf("expected 1 device lookup, got %d", script.calls["/apiv1/devices.json"])
	}
	if script.calls["/apiv1/dsns/DSN42/properties.json"] != 1 {
		t.Fatalf("expected 1 property fetch, got %d", script.calls["/apiv1/dsns/DSN42/properties.json"])
	}
}

func TestStateRejectsUnknownModeCode(t *testing.T) {
	script := newAPIScript(t)
	script.setProperty("device_mode", 99)
	_, client := script.serve(t)

	if _, err := client.State(context.Background()); err == nil {
		t.Fatal("expected error for unknown mode code")
	}
}

func TestRealFeelModeCode(t *testing.T) {
	script := newAPIScript(t)
	script.setProperty("device_mode", 100)
	_, client := script.serve(t)

	mode, err := client.DeviceMode(context.Background())
	if err != nil {
		t.Fatalf("DeviceMode: %v", err)
	}
	if mode != ModeRealFeel {
		t.Fatalf("expected REAL_FEEL, got %v", mode)
	}
}

func TestSetStatusPostsDatapoint(t *testing.T) {
	script := newAPIScript(t)
	_, client := script.serve(t)

	raw, err := client.SetStatus(context.Background(), StatusOff)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if string(raw) != `{"datapoint":{"echo":true}}` {
		t.Fatalf("unexpected response %s", raw)
	}

	if len(script.datapoints) != 1 {
		t.Fatalf("expected 1 datapoint, got %d", len(script.datapoints))
	}
	got := script.datapoints[0]
	if got.path != "/apiv1/dsns/DSN42/properties/set_status/datapoints.json" {
		t.Fatalf("unexpected path %s", got.path)
	}
	if got.body != `{"datapoint":{"value":2}}` {
		t.Fatalf("unexpected body %s", got.body)
	}
}

func TestSetModeRealFeelUsesActivationProperty(t *testing.T) {
	script := newAPIScript(t)
	_, client := script.serve(t)

	if _, err := client.SetMode(context.Background(), ModeRealFeel); err != nil {
		t.Fatalf("SetMode: %v", err)
	}

	if len(script.datapoints) != 1 {
		t.Fatalf("expected 1 datapoint, got %d", len(script.datapoints))
	}
	got := script.datapoints[0]
	if got.path != "/apiv1/dsns/DSN42/properties/activate_realfeel/datapoints.json" {
		t.Fatalf("unexpected path %s", got.path)
	}
	if got.body != `{"datapoint":{"value":"AQIDChIXHEY8Mig="}}` {
		t.Fatalf("unexpected body %s", got.body)
	}
}

func TestSetModeRegularPostsCode(t *testing.T) {
	script := newAPIScript(t)
	_, client := script.serve(t)

	if _, err := client.SetMode(context.Background(), ModePurifier); err != nil {
		t.Fatalf("SetMode: %v", err)
	}

	got := script.datapoints[0]
	if got.path != "/apiv1/dsns/DSN42/properties/device_mode/datapoints.json" {
		t.Fatalf("unexpected path %s", got.path)
	}
	if got.body != `{"datapoint":{"value":3}}` {
		t.Fatalf("unexpected body %s", got.body)
	}
}

func TestIntPropertyCoercions(t *testing.T) {
	script := newAPIScript(t)
	script.setProperty("current_humidity", "55")
	_, client := script.serve(t)
	ctx := context.Background()

	humidity, err := client.CurrentHumidity(ctx)
	if err != nil {
		t.Fatalf("CurrentHumidity: %v", err)
	}
	if humidity != 55 {
		t.Fatalf("expected 55 from string coercion, got %d", humidity)
	}

	client.mu.Lock()
	client.propertiesFetchedAt = time.Time{}
	client.mu.Unlock()
	script.setProperty("current_humidity", "damp")
	if _, err := client.CurrentHumidity(ctx); err == nil {
		t.Fatal("expected error for non-numeric string")
	}
}

func TestAPIErrorSurfacesStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := &Client{
		baseURL:    server.URL + "/",
		auth:       staticToken("test-token"),
		httpClient: server.Client(),
	}
	_, err := client.FirstDevice(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr, ok := err.(HTTPStatusError)
	if !ok {
		t.Fatalf("expected HTTPStatusError, got %T", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("unexpected status %d", apiErr.Status)
	}
}
