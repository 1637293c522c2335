package delonghi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/delonghi-comfort/comfortd/internal/auth"
	"github.com/delonghi-comfort/comfortd/internal/rate"
)

// propertyTTL is the freshness window for the property snapshot. While a
// snapshot is younger than this, reads are served from cache; it is also
// the only bound on the request rate against the device API.
const propertyTTL = 10 * time.Second

const realFeelPayload = "AQIDChIXHEY8Mig="

// HTTPStatusError surfaces device API failures with their status code.
type HTTPStatusError struct {
	Status int
	Body   string
}

func (e HTTPStatusError) Error() string {
	return fmt.Sprintf("delonghi api error %d: %s", e.Status, strings.TrimSpace(e.Body))
}

// tokenSource yields a valid access token, renewing as needed.
type tokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Client talks to the Ayla device API on behalf of one account. It owns
// the memoized device serial and the short-lived property snapshot; both
// are guarded by one mutex so concurrent fetches collapse into a single
// upstream request.
type Client struct {
	baseURL    string
	auth       tokenSource
	httpClient *http.Client

	mu                  sync.Mutex
	deviceDSN           string
	properties          []Property
	propertiesFetchedAt time.Time
}

func NewClient(cfg Config) (*Client, error) {
	return NewClientWithEndpoints(cfg, auth.DefaultEndpoints())
}

func NewClientWithEndpoints(cfg Config, endpoints auth.Endpoints) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	creds := auth.Credentials{
		Language: cfg.Language,
		Email:    cfg.Email,
		Password: cfg.Password,
	}

	return &Client{
		baseURL: cfg.baseURL(),
		auth:    auth.NewManagerWithEndpoints(creds, endpoints),
		httpClient: rate.WrapHTTP(
			rate.Provider("delonghi"),
			&http.Client{Timeout: 15 * time.Second},
		),
	}, nil
}

// Authenticate obtains a valid access token and reports whether the
// account credentials work.
func (c *Client) Authenticate(ctx context.Context) (bool, error) {
	token, err := c.auth.AccessToken(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}

// FirstDevice resolves the serial number of the first (and only managed)
// device. The result is memoized for the client's lifetime; an empty
// device list is a hard error.
func (c *Client) FirstDevice(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.firstDeviceLocked(ctx)
}

func (c *Client) firstDeviceLocked(ctx context.Context) (string, error) {
	if c.deviceDSN != "" {
		return c.deviceDSN, nil
	}

	var devices []struct {
		Device struct {
			DSN string `json:"dsn"`
		} `json:"device"`
	}
	if err := c.getJSON(ctx, "apiv1/devices.json", &devices); err != nil {
		return "", err
	}
	if len(devices) == 0 {
		return "", fmt.Errorf("no devices registered to this account")
	}

	c.deviceDSN = devices[0].Device.DSN
	return c.deviceDSN, nil
}

// Properties returns the device property list, refetching it only when
// the cached snapshot is older than the freshness window. The snapshot
// is replaced wholesale; there are no partial merges.
func (c *Client) Properties(ctx context.Context) ([]Property, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.properties != nil && time.Since(c.propertiesFetchedAt) < propertyTTL {
		return c.properties, nil
	}

	dsn, err := c.firstDeviceLocked(ctx)
	if err != nil {
		return nil, err
	}

	var wrapped []struct {
		Property Property `json:"property"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("apiv1/dsns/%s/properties.json", dsn), &wrapped); err != nil {
		return nil, err
	}

	properties := make([]Property, 0, len(wrapped))
	for _, entry := range wrapped {
		properties = append(properties, entry.Property)
	}

	c.properties = properties
	c.propertiesFetchedAt = time.Now()
	return c.properties, nil
}

// Property returns the raw value of a named property. An absent name is
// an error; there is no default substitution.
func (c *Client) Property(ctx context.Context, name string) (any, error) {
	properties, err := c.Properties(ctx)
	if err != nil {
		return nil, err
	}
	for _, property := range properties {
		if property.Name == name {
			return property.Value, nil
		}
	}
	return nil, fmt.Errorf("property %q not found", name)
}

func (c *Client) StringProperty(ctx context.Context, name string) (string, error) {
	value, err := c.Property(ctx, name)
	if err != nil {
		return "", err
	}
	text, err := stringValue(value)
	if err != nil {
		return "", fmt.Errorf("property %q: %w", name, err)
	}
	return text, nil
}

func (c *Client) IntProperty(ctx context.Context, name string) (int, error) {
	value, err := c.Property(ctx, name)
	if err != nil {
		return 0, err
	}
	number, err := intValue(value)
	if err != nil {
		return 0, fmt.Errorf("property %q: %w", name, err)
	}
	return number, nil
}

// ProductName is the user-assigned device name, carried on every entry
// of the property list.
func (c *Client) ProductName(ctx context.Context) (string, error) {
	properties, err := c.Properties(ctx)
	if err != nil {
		return "", err
	}
	if len(properties) == 0 {
		return "", fmt.Errorf("device reported no properties")
	}
	return properties[0].ProductName, nil
}

func (c *Client) ApplianceModel(ctx context.Context) (string, error) {
	return c.StringProperty(ctx, "appliance_model")
}

func (c *Client) FirmwareVersion(ctx context.Context) (string, error) {
	return c.StringProperty(ctx, "firmware_version")
}

func (c *Client) HardwareVersion(ctx context.Context) (string, error) {
	return c.StringProperty(ctx, "hardware_version")
}

func (c *Client) CurrentHumidity(ctx context.Context) (int, error) {
	return c.IntProperty(ctx, "current_humidity")
}

func (c *Client) HumiditySetpoint(ctx context.Context) (int, error) {
	return c.IntProperty(ctx, "humidity_setpoint")
}

func (c *Client) CurrentSpeed(ctx context.Context) (int, error) {
	return c.IntProperty(ctx, "current_speed")
}

func (c *Client) RotationSpeed(ctx context.Context) (int, error) {
	return c.IntProperty(ctx, "rotation_speed")
}

func (c *Client) RoomTemp(ctx context.Context) (int, error) {
	return c.IntProperty(ctx, "room_temp")
}

func (c *Client) HeatExchangerTemp(ctx context.Context) (int, error) {
	return c.IntProperty(ctx, "heat_exchanger_temp")
}

func (c *Client) FilterLife(ctx context.Context) (int, error) {
	return c.IntProperty(ctx, "filter_life")
}

func (c *Client) DeviceStatus(ctx context.Context) (Status, error) {
	code, err := c.IntProperty(ctx, "device_status")
	if err != nil {
		return 0, err
	}
	return StatusFromValue(code)
}

func (c *Client) DeviceMode(ctx context.Context) (Mode, error) {
	code, err := c.IntProperty(ctx, "device_mode")
	if err != nil {
		return 0, err
	}
	return ModeFromValue(code)
}

func (c *Client) FilterStatus(ctx context.Context) (FilterStatus, error) {
	code, err := c.IntProperty(ctx, "filter_status")
	if err != nil {
		return 0, err
	}
	return FilterStatusFromValue(code)
}

func (c *Client) FilterChangeAlarm(ctx context.Context) (OffOnStatus, error) {
	code, err := c.IntProperty(ctx, "filter_change_alarm")
	if err != nil {
		return 0, err
	}
	return OffOnFromValue(code)
}

func (c *Client) Swing(ctx context.Context) (OffOnStatus, error) {
	code, err := c.IntProperty(ctx, "swing")
	if err != nil {
		return 0, err
	}
	return OffOnFromValue(code)
}

func (c *Client) Eco(ctx context.Context) (OffOnStatus, error) {
	code, err := c.IntProperty(ctx, "set_eco")
	if err != nil {
		return 0, err
	}
	return OffOnFromValue(code)
}

// DeviceInfo assembles the static identity fields in one cache pass.
func (c *Client) DeviceInfo(ctx context.Context) (DeviceInfo, error) {
	dsn, err := c.FirstDevice(ctx)
	if err != nil {
		return DeviceInfo{}, err
	}
	name, err := c.ProductName(ctx)
	if err != nil {
		return DeviceInfo{}, err
	}
	model, err := c.ApplianceModel(ctx)
	if err != nil {
		return DeviceInfo{}, err
	}
	firmware, err := c.FirmwareVersion(ctx)
	if err != nil {
		return DeviceInfo{}, err
	}
	hardware, err := c.HardwareVersion(ctx)
	if err != nil {
		return DeviceInfo{}, err
	}
	return DeviceInfo{
		DSN:             dsn,
		ProductName:     name,
		ApplianceModel:  model,
		FirmwareVersion: firmware,
		HardwareVersion: hardware,
	}, nil
}

// State reads the full live state through the property cache.
func (c *Client) State(ctx context.Context) (State, error) {
	var state State
	var err error

	if state.Status, err = c.DeviceStatus(ctx); err != nil {
		return State{}, err
	}
	if state.Mode, err = c.DeviceMode(ctx); err != nil {
		return State{}, err
	}
	if state.CurrentHumidity, err = c.CurrentHumidity(ctx); err != nil {
		return State{}, err
	}
	if state.HumiditySetpoint, err = c.HumiditySetpoint(ctx); err != nil {
		return State{}, err
	}
	if state.CurrentSpeed, err = c.CurrentSpeed(ctx); err != nil {
		return State{}, err
	}
	if state.RotationSpeed, err = c.RotationSpeed(ctx); err != nil {
		return State{}, err
	}
	if state.RoomTemp, err = c.RoomTemp(ctx); err != nil {
		return State{}, err
	}
	if state.HeatExchangerTemp, err = c.HeatExchangerTemp(ctx); err != nil {
		return State{}, err
	}
	if state.FilterLife, err = c.FilterLife(ctx); err != nil {
		return State{}, err
	}
	if state.FilterStatus, err = c.FilterStatus(ctx); err != nil {
		return State{}, err
	}
	if state.FilterChangeAlarm, err = c.FilterChangeAlarm(ctx); err != nil {
		return State{}, err
	}
	if state.Swing, err = c.Swing(ctx); err != nil {
		return State{}, err
	}
	if state.Eco, err = c.Eco(ctx); err != nil {
		return State{}, err
	}
	return state, nil
}

// SetStatus turns the appliance on or off.
func (c *Client) SetStatus(ctx context.Context, status Status) (json.RawMessage, error) {
	return c.setDatapoint(ctx, "set_status", status.Value())
}

// SetHumidity sets the target humidity. The range is not validated
// locally; the server rejects values it does not accept.
func (c *Client) SetHumidity(ctx context.Context, value int) (json.RawMessage, error) {
	return c.setDatapoint(ctx, "humidity_setpoint", value)
}

// SetMode selects the operation mode. Real Feel is special-cased: it has
// its own activation property and takes a fixed opaque payload instead
// of the mode code.
func (c *Client) SetMode(ctx context.Context, mode Mode) (json.RawMessage, error) {
	if mode == ModeRealFeel {
		return c.setDatapoint(ctx, "activate_realfeel", realFeelPayload)
	}
	return c.setDatapoint(ctx, "device_mode", mode.Value())
}

func (c *Client) SetSwing(ctx context.Context, status OffOnStatus) (json.RawMessage, error) {
	return c.setDatapoint(ctx, "swing", status.Value())
}

func (c *Client) SetEco(ctx context.Context, status OffOnStatus) (json.RawMessage, error) {
	return c.setDatapoint(ctx, "set_eco", status.Value())
}

// setDatapoint posts a single-property write. The property cache is not
// invalidated: reads may observe the old value until the snapshot ages
// out, which keeps the request rate bounded.
func (c *Client) setDatapoint(ctx context.Context, property string, value any) (json.RawMessage, error) {
	dsn, err := c.FirstDevice(ctx)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("apiv1/dsns/%s/properties/%s/datapoints.json", dsn, property)
	body := map[string]any{"datapoint": map[string]any{"value": value}}
	return c.postJSON(ctx, path, body)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	token, err := c.auth.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", auth.APIUserAgent)
	// Ayla uses its own authorization scheme, not standard Bearer.
	req.Header.Set("Authorization", "auth_token "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, HTTPStatusError{Status: resp.StatusCode, Body: string(data)}
	}
	return resp, nil
}

func intValue(value any) (int, error) {
	switch typed := value.(type) {
	case float64:
		return int(typed), nil
	case int:
		return typed, nil
	case json.Number:
		parsed, err := typed.Int64()
		if err != nil {
			return 0, fmt.Errorf("value %q is not an integer", typed)
		}
		return int(parsed), nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(typed))
		if err != nil {
			return 0, fmt.Errorf("value %q is not an integer", typed)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("value %v (%T) is not an integer", value, value)
	}
}

func stringValue(value any) (string, error) {
	switch typed := value.(type) {
	case string:
		return typed, nil
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("value %v (%T) is not a string", value, value)
	}
}
