package delonghi

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metricKind int

const (
	// kindValue exports the property reading as-is.
	kindValue metricKind = iota
	// kindStatus exports 1 for StatusOn, 0 for StatusOff.
	kindStatus
	// kindOffOn validates the 0/1 code before exporting it.
	kindOffOn
	// kindMode exports the validated mode code.
	kindMode
	// kindFilter exports the validated filter status code.
	kindFilter
)

// metricSpec declares one exported property. The kind tag picks the
// decode path; unknown enum codes fail the whole scrape rather than
// exporting a bogus number.
type metricSpec struct {
	property string
	name     string
	help     string
	kind     metricKind
}

var metricSpecs = []metricSpec{
	{"current_humidity", "comfortd_delonghi_current_humidity_percent", "Measured relative humidity", kindValue},
	{"humidity_setpoint", "comfortd_delonghi_humidity_setpoint_percent", "Target relative humidity", kindValue},
	{"current_speed", "comfortd_delonghi_current_speed", "Current fan speed reported by the appliance", kindValue},
	{"rotation_speed", "comfortd_delonghi_rotation_speed", "Configured fan rotation speed", kindValue},
	{"room_temp", "comfortd_delonghi_room_temperature_celsius", "Room temperature", kindValue},
	{"heat_exchanger_temp", "comfortd_delonghi_heat_exchanger_temperature_celsius", "Heat exchanger temperature", kindValue},
	{"filter_life", "comfortd_delonghi_filter_life_percent", "Remaining filter life", kindValue},
	{"device_status", "comfortd_delonghi_power_on_bool", "Appliance power (1=on, 0=off)", kindStatus},
	{"device_mode", "comfortd_delonghi_mode_code", "Active operation mode code", kindMode},
	{"filter_status", "comfortd_delonghi_filter_status_code", "Filter condition code (1=good, 2=needs replacement)", kindFilter},
	{"filter_change_alarm", "comfortd_delonghi_filter_change_alarm_bool", "Filter change alarm (1=raised)", kindOffOn},
	{"swing", "comfortd_delonghi_swing_bool", "Louver swing (1=on)", kindOffOn},
	{"set_eco", "comfortd_delonghi_eco_bool", "Eco mode (1=on)", kindOffOn},
}

// MetricsCollector exports the appliance state on scrape. Each scrape
// costs at most one upstream fetch thanks to the client's snapshot
// cache.
type MetricsCollector struct {
	client *Client

	gauges      map[string]*prometheus.GaugeVec
	lastSuccess prometheus.Gauge
	success     prometheus.Gauge
}

func NewMetricsCollector(client *Client) *MetricsCollector {
	labels := []string{"dsn", "product_name"}
	gauges := make(map[string]*prometheus.GaugeVec, len(metricSpecs))
	for _, spec := range metricSpecs {
		gauges[spec.property] = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: spec.name,
			Help: spec.help,
		}, labels)
	}
	return &MetricsCollector{
		client: client,
		gauges: gauges,
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "comfortd_delonghi_last_success_timestamp_seconds",
			Help: "Last successful appliance scrape timestamp (epoch seconds)",
		}),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "comfortd_delonghi_scrape_success",
			Help: "Last scrape success (1=ok, 0=error)",
		}),
	}
}

func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, spec := range metricSpecs {
		c.gauges[spec.property].Describe(ch)
	}
	c.lastSuccess.Describe(ch)
	c.success.Describe(ch)
}

func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.scrape(ctx); err != nil {
		c.success.Set(0)
	} else {
		c.success.Set(1)
		c.lastSuccess.Set(float64(time.Now().Unix()))
	}
	c.collectAll(ch)
}

func (c *MetricsCollector) scrape(ctx context.Context) error {
	dsn, err := c.client.FirstDevice(ctx)
	if err != nil {
		return err
	}
	name, err := c.client.ProductName(ctx)
	if err != nil {
		return err
	}
	labels := prometheus.Labels{"dsn": dsn, "product_name": name}

	for _, spec := range metricSpecs {
		value, err := c.readMetric(ctx, spec)
		if err != nil {
			return err
		}
		gauge := c.gauges[spec.property]
		gauge.Reset()
		gauge.With(labels).Set(value)
	}
	return nil
}

func (c *MetricsCollector) readMetric(ctx context.Context, spec metricSpec) (float64, error) {
	code, err := c.client.IntProperty(ctx, spec.property)
	if err != nil {
		return 0, err
	}

	switch spec.kind {
	case kindStatus:
		status, err := StatusFromValue(code)
		if err != nil {
			return 0, err
		}
		if status == StatusOn {
			return 1, nil
		}
		return 0, nil
	case kindOffOn:
		offOn, err := OffOnFromValue(code)
		if err != nil {
			return 0, err
		}
		return float64(offOn.Value()), nil
	case kindMode:
		mode, err := ModeFromValue(code)
		if err != nil {
			return 0, err
		}
		return float64(mode.Value()), nil
	case kindFilter:
		status, err := FilterStatusFromValue(code)
		if err != nil {
			return 0, err
		}
		return float64(status.Value()), nil
	default:
		return float64(code), nil
	}
}

func (c *MetricsCollector) collectAll(ch chan<- prometheus.Metric) {
	for _, spec := range metricSpecs {
		c.gauges[spec.property].Collect(ch)
	}
	c.lastSuccess.Collect(ch)
	c.success.Collect(ch)
}
