package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultHTTPAddr        = "0.0.0.0:8080"
	DefaultMQTTTopicPrefix = "comfortd/dehumidifier"
	DefaultPollInterval    = 30 * time.Second
)

// Config holds daemon settings loaded from the environment. Plugin
// credentials stay in the plugin's own env loader; this covers the
// shared surfaces.
type Config struct {
	HTTPAddr string

	MQTTBrokerURL   string
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopicPrefix string
	PollInterval    time.Duration
}

// Load reads COMFORTD_* variables, applies defaults, and validates.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:        envOrDefault("COMFORTD_HTTP_ADDR", DefaultHTTPAddr),
		MQTTBrokerURL:   os.Getenv("COMFORTD_MQTT_BROKER"),
		MQTTUsername:    os.Getenv("COMFORTD_MQTT_USERNAME"),
		MQTTPassword:    os.Getenv("COMFORTD_MQTT_PASSWORD"),
		MQTTTopicPrefix: envOrDefault("COMFORTD_MQTT_TOPIC_PREFIX", DefaultMQTTTopicPrefix),
		PollInterval:    DefaultPollInterval,
	}

	if raw := os.Getenv("COMFORTD_POLL_INTERVAL"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("COMFORTD_POLL_INTERVAL must be a positive number of seconds, got %q", raw)
		}
		cfg.PollInterval = time.Duration(seconds) * time.Second
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MQTTEnabled reports whether a broker was configured; the bridge is
// optional.
func (c Config) MQTTEnabled() bool {
	return c.MQTTBrokerURL != ""
}

func (c Config) validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("http addr is required")
	}
	if c.MQTTBrokerURL != "" && !strings.Contains(c.MQTTBrokerURL, "://") {
		return fmt.Errorf("COMFORTD_MQTT_BROKER must include a scheme, e.g. tcp://host:1883")
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
