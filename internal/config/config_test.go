package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("COMFORTD_HTTP_ADDR", "")
	t.Setenv("COMFORTD_MQTT_BROKER", "")
	t.Setenv("COMFORTD_POLL_INTERVAL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.HTTPAddr != DefaultHTTPAddr {
		t.Fatalf("unexpected http addr %q", cfg.HTTPAddr)
	}
	if cfg.MQTTTopicPrefix != DefaultMQTTTopicPrefix {
		t.Fatalf("unexpected topic prefix %q", cfg.MQTTTopicPrefix)
	}
	if cfg.PollInterval != DefaultPollInterval {
		t.Fatalf("unexpected poll interval %s", cfg.PollInterval)
	}
	if cfg.MQTTEnabled() {
		t.Fatalf("expected mqtt disabled without broker")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("COMFORTD_HTTP_ADDR", "127.0.0.1:9999")
	t.Setenv("COMFORTD_MQTT_BROKER", "tcp://mosquitto:1883")
	t.Setenv("COMFORTD_MQTT_TOPIC_PREFIX", "home/basement")
	t.Setenv("COMFORTD_POLL_INTERVAL", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:9999" {
		t.Fatalf("unexpected http addr %q", cfg.HTTPAddr)
	}
	if !cfg.MQTTEnabled() {
		t.Fatalf("expected mqtt enabled")
	}
	if cfg.MQTTTopicPrefix != "home/basement" {
		t.Fatalf("unexpected topic prefix %q", cfg.MQTTTopicPrefix)
	}
	if cfg.PollInterval != 60*time.Second {
		t.Fatalf("unexpected poll interval %s", cfg.PollInterval)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("COMFORTD_POLL_INTERVAL", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for bad poll interval")
	}

	t.Setenv("COMFORTD_POLL_INTERVAL", "")
	t.Setenv("COMFORTD_MQTT_BROKER", "mosquitto:1883")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for broker without scheme")
	}
}
