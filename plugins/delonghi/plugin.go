package delonghi

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/delonghi-comfort/comfortd/internal/core"
)

// Plugin implements the comfortd plugin contract.
type Plugin struct {
	client        *Client
	health        core.HealthStatus
	healthMessage string
}

// NewPlugin constructs a DeLonghi plugin from environment configuration.
func NewPlugin() Plugin {
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		return Plugin{health: core.HealthError, healthMessage: err.Error()}
	}

	client, err := NewClient(cfg)
	if err != nil {
		return Plugin{health: core.HealthError, healthMessage: err.Error()}
	}

	return Plugin{client: client, health: core.HealthHealthy}
}

// NewPluginWithClient wires a pre-built client, for callers that manage
// configuration themselves.
func NewPluginWithClient(client *Client) Plugin {
	return Plugin{client: client, health: core.HealthHealthy}
}

func (p Plugin) ID() string {
	return "delonghi"
}

func (p Plugin) Manifest() core.Manifest {
	return core.Manifest{
		PluginID:    "delonghi",
		DisplayName: "DeLonghi Dehumidifier",
		Version:     "0.1.0",
	}
}

func (p Plugin) Client() *Client {
	return p.client
}

func (p Plugin) RegisterRoutes(r chi.Router) {
	if p.client == nil {
		return
	}
	NewService(p.client).Routes(r)
}

func (p Plugin) Collectors() []prometheus.Collector {
	if p.client == nil {
		return nil
	}
	return []prometheus.Collector{NewMetricsCollector(p.client)}
}

func (p Plugin) Health() core.HealthStatus {
	return p.health
}

func (p Plugin) HealthMessage() string {
	return p.healthMessage
}
