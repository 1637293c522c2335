package core

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// HealthStatus represents plugin health states for registry reporting.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "HEALTHY"
	HealthDegraded HealthStatus = "DEGRADED"
	HealthError    HealthStatus = "ERROR"
)

// Manifest describes a plugin for discovery and registry metadata.
type Manifest struct {
	PluginID    string `json:"plugin_id"`
	DisplayName string `json:"display_name"`
	Version     string `json:"version"`
}

// Plugin is the compile-time contract for all comfortd plugins.
type Plugin interface {
	ID() string
	Manifest() Manifest
	RegisterRoutes(chi.Router)
	Collectors() []prometheus.Collector
	Health() HealthStatus
	HealthMessage() string
}
