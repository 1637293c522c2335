package core

import "sync"

// PluginSummary is the public registry view of a plugin.
type PluginSummary struct {
	PluginID    string `json:"plugin_id"`
	DisplayName string `json:"display_name"`
	Version     string `json:"version"`
	Status      string `json:"status"`
}

// PluginDescriptor extends the summary with health detail.
type PluginDescriptor struct {
	PluginSummary
	HealthMessage string `json:"health_message,omitempty"`
}

// Registry provides plugin discovery to clients.
type Registry struct {
	plugins []Plugin
	mu      sync.RWMutex
}

func NewRegistry(plugins []Plugin) *Registry {
	return &Registry{plugins: plugins}
}

func (r *Registry) ListPlugins() []PluginSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]PluginSummary, 0, len(r.plugins))
	for _, p := range r.plugins {
		manifest := p.Manifest()
		summaries = append(summaries, PluginSummary{
			PluginID:    manifest.PluginID,
			DisplayName: manifest.DisplayName,
			Version:     manifest.Version,
			Status:      string(p.Health()),
		})
	}
	return summaries
}

func (r *Registry) DescribePlugin(id string) (PluginDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		manifest := p.Manifest()
		if manifest.PluginID != id {
			continue
		}
		return PluginDescriptor{
			PluginSummary: PluginSummary{
				PluginID:    manifest.PluginID,
				DisplayName: manifest.DisplayName,
				Version:     manifest.Version,
				Status:      string(p.Health()),
			},
			HealthMessage: p.HealthMessage(),
		}, true
	}
	return PluginDescriptor{}, false
}
