package core

import (
	"fmt"
	"regexp"
)

var pluginIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_]+$`)

// ValidatePlugins enforces basic plugin contract invariants at startup.
func ValidatePlugins(plugins []Plugin) error {
	seen := make(map[string]bool)
	for _, plugin := range plugins {
		id := plugin.ID()
		manifest := plugin.Manifest()
		if id == "" {
			return fmt.Errorf("plugin id is empty")
		}
		if !pluginIDPattern.MatchString(id) {
			return fmt.Errorf("plugin id %q does not match %s", id, pluginIDPattern.String())
		}
		if manifest.PluginID != id {
			return fmt.Errorf("plugin id mismatch: id=%q manifest=%q", id, manifest.PluginID)
		}
		if seen[id] {
			return fmt.Errorf("duplicate plugin id: %s", id)
		}
		seen[id] = true
	}
	return nil
}

// FilterPlugins returns the compiled plugins selected by the enabled
// map, or all of them when allEnabled is set.
func FilterPlugins(compiled []Plugin, enabled map[string]bool, allEnabled bool) []Plugin {
	if allEnabled {
		return compiled
	}
	var active []Plugin
	for _, plugin := range compiled {
		if enabled[plugin.ID()] {
			active = append(active, plugin)
		}
	}
	return active
}

// ValidateEnabledPlugins rejects enabled ids that no compiled plugin
// provides.
func ValidateEnabledPlugins(compiled []Plugin, enabled map[string]bool, allEnabled bool) error {
	if allEnabled {
		return nil
	}
	known := make(map[string]bool, len(compiled))
	for _, plugin := range compiled {
		known[plugin.ID()] = true
	}
	for id := range enabled {
		if !known[id] {
			return fmt.Errorf("enabled plugin %q is not compiled in", id)
		}
	}
	return nil
}
