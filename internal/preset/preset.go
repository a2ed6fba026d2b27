// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package preset loads encoding presets and collects the final command
// string from the user.
package preset

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Preset is one named encoding command.
type Preset struct {
	Name    string `yaml:"name"`
	Command string `yaml:"command"`
}

// Load reads a YAML preset file keyed by preset id.
func Load(path string) (map[string]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	presets := map[string]Preset{}
	if err := yaml.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("parse presets %s: %w", path, err)
	}
	for id, p := range presets {
		if p.Command == "" {
			return nil, fmt.Errorf("preset %q has no command", id)
		}
		if p.Name == "" {
			p.Name = id
			presets[id] = p
		}
	}
	return presets, nil
}

// ByID returns the command of the named preset.
func ByID(presets map[string]Preset, id string) (string, error) {
	p, ok := presets[id]
	if !ok {
		return "", fmt.Errorf("unknown preset %q (have: %v)", id, sortedIDs(presets))
	}
	return p.Command, nil
}

func sortedIDs(presets map[string]Preset) []string {
	ids := make([]string, 0, len(presets))
	for id := range presets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
