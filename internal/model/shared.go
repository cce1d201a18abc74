package model

import (
	"encoding/json"
	"fmt"

	"github.com/mheller/vsmoke/internal/ports"
)

// sharedConfig is the JSON blob the generated wrapper embeds and
// exports through model_config.
type sharedConfig struct {
	Component string           `json:"component"`
	Params    map[string]any   `json:"params"`
	Clocks    []string         `json:"clocks"`
	Resets    []string         `json:"resets"`
	ResetNs   []string         `json:"resetns"`
	Inputs    []ports.Bus      `json:"inputs"`
	Outputs   []ports.Bus      `json:"outputs"`
	Registers []ports.Register `json:"registers"`
}

// parseSharedConfig decodes a wrapper config blob into the component
// name and grouped interface.
func parseSharedConfig(raw string) (string, ports.Interface, error) {
	var cfg sharedConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return "", ports.Interface{}, fmt.Errorf("failed to decode model config: %w", err)
	}
	if cfg.Component == "" {
		return "", ports.Interface{}, fmt.Errorf("model config has no component name")
	}
	ifc := ports.Interface{
		Clocks:    cfg.Clocks,
		Resets:    cfg.Resets,
		ResetNs:   cfg.ResetNs,
		Inputs:    cfg.Inputs,
		Outputs:   cfg.Outputs,
		Registers: cfg.Registers,
	}
	return cfg.Component, ifc, nil
}
