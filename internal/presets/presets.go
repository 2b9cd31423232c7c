// Package presets ships named, ready-to-run scenario configurations.
// Presets are returned by value: callers may tweak their copy freely
// without affecting later lookups.
package presets

import (
	"fmt"
	"sort"

	"github.com/web4labs/trustsim/internal/config"
	"github.com/web4labs/trustsim/internal/models"
)

// EnginePreset is a named single-agent scenario.
type EnginePreset struct {
	Name        string
	Description string
	Config      config.SimConfig
}

// NetworkPreset is a named network scenario.
type NetworkPreset struct {
	Name        string
	Description string
	Config      config.NetworkConfig
}

func enginePresets() map[string]EnginePreset {
	steady := config.DefaultSim()
	steady.RiskAppetite = 0.1
	steady.Noise = 0.05

	gambler := config.DefaultSim()
	gambler.RiskAppetite = 0.9
	gambler.Noise = 0.2

	doomed := config.DefaultSim()
	doomed.ActionCost = 40
	doomed.ActionReward = 20
	doomed.RiskAppetite = 0.8

	return map[string]EnginePreset{
		"steady": {
			Name:        "steady",
			Description: "Cautious agent that compounds small wins across its lives.",
			Config:      steady,
		},
		"gambler": {
			Name:        "gambler",
			Description: "High risk appetite and noisy outcomes; spectacular rises and falls.",
			Config:      gambler,
		},
		"doomed": {
			Name:        "doomed",
			Description: "Actions cost more than they pay; exhaustion is only a matter of time.",
			Config:      doomed,
		},
	}
}

func networkPresets() map[string]NetworkPreset {
	naive := config.DefaultNetwork()
	naive.Sophistication = models.SophisticationNaive

	advanced := config.DefaultNetwork()
	advanced.Sophistication = models.SophisticationAdvanced
	advanced.ChallengeRate = 0.05

	return map[string]NetworkPreset{
		"naive-cartel": {
			Name:        "naive-cartel",
			Description: "Blatant mutual validation ring; the diversity check catches it fast.",
			Config:      naive,
		},
		"advanced-cartel": {
			Name:        "advanced-cartel",
			Description: "Camouflaged cartel that cross-validates outsiders and mostly passes audits.",
			Config:      advanced,
		},
	}
}

// Engine returns the named single-agent preset.
func Engine(name string) (EnginePreset, error) {
	p, ok := enginePresets()[name]
	if !ok {
		return EnginePreset{}, fmt.Errorf("unknown engine preset: %s (valid: %v)", name, EngineNames())
	}
	return p, nil
}

// Network returns the named network preset.
func Network(name string) (NetworkPreset, error) {
	p, ok := networkPresets()[name]
	if !ok {
		return NetworkPreset{}, fmt.Errorf("unknown network preset: %s (valid: %v)", name, NetworkNames())
	}
	return p, nil
}

// EngineNames lists the engine presets in sorted order.
func EngineNames() []string {
	names := make([]string, 0, len(enginePresets()))
	for name := range enginePresets() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NetworkNames lists the network presets in sorted order.
func NetworkNames() []string {
	names := make([]string, 0, len(networkPresets()))
	for name := range networkPresets() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
