package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/web4labs/trustsim/internal/models"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestSimConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SimConfig)
		wantErr bool
	}{
		{"defaults", func(c *SimConfig) {}, false},
		{"zero lives", func(c *SimConfig) { c.Lives = 0 }, true},
		{"zero ticks", func(c *SimConfig) { c.TicksPerLife = 0 }, true},
		{"non-positive endowment", func(c *SimConfig) { c.InitialATP = 0 }, true},
		{"trust out of range", func(c *SimConfig) { c.InitialTrust = 1.5 }, true},
		{"symmetric trust rates", func(c *SimConfig) { c.TrustLossRate = c.TrustGainRate }, true},
		{"gain above loss", func(c *SimConfig) { c.TrustGainRate = 0.1; c.TrustLossRate = 0.05 }, true},
		{"zero patience", func(c *SimConfig) { c.TrustDeathPatience = 0 }, true},
		{"risk appetite above 1", func(c *SimConfig) { c.RiskAppetite = 1.1 }, true},
		{"negative noise", func(c *SimConfig) { c.Noise = -0.1 }, true},
		{"karma strength above 1", func(c *SimConfig) { c.KarmaStrength = 2 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSim()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation to fail")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected validation to pass: %v", err)
			}
		})
	}
}

func TestNetworkConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*NetworkConfig)
		wantErr bool
	}{
		{"defaults", func(c *NetworkConfig) {}, false},
		{"no cartel", func(c *NetworkConfig) { c.CartelSize = 0 }, false},
		{"cartel fills network", func(c *NetworkConfig) { c.CartelSize = c.NetworkSize }, true},
		{"negative cartel", func(c *NetworkConfig) { c.CartelSize = -1 }, true},
		{"unknown sophistication", func(c *NetworkConfig) { c.Sophistication = "clever" }, true},
		{"threshold above 1", func(c *NetworkConfig) { c.DiversityThreshold = 1.5 }, true},
		{"zero window", func(c *NetworkConfig) { c.DiversityWindow = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultNetwork()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation to fail")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected validation to pass: %v", err)
			}
		})
	}
}

func TestDetectorConfigValidate(t *testing.T) {
	cfg := DefaultDetector()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cfg.RecoveryFraction = cfg.CrisisFraction
	if err := cfg.Validate(); err == nil {
		t.Error("expected recovery at the crisis line to be rejected")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
simulation:
  lives: 7
  risk_appetite: 0.8
network:
  sophistication: advanced
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.Simulation.Lives != 7 {
		t.Errorf("expected lives 7, got %d", cfg.Simulation.Lives)
	}
	if cfg.Simulation.RiskAppetite != 0.8 {
		t.Errorf("expected risk appetite 0.8, got %f", cfg.Simulation.RiskAppetite)
	}
	if cfg.Network.Sophistication != models.SophisticationAdvanced {
		t.Errorf("expected advanced sophistication, got %s", cfg.Network.Sophistication)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Logging.Level)
	}

	// Unspecified fields keep their defaults.
	if cfg.Simulation.TicksPerLife != DefaultSim().TicksPerLife {
		t.Errorf("expected default ticks_per_life, got %d", cfg.Simulation.TicksPerLife)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TRUSTSIM_SEED", "777")
	t.Setenv("TRUSTSIM_LIVES", "9")
	t.Setenv("TRUSTSIM_SOPHISTICATION", "moderate")
	t.Setenv("TRUSTSIM_LOG_LEVEL", "trace")

	cfg := Default()
	applyEnvOverrides(cfg)

	if cfg.Simulation.Seed != 777 || cfg.Network.Seed != 777 {
		t.Errorf("expected seed 777 on both sections, got %d and %d",
			cfg.Simulation.Seed, cfg.Network.Seed)
	}
	if cfg.Simulation.Lives != 9 {
		t.Errorf("expected lives 9, got %d", cfg.Simulation.Lives)
	}
	if cfg.Network.Sophistication != models.SophisticationModerate {
		t.Errorf("expected moderate sophistication, got %s", cfg.Network.Sophistication)
	}
	if cfg.Logging.Level != "trace" {
		t.Errorf("expected trace level, got %s", cfg.Logging.Level)
	}
}
