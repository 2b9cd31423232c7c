// Package config provides unified configuration loading for trustsim.
// It supports loading from YAML files and environment variables. All
// parameters have safe defaults; Validate rejects out-of-range values at
// construction time so a running simulation can never hit a malformed
// parameter mid-run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/web4labs/trustsim/internal/constants"
	"github.com/web4labs/trustsim/internal/models"
	"gopkg.in/yaml.v3"
)

// Config contains all trustsim configuration settings.
type Config struct {
	// Simulation configures the single-agent engine.
	Simulation SimConfig `json:"simulation" yaml:"simulation"`

	// Network configures the multi-agent collusion simulation.
	Network NetworkConfig `json:"network" yaml:"network"`

	// Detector configures the moment detector thresholds.
	Detector DetectorConfig `json:"detector" yaml:"detector"`

	// Logging configures operational and trace logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// LoggingConfig configures trustsim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables per-run trace logging to .trustsim/trace.jsonl.
	// "trace" additionally includes per-tick state.
	Level string `json:"level" yaml:"level"`
}

// SimConfig configures the single-agent simulation engine.
type SimConfig struct {
	// Lives is how many lives the agent may live, including rebirths.
	Lives int `json:"lives" yaml:"lives"`

	// TicksPerLife caps each life's length.
	TicksPerLife int `json:"ticks_per_life" yaml:"ticks_per_life"`

	// InitialATP is the energy endowment at birth.
	InitialATP float64 `json:"initial_atp" yaml:"initial_atp"`

	// InitialTrust is the fresh-baseline trust score in [0,1].
	InitialTrust float64 `json:"initial_trust" yaml:"initial_trust"`

	// ActionCost is the base energy cost of an action.
	ActionCost float64 `json:"action_cost" yaml:"action_cost"`

	// ActionReward is the base energy gain of a successful action.
	ActionReward float64 `json:"action_reward" yaml:"action_reward"`

	// TrustGainRate is added to trust on success.
	TrustGainRate float64 `json:"trust_gain_rate" yaml:"trust_gain_rate"`

	// TrustLossRate is subtracted from trust on failure. Must exceed
	// TrustGainRate: trust is harder to build than to lose, by design.
	TrustLossRate float64 `json:"trust_loss_rate" yaml:"trust_loss_rate"`

	// TrustDeathThreshold kills the agent when trust stays below it.
	TrustDeathThreshold float64 `json:"trust_death_threshold" yaml:"trust_death_threshold"`

	// TrustDeathPatience is how many consecutive ticks below the threshold
	// count as sustained trust loss.
	TrustDeathPatience int `json:"trust_death_patience" yaml:"trust_death_patience"`

	// KarmaStrength in [0,1] blends the previous life's final trust into
	// the next life's initial trust. 0 disables inheritance.
	KarmaStrength float64 `json:"karma_strength" yaml:"karma_strength"`

	// KarmaCompression pulls rebirth trust into the moderate band so
	// extreme prior scores grant neither runaway advantage nor permanent
	// handicap.
	KarmaCompression bool `json:"karma_compression" yaml:"karma_compression"`

	// KarmaATPBoost in [0,1] adds a fraction of InitialATP at rebirth,
	// scaled by inherited trust.
	KarmaATPBoost float64 `json:"karma_atp_boost" yaml:"karma_atp_boost"`

	// RiskAppetite in [0,1] blends action selection toward higher
	// cost/reward actions and lowers the baseline success probability.
	RiskAppetite float64 `json:"risk_appetite" yaml:"risk_appetite"`

	// Noise in [0,1] jitters action cost and reward per tick.
	Noise float64 `json:"noise" yaml:"noise"`

	// Seed seeds the pseudo-random generator. 0 means derive a seed from
	// entropy; any other value makes the run reproducible.
	Seed int64 `json:"seed" yaml:"seed"`
}

// NetworkConfig configures the multi-agent collusion simulation.
type NetworkConfig struct {
	// Ticks is the fixed length of the run.
	Ticks int `json:"ticks" yaml:"ticks"`

	// NetworkSize is the total number of agents.
	NetworkSize int `json:"network_size" yaml:"network_size"`

	// CartelSize is how many of the agents collude. Zero disables the
	// cartel entirely.
	CartelSize int `json:"cartel_size" yaml:"cartel_size"`

	// Sophistication is how carefully the cartel hides: "naive",
	// "moderate", or "advanced".
	Sophistication models.Sophistication `json:"sophistication" yaml:"sophistication"`

	// DiversityThreshold in [0,1]: agents whose diversity score falls
	// below it after warm-up are flagged.
	DiversityThreshold float64 `json:"diversity_threshold" yaml:"diversity_threshold"`

	// ChallengeRate in [0,1] is the per-agent, per-tick audit probability.
	ChallengeRate float64 `json:"challenge_rate" yaml:"challenge_rate"`

	// InitialATP and InitialTrust seed every agent's starting state.
	InitialATP   float64 `json:"initial_atp" yaml:"initial_atp"`
	InitialTrust float64 `json:"initial_trust" yaml:"initial_trust"`

	// TrustIncrement and ATPCredit are the per-validation rewards before
	// any cartel inflation.
	TrustIncrement float64 `json:"trust_increment" yaml:"trust_increment"`
	ATPCredit      float64 `json:"atp_credit" yaml:"atp_credit"`

	// DiversityWarmup and DiversityWindow control the diversity check:
	// no flags before the warm-up tick, and scores are computed over a
	// sliding window of incoming validations.
	DiversityWarmup int `json:"diversity_warmup" yaml:"diversity_warmup"`
	DiversityWindow int `json:"diversity_window" yaml:"diversity_window"`

	// Seed seeds the pseudo-random generator. 0 derives from entropy.
	Seed int64 `json:"seed" yaml:"seed"`
}

// DetectorConfig exposes the moment detector's thresholds. The defaults
// mirror the named design constants; overriding them here keeps the
// constants package authoritative while letting callers experiment.
type DetectorConfig struct {
	EmergenceThreshold float64 `json:"emergence_threshold" yaml:"emergence_threshold"`
	CollapseDrop       float64 `json:"collapse_drop" yaml:"collapse_drop"`
	SurgeRise          float64 `json:"surge_rise" yaml:"surge_rise"`
	MaturationDelta    float64 `json:"maturation_delta" yaml:"maturation_delta"`
	CrisisFraction     float64 `json:"crisis_fraction" yaml:"crisis_fraction"`
	RecoveryFraction   float64 `json:"recovery_fraction" yaml:"recovery_fraction"`
	KarmaEpsilon       float64 `json:"karma_epsilon" yaml:"karma_epsilon"`
	TrustSwingDelta    float64 `json:"trust_swing_delta" yaml:"trust_swing_delta"`
}

// DefaultSim returns a SimConfig with sensible defaults.
func DefaultSim() SimConfig {
	return SimConfig{
		Lives:               3,
		TicksPerLife:        100,
		InitialATP:          100,
		InitialTrust:        0.5,
		ActionCost:          20,
		ActionReward:        25,
		TrustGainRate:       0.02,
		TrustLossRate:       0.05,
		TrustDeathThreshold: 0.15,
		TrustDeathPatience:  3,
		KarmaStrength:       0.5,
		KarmaCompression:    true,
		KarmaATPBoost:       0.1,
		RiskAppetite:        0.3,
		Noise:               0.1,
	}
}

// DefaultNetwork returns a NetworkConfig with sensible defaults.
func DefaultNetwork() NetworkConfig {
	return NetworkConfig{
		Ticks:              40,
		NetworkSize:        12,
		CartelSize:         4,
		Sophistication:     models.SophisticationNaive,
		DiversityThreshold: 0.4,
		ChallengeRate:      0.1,
		InitialATP:         100,
		InitialTrust:       0.5,
		TrustIncrement:     0.01,
		ATPCredit:          2.0,
		DiversityWarmup:    constants.DiversityWarmupTicks,
		DiversityWindow:    constants.DiversityWindowTicks,
	}
}

// DefaultDetector returns a DetectorConfig mirroring the design constants.
func DefaultDetector() DetectorConfig {
	return DetectorConfig{
		EmergenceThreshold: constants.EmergenceTrustThreshold,
		CollapseDrop:       constants.CollapseDropFraction,
		SurgeRise:          constants.SurgeRiseFraction,
		MaturationDelta:    constants.MaturationDelta,
		CrisisFraction:     constants.CrisisEnergyFraction,
		RecoveryFraction:   constants.RecoveryEnergyFraction,
		KarmaEpsilon:       constants.KarmaEpsilon,
		TrustSwingDelta:    constants.NetworkTrustSwingDelta,
	}
}

// Default returns a Config with sensible defaults for every section.
func Default() *Config {
	return &Config{
		Simulation: DefaultSim(),
		Network:    DefaultNetwork(),
		Detector:   DefaultDetector(),
		Logging:    LoggingConfig{Level: "info"},
	}
}

// Load loads configuration from the default locations and environment
// variables. Order: defaults -> ~/.trustsim/config.yaml -> environment.
func Load() (*Config, error) {
	cfg := Default()

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".trustsim", "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileCfg, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			cfg = fileCfg
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is valid. It is the single gate
// for configuration errors: anything it accepts cannot fail mid-run.
func (c *Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if err := c.Network.Validate(); err != nil {
		return fmt.Errorf("network: %w", err)
	}
	if err := c.Detector.Validate(); err != nil {
		return fmt.Errorf("detector: %w", err)
	}

	validLevels := map[string]bool{"": true, "info": true, "debug": true, "trace": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// Validate checks the engine parameters.
func (c SimConfig) Validate() error {
	if c.Lives < 1 {
		return fmt.Errorf("lives must be at least 1, got %d", c.Lives)
	}
	if c.TicksPerLife < 1 {
		return fmt.Errorf("ticks_per_life must be at least 1, got %d", c.TicksPerLife)
	}
	if c.InitialATP <= 0 {
		return fmt.Errorf("initial_atp must be positive, got %f", c.InitialATP)
	}
	if c.ActionCost < 0 {
		return fmt.Errorf("action_cost must be non-negative, got %f", c.ActionCost)
	}
	if c.ActionReward < 0 {
		return fmt.Errorf("action_reward must be non-negative, got %f", c.ActionReward)
	}
	if c.InitialTrust < 0 || c.InitialTrust > 1 {
		return fmt.Errorf("initial_trust must be between 0 and 1, got %f", c.InitialTrust)
	}
	if c.TrustGainRate <= 0 || c.TrustGainRate > 1 {
		return fmt.Errorf("trust_gain_rate must be in (0, 1], got %f", c.TrustGainRate)
	}
	if c.TrustLossRate <= 0 || c.TrustLossRate > 1 {
		return fmt.Errorf("trust_loss_rate must be in (0, 1], got %f", c.TrustLossRate)
	}
	if c.TrustLossRate <= c.TrustGainRate {
		return fmt.Errorf("trust_loss_rate (%f) must exceed trust_gain_rate (%f): trust dynamics are asymmetric", c.TrustLossRate, c.TrustGainRate)
	}
	if c.TrustDeathThreshold < 0 || c.TrustDeathThreshold > 1 {
		return fmt.Errorf("trust_death_threshold must be between 0 and 1, got %f", c.TrustDeathThreshold)
	}
	if c.TrustDeathPatience < 1 {
		return fmt.Errorf("trust_death_patience must be at least 1, got %d", c.TrustDeathPatience)
	}
	if c.KarmaStrength < 0 || c.KarmaStrength > 1 {
		return fmt.Errorf("karma_strength must be between 0 and 1, got %f", c.KarmaStrength)
	}
	if c.KarmaATPBoost < 0 || c.KarmaATPBoost > 1 {
		return fmt.Errorf("karma_atp_boost must be between 0 and 1, got %f", c.KarmaATPBoost)
	}
	if c.RiskAppetite < 0 || c.RiskAppetite > 1 {
		return fmt.Errorf("risk_appetite must be between 0 and 1, got %f", c.RiskAppetite)
	}
	if c.Noise < 0 || c.Noise > 1 {
		return fmt.Errorf("noise must be between 0 and 1, got %f", c.Noise)
	}
	return nil
}

// Validate checks the network simulation parameters.
func (c NetworkConfig) Validate() error {
	if c.Ticks < 1 {
		return fmt.Errorf("ticks must be at least 1, got %d", c.Ticks)
	}
	if c.NetworkSize < 2 {
		return fmt.Errorf("network_size must be at least 2, got %d", c.NetworkSize)
	}
	if c.CartelSize < 0 || c.CartelSize >= c.NetworkSize {
		return fmt.Errorf("cartel_size must be in [0, network_size), got %d of %d", c.CartelSize, c.NetworkSize)
	}
	if !models.ValidSophistication(c.Sophistication) {
		return fmt.Errorf("invalid sophistication: %s (valid: naive, moderate, advanced)", c.Sophistication)
	}
	if c.DiversityThreshold < 0 || c.DiversityThreshold > 1 {
		return fmt.Errorf("diversity_threshold must be between 0 and 1, got %f", c.DiversityThreshold)
	}
	if c.ChallengeRate < 0 || c.ChallengeRate > 1 {
		return fmt.Errorf("challenge_rate must be between 0 and 1, got %f", c.ChallengeRate)
	}
	if c.InitialATP <= 0 {
		return fmt.Errorf("initial_atp must be positive, got %f", c.InitialATP)
	}
	if c.InitialTrust < 0 || c.InitialTrust > 1 {
		return fmt.Errorf("initial_trust must be between 0 and 1, got %f", c.InitialTrust)
	}
	if c.TrustIncrement < 0 {
		return fmt.Errorf("trust_increment must be non-negative, got %f", c.TrustIncrement)
	}
	if c.ATPCredit < 0 {
		return fmt.Errorf("atp_credit must be non-negative, got %f", c.ATPCredit)
	}
	if c.DiversityWarmup < 0 {
		return fmt.Errorf("diversity_warmup must be non-negative, got %d", c.DiversityWarmup)
	}
	if c.DiversityWindow < 1 {
		return fmt.Errorf("diversity_window must be at least 1, got %d", c.DiversityWindow)
	}
	return nil
}

// Validate checks the detector thresholds.
func (c DetectorConfig) Validate() error {
	fractions := map[string]float64{
		"emergence_threshold": c.EmergenceThreshold,
		"collapse_drop":       c.CollapseDrop,
		"surge_rise":          c.SurgeRise,
		"maturation_delta":    c.MaturationDelta,
		"crisis_fraction":     c.CrisisFraction,
		"recovery_fraction":   c.RecoveryFraction,
		"karma_epsilon":       c.KarmaEpsilon,
		"trust_swing_delta":   c.TrustSwingDelta,
	}
	for name, v := range fractions {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %f", name, v)
		}
	}
	if c.RecoveryFraction <= c.CrisisFraction {
		return fmt.Errorf("recovery_fraction (%f) must exceed crisis_fraction (%f)", c.RecoveryFraction, c.CrisisFraction)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRUSTSIM_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("TRUSTSIM_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Simulation.Seed = n
			cfg.Network.Seed = n
		}
	}

	if v := os.Getenv("TRUSTSIM_LIVES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Simulation.Lives = n
		}
	}

	if v := os.Getenv("TRUSTSIM_RISK_APPETITE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Simulation.RiskAppetite = f
		}
	}

	if v := os.Getenv("TRUSTSIM_SOPHISTICATION"); v != "" {
		cfg.Network.Sophistication = models.Sophistication(v)
	}

	if v := os.Getenv("TRUSTSIM_CHALLENGE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Network.ChallengeRate = f
		}
	}
}
