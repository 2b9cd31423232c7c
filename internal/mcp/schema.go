// Package mcp provides an MCP (Model Context Protocol) server for trustsim.
package mcp

import (
	"github.com/web4labs/trustsim/internal/models"
)

// RunInput defines the input for the trustsim_run tool.
type RunInput struct {
	Preset       string   `json:"preset,omitempty" jsonschema:"description=Named scenario preset: 'steady' 'gambler' or 'doomed' (default: config defaults)"`
	Lives        int      `json:"lives,omitempty" jsonschema:"description=Number of lives including rebirths (default: preset value)"`
	TicksPerLife int      `json:"ticks_per_life,omitempty" jsonschema:"description=Tick cap per life (default: preset value)"`
	RiskAppetite *float64 `json:"risk_appetite,omitempty" jsonschema:"description=Risk appetite in [0 1] (default: preset value)"`
	Seed         int64    `json:"seed,omitempty" jsonschema:"description=Random seed; 0 derives one from entropy"`
	Save         bool     `json:"save,omitempty" jsonschema:"description=Persist the run so trustsim_detect can analyze it later"`
}

// LifeSummary is the condensed view of one life for tool output.
type LifeSummary struct {
	LifeNumber   int     `json:"life_number"`
	Ticks        int     `json:"ticks"`
	InitialTrust float64 `json:"initial_trust"`
	FinalTrust   float64 `json:"final_trust"`
	FinalATP     float64 `json:"final_atp"`
	Reason       string  `json:"reason"`
}

// RunOutput defines the output for the trustsim_run tool.
type RunOutput struct {
	RunID       string        `json:"run_id,omitempty" jsonschema:"description=Stored run ID when save was requested"`
	Seed        int64         `json:"seed" jsonschema:"description=Seed that reproduces this run"`
	Lives       []LifeSummary `json:"lives" jsonschema:"description=Per-life outcomes in order"`
	FinalTrust  float64       `json:"final_trust" jsonschema:"description=Trust at the end of the last life"`
	TrustGrowth float64       `json:"trust_growth" jsonschema:"description=Final trust minus the first life's initial trust"`
	Exhaustions int           `json:"exhaustions" jsonschema:"description=Lives ended by energy exhaustion"`
	TrustDeaths int           `json:"trust_deaths" jsonschema:"description=Lives ended by sustained trust loss"`
	Completed   int           `json:"completed" jsonschema:"description=Lives that reached the tick cap"`
}

// NetworkInput defines the input for the trustsim_network tool.
type NetworkInput struct {
	Preset         string `json:"preset,omitempty" jsonschema:"description=Named scenario preset: 'naive-cartel' or 'advanced-cartel' (default: config defaults)"`
	Sophistication string `json:"sophistication,omitempty" jsonschema:"description=Cartel sophistication: 'naive' 'moderate' or 'advanced'"`
	Ticks          int    `json:"ticks,omitempty" jsonschema:"description=Run length in ticks (default: preset value)"`
	CartelSize     *int   `json:"cartel_size,omitempty" jsonschema:"description=Number of colluding agents (default: preset value)"`
	Seed           int64  `json:"seed,omitempty" jsonschema:"description=Random seed; 0 derives one from entropy"`
	Save           bool   `json:"save,omitempty" jsonschema:"description=Persist the run so trustsim_detect can analyze it later"`
}

// NetworkOutput defines the output for the trustsim_network tool.
type NetworkOutput struct {
	RunID          string         `json:"run_id,omitempty" jsonschema:"description=Stored run ID when save was requested"`
	Seed           int64          `json:"seed" jsonschema:"description=Seed that reproduces this run"`
	Ticks          int            `json:"ticks" jsonschema:"description=Number of ticks simulated"`
	FinalAvgTrust  float64        `json:"final_avg_trust" jsonschema:"description=Network average trust at the final tick"`
	Detections     int            `json:"detections" jsonschema:"description=Total collusion detections across the run"`
	DetectionsBy   map[string]int `json:"detections_by_check" jsonschema:"description=Detection counts keyed by check name"`
	FirstDetection int            `json:"first_detection_tick,omitempty" jsonschema:"description=Tick of the earliest detection; 0 when none fired"`
}

// DetectInput defines the input for the trustsim_detect tool.
type DetectInput struct {
	RunID string `json:"run_id" jsonschema:"description=Stored run to analyze,required"`
	Limit int    `json:"limit,omitempty" jsonschema:"description=Maximum moments to return (default: all)"`
	Save  bool   `json:"save,omitempty" jsonschema:"description=Persist the ranked moments alongside the run"`
}

// DetectOutput defines the output for the trustsim_detect tool.
type DetectOutput struct {
	RunID   string          `json:"run_id"`
	Count   int             `json:"count" jsonschema:"description=Total moments detected before the limit"`
	Moments []models.Moment `json:"moments" jsonschema:"description=Ranked moments most significant first"`
}
