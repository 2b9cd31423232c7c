// Package models defines the plain serializable records exchanged between
// the simulation engines, the moment detector, and any presentation layer.
// Records carry no behavior beyond small helpers; once a life or tick is
// finalized it is treated as immutable.
package models

// TerminationReason explains why a life ended.
type TerminationReason string

const (
	// TerminationATPExhaustion means the agent's energy reached zero.
	TerminationATPExhaustion TerminationReason = "atp_exhaustion"

	// TerminationTrustLost means trust stayed below the survival threshold
	// for the configured number of consecutive ticks.
	TerminationTrustLost TerminationReason = "trust_lost"

	// TerminationCompleted means the life reached its tick cap.
	TerminationCompleted TerminationReason = "completed"
)

// TickPoint is one step of a life's history: the agent's state after the
// tick's action outcome was applied.
type TickPoint struct {
	Tick    int     `json:"tick"`
	ATP     float64 `json:"atp"`
	Trust   float64 `json:"trust"`
	Success bool    `json:"success"`
}

// Agent is one simulated entity's mutable state.
type Agent struct {
	ID         string  `json:"id"`
	ATP        float64 `json:"atp"`
	Trust      float64 `json:"trust"`
	LifeNumber int     `json:"life_number"`
	Alive      bool    `json:"alive"`
}

// Life is the closed record of one agent's existence between birth and
// death or completion. Read-only once Reason is set.
type Life struct {
	AgentID      string            `json:"agent_id"`
	LifeNumber   int               `json:"life_number"`
	StartTick    int               `json:"start_tick"`
	EndTick      int               `json:"end_tick"`
	InitialATP   float64           `json:"initial_atp"`
	InitialTrust float64           `json:"initial_trust"`
	FinalATP     float64           `json:"final_atp"`
	FinalTrust   float64           `json:"final_trust"`
	Reason       TerminationReason `json:"reason"`
	History      []TickPoint       `json:"history"`
}

// Ticks returns the number of ticks the life survived.
func (l Life) Ticks() int {
	return len(l.History)
}

// ClampTrust bounds a trust value to [0, 1].
func ClampTrust(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampATP bounds an energy value at a floor of zero.
func ClampATP(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
