// Package network implements the multi-agent variant of the trust economy:
// N agents witness each other's actions through validation events, a
// colluding subgroup inflates its own rewards, and a set of independent
// detection checks tries to expose the cartel. The module exists to make
// the detection/evasion arms race explorable: the same configuration
// surface demonstrates both successful detection and successful evasion.
//
// Updates are synchronous rounds: every validation in a tick is computed
// from the previous tick's state before any of them is applied.
package network

import (
	"fmt"
	"math/rand"

	"github.com/web4labs/trustsim/internal/config"
	"github.com/web4labs/trustsim/internal/engine"
	"github.com/web4labs/trustsim/internal/models"
)

// Simulation runs a fixed-length network scenario.
type Simulation struct {
	cfg config.NetworkConfig
	rng *rand.Rand

	agents []models.NetworkAgent

	// incoming tracks recent incoming validations per agent for the
	// diversity score: a sliding window of (tick, source) records.
	incoming map[string][]incomingRecord

	// velocityBreaches counts consecutive ATP-velocity check breaches;
	// a sustained run raises the cluster alert.
	velocityBreaches int

	// trustVelocityFlagged remembers agents already flagged by the
	// trust-velocity check so they are not re-flagged every tick.
	trustVelocityFlagged map[string]bool
}

// Option customizes a Simulation at construction.
type Option func(*Simulation)

// WithRand replaces the simulation's random generator.
func WithRand(r *rand.Rand) Option {
	return func(s *Simulation) { s.rng = r }
}

// New validates cfg and constructs a Simulation. A zero cfg.Seed draws a
// seed from entropy; any other value makes Run reproducible.
func New(cfg config.NetworkConfig, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid network config: %w", err)
	}

	if cfg.Seed == 0 {
		seed, err := engine.NewSeed()
		if err != nil {
			return nil, err
		}
		cfg.Seed = seed
	}

	s := &Simulation{
		cfg:                  cfg,
		rng:                  rand.New(rand.NewSource(cfg.Seed)),
		incoming:             make(map[string][]incomingRecord),
		trustVelocityFlagged: make(map[string]bool),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.agents = make([]models.NetworkAgent, cfg.NetworkSize)
	for i := range s.agents {
		s.agents[i] = models.NetworkAgent{
			ID:        fmt.Sprintf("agent-%02d", i+1),
			ATP:       cfg.InitialATP,
			Trust:     cfg.InitialTrust,
			Colluding: i < cfg.CartelSize,
			Diversity: 1,
		}
	}

	return s, nil
}

// Seed returns the seed the simulation runs with. When constructed with a
// zero seed, this is the drawn value that reproduces the run.
func (s *Simulation) Seed() int64 {
	return s.cfg.Seed
}

type incomingRecord struct {
	tick int
	from string
}

// Run executes the configured number of ticks and returns the full
// snapshot sequence. Snapshots are immutable once recorded.
func (s *Simulation) Run() []models.TickSnapshot {
	snapshots := make([]models.TickSnapshot, 0, s.cfg.Ticks)

	for tick := 1; tick <= s.cfg.Ticks; tick++ {
		snapshots = append(snapshots, s.step(tick))
	}

	return snapshots
}

// step resolves one synchronous round and records its snapshot.
func (s *Simulation) step(tick int) models.TickSnapshot {
	validations := s.issueValidations()

	for _, v := range validations {
		target := s.agent(v.To)
		target.Trust = models.ClampTrust(target.Trust + v.TrustDelta)
		target.ATP = models.ClampATP(target.ATP + v.ATPDelta)

		s.incoming[v.To] = append(s.incoming[v.To], incomingRecord{tick: tick, from: v.From})
	}

	s.pruneWindows(tick)
	s.updateDiversity()

	detections := s.runChecks(tick)

	return s.snapshot(tick, validations, detections)
}

// issueValidations computes every agent's 1-3 validation events from the
// previous tick's state. Colluders bias toward the cartel; advanced
// cartels cross-validate legitimate agents as camouflage.
func (s *Simulation) issueValidations() []models.Validation {
	bias := cartelBias(s.cfg.Sophistication)
	inflation := cartelInflation(s.cfg.Sophistication)

	var validations []models.Validation
	for i := range s.agents {
		from := s.agents[i]
		count := 1 + s.rng.Intn(3)

		for n := 0; n < count; n++ {
			to := s.pickTarget(i, bias)
			if to < 0 {
				continue
			}

			colluding := from.Colluding && s.agents[to].Colluding
			mult := 1.0
			if colluding {
				mult = inflation
			}

			validations = append(validations, models.Validation{
				From:       from.ID,
				To:         s.agents[to].ID,
				TrustDelta: s.cfg.TrustIncrement * mult,
				ATPDelta:   s.cfg.ATPCredit * mult,
				Colluding:  colluding,
			})
		}
	}
	return validations
}

// pickTarget selects a validation target for agent i, biased toward the
// cartel when i colludes. Returns -1 when no target exists.
func (s *Simulation) pickTarget(i int, bias float64) int {
	if s.agents[i].Colluding && s.cfg.CartelSize > 1 && s.rng.Float64() < bias {
		// Another cartel member.
		to := s.rng.Intn(s.cfg.CartelSize - 1)
		if to >= i {
			to++
		}
		return to
	}

	if s.cfg.NetworkSize < 2 {
		return -1
	}
	to := s.rng.Intn(s.cfg.NetworkSize - 1)
	if to >= i {
		to++
	}
	return to
}

// pruneWindows drops incoming records older than the diversity window.
func (s *Simulation) pruneWindows(tick int) {
	cutoff := tick - s.cfg.DiversityWindow
	for id, records := range s.incoming {
		kept := records[:0]
		for _, r := range records {
			if r.tick > cutoff {
				kept = append(kept, r)
			}
		}
		s.incoming[id] = kept
	}
}

// updateDiversity recomputes every agent's diversity score: distinct
// incoming validators over the window, normalized by the smaller of window
// volume and possible validators. Agents with no recent incoming
// validation score 1: too little data to judge.
func (s *Simulation) updateDiversity() {
	possible := s.cfg.NetworkSize - 1

	for i := range s.agents {
		records := s.incoming[s.agents[i].ID]
		if len(records) == 0 {
			s.agents[i].Diversity = 1
			continue
		}

		sources := make(map[string]bool, len(records))
		for _, r := range records {
			sources[r.from] = true
		}

		denom := len(records)
		if denom > possible {
			denom = possible
		}
		s.agents[i].Diversity = float64(len(sources)) / float64(denom)
	}
}

func (s *Simulation) agent(id string) *models.NetworkAgent {
	for i := range s.agents {
		if s.agents[i].ID == id {
			return &s.agents[i]
		}
	}
	return nil
}

// snapshot deep-copies the current state into an immutable record.
func (s *Simulation) snapshot(tick int, validations []models.Validation, detections []models.Detection) models.TickSnapshot {
	agents := make([]models.NetworkAgent, len(s.agents))
	copy(agents, s.agents)

	var sum float64
	for _, a := range agents {
		sum += a.Trust
	}

	return models.TickSnapshot{
		Tick:        tick,
		Agents:      agents,
		Validations: validations,
		Detections:  detections,
		AvgTrust:    sum / float64(len(agents)),
	}
}
