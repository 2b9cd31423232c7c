// Package engine implements the single-agent trust economy simulation: a
// discrete-time loop in which an agent spends energy on actions, earns or
// loses trust asymmetrically, dies when either resource runs out, and is
// reborn inheriting a compressed fraction of its prior trust as karma.
//
// The engine is deterministic given a seed. Malformed configuration is a
// caller contract violation rejected at construction; once running, every
// "failure" is a first-class simulated outcome, not an error.
package engine

import (
	"fmt"
	"math/rand"

	"github.com/web4labs/trustsim/internal/config"
	"github.com/web4labs/trustsim/internal/models"
)

// Engine runs one agent through its configured lives.
type Engine struct {
	cfg config.SimConfig
	rng *rand.Rand

	// outcome resolves an action given its success probability. Defaults
	// to a weighted draw on the engine's generator; tests may replace it
	// to force deterministic outcomes.
	outcome func(p float64) bool
}

// Option customizes an Engine at construction.
type Option func(*Engine)

// WithRand replaces the engine's random generator. The caller keeps
// ownership; sharing a generator across engines breaks reproducibility.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithOutcome replaces the success/failure resolution for every action.
// The function receives the computed success probability.
func WithOutcome(f func(p float64) bool) Option {
	return func(e *Engine) { e.outcome = f }
}

// Summary aggregates a completed run.
type Summary struct {
	Lives       int     `json:"lives"`
	TotalTicks  int     `json:"total_ticks"`
	FinalTrust  float64 `json:"final_trust"`
	TrustGrowth float64 `json:"trust_growth"`
	Exhaustions int     `json:"exhaustions"`
	TrustDeaths int     `json:"trust_deaths"`
	Completed   int     `json:"completed"`
	Seed        int64   `json:"seed"`
}

// Result is the immutable output of a run.
type Result struct {
	Lives   []models.Life `json:"lives"`
	Summary Summary       `json:"summary"`
}

// New validates cfg and constructs an Engine. A zero cfg.Seed draws a seed
// from entropy; any other value makes Run reproducible.
func New(cfg config.SimConfig, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}

	if cfg.Seed == 0 {
		seed, err := NewSeed()
		if err != nil {
			return nil, err
		}
		cfg.Seed = seed
	}

	e := &Engine{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
	e.outcome = func(p float64) bool { return e.rng.Float64() < p }

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Run executes every configured life and returns the completed records.
// One tick fully resolves before the next begins; a finished life is never
// touched again.
func (e *Engine) Run() Result {
	lives := make([]models.Life, 0, e.cfg.Lives)
	globalTick := 0

	trust := e.cfg.InitialTrust
	atp := e.cfg.InitialATP

	for lifeNum := 1; lifeNum <= e.cfg.Lives; lifeNum++ {
		life := e.runLife(lifeNum, globalTick, atp, trust)
		lives = append(lives, life)
		globalTick = life.EndTick

		if lifeNum < e.cfg.Lives {
			trust = e.rebirthTrust(life.FinalTrust)
			atp = e.rebirthATP(trust)
		}
	}

	return Result{Lives: lives, Summary: e.summarize(lives)}
}

// runLife advances one life until death or the tick cap.
func (e *Engine) runLife(lifeNum, startTick int, atp, trust float64) models.Life {
	life := models.Life{
		AgentID:      "agent-1",
		LifeNumber:   lifeNum,
		StartTick:    startTick,
		InitialATP:   atp,
		InitialTrust: trust,
		History:      make([]models.TickPoint, 0, e.cfg.TicksPerLife),
	}

	belowStreak := 0
	tick := startTick

	for len(life.History) < e.cfg.TicksPerLife {
		tick++

		action := e.selectAction(atp)
		cost := e.jitter(e.cfg.ActionCost * action.costFactor)
		reward := e.jitter(e.cfg.ActionReward * action.rewardFactor)

		p := e.successProbability(trust, action)
		success := e.outcome(p)

		if success {
			atp = atp + reward - cost
			trust = models.ClampTrust(trust + e.cfg.TrustGainRate)
		} else {
			atp = atp - cost
			trust = models.ClampTrust(trust - e.cfg.TrustLossRate)
		}

		dead := atp <= 0
		atp = models.ClampATP(atp)

		life.History = append(life.History, models.TickPoint{
			Tick:    tick,
			ATP:     atp,
			Trust:   trust,
			Success: success,
		})

		if dead {
			return e.finishLife(life, tick, atp, trust, models.TerminationATPExhaustion)
		}

		if trust < e.cfg.TrustDeathThreshold {
			belowStreak++
			if belowStreak >= e.cfg.TrustDeathPatience {
				return e.finishLife(life, tick, atp, trust, models.TerminationTrustLost)
			}
		} else {
			belowStreak = 0
		}
	}

	return e.finishLife(life, tick, atp, trust, models.TerminationCompleted)
}

func (e *Engine) finishLife(life models.Life, tick int, atp, trust float64, reason models.TerminationReason) models.Life {
	life.EndTick = tick
	life.FinalATP = atp
	life.FinalTrust = trust
	life.Reason = reason
	return life
}

func (e *Engine) summarize(lives []models.Life) Summary {
	s := Summary{Lives: len(lives), Seed: e.cfg.Seed}
	for _, l := range lives {
		s.TotalTicks += l.Ticks()
		switch l.Reason {
		case models.TerminationATPExhaustion:
			s.Exhaustions++
		case models.TerminationTrustLost:
			s.TrustDeaths++
		case models.TerminationCompleted:
			s.Completed++
		}
	}
	if len(lives) > 0 {
		s.FinalTrust = lives[len(lives)-1].FinalTrust
		s.TrustGrowth = s.FinalTrust - lives[0].InitialTrust
	}
	return s
}
