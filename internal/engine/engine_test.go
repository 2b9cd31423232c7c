package engine

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/web4labs/trustsim/internal/config"
	"github.com/web4labs/trustsim/internal/models"
)

// deterministicConfig returns a config with noise and risk disabled, so
// every tick plays the standard action with exact accounting.
func deterministicConfig() config.SimConfig {
	cfg := config.DefaultSim()
	cfg.RiskAppetite = 0
	cfg.Noise = 0
	cfg.Seed = 1
	return cfg
}

func alwaysSucceed(p float64) bool { return true }
func alwaysFail(p float64) bool    { return false }

// An agent that succeeds on every action accumulates energy and trust at
// exactly the configured rates: 10 ticks of cost 20, reward 25, trust gain
// 0.02 take it from (100, 0.50) to (150, 0.70).
func TestRunAllSuccessesExactAccounting(t *testing.T) {
	cfg := deterministicConfig()
	cfg.Lives = 1
	cfg.TicksPerLife = 10
	cfg.InitialATP = 100
	cfg.InitialTrust = 0.5
	cfg.ActionCost = 20
	cfg.ActionReward = 25
	cfg.TrustGainRate = 0.02

	e, err := New(cfg, WithOutcome(alwaysSucceed))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result := e.Run()
	if len(result.Lives) != 1 {
		t.Fatalf("expected 1 life, got %d", len(result.Lives))
	}

	life := result.Lives[0]
	if life.Reason != models.TerminationCompleted {
		t.Errorf("expected completed, got %s", life.Reason)
	}
	if math.Abs(life.FinalATP-150) > 1e-9 {
		t.Errorf("expected final ATP 150, got %f", life.FinalATP)
	}
	if math.Abs(life.FinalTrust-0.70) > 1e-9 {
		t.Errorf("expected final trust 0.70, got %f", life.FinalTrust)
	}
	if life.Ticks() != 10 {
		t.Errorf("expected 10 ticks, got %d", life.Ticks())
	}
}

// An agent whose actions cost more than they return exhausts quickly: with
// cost 50 against 100 starting energy and every action failing, it is dead
// by the second tick.
func TestRunExhaustionDeath(t *testing.T) {
	cfg := deterministicConfig()
	cfg.Lives = 1
	cfg.InitialATP = 100
	cfg.ActionCost = 50
	cfg.ActionReward = 10

	e, err := New(cfg, WithOutcome(alwaysFail))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result := e.Run()
	life := result.Lives[0]
	if life.Reason != models.TerminationATPExhaustion {
		t.Fatalf("expected atp_exhaustion, got %s", life.Reason)
	}
	if life.Ticks() > 2 {
		t.Errorf("expected death within 2 ticks, got %d", life.Ticks())
	}
	if life.FinalATP != 0 {
		t.Errorf("expected final ATP 0, got %f", life.FinalATP)
	}
	if result.Summary.Exhaustions != 1 {
		t.Errorf("expected 1 exhaustion in summary, got %d", result.Summary.Exhaustions)
	}
}

// Sustained trust below the death threshold kills the agent only after the
// configured patience, not on the first bad tick.
func TestRunTrustDeath(t *testing.T) {
	cfg := deterministicConfig()
	cfg.Lives = 1
	cfg.InitialATP = 1000
	cfg.InitialTrust = 0.35
	cfg.ActionCost = 1
	cfg.ActionReward = 0
	cfg.TrustGainRate = 0.02
	cfg.TrustLossRate = 0.1
	cfg.TrustDeathThreshold = 0.3
	cfg.TrustDeathPatience = 3

	e, err := New(cfg, WithOutcome(alwaysFail))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result := e.Run()
	life := result.Lives[0]
	if life.Reason != models.TerminationTrustLost {
		t.Fatalf("expected trust_lost, got %s", life.Reason)
	}
	// Below threshold from tick 1; patience 3 means death at tick 3.
	if life.Ticks() != 3 {
		t.Errorf("expected death at tick 3, got %d", life.Ticks())
	}
}

// A life that ends at high trust is reborn into the compressed band:
// strictly better than the fresh baseline, strictly worse than the score
// it died with.
func TestRebirthCompressesInheritedTrust(t *testing.T) {
	cfg := deterministicConfig()
	cfg.Lives = 2
	cfg.TicksPerLife = 20
	cfg.InitialTrust = 0.5
	cfg.TrustGainRate = 0.02
	cfg.KarmaStrength = 0.5
	cfg.KarmaCompression = true

	e, err := New(cfg, WithOutcome(alwaysSucceed))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result := e.Run()
	first, second := result.Lives[0], result.Lives[1]

	if math.Abs(first.FinalTrust-0.9) > 1e-9 {
		t.Fatalf("expected first life to end at trust 0.9, got %f", first.FinalTrust)
	}
	if second.InitialTrust <= cfg.InitialTrust || second.InitialTrust >= first.FinalTrust {
		t.Errorf("rebirth trust %f not strictly between baseline %f and inherited %f",
			second.InitialTrust, cfg.InitialTrust, first.FinalTrust)
	}
	if math.Abs(second.InitialTrust-0.6) > 1e-9 {
		t.Errorf("expected compression to cap rebirth trust at 0.6, got %f", second.InitialTrust)
	}

	// The ATP boost scales with inherited trust.
	wantATP := cfg.InitialATP * (1 + cfg.KarmaATPBoost*second.InitialTrust)
	if math.Abs(second.InitialATP-wantATP) > 1e-9 {
		t.Errorf("expected rebirth ATP %f, got %f", wantATP, second.InitialATP)
	}
}

func TestRebirthTrustBand(t *testing.T) {
	tests := []struct {
		name        string
		prevFinal   float64
		compression bool
		want        float64
	}{
		{"ruined life pulled up to band floor", 0.0, true, 0.3},
		{"perfect life pulled down to band ceiling", 1.0, true, 0.6},
		{"moderate life passes through", 0.55, true, 0.525},
		{"no compression keeps the blend", 1.0, false, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := deterministicConfig()
			cfg.KarmaStrength = 0.5
			cfg.KarmaCompression = tt.compression

			e, err := New(cfg)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}

			got := e.rebirthTrust(tt.prevFinal)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("rebirthTrust(%f) = %f, want %f", tt.prevFinal, got, tt.want)
			}
		})
	}
}

// Trust is harder to build than to lose: one success followed by one
// failure lands strictly below the starting score.
func TestTrustAsymmetry(t *testing.T) {
	cfg := deterministicConfig()
	cfg.Lives = 1
	cfg.TicksPerLife = 2
	cfg.InitialATP = 1000

	outcomes := []bool{true, false}
	i := 0
	e, err := New(cfg, WithOutcome(func(p float64) bool {
		o := outcomes[i]
		i++
		return o
	}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	life := e.Run().Lives[0]
	if life.FinalTrust >= cfg.InitialTrust {
		t.Errorf("expected success+failure to end below %f, got %f",
			cfg.InitialTrust, life.FinalTrust)
	}
}

// Two engines with the same seed produce byte-identical results.
func TestRunDeterministicForSeed(t *testing.T) {
	cfg := config.DefaultSim()
	cfg.Seed = 12345

	run := func() Result {
		e, err := New(cfg)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		return e.Run()
	}

	first, second := run(), run()
	if !reflect.DeepEqual(first, second) {
		t.Error("identical seeds produced different results")
	}
}

func TestRunZeroSeedDrawsEntropy(t *testing.T) {
	cfg := config.DefaultSim()
	cfg.Seed = 0

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if e.Run().Summary.Seed == 0 {
		t.Error("expected a drawn seed to be recorded in the summary")
	}
}

// Trust stays in [0,1] and energy stays non-negative at every recorded
// tick, whatever the outcomes.
func TestRunInvariantsHold(t *testing.T) {
	cfg := config.DefaultSim()
	cfg.Lives = 5
	cfg.RiskAppetite = 1.0
	cfg.Noise = 1.0
	cfg.Seed = 99

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result := e.Run()
	prevEnd := 0
	for _, life := range result.Lives {
		if life.StartTick != prevEnd {
			t.Errorf("life %d starts at tick %d, previous ended at %d",
				life.LifeNumber, life.StartTick, prevEnd)
		}
		prevEnd = life.EndTick

		for _, p := range life.History {
			if p.Trust < 0 || p.Trust > 1 {
				t.Fatalf("trust %f out of range at tick %d", p.Trust, p.Tick)
			}
			if p.ATP < 0 {
				t.Fatalf("negative ATP %f at tick %d", p.ATP, p.Tick)
			}
		}
	}
}

func TestSuccessProbabilityMonotonicInTrust(t *testing.T) {
	cfg := deterministicConfig()
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	prev := -1.0
	for trust := 0.0; trust <= 1.0; trust += 0.1 {
		p := e.successProbability(trust, standardAction)
		if p < prev {
			t.Fatalf("success probability decreased from %f to %f at trust %f", prev, p, trust)
		}
		prev = p
	}
}

func TestSuccessProbabilityRiskPenalty(t *testing.T) {
	cautious := deterministicConfig()
	reckless := deterministicConfig()
	reckless.RiskAppetite = 1.0

	ce, err := New(cautious)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	re, err := New(reckless)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if cp, rp := ce.successProbability(0.5, standardAction), re.successProbability(0.5, standardAction); rp >= cp {
		t.Errorf("full risk appetite should lower success odds: got %f vs %f", rp, cp)
	}
}

func TestJitterBounds(t *testing.T) {
	cfg := deterministicConfig()
	cfg.Noise = 0.2

	e, err := New(cfg, WithRand(rand.New(rand.NewSource(7))))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for i := 0; i < 1000; i++ {
		v := e.jitter(100)
		if v < 80 || v > 120 {
			t.Fatalf("jitter produced %f, outside [80, 120]", v)
		}
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultSim()
	cfg.TrustLossRate = cfg.TrustGainRate // asymmetry violated

	if _, err := New(cfg); err == nil {
		t.Error("expected symmetric trust rates to be rejected")
	}
}
