package engine

import "github.com/web4labs/trustsim/internal/constants"

// actionProfile scales the base cost/reward of the configured action and
// shifts its success odds. The engine ships three archetypes; risk appetite
// blends selection between the standard and bold profiles.
type actionProfile struct {
	name         string
	costFactor   float64
	rewardFactor float64

	// riskShift is added to the success probability. Bold actions pay
	// more on success but succeed less often.
	riskShift float64
}

var (
	conservativeAction = actionProfile{name: "conservative", costFactor: 0.6, rewardFactor: 0.5, riskShift: 0.05}
	standardAction     = actionProfile{name: "standard", costFactor: 1.0, rewardFactor: 1.0, riskShift: 0}
	boldAction         = actionProfile{name: "bold", costFactor: 1.6, rewardFactor: 2.0, riskShift: -0.10}
)

// selectAction picks the tick's action profile. Risk appetite is the
// probability of reaching for the bold profile; an agent that cannot pay
// the standard cost falls back to the conservative one.
func (e *Engine) selectAction(atp float64) actionProfile {
	if atp < e.cfg.ActionCost {
		return conservativeAction
	}
	if e.cfg.RiskAppetite > 0 && e.rng.Float64() < e.cfg.RiskAppetite {
		return boldAction
	}
	return standardAction
}

// successProbability maps trust into the configured success band, then
// applies the risk appetite penalty and the action's own risk shift.
// Higher trust always means better odds; higher risk always means worse.
func (e *Engine) successProbability(trust float64, a actionProfile) float64 {
	p := constants.SuccessFloor + trust*(constants.SuccessCeiling-constants.SuccessFloor)
	p -= e.cfg.RiskAppetite * constants.RiskSuccessPenalty
	p += a.riskShift

	if p < constants.SuccessMinimum {
		p = constants.SuccessMinimum
	}
	if p > constants.SuccessCeiling {
		p = constants.SuccessCeiling
	}
	return p
}

// jitter applies the configured noise level to a base value, scaling it by
// a uniform factor in [1-noise, 1+noise].
func (e *Engine) jitter(base float64) float64 {
	if e.cfg.Noise == 0 {
		return base
	}
	return base * (1 + e.cfg.Noise*(e.rng.Float64()*2-1))
}
