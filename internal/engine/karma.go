package engine

import (
	"github.com/web4labs/trustsim/internal/constants"
	"github.com/web4labs/trustsim/internal/models"
)

// rebirthTrust blends the fresh baseline with the previous life's final
// trust by karma strength, then compresses the result into the moderate
// band. Compression guarantees a reborn agent starts neither crippled by a
// ruined prior life nor untouchable from a perfect one.
func (e *Engine) rebirthTrust(prevFinal float64) float64 {
	k := e.cfg.KarmaStrength
	blended := e.cfg.InitialTrust*(1-k) + prevFinal*k

	if e.cfg.KarmaCompression {
		if blended < constants.KarmaBandLow {
			blended = constants.KarmaBandLow
		}
		if blended > constants.KarmaBandHigh {
			blended = constants.KarmaBandHigh
		}
	}

	return models.ClampTrust(blended)
}

// rebirthATP resets the endowment, optionally boosted in proportion to the
// trust carried into the new life.
func (e *Engine) rebirthATP(inheritedTrust float64) float64 {
	return e.cfg.InitialATP * (1 + e.cfg.KarmaATPBoost*inheritedTrust)
}
