// Package constants provides the named design constants of the trust
// economy simulation. The values are design choices, not derived
// quantities; they are centralized here and overridable through the config
// layer rather than hard-coded at use sites.
package constants

import "github.com/web4labs/trustsim/internal/models"

// Trust dynamics thresholds used by the moment detector.
const (
	// EmergenceTrustThreshold is the qualitative phase boundary: crossing
	// it from below marks an agent's transition into the trusted regime.
	EmergenceTrustThreshold = 0.5

	// CollapseDropFraction is the relative single-step trust drop that
	// counts as a collapse.
	CollapseDropFraction = 0.20

	// SurgeRiseFraction is the relative single-step trust rise that counts
	// as a surge.
	SurgeRiseFraction = 0.15

	// MaturationDelta is how much a life's final trust must exceed the
	// previous life's final trust to count as maturation.
	MaturationDelta = 0.05

	// CrisisEnergyFraction of the initial endowment is the resource-crisis
	// line. First crossing per life emits a crisis moment.
	CrisisEnergyFraction = 0.20

	// RecoveryEnergyFraction of the initial endowment must be regained
	// after a crisis to emit a recovery moment.
	RecoveryEnergyFraction = 0.5

	// KarmaEpsilon is the minimum difference between a life's first trust
	// value and the previous life's final value that counts as inherited
	// karma.
	KarmaEpsilon = 0.01

	// NetworkTrustSwingDelta is the relative network-average-trust change
	// between adjacent ticks that counts as a swing.
	NetworkTrustSwingDelta = 0.10
)

// Karma compression band. Rebirth trust is pulled into this band so a prior
// life's extreme score grants neither runaway advantage nor a permanent
// handicap.
const (
	KarmaBandLow  = 0.3
	KarmaBandHigh = 0.6
)

// Action success probability band. The success chance grows linearly with
// trust across the band and is reduced by risk appetite.
const (
	SuccessFloor   = 0.60
	SuccessCeiling = 0.90

	// RiskSuccessPenalty is the maximum success-probability reduction at
	// full risk appetite.
	RiskSuccessPenalty = 0.20

	// SuccessMinimum is the hard lower bound after the risk penalty.
	SuccessMinimum = 0.35
)

// Collusion detection parameters.
const (
	// DiversityWarmupTicks is how many ticks pass before the diversity
	// check may fire; earlier windows are too sparse to judge.
	DiversityWarmupTicks = 10

	// DiversityWindowTicks is the sliding window of incoming validations
	// used to compute an agent's diversity score.
	DiversityWindowTicks = 10

	// ATPVelocityRatio is the cartel-vs-legitimate mean energy ratio that,
	// sustained, raises a cluster alert.
	ATPVelocityRatio = 1.3

	// ATPVelocityInterval is how often (in ticks) the velocity check runs.
	ATPVelocityInterval = 5

	// ATPVelocitySustain is how many consecutive breaches constitute a
	// sustained surplus.
	ATPVelocitySustain = 2

	// ATPChallengePenalty is the energy penalty applied to a colluder
	// caught by a challenge audit.
	ATPChallengePenalty = 15.0

	// TrustVelocityThreshold flags a colluder whose trust exceeds this
	// value before TrustVelocityEarlyTick.
	TrustVelocityThreshold = 0.85
	TrustVelocityEarlyTick = 15
)

// ChallengeDetectionOdds is the probability a challenge audit catches a
// colluder, by cartel sophistication. Advanced cartels mostly pass audits.
var ChallengeDetectionOdds = map[models.Sophistication]float64{
	models.SophisticationNaive:    0.70,
	models.SophisticationModerate: 0.40,
	models.SophisticationAdvanced: 0.15,
}

// CartelBias is the probability a colluder targets another cartel member
// when validating. Advanced cartels cross-validate legitimate agents as
// camouflage.
var CartelBias = map[models.Sophistication]float64{
	models.SophisticationNaive:    0.90,
	models.SophisticationModerate: 0.70,
	models.SophisticationAdvanced: 0.45,
}

// CartelInflation scales the trust/energy credit of intra-cartel
// validations, modeling artificially pumped rewards.
var CartelInflation = map[models.Sophistication]float64{
	models.SophisticationNaive:    1.8,
	models.SophisticationModerate: 1.4,
	models.SophisticationAdvanced: 1.15,
}

// CategoryPriority is the fixed ranking order of moment categories. Lower
// values sort first. Covers every models.Category.
var CategoryPriority = map[models.Category]int{
	models.CategoryEmergence: 0,
	models.CategoryKarma:     1,
	models.CategoryLearning:  2,
	models.CategoryCrisis:    3,
	models.CategoryTrust:     4,
	models.CategoryATP:       5,
}

// SeverityPriority orders severities within a category. Lower sorts first.
var SeverityPriority = map[models.Severity]int{
	models.SeverityCritical: 0,
	models.SeverityHigh:     1,
	models.SeverityMedium:   2,
}
