package network

import (
	"github.com/web4labs/trustsim/internal/constants"
	"github.com/web4labs/trustsim/internal/models"
)

func cartelBias(s models.Sophistication) float64 {
	if b, ok := constants.CartelBias[s]; ok {
		return b
	}
	return constants.CartelBias[models.SophisticationNaive]
}

func cartelInflation(s models.Sophistication) float64 {
	if m, ok := constants.CartelInflation[s]; ok {
		return m
	}
	return constants.CartelInflation[models.SophisticationNaive]
}

// runChecks evaluates the four detection checks against the current state.
// Checks fire independently; one tick may carry several detections.
func (s *Simulation) runChecks(tick int) []models.Detection {
	var detections []models.Detection

	detections = append(detections, s.checkDiversity(tick)...)
	detections = append(detections, s.checkChallenges(tick)...)
	detections = append(detections, s.checkATPVelocity(tick)...)
	detections = append(detections, s.checkTrustVelocity(tick)...)

	return detections
}

// checkDiversity flags agents whose validator diversity fell below the
// threshold. Suppressed during warm-up: early windows are too sparse to
// judge. Severity scales with the size of the deficit.
func (s *Simulation) checkDiversity(tick int) []models.Detection {
	if tick <= s.cfg.DiversityWarmup {
		return nil
	}

	var detections []models.Detection
	for _, a := range s.agents {
		if a.Diversity >= s.cfg.DiversityThreshold {
			continue
		}

		severity := models.SeverityHigh
		if s.cfg.DiversityThreshold-a.Diversity >= s.cfg.DiversityThreshold/2 {
			severity = models.SeverityCritical
		}

		detections = append(detections, models.Detection{
			Check:    models.CheckDiversity,
			Severity: severity,
			Tick:     tick,
			AgentID:  a.ID,
			Value:    a.Diversity,
		})
	}
	return detections
}

// checkChallenges audits random agents. A challenged colluder is caught
// with odds set by the cartel's sophistication and pays an energy penalty;
// legitimate agents always pass.
func (s *Simulation) checkChallenges(tick int) []models.Detection {
	odds, ok := constants.ChallengeDetectionOdds[s.cfg.Sophistication]
	if !ok {
		odds = constants.ChallengeDetectionOdds[models.SophisticationNaive]
	}

	var detections []models.Detection
	for i := range s.agents {
		if s.rng.Float64() >= s.cfg.ChallengeRate {
			continue
		}
		a := &s.agents[i]
		if !a.Colluding || s.rng.Float64() >= odds {
			continue
		}

		a.ATP = models.ClampATP(a.ATP - constants.ATPChallengePenalty)
		detections = append(detections, models.Detection{
			Check:    models.CheckChallenge,
			Severity: models.SeverityHigh,
			Tick:     tick,
			AgentID:  a.ID,
			Value:    a.Trust,
		})
	}
	return detections
}

// checkATPVelocity compares mean cartel energy to mean legitimate energy
// on a fixed cadence. A sustained surplus raises a single cluster alert
// naming every cartel member.
func (s *Simulation) checkATPVelocity(tick int) []models.Detection {
	if s.cfg.CartelSize == 0 || tick%constants.ATPVelocityInterval != 0 {
		return nil
	}

	var cartelSum, legitSum float64
	var cartelN, legitN int
	for _, a := range s.agents {
		if a.Colluding {
			cartelSum += a.ATP
			cartelN++
		} else {
			legitSum += a.ATP
			legitN++
		}
	}
	if cartelN == 0 || legitN == 0 || legitSum <= 0 {
		return nil
	}

	ratio := (cartelSum / float64(cartelN)) / (legitSum / float64(legitN))
	if ratio <= constants.ATPVelocityRatio {
		s.velocityBreaches = 0
		return nil
	}

	s.velocityBreaches++
	if s.velocityBreaches < constants.ATPVelocitySustain {
		return nil
	}

	cluster := make([]string, 0, cartelN)
	for _, a := range s.agents {
		if a.Colluding {
			cluster = append(cluster, a.ID)
		}
	}

	return []models.Detection{{
		Check:    models.CheckATPVelocity,
		Severity: models.SeverityCritical,
		Tick:     tick,
		Cluster:  cluster,
		Value:    ratio,
	}}
}

// checkTrustVelocity flags implausibly fast trust accumulation: any agent
// above the velocity threshold before the early-tick cutoff, at most once
// per agent. Like the diversity check it is blind to cartel membership;
// a legitimate agent climbing that fast draws the same flag.
func (s *Simulation) checkTrustVelocity(tick int) []models.Detection {
	if tick >= constants.TrustVelocityEarlyTick {
		return nil
	}

	var detections []models.Detection
	for _, a := range s.agents {
		if a.Trust <= constants.TrustVelocityThreshold || s.trustVelocityFlagged[a.ID] {
			continue
		}
		s.trustVelocityFlagged[a.ID] = true
		detections = append(detections, models.Detection{
			Check:    models.CheckTrustVelocity,
			Severity: models.SeverityCritical,
			Tick:     tick,
			AgentID:  a.ID,
			Value:    a.Trust,
		})
	}
	return detections
}
