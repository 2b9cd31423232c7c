package detect

import (
	"fmt"
	"math"

	"github.com/web4labs/trustsim/internal/models"
)

// detectLives scans the single-agent life records. Per life the death
// moment is emitted before the tick walk so that, on an ID collision at
// the final tick, the critical moment wins deduplication.
func (d *Detector) detectLives(h History) []models.Moment {
	var moments []models.Moment

	for i, life := range h.Lives {
		if i > 0 {
			moments = append(moments, d.detectKarma(h.SourceID, h.Lives[i-1], life)...)
			moments = append(moments, d.detectMaturation(h.SourceID, h.Lives[i-1], life)...)
		}

		if life.Reason == models.TerminationATPExhaustion {
			moments = append(moments, models.Moment{
				ID:         models.MomentID(h.SourceID, models.CategoryCrisis, life.LifeNumber, life.EndTick),
				Category:   models.CategoryCrisis,
				Severity:   models.SeverityCritical,
				Tick:       life.EndTick,
				LifeNumber: life.LifeNumber,
				Narrative:  fmt.Sprintf("life %d ended at tick %d with its energy exhausted", life.LifeNumber, life.EndTick),
				Data:       map[string]float64{"final_atp": life.FinalATP},
			})
		}

		moments = append(moments, d.walkLife(h.SourceID, life)...)
	}

	return moments
}

// detectKarma flags a rebirth whose starting trust measurably differs from
// the fresh baseline it replaced.
func (d *Detector) detectKarma(sourceID string, prev, life models.Life) []models.Moment {
	diff := life.InitialTrust - prev.FinalTrust
	if math.Abs(diff) <= d.cfg.KarmaEpsilon {
		return nil
	}

	return []models.Moment{{
		ID:         models.MomentID(sourceID, models.CategoryKarma, life.LifeNumber, life.StartTick),
		Category:   models.CategoryKarma,
		Severity:   models.SeverityCritical,
		Tick:       life.StartTick,
		LifeNumber: life.LifeNumber,
		Narrative:  fmt.Sprintf("life %d was born with trust %.2f, shaped by the previous life's final %.2f", life.LifeNumber, life.InitialTrust, prev.FinalTrust),
		Data:       map[string]float64{"initial_trust": life.InitialTrust, "previous_final_trust": prev.FinalTrust},
	}}
}

// detectMaturation flags a life that ended measurably more trusted than
// the one before it.
func (d *Detector) detectMaturation(sourceID string, prev, life models.Life) []models.Moment {
	if life.FinalTrust-prev.FinalTrust < d.cfg.MaturationDelta {
		return nil
	}

	return []models.Moment{{
		ID:         models.MomentID(sourceID, models.CategoryLearning, life.LifeNumber, life.EndTick),
		Category:   models.CategoryLearning,
		Severity:   models.SeverityHigh,
		Tick:       life.EndTick,
		LifeNumber: life.LifeNumber,
		Narrative:  fmt.Sprintf("life %d matured past its predecessor, ending at trust %.2f against %.2f", life.LifeNumber, life.FinalTrust, prev.FinalTrust),
		Data:       map[string]float64{"final_trust": life.FinalTrust, "previous_final_trust": prev.FinalTrust},
	}}
}

// walkLife scans one life's tick history for trust and energy moments.
func (d *Detector) walkLife(sourceID string, life models.Life) []models.Moment {
	var moments []models.Moment

	prevTrust := life.InitialTrust
	crisisLine := d.cfg.CrisisFraction * life.InitialATP
	recoveryLine := d.cfg.RecoveryFraction * life.InitialATP
	inCrisis := false
	crisisSeen := false
	recovered := false

	for _, p := range life.History {
		if prevTrust > 0 {
			if drop := (prevTrust - p.Trust) / prevTrust; drop >= d.cfg.CollapseDrop {
				moments = append(moments, models.Moment{
					ID:         models.MomentID(sourceID, models.CategoryTrust, life.LifeNumber, p.Tick),
					Category:   models.CategoryTrust,
					Severity:   models.SeverityCritical,
					Tick:       p.Tick,
					LifeNumber: life.LifeNumber,
					Narrative:  fmt.Sprintf("trust collapsed from %.2f to %.2f in a single tick", prevTrust, p.Trust),
					Data:       map[string]float64{"from": prevTrust, "to": p.Trust},
				})
			} else if rise := (p.Trust - prevTrust) / prevTrust; rise >= d.cfg.SurgeRise {
				moments = append(moments, models.Moment{
					ID:         models.MomentID(sourceID, models.CategoryTrust, life.LifeNumber, p.Tick),
					Category:   models.CategoryTrust,
					Severity:   models.SeverityHigh,
					Tick:       p.Tick,
					LifeNumber: life.LifeNumber,
					Narrative:  fmt.Sprintf("trust surged from %.2f to %.2f in a single tick", prevTrust, p.Trust),
					Data:       map[string]float64{"from": prevTrust, "to": p.Trust},
				})
			}
		}

		if prevTrust < d.cfg.EmergenceThreshold && p.Trust >= d.cfg.EmergenceThreshold {
			moments = append(moments, models.Moment{
				ID:         models.MomentID(sourceID, models.CategoryEmergence, life.LifeNumber, p.Tick),
				Category:   models.CategoryEmergence,
				Severity:   models.SeverityCritical,
				Tick:       p.Tick,
				LifeNumber: life.LifeNumber,
				Narrative:  fmt.Sprintf("trust crossed %.2f at tick %d, entering the trusted regime", d.cfg.EmergenceThreshold, p.Tick),
				Data:       map[string]float64{"trust": p.Trust},
			})
		}

		if !crisisSeen && p.ATP <= crisisLine {
			crisisSeen = true
			inCrisis = true
			moments = append(moments, models.Moment{
				ID:         models.MomentID(sourceID, models.CategoryCrisis, life.LifeNumber, p.Tick),
				Category:   models.CategoryCrisis,
				Severity:   models.SeverityHigh,
				Tick:       p.Tick,
				LifeNumber: life.LifeNumber,
				Narrative:  fmt.Sprintf("energy fell to %.1f, below the crisis line of %.1f", p.ATP, crisisLine),
				Data:       map[string]float64{"atp": p.ATP, "crisis_line": crisisLine},
			})
		}

		if inCrisis && !recovered && p.ATP >= recoveryLine {
			recovered = true
			moments = append(moments, models.Moment{
				ID:         models.MomentID(sourceID, models.CategoryATP, life.LifeNumber, p.Tick),
				Category:   models.CategoryATP,
				Severity:   models.SeverityMedium,
				Tick:       p.Tick,
				LifeNumber: life.LifeNumber,
				Narrative:  fmt.Sprintf("energy recovered to %.1f after the crisis", p.ATP),
				Data:       map[string]float64{"atp": p.ATP, "recovery_line": recoveryLine},
			})
		}

		prevTrust = p.Trust
	}

	return moments
}
