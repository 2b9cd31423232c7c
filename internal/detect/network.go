package detect

import (
	"fmt"

	"github.com/web4labs/trustsim/internal/models"
)

// detectNetwork scans network snapshots for coalition formation and large
// swings in the network's average trust. Network moments carry life
// number zero.
func (d *Detector) detectNetwork(h History) []models.Moment {
	var moments []models.Moment
	moments = append(moments, d.detectCoalitions(h)...)
	moments = append(moments, d.detectTrustSwings(h)...)
	return moments
}

// detectCoalitions emits a moment the first time a pair of agents is seen
// validating in both directions. Each pair is reported once.
func (d *Detector) detectCoalitions(h History) []models.Moment {
	var moments []models.Moment

	validated := make(map[string]bool)
	reported := make(map[string]bool)

	for _, snap := range h.Snapshots {
		for _, v := range snap.Validations {
			validated[v.From+">"+v.To] = true

			pair := pairKey(v.From, v.To)
			if reported[pair] || !validated[v.To+">"+v.From] {
				continue
			}
			reported[pair] = true

			moments = append(moments, models.Moment{
				ID:        models.MomentID(h.SourceID, models.CategoryEmergence, 0, snap.Tick) + "-" + pair,
				Category:  models.CategoryEmergence,
				Severity:  models.SeverityCritical,
				Tick:      snap.Tick,
				Narrative: fmt.Sprintf("agents %s and %s formed a mutual validation pair at tick %d", v.From, v.To, snap.Tick),
			})
		}
	}

	return moments
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "+" + b
}

// detectTrustSwings compares the network's average trust between adjacent
// ticks. Severity scales with how far the swing exceeds the threshold.
func (d *Detector) detectTrustSwings(h History) []models.Moment {
	var moments []models.Moment

	for i := 1; i < len(h.Snapshots); i++ {
		prev, cur := h.Snapshots[i-1], h.Snapshots[i]
		if prev.AvgTrust <= 0 {
			continue
		}

		swing := (cur.AvgTrust - prev.AvgTrust) / prev.AvgTrust
		magnitude := swing
		if magnitude < 0 {
			magnitude = -magnitude
		}
		if magnitude < d.cfg.TrustSwingDelta {
			continue
		}

		severity := models.SeverityMedium
		switch {
		case magnitude >= 2*d.cfg.TrustSwingDelta:
			severity = models.SeverityCritical
		case magnitude >= 1.5*d.cfg.TrustSwingDelta:
			severity = models.SeverityHigh
		}

		direction := "rose"
		if swing < 0 {
			direction = "fell"
		}

		moments = append(moments, models.Moment{
			ID:        models.MomentID(h.SourceID, models.CategoryTrust, 0, cur.Tick),
			Category:  models.CategoryTrust,
			Severity:  severity,
			Tick:      cur.Tick,
			Narrative: fmt.Sprintf("network average trust %s from %.2f to %.2f", direction, prev.AvgTrust, cur.AvgTrust),
			Data:      map[string]float64{"from": prev.AvgTrust, "to": cur.AvgTrust, "swing": swing},
		})
	}

	return moments
}
