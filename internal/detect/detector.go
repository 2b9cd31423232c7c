// Package detect extracts significant moments from simulation histories.
// Detection is a pure function of its input: the same history always
// produces the same moments in the same order, and running the detector
// twice never duplicates a moment. Moment IDs derive deterministically
// from source, category, life and tick, and double as deduplication keys.
package detect

import (
	"fmt"
	"sort"

	"github.com/web4labs/trustsim/internal/config"
	"github.com/web4labs/trustsim/internal/constants"
	"github.com/web4labs/trustsim/internal/models"
)

// History is the detector's input: a completed run's records. Lives comes
// from the single-agent engine, Snapshots from the network simulation;
// either may be empty.
type History struct {
	// SourceID names the run the records came from. It prefixes every
	// moment ID, so distinct runs never collide.
	SourceID string `json:"source_id"`

	Lives     []models.Life         `json:"lives,omitempty"`
	Snapshots []models.TickSnapshot `json:"snapshots,omitempty"`
}

// Detector scans histories for moments worth narrating.
type Detector struct {
	cfg config.DetectorConfig
}

// New validates cfg and constructs a Detector.
func New(cfg config.DetectorConfig) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid detector config: %w", err)
	}
	return &Detector{cfg: cfg}, nil
}

// Detect extracts every moment from h and returns them ranked. An empty
// history yields an empty, non-nil slice.
func (d *Detector) Detect(h History) []models.Moment {
	moments := []models.Moment{}
	moments = append(moments, d.detectLives(h)...)
	moments = append(moments, d.detectNetwork(h)...)
	return Rank(dedupe(moments))
}

// dedupe drops moments whose ID was already seen, keeping the first.
func dedupe(moments []models.Moment) []models.Moment {
	seen := make(map[string]bool, len(moments))
	out := moments[:0]
	for _, m := range moments {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		out = append(out, m)
	}
	return out
}

// Rank orders moments for presentation: category priority first, severity
// within category, later ticks before earlier ones, ID as the final
// tiebreak. The sort is total, so ranking is stable across runs.
func Rank(moments []models.Moment) []models.Moment {
	sort.SliceStable(moments, func(i, j int) bool {
		a, b := moments[i], moments[j]
		if ca, cb := constants.CategoryPriority[a.Category], constants.CategoryPriority[b.Category]; ca != cb {
			return ca < cb
		}
		if sa, sb := constants.SeverityPriority[a.Severity], constants.SeverityPriority[b.Severity]; sa != sb {
			return sa < sb
		}
		if a.Tick != b.Tick {
			return a.Tick > b.Tick
		}
		return a.ID < b.ID
	})
	return moments
}
