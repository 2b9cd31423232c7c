package models

import "fmt"

// Category classifies a detected moment. The set is closed so the ranking
// table can be exhaustive.
type Category string

const (
	CategoryTrust     Category = "trust"
	CategoryATP       Category = "atp"
	CategoryKarma     Category = "karma"
	CategoryLearning  Category = "learning"
	CategoryCrisis    Category = "crisis"
	CategoryEmergence Category = "emergence"
)

// Severity grades how significant a moment or detection is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

// Moment is a detected significant event extracted from a simulation
// history. Never mutated after creation; ordering matters only for ranking.
type Moment struct {
	ID         string   `json:"id"`
	Category   Category `json:"category"`
	Severity   Severity `json:"severity"`
	Tick       int      `json:"tick"`
	LifeNumber int      `json:"life_number"`
	Narrative  string   `json:"narrative"`

	// Data holds the raw numeric values that triggered detection,
	// keyed by measurement name.
	Data map[string]float64 `json:"data,omitempty"`
}

// MomentID derives the stable identifier for a moment. Identical inputs
// always produce the identical ID, which doubles as the deduplication key.
func MomentID(sourceID string, category Category, lifeNumber, tick int) string {
	return fmt.Sprintf("%s-%s-l%d-t%d", sourceID, category, lifeNumber, tick)
}
