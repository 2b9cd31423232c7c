package models

// Sophistication is how carefully a cartel disguises its mutual validation.
type Sophistication string

const (
	SophisticationNaive    Sophistication = "naive"
	SophisticationModerate Sophistication = "moderate"
	SophisticationAdvanced Sophistication = "advanced"
)

// ValidSophistication reports whether s is a known sophistication level.
func ValidSophistication(s Sophistication) bool {
	switch s {
	case SophisticationNaive, SophisticationModerate, SophisticationAdvanced:
		return true
	}
	return false
}

// Validation is a directed witness event: From vouches for To's action,
// crediting To's trust and energy. Colluding marks intra-cartel validations.
type Validation struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	TrustDelta float64 `json:"trust_delta"`
	ATPDelta   float64 `json:"atp_delta"`
	Colluding  bool    `json:"colluding"`
}

// NetworkAgent is one agent's state within a network tick snapshot.
type NetworkAgent struct {
	ID        string  `json:"id"`
	ATP       float64 `json:"atp"`
	Trust     float64 `json:"trust"`
	Colluding bool    `json:"colluding"`

	// Diversity estimates how spread the agent's recent incoming
	// validations are across the network. Low values indicate
	// clique-concentrated validation.
	Diversity float64 `json:"diversity"`
}

// DetectionCheck identifies which collusion check fired.
type DetectionCheck string

const (
	CheckDiversity     DetectionCheck = "diversity"
	CheckChallenge     DetectionCheck = "challenge"
	CheckATPVelocity   DetectionCheck = "atp_velocity"
	CheckTrustVelocity DetectionCheck = "trust_velocity"
)

// Detection is a single collusion-check hit against an agent or, for
// cluster-level checks, against the whole suspected group.
type Detection struct {
	Check    DetectionCheck `json:"check"`
	Severity Severity       `json:"severity"`
	Tick     int            `json:"tick"`

	// AgentID is empty for cluster-level detections.
	AgentID string   `json:"agent_id,omitempty"`
	Cluster []string `json:"cluster,omitempty"`

	// Value is the measurement that triggered the check (diversity score,
	// energy ratio, trust level), for display and threshold tuning.
	Value float64 `json:"value"`
}

// TickSnapshot is the full network state after one synchronous round.
// All validations in a tick are computed from the previous tick's snapshot.
type TickSnapshot struct {
	Tick        int            `json:"tick"`
	Agents      []NetworkAgent `json:"agents"`
	Validations []Validation   `json:"validations"`
	Detections  []Detection    `json:"detections"`
	AvgTrust    float64        `json:"avg_trust"`
}
