package mastery

// Tier buckets a mastery score for diagnostics and difficulty-aware
// retrieval. Persona, not tier, drives explanation style.
type Tier string

const (
	TierFoundational Tier = "foundational"
	TierCompetent    Tier = "competent"
	TierExpert       Tier = "expert"
)

// TierFor maps a mastery score to its tier.
func TierFor(score float64) Tier {
	switch {
	case score < 0.4:
		return TierFoundational
	case score < 0.75:
		return TierCompetent
	default:
		return TierExpert
	}
}
