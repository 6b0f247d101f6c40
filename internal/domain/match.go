package domain

// Profile is the display profile of a matched user, resolved from the
// profile directory at read time. It is not owned by this service.
type Profile struct {
	UserID   string  `json:"user_id"`
	Name     string  `json:"name"`
	Age      int     `json:"age"`
	Location string  `json:"location"`
	Bio      *string `json:"bio,omitempty"`
	PhotoURL *string `json:"photo_url,omitempty"`
}

// MatchResult is a transient view assembled from a compatibility edge plus
// the counterpart's display profile. Never persisted.
type MatchResult struct {
	Edge    *CompatibilityEdge `json:"compatibility"`
	Profile *Profile           `json:"profile"`
}

// MatchPolicy bounds what the match retriever returns.
type MatchPolicy struct {
	MinCompatibilityScore float64 `json:"min_compatibility_score"`
	MaxMatches            int     `json:"max_matches"`
}

const (
	DefaultMinCompatibilityScore = 60.0
	DefaultMaxMatches            = 20
)

// Normalize fills unset policy fields from the given defaults.
func (p MatchPolicy) Normalize(defaults MatchPolicy) MatchPolicy {
	if p.MinCompatibilityScore <= 0 {
		p.MinCompatibilityScore = defaults.MinCompatibilityScore
	}
	if p.MaxMatches <= 0 || p.MaxMatches > defaults.MaxMatches {
		p.MaxMatches = defaults.MaxMatches
	}
	return p
}
