package domain

import "time"

// CompatibilityEdge is the computed, directionless compatibility record
// between two users' cultural preferences. One edge exists per unordered
// pair; storage keeps user_a_id < user_b_id to avoid duplicates.
type CompatibilityEdge struct {
	ID                        int       `json:"id" db:"id"`
	UserAID                   string    `json:"user_a_id" db:"user_a_id"`
	UserBID                   string    `json:"user_b_id" db:"user_b_id"`
	OriginCompatibility       float64   `json:"origin_compatibility" db:"origin_compatibility"`
	LanguageCompatibility     float64   `json:"language_compatibility" db:"language_compatibility"`
	CulturalCompatibility     float64   `json:"cultural_compatibility" db:"cultural_compatibility"`
	ProfessionalCompatibility float64   `json:"professional_compatibility" db:"professional_compatibility"`
	ValuesCompatibility       float64   `json:"values_compatibility" db:"values_compatibility"`
	LifestyleCompatibility    float64   `json:"lifestyle_compatibility" db:"lifestyle_compatibility"`
	OverallCompatibility      float64   `json:"overall_compatibility" db:"overall_compatibility"`
	SharedElements            []string  `json:"shared_elements" db:"shared_elements"`
	CompatibilityInsights     []string  `json:"compatibility_insights" db:"compatibility_insights"`
	// SourceUpdatedAt is the newest last_updated of the two preference
	// records the edge was computed from; a recomputation with an older
	// source snapshot must not replace a newer edge.
	SourceUpdatedAt time.Time `json:"source_updated_at" db:"source_updated_at"`
	CalculatedAt    time.Time `json:"calculated_at" db:"calculated_at"`
	LastUpdated     time.Time `json:"last_updated" db:"last_updated"`
}

// OrderPair returns the canonical storage ordering for an unordered pair.
func OrderPair(userAID, userBID string) (string, string) {
	if userAID > userBID {
		return userBID, userAID
	}
	return userAID, userBID
}

// PairKey is a stable identifier for the unordered pair, used for
// per-edge deduplication of in-flight recomputations.
func PairKey(userAID, userBID string) string {
	a, b := OrderPair(userAID, userBID)
	return a + ":" + b
}

func (e *CompatibilityEdge) HasUser(userID string) bool {
	return e.UserAID == userID || e.UserBID == userID
}

func (e *CompatibilityEdge) OtherUserID(userID string) (string, bool) {
	if e.UserAID == userID {
		return e.UserBID, true
	}
	if e.UserBID == userID {
		return e.UserAID, true
	}
	return "", false
}
