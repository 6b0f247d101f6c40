package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CurrentQuizVersion is stamped on every record so answers can be
// re-scored if the quiz changes shape later.
const CurrentQuizVersion = "1.0"

type LanguagePreference string

const (
	LanguagePortugueseFirst LanguagePreference = "portuguese_first"
	LanguageBilingual       LanguagePreference = "bilingual"
	LanguageEnglishFirst    LanguagePreference = "english_first"
)

func (l LanguagePreference) IsValid() bool {
	switch l {
	case LanguagePortugueseFirst, LanguageBilingual, LanguageEnglishFirst:
		return true
	}
	return false
}

// RatingMap maps a cultural value key to its 0-10 rating. Stored as jsonb.
type RatingMap map[string]int

func (m RatingMap) Value() (driver.Value, error) {
	if m == nil {
		m = RatingMap{}
	}
	return json.Marshal(m)
}

func (m *RatingMap) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	case nil:
		*m = RatingMap{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into RatingMap", src)
}

type PreferenceRecord struct {
	ID                       int                `json:"id" db:"id"`
	UserID                   string             `json:"user_id" db:"user_id"`
	Origins                  []string           `json:"origins" db:"origins"`
	LanguagePreference       LanguagePreference `json:"language_preference" db:"language_preference"`
	CulturalCelebrations     []string           `json:"cultural_celebrations" db:"cultural_celebrations"`
	ProfessionalGoals        []string           `json:"professional_goals" db:"professional_goals"`
	CulturalValues           RatingMap          `json:"cultural_values" db:"cultural_values"`
	LifestylePreferences     []string           `json:"lifestyle_preferences" db:"lifestyle_preferences"`
	CulturalDepthScore       float64            `json:"cultural_depth_score" db:"cultural_depth_score"`
	CommunityEngagementScore float64            `json:"community_engagement_score" db:"community_engagement_score"`
	QuizVersion              string             `json:"quiz_version" db:"quiz_version"`
	CompletedAt              time.Time          `json:"completed_at" db:"completed_at"`
	LastUpdated              time.Time          `json:"last_updated" db:"last_updated"`
}
