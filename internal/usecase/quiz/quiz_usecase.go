package quiz

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/lusohub/lusohub-backend/internal/domain"
	"github.com/lusohub/lusohub-backend/internal/repository"
)

// Lifestyle tags that count toward community engagement.
var engagedLifestyles = map[string]struct{}{
	"cultural_enthusiast": {},
	"social_butterfly":    {},
	"entrepreneur":        {},
}

const (
	storeRetries      = 3
	storeRetryInitial = 50 * time.Millisecond
)

type QuizUseCase struct {
	prefs repository.PreferenceRepository
	queue repository.RecomputeQueue
	locks *keyedMutex
	log   *zap.Logger
}

func NewQuizUseCase(
	prefs repository.PreferenceRepository,
	queue repository.RecomputeQueue,
	log *zap.Logger,
) *QuizUseCase {
	return &QuizUseCase{
		prefs: prefs,
		queue: queue,
		locks: newKeyedMutex(),
		log:   log,
	}
}

// SubmitQuizRequest is the raw quiz intake contract.
type SubmitQuizRequest struct {
	Origin               []string `json:"origin" binding:"required,min=1"`
	LanguagePreference   string   `json:"language_preference" binding:"required"`
	CulturalCelebrations []string `json:"cultural_celebrations"`
	ProfessionalGoals    []string `json:"professional_goals"`
	CulturalValues       []string `json:"cultural_values"`
	Lifestyle            []string `json:"lifestyle"`
}

// Submit normalizes a quiz submission into a preference record, computes
// the derived scores, upserts it, and fires the recompute trigger.
func (uc *QuizUseCase) Submit(ctx context.Context, userID string, req *SubmitQuizRequest) (*domain.PreferenceRecord, error) {
	if userID == "" {
		return nil, domain.NewValidationError("user_id", "must not be empty")
	}

	origins := normalizeTags(req.Origin)
	if len(origins) == 0 {
		return nil, domain.NewValidationError("origin", "at least one heritage origin is required")
	}

	lang := domain.LanguagePreference(strings.ToLower(strings.TrimSpace(req.LanguagePreference)))
	if !lang.IsValid() {
		return nil, domain.NewValidationError("language_preference",
			"must be one of portuguese_first, bilingual, english_first")
	}

	celebrations := normalizeTags(req.CulturalCelebrations)
	goals := normalizeTags(req.ProfessionalGoals)
	lifestyle := normalizeTags(req.Lifestyle)
	values := parseValueRatings(req.CulturalValues)

	record := &domain.PreferenceRecord{
		UserID:               userID,
		Origins:              origins,
		LanguagePreference:   lang,
		CulturalCelebrations: celebrations,
		ProfessionalGoals:    goals,
		CulturalValues:       values,
		LifestylePreferences: lifestyle,
		QuizVersion:          domain.CurrentQuizVersion,
	}
	record.CulturalDepthScore = culturalDepthScore(record)
	record.CommunityEngagementScore = communityEngagementScore(record)

	// Writes to one user's record are serialized; different users never
	// contend here.
	unlock := uc.locks.Lock(userID)
	err := retryStore(ctx, func() error {
		return uc.prefs.Upsert(ctx, record)
	})
	unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to save cultural preferences: %w", err)
	}

	// Fire-and-forget: a lost trigger only delays recomputation.
	if err := uc.queue.Enqueue(ctx, userID); err != nil {
		uc.log.Warn("failed to enqueue compatibility recompute",
			zap.String("user_id", userID), zap.Error(err))
	}

	return record, nil
}

// GetPreferences returns the persisted record for a user.
func (uc *QuizUseCase) GetPreferences(ctx context.Context, userID string) (*domain.PreferenceRecord, error) {
	return uc.prefs.GetByUserID(ctx, userID)
}

// DeletePreferences removes a user's record; edges cascade.
func (uc *QuizUseCase) DeletePreferences(ctx context.Context, userID string) error {
	unlock := uc.locks.Lock(userID)
	defer unlock()
	return uc.prefs.Delete(ctx, userID)
}

// normalizeTags trims, lowercases, and deduplicates preserving
// first-encountered order. Blank entries are dropped.
func normalizeTags(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, tag := range raw {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// parseValueRatings decodes "key:rating" entries. Entries that fail to
// parse are dropped silently; one bad entry must not abort the submission.
// Ratings are clamped into [0,10].
func parseValueRatings(entries []string) domain.RatingMap {
	values := make(domain.RatingMap, len(entries))
	for _, entry := range entries {
		key, rawRating, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		rating, err := strconv.Atoi(strings.TrimSpace(rawRating))
		if err != nil {
			continue
		}
		if rating < 0 {
			rating = 0
		}
		if rating > 10 {
			rating = 10
		}
		values[key] = rating
	}
	return values
}

func culturalDepthScore(r *domain.PreferenceRecord) float64 {
	score := 40.0
	score += minf(float64(10*len(r.Origins)), 20)
	score += minf(float64(5*len(r.CulturalCelebrations)), 25)
	switch r.LanguagePreference {
	case domain.LanguagePortugueseFirst:
		score += 10
	case domain.LanguageBilingual:
		score += 5
	}
	return clamp(score, 0, 100)
}

func communityEngagementScore(r *domain.PreferenceRecord) float64 {
	score := 30.0
	score += minf(float64(8*len(r.ProfessionalGoals)), 25)
	for _, tag := range r.LifestylePreferences {
		if _, ok := engagedLifestyles[tag]; ok {
			score += 15
		}
	}
	return clamp(score, 0, 100)
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// retryStore retries fn with exponential backoff while it keeps failing
// transiently. Domain errors are permanent and surface immediately.
func retryStore(ctx context.Context, fn func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = storeRetryInitial
	return backoff.Retry(func() error {
		err := fn()
		if err == nil {
			return nil
		}
		var ve *domain.ValidationError
		if errors.As(err, &ve) ||
			errors.Is(err, domain.ErrPreferencesNotFound) ||
			errors.Is(err, domain.ErrStaleEdge) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, storeRetries), ctx))
}
