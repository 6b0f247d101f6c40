package compatibility

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/lusohub/lusohub-backend/internal/domain"
	"github.com/lusohub/lusohub-backend/internal/repository"
)

// InsightGenerator produces display-only insight strings for an edge. The
// Gemini client implements it; a nil generator keeps the rule-based ones.
type InsightGenerator interface {
	GenerateCompatibilityInsights(ctx context.Context, a, b *domain.PreferenceRecord, edge *domain.CompatibilityEdge) ([]string, error)
}

// Weights distribute the six dimension scores into the overall score.
// They are policy, not contract; Validate only requires that they sum to 1.
type Weights struct {
	Origin       float64
	Language     float64
	Cultural     float64
	Professional float64
	Values       float64
	Lifestyle    float64
}

// DefaultWeights emphasize shared heritage and values.
func DefaultWeights() Weights {
	return Weights{
		Origin:       0.25,
		Language:     0.15,
		Cultural:     0.20,
		Professional: 0.10,
		Values:       0.20,
		Lifestyle:    0.10,
	}
}

func (w Weights) Validate() error {
	sum := w.Origin + w.Language + w.Cultural + w.Professional + w.Values + w.Lifestyle
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("compatibility weights must sum to 1.0, got %v", sum)
	}
	return nil
}

func (w Weights) overall(e *domain.CompatibilityEdge) float64 {
	return w.Origin*e.OriginCompatibility +
		w.Language*e.LanguageCompatibility +
		w.Cultural*e.CulturalCompatibility +
		w.Professional*e.ProfessionalCompatibility +
		w.Values*e.ValuesCompatibility +
		w.Lifestyle*e.LifestyleCompatibility
}

type CompatibilityUseCase struct {
	prefs    repository.PreferenceRepository
	edges    repository.CompatibilityRepository
	insights InsightGenerator
	weights  Weights
	log      *zap.Logger
}

func NewCompatibilityUseCase(
	prefs repository.PreferenceRepository,
	edges repository.CompatibilityRepository,
	insights InsightGenerator,
	weights Weights,
	log *zap.Logger,
) (*CompatibilityUseCase, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &CompatibilityUseCase{
		prefs:    prefs,
		edges:    edges,
		insights: insights,
		weights:  weights,
		log:      log,
	}, nil
}

// ScorePair loads both preference records, computes the edge, and persists
// it wholesale. The repository's stale-write guard surfaces as
// domain.ErrStaleEdge; background callers swallow it.
func (uc *CompatibilityUseCase) ScorePair(ctx context.Context, userAID, userBID string) (*domain.CompatibilityEdge, error) {
	if userAID == userBID {
		return nil, fmt.Errorf("%w: %w", domain.ErrSelfComparison, domain.NewValidationError("user_id", "both users are the same"))
	}

	recordA, err := uc.prefs.GetByUserID(ctx, userAID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences for %s: %w", userAID, err)
	}
	recordB, err := uc.prefs.GetByUserID(ctx, userBID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences for %s: %w", userBID, err)
	}

	edge := uc.Score(recordA, recordB)

	if uc.insights != nil {
		generated, genErr := uc.insights.GenerateCompatibilityInsights(ctx, recordA, recordB, edge)
		if genErr != nil {
			uc.log.Warn("insight generation failed, keeping rule-based insights",
				zap.String("pair", domain.PairKey(userAID, userBID)), zap.Error(genErr))
		} else if len(generated) > 0 {
			edge.CompatibilityInsights = generated
		}
	}

	if err := retryStore(ctx, func() error { return uc.edges.Upsert(ctx, edge) }); err != nil {
		if errors.Is(err, domain.ErrStaleEdge) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save compatibility edge: %w", err)
	}
	return edge, nil
}

// GetEdge returns the stored edge for a pair without recomputing it.
func (uc *CompatibilityUseCase) GetEdge(ctx context.Context, userAID, userBID string) (*domain.CompatibilityEdge, error) {
	if userAID == userBID {
		return nil, fmt.Errorf("%w: %w", domain.ErrSelfComparison, domain.NewValidationError("user_id", "both users are the same"))
	}
	return uc.edges.GetByUsers(ctx, userAID, userBID)
}

// Score computes the edge for two records without touching storage. All
// dimension formulas are symmetric, so score(A,B) == score(B,A).
func (uc *CompatibilityUseCase) Score(a, b *domain.PreferenceRecord) *domain.CompatibilityEdge {
	userA, userB := domain.OrderPair(a.UserID, b.UserID)

	edge := &domain.CompatibilityEdge{
		UserAID:                   userA,
		UserBID:                   userB,
		OriginCompatibility:       jaccardScore(a.Origins, b.Origins),
		LanguageCompatibility:     languageScore(a.LanguagePreference, b.LanguagePreference),
		CulturalCompatibility:     jaccardScore(a.CulturalCelebrations, b.CulturalCelebrations),
		ProfessionalCompatibility: jaccardScore(a.ProfessionalGoals, b.ProfessionalGoals),
		ValuesCompatibility:       valuesScore(a.CulturalValues, b.CulturalValues),
		LifestyleCompatibility:    jaccardScore(a.LifestylePreferences, b.LifestylePreferences),
		SourceUpdatedAt:           laterOf(a.LastUpdated, b.LastUpdated),
	}
	edge.OverallCompatibility = uc.weights.overall(edge)
	edge.SharedElements = sharedElements(a, b)
	edge.CompatibilityInsights = ruleBasedInsights(a, b, edge)
	return edge
}

// jaccardScore scales Jaccard similarity to [0,100]. Two empty sets are
// treated as perfect agreement so identical records score 100 overall.
func jaccardScore(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 100
	}
	setA := toSet(a)
	setB := toSet(b)
	intersection := 0
	for tag := range setA {
		if _, ok := setB[tag]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 100
	}
	return 100 * float64(intersection) / float64(union)
}

// languageScore: identical preferences score 100, a bilingual speaker
// meets either end halfway, and opposite ends score 0.
func languageScore(a, b domain.LanguagePreference) float64 {
	switch {
	case a == b:
		return 100
	case a == domain.LanguageBilingual || b == domain.LanguageBilingual:
		return 50
	default:
		return 0
	}
}

// valuesScore compares ratings over shared keys only; keys present on one
// side are ignored, not penalized. Without shared keys it falls back to
// the overlap of the key sets themselves.
func valuesScore(a, b domain.RatingMap) float64 {
	sharedKeys := 0
	totalDiff := 0.0
	for key, ratingA := range a {
		ratingB, ok := b[key]
		if !ok {
			continue
		}
		sharedKeys++
		totalDiff += math.Abs(float64(ratingA - ratingB))
	}
	if sharedKeys == 0 {
		keysA := make([]string, 0, len(a))
		for key := range a {
			keysA = append(keysA, key)
		}
		keysB := make([]string, 0, len(b))
		for key := range b {
			keysB = append(keysB, key)
		}
		return jaccardScore(keysA, keysB)
	}
	// Ratings live in [0,10], so the mean absolute difference maps onto
	// [0,100] with a factor of 10.
	return 100 - (totalDiff/float64(sharedKeys))*10
}

// sharedElements collects tags present on both sides across every tag
// dimension, deduplicated in first-encountered order.
func sharedElements(a, b *domain.PreferenceRecord) []string {
	var shared []string
	seen := make(map[string]struct{})
	appendShared := func(left, right []string) {
		rightSet := toSet(right)
		for _, tag := range left {
			if _, ok := rightSet[tag]; !ok {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			shared = append(shared, tag)
		}
	}
	appendShared(a.Origins, b.Origins)
	appendShared(a.CulturalCelebrations, b.CulturalCelebrations)
	appendShared(a.ProfessionalGoals, b.ProfessionalGoals)
	appendShared(a.LifestylePreferences, b.LifestylePreferences)
	return shared
}

func ruleBasedInsights(a, b *domain.PreferenceRecord, edge *domain.CompatibilityEdge) []string {
	var insights []string
	if edge.OriginCompatibility >= 100 {
		insights = append(insights, "You share the same heritage background")
	} else if edge.OriginCompatibility > 0 {
		insights = append(insights, "Your heritage backgrounds overlap")
	}
	if edge.LanguageCompatibility >= 100 {
		insights = append(insights, "You have the same language preference")
	} else if edge.LanguageCompatibility >= 50 {
		insights = append(insights, "One of you is comfortable in both languages")
	}
	if edge.CulturalCompatibility >= 50 {
		insights = append(insights, "You celebrate many of the same traditions")
	}
	if edge.ValuesCompatibility >= 80 {
		insights = append(insights, "Your cultural values are closely aligned")
	}
	if edge.OverallCompatibility >= 80 {
		insights = append(insights, "Exceptional overall cultural alignment")
	}
	return insights
}

func toSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return set
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// retryStore is duplicated from the quiz usecase; both retry transient
// store failures a bounded number of times.
func retryStore(ctx context.Context, fn func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	return backoff.Retry(func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrStaleEdge) ||
			errors.Is(err, domain.ErrPreferencesNotFound) ||
			errors.Is(err, domain.ErrEdgeNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, 3), ctx))
}
