package matches

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/lusohub/lusohub-backend/internal/domain"
	"github.com/lusohub/lusohub-backend/internal/repository"
)

type MatchUseCase struct {
	prefs          repository.PreferenceRepository
	edges          repository.CompatibilityRepository
	directory      repository.ProfileDirectory
	cache          repository.MatchCache
	defaults       domain.MatchPolicy
	resolveTimeout time.Duration
	log            *zap.Logger
}

func NewMatchUseCase(
	prefs repository.PreferenceRepository,
	edges repository.CompatibilityRepository,
	directory repository.ProfileDirectory,
	cache repository.MatchCache,
	defaults domain.MatchPolicy,
	resolveTimeout time.Duration,
	log *zap.Logger,
) *MatchUseCase {
	if defaults.MinCompatibilityScore <= 0 {
		defaults.MinCompatibilityScore = domain.DefaultMinCompatibilityScore
	}
	if defaults.MaxMatches <= 0 {
		defaults.MaxMatches = domain.DefaultMaxMatches
	}
	if resolveTimeout <= 0 {
		resolveTimeout = 2 * time.Second
	}
	return &MatchUseCase{
		prefs:          prefs,
		edges:          edges,
		directory:      directory,
		cache:          cache,
		defaults:       defaults,
		resolveTimeout: resolveTimeout,
		log:            log,
	}
}

// GetMatches returns the ranked, bounded match list for a user. An empty
// list is a valid result, not an error.
func (uc *MatchUseCase) GetMatches(ctx context.Context, userID string, policy domain.MatchPolicy) ([]*domain.MatchResult, error) {
	policy = policy.Normalize(uc.defaults)

	// The caller must have completed the quiz.
	if _, err := uc.prefs.GetByUserID(ctx, userID); err != nil {
		return nil, err
	}

	edges, err := uc.edges.ListForUser(ctx, userID, policy.MinCompatibilityScore, policy.MaxMatches)
	if err != nil {
		// Degrade to the last known result rather than failing the read.
		if uc.cache != nil {
			cached, cacheErr := uc.cache.Get(ctx, userID)
			if cacheErr == nil && cached != nil {
				uc.log.Warn("serving cached matches, store read failed",
					zap.String("user_id", userID), zap.Error(err))
				return cached, nil
			}
		}
		return nil, fmt.Errorf("failed to list compatibility edges: %w", err)
	}

	// Re-assert ordering so every repository implementation agrees:
	// overall desc, then most recently calculated first.
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].OverallCompatibility != edges[j].OverallCompatibility {
			return edges[i].OverallCompatibility > edges[j].OverallCompatibility
		}
		return edges[i].CalculatedAt.After(edges[j].CalculatedAt)
	})
	if len(edges) > policy.MaxMatches {
		edges = edges[:policy.MaxMatches]
	}

	results := make([]*domain.MatchResult, 0, len(edges))
	for _, edge := range edges {
		counterpartID, ok := edge.OtherUserID(userID)
		if !ok {
			continue
		}
		profile, err := uc.resolveProfile(ctx, counterpartID)
		if err != nil {
			// Deleted accounts and slow lookups drop out silently.
			uc.log.Debug("excluding match, profile unresolved",
				zap.String("user_id", userID),
				zap.String("counterpart_id", counterpartID),
				zap.Error(err))
			continue
		}
		results = append(results, &domain.MatchResult{Edge: edge, Profile: profile})
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, userID, results); err != nil {
			uc.log.Warn("failed to cache matches", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return results, nil
}

func (uc *MatchUseCase) resolveProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	resolveCtx, cancel := context.WithTimeout(ctx, uc.resolveTimeout)
	defer cancel()
	return uc.directory.ResolveProfile(resolveCtx, userID)
}
