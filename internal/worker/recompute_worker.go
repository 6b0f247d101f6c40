// Package worker runs the fan-out recomputation of compatibility edges:
// one queue item per changed user, one scoring task per counterpart.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/lusohub/lusohub-backend/internal/domain"
	"github.com/lusohub/lusohub-backend/internal/repository"
	"github.com/lusohub/lusohub-backend/internal/usecase/compatibility"
)

type RecomputeWorker struct {
	queue       repository.RecomputeQueue
	prefs       repository.PreferenceRepository
	scorer      *compatibility.CompatibilityUseCase
	consumers   int
	parallelism int
	inflight    singleflight.Group
	log         *zap.Logger
}

func NewRecomputeWorker(
	queue repository.RecomputeQueue,
	prefs repository.PreferenceRepository,
	scorer *compatibility.CompatibilityUseCase,
	consumers, parallelism int,
	log *zap.Logger,
) *RecomputeWorker {
	if consumers <= 0 {
		consumers = 4
	}
	if parallelism <= 0 {
		parallelism = 8
	}
	return &RecomputeWorker{
		queue:       queue,
		prefs:       prefs,
		scorer:      scorer,
		consumers:   consumers,
		parallelism: parallelism,
		log:         log,
	}
}

// Run consumes the queue until ctx is cancelled.
func (w *RecomputeWorker) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.consumers; i++ {
		group.Go(func() error {
			for {
				userID, err := w.queue.Dequeue(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					w.log.Warn("dequeue failed", zap.Error(err))
					continue
				}
				if userID == "" {
					if ctx.Err() != nil {
						return nil
					}
					continue
				}
				if err := w.RecomputeForUser(ctx, userID); err != nil {
					w.log.Warn("recompute batch failed",
						zap.String("user_id", userID), zap.Error(err))
				}
			}
		})
	}
	return group.Wait()
}

// RecomputeForUser rescores the user's edges against every counterpart
// with a preference record. Per-pair failures are logged and skipped; one
// bad pair never aborts the batch.
func (w *RecomputeWorker) RecomputeForUser(ctx context.Context, userID string) error {
	if _, err := w.prefs.GetByUserID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrPreferencesNotFound) {
			// Record deleted while the item sat in the queue.
			w.log.Debug("skipping recompute, preferences gone", zap.String("user_id", userID))
			return nil
		}
		return fmt.Errorf("failed to load preferences: %w", err)
	}

	counterparts, err := w.prefs.ListUserIDs(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list counterpart users: %w", err)
	}

	var scored, skipped atomic.Int64
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(w.parallelism)
	for _, counterpartID := range counterparts {
		counterpartID := counterpartID
		group.Go(func() error {
			// Concurrent triggers for both endpoints of a pair collapse
			// into a single in-flight computation.
			key := domain.PairKey(userID, counterpartID)
			_, err, _ := w.inflight.Do(key, func() (interface{}, error) {
				return w.scorer.ScorePair(ctx, userID, counterpartID)
			})
			switch {
			case err == nil:
				scored.Add(1)
			case errors.Is(err, domain.ErrPreferencesNotFound), errors.Is(err, domain.ErrStaleEdge):
				skipped.Add(1)
				w.log.Debug("skipping pair", zap.String("pair", key), zap.Error(err))
			default:
				skipped.Add(1)
				w.log.Warn("failed to score pair", zap.String("pair", key), zap.Error(err))
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	w.log.Info("recompute batch finished",
		zap.String("user_id", userID),
		zap.Int64("scored", scored.Load()),
		zap.Int64("skipped", skipped.Load()))
	return nil
}
