package streaks

import (
	"context"
	"log/slog"
	"time"

	"github.com/emberbot/ember/ember/achievements"
	"github.com/emberbot/ember/ember/database/repositories"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const maxConcurrentEvaluations = 8

// Scheduler runs the periodic background sweeps: monthly freeze
// replenishment, catalog refresh (custom changes and seasonal window
// transitions), and re-evaluation of recently active users. Every sweep is
// an idempotent re-derivation, so overlapping or missed runs are harmless.
type Scheduler struct {
	tracker    *Tracker
	activities repositories.ActivityRepository
	catalog    *achievements.Catalog
	evaluator  *achievements.Evaluator
	interval   time.Duration
}

func NewScheduler(tracker *Tracker, activities repositories.ActivityRepository, catalog *achievements.Catalog, evaluator *achievements.Evaluator, interval time.Duration) *Scheduler {
	return &Scheduler{
		tracker:    tracker,
		activities: activities,
		catalog:    catalog,
		evaluator:  evaluator,
		interval:   interval,
	}
}

// Start launches the sweep loop; it exits when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runSweep(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *Scheduler) runSweep(ctx context.Context) {
	start := time.Now()

	reset, err := s.tracker.ResetMonthlyFreezes(ctx)
	if err != nil {
		slog.Error("Monthly freeze reset failed", slog.Any("error", err))
	} else if reset > 0 {
		slog.Info("Monthly freezes replenished",
			slog.String("type", "sys"),
			slog.Int64("users", reset))
	}

	if err := s.catalog.LoadDefinitions(ctx); err != nil {
		slog.Error("Catalog refresh failed", slog.Any("error", err))
	}

	if err := s.ReevaluateRecent(ctx); err != nil {
		slog.Error("Re-evaluation sweep failed", slog.Any("error", err))
	}

	slog.Debug("Background sweep finished",
		slog.String("type", "sys"),
		slog.Duration("took", time.Since(start)))
}

// ReevaluateRecent re-runs achievement evaluation for every user active
// since yesterday, with bounded concurrency. Individual failures are
// logged; the sweep carries on.
func (s *Scheduler) ReevaluateRecent(ctx context.Context) error {
	pairs, err := s.activities.ActiveSince(ctx, time.Now().UTC().AddDate(0, 0, -1))
	if err != nil {
		return err
	}

	sem := semaphore.NewWeighted(maxConcurrentEvaluations)
	g, gctx := errgroup.WithContext(ctx)

	for _, pair := range pairs {
		pair := pair
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			if _, err := s.evaluator.CheckAllAchievements(gctx, pair.UserID, pair.GuildID); err != nil {
				slog.Error("Sweep evaluation failed",
					slog.String("user_id", pair.UserID),
					slog.String("guild_id", pair.GuildID),
					slog.Any("error", err))
			}
			return nil
		})
	}

	return g.Wait()
}
