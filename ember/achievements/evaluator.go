package achievements

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/emberbot/ember/ember/database/models"
	"github.com/emberbot/ember/ember/database/repositories"
)

// NotifyStatus is the outcome of a best-effort notification. Callers can
// tell "the recipient blocks DMs" apart from "the platform call failed"
// without either becoming an error.
type NotifyStatus int

const (
	NotifyDelivered NotifyStatus = iota
	NotifySuppressed
	NotifyFailed
)

// Notifier delivers a direct message about an earned achievement.
type Notifier interface {
	NotifyAchievement(ctx context.Context, userID string, def *models.AchievementDefinition) NotifyStatus
}

// RoleGranter hands a newly earned role-granting achievement to the role
// reconciler. Implemented by rolerewards.Reconciler.
type RoleGranter interface {
	GrantForAchievement(ctx context.Context, userID, guildID, achievementID string) error
}

// Evaluator checks a user's stats against every catalog rule and performs
// at-most-once awarding. All collaborators are injected.
type Evaluator struct {
	catalog  *Catalog
	repo     repositories.AchievementRepository
	rewards  repositories.RoleRewardRepository
	stats    StatsProvider
	specials *SpecialChecker
	roles    RoleGranter
	notifier Notifier
	now      func() time.Time
}

type EvaluatorConfig struct {
	Catalog  *Catalog
	Repo     repositories.AchievementRepository
	Rewards  repositories.RoleRewardRepository
	Stats    StatsProvider
	Specials *SpecialChecker
	Roles    RoleGranter
	Notifier Notifier
}

func NewEvaluator(cfg EvaluatorConfig) *Evaluator {
	return &Evaluator{
		catalog:  cfg.Catalog,
		repo:     cfg.Repo,
		rewards:  cfg.Rewards,
		stats:    cfg.Stats,
		specials: cfg.Specials,
		roles:    cfg.Roles,
		notifier: cfg.Notifier,
		now:      time.Now,
	}
}

// CheckAllAchievements evaluates every not-yet-awarded rule for the user and
// awards the newly satisfied ones. Returns the definitions awarded by this
// call. Failures on individual rules are logged and skipped so one broken
// custom rule cannot starve the rest; notification and role failures never
// surface as evaluator errors.
func (e *Evaluator) CheckAllAchievements(ctx context.Context, userID, guildID string) ([]*models.AchievementDefinition, error) {
	awarded, err := e.repo.AwardedIDs(ctx, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load awarded set: %w", err)
	}

	stats, err := e.stats.Stats(ctx, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	now := e.now()
	var newlyAwarded []*models.AchievementDefinition

	for _, def := range e.catalog.ForGuild(guildID) {
		if _, ok := awarded[def.AchievementID]; ok {
			continue
		}
		if !def.InSeason(now) {
			continue
		}

		ok, err := e.satisfied(ctx, def, stats, awarded, userID, guildID)
		if err != nil {
			slog.Error("Achievement evaluation failed",
				slog.String("achievement_id", def.AchievementID),
				slog.String("user_id", userID),
				slog.Any("error", err))
			continue
		}
		if !ok {
			continue
		}

		inserted, err := e.repo.InsertAward(ctx, &models.AwardedAchievement{
			UserID:        userID,
			GuildID:       guildID,
			AchievementID: def.AchievementID,
			EarnedAt:      now,
		})
		if err != nil {
			slog.Error("Failed to persist award",
				slog.String("achievement_id", def.AchievementID),
				slog.String("user_id", userID),
				slog.Any("error", err))
			continue
		}
		if !inserted {
			// A concurrent evaluation won the race; nothing else to do.
			continue
		}

		newlyAwarded = append(newlyAwarded, def)
		awarded[def.AchievementID] = struct{}{}
		e.afterAward(ctx, userID, guildID, def)
	}

	return newlyAwarded, nil
}

// afterAward runs the post-award side effects: role grant and DM. Both are
// best effort; the award stands regardless.
func (e *Evaluator) afterAward(ctx context.Context, userID, guildID string, def *models.AchievementDefinition) {
	slog.Info("Achievement earned",
		slog.String("achievement_id", def.AchievementID),
		slog.String("user_id", userID),
		slog.String("guild_id", guildID),
		slog.String("rarity", string(def.Rarity)))

	if def.GrantRole && e.roles != nil {
		if err := e.roles.GrantForAchievement(ctx, userID, guildID, def.AchievementID); err != nil {
			slog.Error("Role grant failed",
				slog.String("achievement_id", def.AchievementID),
				slog.String("user_id", userID),
				slog.Any("error", err))
		}
	}

	if e.notifier == nil || e.rewards == nil {
		return
	}
	cfg, err := e.rewards.GetConfig(ctx, guildID)
	if err != nil {
		slog.Error("Failed to load guild reward config",
			slog.String("guild_id", guildID),
			slog.Any("error", err))
		return
	}
	if !cfg.DMOnEarn {
		return
	}

	switch e.notifier.NotifyAchievement(ctx, userID, def) {
	case NotifySuppressed:
		slog.Debug("Achievement DM suppressed by recipient",
			slog.String("user_id", userID),
			slog.String("achievement_id", def.AchievementID))
	case NotifyFailed:
		slog.Warn("Achievement DM failed",
			slog.String("user_id", userID),
			slog.String("achievement_id", def.AchievementID))
	}
}

// satisfied dispatches on the criteria variant. exact is deliberately
// evaluated as >=: a streak passes through every integer, and a check cycle
// landing past the milestone must still count it as reached.
func (e *Evaluator) satisfied(ctx context.Context, def *models.AchievementDefinition, stats Stats, awarded map[string]struct{}, userID, guildID string) (bool, error) {
	switch c := def.Criteria.Criteria.(type) {
	case models.ExactCriteria:
		return stats.Get(c.Stat) >= c.Value, nil

	case models.ThresholdCriteria:
		return stats.Get(c.Stat) >= c.Value, nil

	case models.ComboCriteria:
		if len(c.Parts) == 0 {
			return false, fmt.Errorf("combo criteria with no parts")
		}
		for _, part := range c.Parts {
			if stats.Get(part.Stat) < part.Value {
				return false, nil
			}
		}
		return true, nil

	case models.SpecialCriteria:
		if e.specials == nil {
			return false, fmt.Errorf("no special checker configured")
		}
		return e.specials.Evaluate(ctx, c.Predicate, userID, guildID)

	case models.MetaCriteria:
		return e.countNonMeta(guildID, awarded) >= c.Count, nil

	case nil:
		return false, fmt.Errorf("definition %q has no criteria", def.AchievementID)

	default:
		return false, fmt.Errorf("unhandled criteria type %T", c)
	}
}

// countNonMeta counts awarded achievements excluding meta ones, so meta
// achievements cannot feed each other. Ids with no surviving definition
// (deleted customs) count as non-meta.
func (e *Evaluator) countNonMeta(guildID string, awarded map[string]struct{}) int {
	count := 0
	for id := range awarded {
		if def, ok := e.catalog.ByID(guildID, id); ok && def.CheckType == models.CheckTypeMeta {
			continue
		}
		count++
	}
	return count
}

// HasAchievement reports whether the user holds the achievement.
func (e *Evaluator) HasAchievement(ctx context.Context, userID, guildID, achievementID string) (bool, error) {
	return e.repo.HasAward(ctx, userID, guildID, achievementID)
}

// AwardManually grants an achievement by admin action, bypassing criteria
// but honoring the uniqueness invariant and the seasonal window.
func (e *Evaluator) AwardManually(ctx context.Context, userID, guildID, achievementID, adminID string) (*models.AchievementDefinition, error) {
	def, ok := e.catalog.ByID(guildID, achievementID)
	if !ok {
		return nil, fmt.Errorf("%q: %w", achievementID, ErrUnknownAchievement)
	}
	if !def.InSeason(e.now()) {
		return nil, fmt.Errorf("%q: %w", achievementID, ErrOutOfSeason)
	}

	inserted, err := e.repo.InsertAward(ctx, &models.AwardedAchievement{
		UserID:        userID,
		GuildID:       guildID,
		AchievementID: achievementID,
		EarnedAt:      e.now(),
		AwardedBy:     &adminID,
	})
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, fmt.Errorf("%q: %w", achievementID, ErrAlreadyAwarded)
	}

	e.afterAward(ctx, userID, guildID, def)
	return def, nil
}

// RemoveAward revokes an achievement by admin action.
func (e *Evaluator) RemoveAward(ctx context.Context, userID, guildID, achievementID string) error {
	err := e.repo.DeleteAward(ctx, userID, guildID, achievementID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%q: %w", achievementID, ErrUnknownAchievement)
		}
		return err
	}
	return nil
}
