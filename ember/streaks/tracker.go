package streaks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emberbot/ember/ember/database/models"
	"github.com/emberbot/ember/ember/database/repositories"
)

// TouchOutcome describes what a streak touch did.
type TouchOutcome int

const (
	// OutcomeUnchanged means the user already counted today.
	OutcomeUnchanged TouchOutcome = iota
	// OutcomeStarted is the first-ever activity for the pair.
	OutcomeStarted
	// OutcomeContinued extends the streak by one day.
	OutcomeContinued
	// OutcomeBridged continued across a single missed day by consuming a freeze.
	OutcomeBridged
	// OutcomeBroken reset the streak; today still counts as day one.
	OutcomeBroken
)

// TouchResult is the state after a touch plus what happened.
type TouchResult struct {
	State   *models.StreakState
	Outcome TouchOutcome
}

// UserStreak is the read model for displaying a user's streak: state plus
// the achievements they have earned, joined against the catalog.
type UserStreak struct {
	State        *models.StreakState
	Achievements []EarnedAchievement
}

type EarnedAchievement struct {
	Award      *models.AwardedAchievement
	Definition *models.AchievementDefinition
}

// DefinitionResolver resolves achievement ids for the GetUserStreak join.
// Satisfied by achievements.Catalog.
type DefinitionResolver interface {
	ByID(guildID, achievementID string) (*models.AchievementDefinition, bool)
}

// Tracker owns all streak-state mutation. The touch state machine runs
// inside one storage transaction per user so racing activity events cannot
// lose updates.
type Tracker struct {
	streaks      repositories.StreakRepository
	achievements repositories.AchievementRepository
	definitions  DefinitionResolver
	maxFreezes   int
	now          func() time.Time
}

func NewTracker(streaks repositories.StreakRepository, achievements repositories.AchievementRepository, definitions DefinitionResolver, maxFreezes int) *Tracker {
	if maxFreezes <= 0 {
		maxFreezes = 1
	}
	return &Tracker{
		streaks:      streaks,
		achievements: achievements,
		definitions:  definitions,
		maxFreezes:   maxFreezes,
		now:          time.Now,
	}
}

// TouchActivity advances streak state for one qualifying activity event.
// Callers debounce: one touch per user per burst is enough, and additional
// same-day touches are no-ops anyway.
func (t *Tracker) TouchActivity(ctx context.Context, userID, guildID string) (*TouchResult, error) {
	outcome := OutcomeUnchanged

	state, err := t.streaks.Mutate(ctx, userID, guildID, t.maxFreezes, func(s *models.StreakState) (bool, error) {
		today := models.UTCDay(t.now())

		if s.LastActivityDate == nil {
			s.CurrentStreak = 1
			s.TotalActiveDays = 1
			s.LastActivityDate = &today
			outcome = OutcomeStarted
		} else {
			gap := models.DaysBetween(*s.LastActivityDate, today)
			switch {
			case gap <= 0:
				// Already counted today. Negative gaps only happen on
				// clock weirdness; treat them the same way.
				outcome = OutcomeUnchanged
				return false, nil
			case gap == 1:
				s.CurrentStreak++
				outcome = OutcomeContinued
			case gap == 2 && s.FreezesAvailable > 0:
				// A freeze bridges exactly one missed day.
				s.FreezesAvailable--
				s.CurrentStreak++
				outcome = OutcomeBridged
			default:
				s.CurrentStreak = 1
				outcome = OutcomeBroken
			}
			s.TotalActiveDays++
			s.LastActivityDate = &today
		}

		if s.CurrentStreak > s.LongestStreak {
			s.LongestStreak = s.CurrentStreak
		}
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("streak touch failed: %w", err)
	}

	return &TouchResult{State: state, Outcome: outcome}, nil
}

// GetUserStreak is a pure read: current state plus earned achievements.
// A user with no state yet gets a zero-value state rather than an error.
func (t *Tracker) GetUserStreak(ctx context.Context, userID, guildID string) (*UserStreak, error) {
	state, err := t.streaks.Get(ctx, userID, guildID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		state = &models.StreakState{
			UserID:           userID,
			GuildID:          guildID,
			FreezesAvailable: t.maxFreezes,
		}
	}

	awards, err := t.achievements.AwardedList(ctx, userID, guildID)
	if err != nil {
		return nil, err
	}

	earned := make([]EarnedAchievement, 0, len(awards))
	for _, award := range awards {
		def, _ := t.definitions.ByID(guildID, award.AchievementID)
		earned = append(earned, EarnedAchievement{Award: award, Definition: def})
	}

	return &UserStreak{State: state, Achievements: earned}, nil
}

// ResetMonthlyFreezes restores everyone's freeze allowance once the
// calendar month has rolled over since their last reset. Idempotent; the
// scheduler calls it on every sweep.
func (t *Tracker) ResetMonthlyFreezes(ctx context.Context) (int64, error) {
	now := t.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return t.streaks.ResetMonthlyFreezes(ctx, monthStart, t.maxFreezes)
}

// TopStreaks returns the guild's leaderboard, longest current streaks first.
func (t *Tracker) TopStreaks(ctx context.Context, guildID string, limit int) ([]*models.StreakState, error) {
	return t.streaks.TopStreaks(ctx, guildID, limit)
}
