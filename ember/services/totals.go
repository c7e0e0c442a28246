package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/emberbot/ember/ember/achievements"
	"github.com/emberbot/ember/ember/database/repositories"
)

// TotalsService assembles the stat snapshot the achievement evaluator
// compares against, pulling from the streak, activity and social stores.
type TotalsService struct {
	streaks    repositories.StreakRepository
	activities repositories.ActivityRepository
	social     repositories.SocialStatsRepository
}

func NewTotalsService(streaks repositories.StreakRepository, activities repositories.ActivityRepository, social repositories.SocialStatsRepository) *TotalsService {
	return &TotalsService{
		streaks:    streaks,
		activities: activities,
		social:     social,
	}
}

// Stats implements achievements.StatsProvider. A user with no streak row
// yet contributes zeros rather than an error.
func (s *TotalsService) Stats(ctx context.Context, userID, guildID string) (achievements.Stats, error) {
	var stats achievements.Stats

	state, err := s.streaks.Get(ctx, userID, guildID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return stats, fmt.Errorf("failed to load streak state: %w", err)
	}
	if state != nil {
		stats.CurrentStreak = int64(state.CurrentStreak)
		stats.LongestStreak = int64(state.LongestStreak)
		stats.TotalDays = int64(state.TotalActiveDays)
	}

	totals, err := s.activities.GetTotals(ctx, userID, guildID)
	if err != nil {
		return stats, fmt.Errorf("failed to load activity totals: %w", err)
	}
	stats.Messages = totals.Messages
	stats.VoiceMinutes = totals.VoiceMinutes
	stats.Commands = totals.Commands

	social, err := s.social.Get(ctx, userID, guildID)
	if err != nil {
		return stats, fmt.Errorf("failed to load social stats: %w", err)
	}
	stats.ReactionsGiven = social.ReactionsGiven
	stats.ReactionsReceived = social.ReactionsReceived

	return stats, nil
}
