package achievements

import (
	"context"

	"github.com/emberbot/ember/ember/database/models"
)

// Stats is the snapshot of a user's aggregates the evaluator compares
// criteria against.
type Stats struct {
	CurrentStreak     int64
	LongestStreak     int64
	TotalDays         int64
	Messages          int64
	VoiceMinutes      int64
	Commands          int64
	ReactionsGiven    int64
	ReactionsReceived int64
}

// Get returns the value for a stat kind, 0 for unknown kinds.
func (s Stats) Get(kind models.StatKind) int64 {
	switch kind {
	case models.StatCurrentStreak:
		return s.CurrentStreak
	case models.StatLongestStreak:
		return s.LongestStreak
	case models.StatTotalDays:
		return s.TotalDays
	case models.StatMessages:
		return s.Messages
	case models.StatVoiceMinutes:
		return s.VoiceMinutes
	case models.StatCommands:
		return s.Commands
	case models.StatReactionsGiven:
		return s.ReactionsGiven
	case models.StatReactionsReceived:
		return s.ReactionsReceived
	default:
		return 0
	}
}

// StatsProvider exposes a user's current aggregates. The bot wires this to
// the totals service; tests substitute fixed snapshots.
type StatsProvider interface {
	Stats(ctx context.Context, userID, guildID string) (Stats, error)
}
