package achievements

import (
	"context"
	"fmt"
	"time"

	"github.com/emberbot/ember/ember/database/repositories"
)

// Special predicate names. Each one is evaluated by its own routine over a
// user's raw daily activity rows.
const (
	PredicateVoiceHalfDay    = "voice_half_day"
	PredicateMessageMarathon = "message_marathon"
	PredicateAllRounder      = "all_rounder_day"
	PredicateAnniversary     = "anniversary"
	PredicateWeekendWarrior  = "weekend_warrior"
)

const (
	voiceHalfDayMinutes    = 12 * 60
	marathonMessages       = 500
	anniversaryDays        = 365
	weekendWarriorWeekends = 4
	specialScanWindowDays  = 800
)

// SpecialChecker evaluates named special predicates.
type SpecialChecker struct {
	activities repositories.ActivityRepository
	now        func() time.Time
}

func NewSpecialChecker(activities repositories.ActivityRepository) *SpecialChecker {
	return &SpecialChecker{activities: activities, now: time.Now}
}

// Evaluate dispatches by predicate name. Unknown predicates are an error so
// a typo in a custom achievement surfaces instead of silently never firing.
func (s *SpecialChecker) Evaluate(ctx context.Context, predicate, userID, guildID string) (bool, error) {
	now := s.now()
	from := now.AddDate(0, 0, -specialScanWindowDays)

	days, err := s.activities.GetRange(ctx, userID, guildID, from, now)
	if err != nil {
		return false, fmt.Errorf("failed to load activity for predicate %q: %w", predicate, err)
	}

	switch predicate {
	case PredicateVoiceHalfDay:
		for _, d := range days {
			if d.VoiceMinutes >= voiceHalfDayMinutes {
				return true, nil
			}
		}
		return false, nil

	case PredicateMessageMarathon:
		for _, d := range days {
			if d.MessageCount >= marathonMessages {
				return true, nil
			}
		}
		return false, nil

	case PredicateAllRounder:
		for _, d := range days {
			if d.MessageCount > 0 && d.VoiceMinutes > 0 && d.CommandsRun > 0 {
				return true, nil
			}
		}
		return false, nil

	case PredicateAnniversary:
		if len(days) == 0 {
			return false, nil
		}
		first := days[0].ActivityDate
		return now.Sub(first) >= anniversaryDays*24*time.Hour, nil

	case PredicateWeekendWarrior:
		// A weekend counts when both its Saturday and Sunday saw activity.
		saturdays := make(map[time.Time]bool)
		sundays := make(map[time.Time]bool)
		for _, d := range days {
			switch d.ActivityDate.Weekday() {
			case time.Saturday:
				saturdays[d.ActivityDate] = true
			case time.Sunday:
				// Key by the preceding Saturday.
				sundays[d.ActivityDate.AddDate(0, 0, -1)] = true
			}
		}
		count := 0
		for sat := range saturdays {
			if sundays[sat] {
				count++
			}
		}
		return count >= weekendWarriorWeekends, nil

	default:
		return false, fmt.Errorf("unknown special predicate %q", predicate)
	}
}
