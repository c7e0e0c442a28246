package achievements

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberbot/ember/ember/database/models"
	"github.com/emberbot/ember/ember/database/repositories"
)

type fakeActivityRepo struct {
	days []*models.DailyActivity
}

func (r *fakeActivityRepo) RecordActivity(context.Context, string, string, models.ActivityKind, int64) error {
	return nil
}

func (r *fakeActivityRepo) GetDay(context.Context, string, string, time.Time) (*models.DailyActivity, error) {
	return nil, repositories.ErrNotFound
}

func (r *fakeActivityRepo) GetRange(context.Context, string, string, time.Time, time.Time) ([]*models.DailyActivity, error) {
	return r.days, nil
}

func (r *fakeActivityRepo) GetTotals(context.Context, string, string) (repositories.ActivityTotals, error) {
	return repositories.ActivityTotals{}, nil
}

func (r *fakeActivityRepo) ActiveSince(context.Context, time.Time) ([]repositories.UserGuild, error) {
	return nil, nil
}

func day(date time.Time, messages, voice, commands int64) *models.DailyActivity {
	return &models.DailyActivity{
		ActivityDate: models.UTCDay(date),
		MessageCount: messages,
		VoiceMinutes: voice,
		CommandsRun:  commands,
	}
}

func specialChecker(days ...*models.DailyActivity) *SpecialChecker {
	s := NewSpecialChecker(&fakeActivityRepo{days: days})
	s.now = fixedNow
	return s
}

func TestSpecialChecker_MessageMarathon(t *testing.T) {
	now := fixedNow()

	s := specialChecker(day(now.AddDate(0, 0, -3), 499, 0, 0))
	ok, err := s.Evaluate(context.Background(), PredicateMessageMarathon, "u1", "g1")
	require.NoError(t, err)
	assert.False(t, ok)

	s = specialChecker(day(now.AddDate(0, 0, -3), 500, 0, 0))
	ok, err = s.Evaluate(context.Background(), PredicateMessageMarathon, "u1", "g1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSpecialChecker_AllRounderNeedsAllThreeInOneDay(t *testing.T) {
	now := fixedNow()

	// Spread over two days: never all three at once.
	s := specialChecker(
		day(now.AddDate(0, 0, -2), 10, 0, 1),
		day(now.AddDate(0, 0, -1), 0, 30, 0),
	)
	ok, err := s.Evaluate(context.Background(), PredicateAllRounder, "u1", "g1")
	require.NoError(t, err)
	assert.False(t, ok)

	s = specialChecker(day(now.AddDate(0, 0, -1), 10, 30, 1))
	ok, err = s.Evaluate(context.Background(), PredicateAllRounder, "u1", "g1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSpecialChecker_WeekendWarrior(t *testing.T) {
	// 2026-05-02 is a Saturday.
	saturday := time.Date(2026, time.May, 2, 0, 0, 0, 0, time.UTC)

	var days []*models.DailyActivity
	for week := 0; week < 4; week++ {
		sat := saturday.AddDate(0, 0, -7*week)
		days = append(days, day(sat, 5, 0, 0), day(sat.AddDate(0, 0, 1), 5, 0, 0))
	}

	s := specialChecker(days...)
	ok, err := s.Evaluate(context.Background(), PredicateWeekendWarrior, "u1", "g1")
	require.NoError(t, err)
	assert.True(t, ok)

	// Drop one Sunday: only three full weekends remain.
	s = specialChecker(days[:len(days)-1]...)
	ok, err = s.Evaluate(context.Background(), PredicateWeekendWarrior, "u1", "g1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSpecialChecker_Anniversary(t *testing.T) {
	now := fixedNow()

	s := specialChecker(day(now.AddDate(0, 0, -400), 1, 0, 0), day(now.AddDate(0, 0, -1), 1, 0, 0))
	ok, err := s.Evaluate(context.Background(), PredicateAnniversary, "u1", "g1")
	require.NoError(t, err)
	assert.True(t, ok)

	s = specialChecker(day(now.AddDate(0, 0, -30), 1, 0, 0))
	ok, err = s.Evaluate(context.Background(), PredicateAnniversary, "u1", "g1")
	require.NoError(t, err)
	assert.False(t, ok)

	s = specialChecker()
	ok, err = s.Evaluate(context.Background(), PredicateAnniversary, "u1", "g1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSpecialChecker_UnknownPredicateErrors(t *testing.T) {
	s := specialChecker()
	_, err := s.Evaluate(context.Background(), "full_moon_poster", "u1", "g1")
	assert.Error(t, err)
}
