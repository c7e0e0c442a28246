package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberbot/ember/ember/database/models"
	"github.com/emberbot/ember/ember/database/repositories"
)

type recordedActivity struct {
	kind   models.ActivityKind
	amount int64
}

type recordingActivityRepo struct {
	recorded []recordedActivity
}

func (r *recordingActivityRepo) RecordActivity(_ context.Context, _, _ string, kind models.ActivityKind, amount int64) error {
	r.recorded = append(r.recorded, recordedActivity{kind: kind, amount: amount})
	return nil
}

func (r *recordingActivityRepo) GetDay(context.Context, string, string, time.Time) (*models.DailyActivity, error) {
	return nil, repositories.ErrNotFound
}

func (r *recordingActivityRepo) GetRange(context.Context, string, string, time.Time, time.Time) ([]*models.DailyActivity, error) {
	return nil, nil
}

func (r *recordingActivityRepo) GetTotals(context.Context, string, string) (repositories.ActivityTotals, error) {
	return repositories.ActivityTotals{}, nil
}

func (r *recordingActivityRepo) ActiveSince(context.Context, time.Time) ([]repositories.UserGuild, error) {
	return nil, nil
}

func feedAt(activities *recordingActivityRepo, start time.Time) *ActivityFeed {
	f := NewActivityFeed(activities, nil, nil, nil, time.Hour, time.Hour)
	f.now = func() time.Time { return start }
	return f
}

func TestDebounce_SuppressesWithinWindow(t *testing.T) {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	f := feedAt(nil, base)

	assert.False(t, f.debounced(f.touchSeen, "u1", "g1", time.Minute))
	assert.True(t, f.debounced(f.touchSeen, "u1", "g1", time.Minute))

	// Another pair is tracked independently.
	assert.False(t, f.debounced(f.touchSeen, "u2", "g1", time.Minute))
	assert.False(t, f.debounced(f.touchSeen, "u1", "g2", time.Minute))

	f.now = func() time.Time { return base.Add(2 * time.Minute) }
	assert.False(t, f.debounced(f.touchSeen, "u1", "g1", time.Minute))
}

func TestVoiceLeave_CreditsWholeMinutes(t *testing.T) {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	activities := &recordingActivityRepo{}
	f := feedAt(activities, base)

	f.VoiceJoin("u1", "g1")
	// Suppress the streak touch; only minute crediting is under test.
	f.debounced(f.touchSeen, "u1", "g1", time.Hour)

	f.now = func() time.Time { return base.Add(5*time.Minute + 30*time.Second) }
	f.VoiceLeave(context.Background(), "u1", "g1")

	require.Len(t, activities.recorded, 1)
	assert.Equal(t, models.ActivityKindVoiceMinutes, activities.recorded[0].kind)
	assert.Equal(t, int64(5), activities.recorded[0].amount)
}

func TestVoiceLeave_SubMinuteSessionCreditsNothing(t *testing.T) {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	activities := &recordingActivityRepo{}
	f := feedAt(activities, base)

	f.VoiceJoin("u1", "g1")
	f.debounced(f.touchSeen, "u1", "g1", time.Hour)

	f.now = func() time.Time { return base.Add(30 * time.Second) }
	f.VoiceLeave(context.Background(), "u1", "g1")

	assert.Empty(t, activities.recorded)
}

func TestVoiceJoin_DoesNotRestartOpenSession(t *testing.T) {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	activities := &recordingActivityRepo{}
	f := feedAt(activities, base)

	f.VoiceJoin("u1", "g1")
	f.debounced(f.touchSeen, "u1", "g1", time.Hour)

	// A second join two minutes in (e.g. a channel move) keeps the clock.
	f.now = func() time.Time { return base.Add(2 * time.Minute) }
	f.VoiceJoin("u1", "g1")

	f.now = func() time.Time { return base.Add(5 * time.Minute) }
	f.VoiceLeave(context.Background(), "u1", "g1")

	require.Len(t, activities.recorded, 1)
	assert.Equal(t, int64(5), activities.recorded[0].amount)
}

func TestVoiceLeave_WithoutSessionIsIgnored(t *testing.T) {
	activities := &recordingActivityRepo{}
	f := feedAt(activities, time.Now())

	f.VoiceLeave(context.Background(), "u1", "g1")
	assert.Empty(t, activities.recorded)
}
