package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberbot/ember/ember/database/models"
	"github.com/emberbot/ember/ember/database/repositories"
)

type stubStreakRepo struct {
	state *models.StreakState
	err   error
}

func (r *stubStreakRepo) Get(context.Context, string, string) (*models.StreakState, error) {
	return r.state, r.err
}

func (r *stubStreakRepo) Mutate(context.Context, string, string, int, func(*models.StreakState) (bool, error)) (*models.StreakState, error) {
	return nil, errors.New("not implemented")
}

func (r *stubStreakRepo) TopStreaks(context.Context, string, int) ([]*models.StreakState, error) {
	return nil, nil
}

func (r *stubStreakRepo) ResetMonthlyFreezes(context.Context, time.Time, int) (int64, error) {
	return 0, nil
}

type stubActivityRepo struct {
	totals repositories.ActivityTotals
}

func (r *stubActivityRepo) RecordActivity(context.Context, string, string, models.ActivityKind, int64) error {
	return nil
}

func (r *stubActivityRepo) GetDay(context.Context, string, string, time.Time) (*models.DailyActivity, error) {
	return nil, repositories.ErrNotFound
}

func (r *stubActivityRepo) GetRange(context.Context, string, string, time.Time, time.Time) ([]*models.DailyActivity, error) {
	return nil, nil
}

func (r *stubActivityRepo) GetTotals(context.Context, string, string) (repositories.ActivityTotals, error) {
	return r.totals, nil
}

func (r *stubActivityRepo) ActiveSince(context.Context, time.Time) ([]repositories.UserGuild, error) {
	return nil, nil
}

type stubSocialRepo struct {
	stats *models.SocialStats
}

func (r *stubSocialRepo) Increment(context.Context, string, string, int64, int64) error {
	return nil
}

func (r *stubSocialRepo) Get(context.Context, string, string) (*models.SocialStats, error) {
	return r.stats, nil
}

func TestTotalsService_MergesAllStores(t *testing.T) {
	svc := NewTotalsService(
		&stubStreakRepo{state: &models.StreakState{CurrentStreak: 5, LongestStreak: 12, TotalActiveDays: 40}},
		&stubActivityRepo{totals: repositories.ActivityTotals{Messages: 1200, VoiceMinutes: 90, Commands: 33}},
		&stubSocialRepo{stats: &models.SocialStats{ReactionsGiven: 7, ReactionsReceived: 3}},
	)

	stats, err := svc.Stats(context.Background(), "u1", "g1")
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.CurrentStreak)
	assert.Equal(t, int64(12), stats.LongestStreak)
	assert.Equal(t, int64(40), stats.TotalDays)
	assert.Equal(t, int64(1200), stats.Messages)
	assert.Equal(t, int64(90), stats.VoiceMinutes)
	assert.Equal(t, int64(33), stats.Commands)
	assert.Equal(t, int64(7), stats.ReactionsGiven)
	assert.Equal(t, int64(3), stats.ReactionsReceived)
}

func TestTotalsService_MissingStreakRowContributesZeros(t *testing.T) {
	svc := NewTotalsService(
		&stubStreakRepo{err: repositories.ErrNotFound},
		&stubActivityRepo{totals: repositories.ActivityTotals{Messages: 10}},
		&stubSocialRepo{stats: &models.SocialStats{}},
	)

	stats, err := svc.Stats(context.Background(), "u1", "g1")
	require.NoError(t, err)
	assert.Zero(t, stats.CurrentStreak)
	assert.Equal(t, int64(10), stats.Messages)
}

func TestTotalsService_StorageErrorPropagates(t *testing.T) {
	svc := NewTotalsService(
		&stubStreakRepo{err: errors.New("connection reset")},
		&stubActivityRepo{},
		&stubSocialRepo{stats: &models.SocialStats{}},
	)

	_, err := svc.Stats(context.Background(), "u1", "g1")
	assert.Error(t, err)
}
