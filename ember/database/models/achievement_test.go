package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInSeason(t *testing.T) {
	start := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.November, 2, 0, 0, 0, 0, time.UTC)

	evergreen := &AchievementDefinition{AchievementID: "msg_100"}
	seasonal := &AchievementDefinition{AchievementID: "spooky", SeasonStart: &start, SeasonEnd: &end}

	assert.True(t, evergreen.InSeason(time.Date(2031, time.January, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, evergreen.Seasonal())

	assert.True(t, seasonal.Seasonal())
	assert.False(t, seasonal.InSeason(start.AddDate(0, 0, -1)))
	assert.True(t, seasonal.InSeason(start.AddDate(0, 0, 10)))
	assert.False(t, seasonal.InSeason(end.AddDate(0, 0, 1)))
}

func TestDaysBetween_IgnoresTimeOfDay(t *testing.T) {
	lateNight := time.Date(2026, time.March, 1, 23, 59, 0, 0, time.UTC)
	earlyMorning := time.Date(2026, time.March, 2, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, 1, DaysBetween(lateNight, earlyMorning))
	assert.Equal(t, 0, DaysBetween(earlyMorning, earlyMorning))
	assert.Equal(t, -1, DaysBetween(earlyMorning, lateNight))
}

func TestRarityOrdering(t *testing.T) {
	assert.Less(t, RarityCommon.Ord(), RarityRare.Ord())
	assert.Less(t, RarityLegendary.Ord(), RarityMythic.Ord())
	assert.Equal(t, -1, Rarity("plastic").Ord())
}
