package achievements

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberbot/ember/ember/database/models"
)

func TestCatalog_CustomWinsOverCore(t *testing.T) {
	repo := newFakeAchievementRepo()
	repo.customs = []*models.AchievementDefinition{
		{
			AchievementID: "streak_3",
			GuildID:       "g1",
			Title:         "House Rules",
			Category:      models.CategoryCustom,
			Rarity:        models.RarityRare,
			CheckType:     models.CheckTypeThreshold,
			Criteria:      models.CriteriaSpec{Criteria: models.ThresholdCriteria{Stat: models.StatCurrentStreak, Value: 5}},
		},
	}
	catalog := catalogWith(repo, streakDef("streak_3", 3, false))

	def, ok := catalog.ByID("g1", "streak_3")
	require.True(t, ok)
	assert.Equal(t, "House Rules", def.Title)
	assert.True(t, def.IsCustom())

	def, ok = catalog.ByID("g2", "streak_3")
	require.True(t, ok)
	assert.False(t, def.IsCustom())

	_, ok = catalog.ByID("g1", "no_such_thing")
	assert.False(t, ok)
}

func TestCatalog_ForGuildMergesCoreAndCustoms(t *testing.T) {
	repo := newFakeAchievementRepo()
	repo.customs = []*models.AchievementDefinition{
		{AchievementID: "club_regular", GuildID: "g1", Title: "Club Regular"},
		{AchievementID: "other_guild", GuildID: "g2", Title: "Elsewhere"},
	}
	catalog := catalogWith(repo, streakDef("streak_3", 3, false), streakDef("streak_7", 7, false))

	defs := catalog.ForGuild("g1")
	require.Len(t, defs, 3)

	ids := make([]string, 0, len(defs))
	for _, def := range defs {
		ids = append(ids, def.AchievementID)
	}
	assert.Contains(t, ids, "club_regular")
	assert.NotContains(t, ids, "other_guild")

	customs := catalog.CustomForGuild("g1")
	require.Len(t, customs, 1)
	assert.Equal(t, "club_regular", customs[0].AchievementID)
}

func TestCatalog_ByCategoryAndByRarity(t *testing.T) {
	repo := newFakeAchievementRepo()
	rare := streakDef("streak_30", 30, false)
	rare.Rarity = models.RarityRare
	meta := streakDef("meta_2", 2, false)
	meta.Category = models.CategoryMeta
	catalog := catalogWith(repo, streakDef("streak_3", 3, false), rare, meta)

	streaks := catalog.ByCategory(models.CategoryStreak)
	require.Len(t, streaks, 2)
	assert.Empty(t, catalog.ByCategory(models.CategoryVoice))

	rares := catalog.ByRarity(models.RarityRare)
	require.Len(t, rares, 1)
	assert.Equal(t, "streak_30", rares[0].AchievementID)
}

func TestCatalog_CanAwardHonorsSeason(t *testing.T) {
	start := time.Date(2026, time.December, 27, 0, 0, 0, 0, time.UTC)
	end := time.Date(2027, time.January, 8, 0, 0, 0, 0, time.UTC)
	seasonal := streakDef("seasonal_test", 1, false)
	seasonal.SeasonStart, seasonal.SeasonEnd = &start, &end

	repo := newFakeAchievementRepo()
	catalog := catalogWith(repo, seasonal, streakDef("streak_3", 3, false))

	inWindow := time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)
	outside := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, catalog.CanAward("g1", "seasonal_test", inWindow))
	assert.False(t, catalog.CanAward("g1", "seasonal_test", outside))
	assert.True(t, catalog.CanAward("g1", "streak_3", outside))
	assert.False(t, catalog.CanAward("g1", "no_such_thing", inWindow))
}

func TestCatalog_SearchMatchesTitlesAndIDs(t *testing.T) {
	repo := newFakeAchievementRepo()
	kindling := streakDef("streak_3", 3, false)
	kindling.Title = "Kindling"
	flame := streakDef("streak_7", 7, false)
	flame.Title = "First Flame"
	catalog := catalogWith(repo, kindling, flame)

	results := catalog.Search("g1", "kindl", 25)
	require.NotEmpty(t, results)
	assert.Equal(t, "streak_3", results[0].AchievementID)

	results = catalog.Search("g1", "streak_7", 25)
	require.NotEmpty(t, results)
	assert.Equal(t, "streak_7", results[0].AchievementID)

	// Empty query lists everything up to the limit.
	results = catalog.Search("g1", "", 1)
	assert.Len(t, results, 1)
}

func TestCatalog_LoadDefinitionsRefreshesCustoms(t *testing.T) {
	repo := newFakeAchievementRepo()
	catalog := NewCatalog(repo)
	require.NoError(t, catalog.LoadDefinitions(context.Background()))

	_, ok := catalog.ByID("g1", "club_regular")
	assert.False(t, ok)

	repo.customs = []*models.AchievementDefinition{
		{AchievementID: "club_regular", GuildID: "g1", Title: "Club Regular"},
	}
	require.NoError(t, catalog.LoadDefinitions(context.Background()))

	def, ok := catalog.ByID("g1", "club_regular")
	require.True(t, ok)
	assert.Equal(t, "Club Regular", def.Title)

	// Core ids from the seeded set resolve everywhere.
	_, ok = catalog.ByID("g1", "streak_7")
	assert.True(t, ok)
}
