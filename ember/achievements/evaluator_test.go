package achievements

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberbot/ember/ember/database/models"
)

func testEvaluator(repo *fakeAchievementRepo, catalog *Catalog, stats Stats) (*Evaluator, *recordingGranter, *recordingNotifier) {
	granter := &recordingGranter{}
	notifier := &recordingNotifier{status: NotifyDelivered}
	ev := NewEvaluator(EvaluatorConfig{
		Catalog:  catalog,
		Repo:     repo,
		Rewards:  newFakeRewardRepo(),
		Stats:    fixedStats{stats: stats},
		Roles:    granter,
		Notifier: notifier,
	})
	ev.now = fixedNow
	return ev, granter, notifier
}

func streakDef(id string, days int64, grantRole bool) *models.AchievementDefinition {
	return &models.AchievementDefinition{
		AchievementID: id,
		Title:         id,
		Category:      models.CategoryStreak,
		Rarity:        models.RarityCommon,
		CheckType:     models.CheckTypeExact,
		Criteria:      models.CriteriaSpec{Criteria: models.ExactCriteria{Stat: models.StatCurrentStreak, Value: days}},
		GrantRole:     grantRole,
	}
}

func TestCheckAllAchievements_AwardsSatisfiedRules(t *testing.T) {
	repo := newFakeAchievementRepo()
	catalog := catalogWith(repo,
		streakDef("streak_3", 3, false),
		streakDef("streak_7", 7, false),
	)
	ev, _, _ := testEvaluator(repo, catalog, Stats{CurrentStreak: 5})

	awarded, err := ev.CheckAllAchievements(context.Background(), "u1", "g1")
	require.NoError(t, err)

	require.Len(t, awarded, 1)
	assert.Equal(t, "streak_3", awarded[0].AchievementID)

	has, err := repo.HasAward(context.Background(), "u1", "g1", "streak_3")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestCheckAllAchievements_ExactMilestoneCountsWhenPassed(t *testing.T) {
	// A check cycle landing past the milestone must still award it.
	repo := newFakeAchievementRepo()
	catalog := catalogWith(repo, streakDef("streak_7", 7, false))
	ev, _, _ := testEvaluator(repo, catalog, Stats{CurrentStreak: 40})

	awarded, err := ev.CheckAllAchievements(context.Background(), "u1", "g1")
	require.NoError(t, err)
	require.Len(t, awarded, 1)
	assert.Equal(t, "streak_7", awarded[0].AchievementID)
}

func TestCheckAllAchievements_AlreadyAwardedIsSkipped(t *testing.T) {
	repo := newFakeAchievementRepo()
	catalog := catalogWith(repo, streakDef("streak_3", 3, false))
	ev, _, _ := testEvaluator(repo, catalog, Stats{CurrentStreak: 5})

	first, err := ev.CheckAllAchievements(context.Background(), "u1", "g1")
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := ev.CheckAllAchievements(context.Background(), "u1", "g1")
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestCheckAllAchievements_ComboNeedsEveryLeg(t *testing.T) {
	combo := &models.AchievementDefinition{
		AchievementID: "combo_test",
		Title:         "combo_test",
		Category:      models.CategoryCombo,
		Rarity:        models.RarityRare,
		CheckType:     models.CheckTypeCombo,
		Criteria: models.CriteriaSpec{Criteria: models.ComboCriteria{Parts: []models.StatThreshold{
			{Stat: models.StatMessages, Value: 1000},
			{Stat: models.StatTotalDays, Value: 30},
		}}},
	}

	repo := newFakeAchievementRepo()
	catalog := catalogWith(repo, combo)

	// Messages over, days under.
	ev, _, _ := testEvaluator(repo, catalog, Stats{Messages: 5000, TotalDays: 10})
	awarded, err := ev.CheckAllAchievements(context.Background(), "u1", "g1")
	require.NoError(t, err)
	assert.Empty(t, awarded)

	ev, _, _ = testEvaluator(repo, catalog, Stats{Messages: 1000, TotalDays: 30})
	awarded, err = ev.CheckAllAchievements(context.Background(), "u1", "g1")
	require.NoError(t, err)
	require.Len(t, awarded, 1)
}

func TestCheckAllAchievements_MetaCountsNonMetaOnly(t *testing.T) {
	meta := &models.AchievementDefinition{
		AchievementID: "meta_2",
		Title:         "meta_2",
		Category:      models.CategoryMeta,
		Rarity:        models.RarityCommon,
		CheckType:     models.CheckTypeMeta,
		Criteria:      models.CriteriaSpec{Criteria: models.MetaCriteria{Count: 2}},
	}
	otherMeta := &models.AchievementDefinition{
		AchievementID: "meta_1",
		Title:         "meta_1",
		Category:      models.CategoryMeta,
		Rarity:        models.RarityCommon,
		CheckType:     models.CheckTypeMeta,
		Criteria:      models.CriteriaSpec{Criteria: models.MetaCriteria{Count: 1}},
	}

	repo := newFakeAchievementRepo()
	catalog := catalogWith(repo, streakDef("streak_3", 3, false), streakDef("streak_7", 7, false), otherMeta, meta)

	// One non-meta and one meta already held. Only the non-meta one counts,
	// so meta_2 must stay locked.
	repo.awards[awardKey("u1", "g1", "streak_3")] = &models.AwardedAchievement{UserID: "u1", GuildID: "g1", AchievementID: "streak_3"}
	repo.awards[awardKey("u1", "g1", "meta_1")] = &models.AwardedAchievement{UserID: "u1", GuildID: "g1", AchievementID: "meta_1"}

	ev, _, _ := testEvaluator(repo, catalog, Stats{})
	awarded, err := ev.CheckAllAchievements(context.Background(), "u1", "g1")
	require.NoError(t, err)
	assert.Empty(t, awarded)

	// A second non-meta award unlocks it.
	repo.awards[awardKey("u1", "g1", "streak_7")] = &models.AwardedAchievement{UserID: "u1", GuildID: "g1", AchievementID: "streak_7"}

	awarded, err = ev.CheckAllAchievements(context.Background(), "u1", "g1")
	require.NoError(t, err)
	require.Len(t, awarded, 1)
	assert.Equal(t, "meta_2", awarded[0].AchievementID)
}

func TestCheckAllAchievements_SeasonalOutsideWindowIsSkipped(t *testing.T) {
	start := fixedNow().AddDate(0, 1, 0)
	end := start.AddDate(0, 0, 14)
	seasonal := streakDef("seasonal_test", 1, false)
	seasonal.SeasonStart, seasonal.SeasonEnd = &start, &end

	repo := newFakeAchievementRepo()
	catalog := catalogWith(repo, seasonal)
	ev, _, _ := testEvaluator(repo, catalog, Stats{CurrentStreak: 100})

	awarded, err := ev.CheckAllAchievements(context.Background(), "u1", "g1")
	require.NoError(t, err)
	assert.Empty(t, awarded)
}

func TestCheckAllAchievements_LostInsertRaceIsNotReported(t *testing.T) {
	repo := newFakeAchievementRepo()
	repo.rejectAward = true
	catalog := catalogWith(repo, streakDef("streak_3", 3, false))
	ev, granter, notifier := testEvaluator(repo, catalog, Stats{CurrentStreak: 5})

	awarded, err := ev.CheckAllAchievements(context.Background(), "u1", "g1")
	require.NoError(t, err)
	assert.Empty(t, awarded)
	assert.Empty(t, granter.granted)
	assert.Empty(t, notifier.notified)
}

func TestCheckAllAchievements_RoleGrantAndDMFollowAward(t *testing.T) {
	repo := newFakeAchievementRepo()
	catalog := catalogWith(repo, streakDef("streak_7", 7, true))
	ev, granter, notifier := testEvaluator(repo, catalog, Stats{CurrentStreak: 7})

	awarded, err := ev.CheckAllAchievements(context.Background(), "u1", "g1")
	require.NoError(t, err)
	require.Len(t, awarded, 1)

	assert.Equal(t, []string{"streak_7"}, granter.granted)
	assert.Equal(t, []string{"streak_7"}, notifier.notified)
}

func TestCheckAllAchievements_NoDMWhenGuildDisabledIt(t *testing.T) {
	repo := newFakeAchievementRepo()
	catalog := catalogWith(repo, streakDef("streak_3", 3, false))

	rewards := newFakeRewardRepo()
	cfg := models.DefaultRoleRewardConfig("g1")
	cfg.DMOnEarn = false
	rewards.configs["g1"] = cfg

	notifier := &recordingNotifier{status: NotifyDelivered}
	ev := NewEvaluator(EvaluatorConfig{
		Catalog:  catalog,
		Repo:     repo,
		Rewards:  rewards,
		Stats:    fixedStats{stats: Stats{CurrentStreak: 5}},
		Notifier: notifier,
	})
	ev.now = fixedNow

	awarded, err := ev.CheckAllAchievements(context.Background(), "u1", "g1")
	require.NoError(t, err)
	require.Len(t, awarded, 1)
	assert.Empty(t, notifier.notified)
}

func TestAwardManually(t *testing.T) {
	past := fixedNow().AddDate(-1, 0, 0)
	pastEnd := past.AddDate(0, 0, 14)
	expired := streakDef("seasonal_gone", 1, false)
	expired.SeasonStart, expired.SeasonEnd = &past, &pastEnd

	repo := newFakeAchievementRepo()
	catalog := catalogWith(repo, streakDef("streak_3", 3, false), expired)
	ev, _, _ := testEvaluator(repo, catalog, Stats{})

	t.Run("unknown id", func(t *testing.T) {
		_, err := ev.AwardManually(context.Background(), "u1", "g1", "no_such_thing", "admin")
		assert.ErrorIs(t, err, ErrUnknownAchievement)
	})

	t.Run("out of season", func(t *testing.T) {
		_, err := ev.AwardManually(context.Background(), "u1", "g1", "seasonal_gone", "admin")
		assert.ErrorIs(t, err, ErrOutOfSeason)
	})

	t.Run("success records the admin", func(t *testing.T) {
		def, err := ev.AwardManually(context.Background(), "u1", "g1", "streak_3", "admin")
		require.NoError(t, err)
		assert.Equal(t, "streak_3", def.AchievementID)

		award := repo.awards[awardKey("u1", "g1", "streak_3")]
		require.NotNil(t, award)
		require.NotNil(t, award.AwardedBy)
		assert.Equal(t, "admin", *award.AwardedBy)
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := ev.AwardManually(context.Background(), "u1", "g1", "streak_3", "admin")
		assert.ErrorIs(t, err, ErrAlreadyAwarded)
	})
}

func TestRemoveAward(t *testing.T) {
	repo := newFakeAchievementRepo()
	catalog := catalogWith(repo, streakDef("streak_3", 3, false))
	ev, _, _ := testEvaluator(repo, catalog, Stats{})

	_, err := ev.AwardManually(context.Background(), "u1", "g1", "streak_3", "admin")
	require.NoError(t, err)

	require.NoError(t, ev.RemoveAward(context.Background(), "u1", "g1", "streak_3"))

	has, err := ev.HasAchievement(context.Background(), "u1", "g1", "streak_3")
	require.NoError(t, err)
	assert.False(t, has)

	err = ev.RemoveAward(context.Background(), "u1", "g1", "streak_3")
	assert.ErrorIs(t, err, ErrUnknownAchievement)
}
