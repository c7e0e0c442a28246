package rolerewards

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberbot/ember/ember/achievements"
	"github.com/emberbot/ember/ember/database/models"
	"github.com/emberbot/ember/ember/database/repositories"
)

type createdRole struct {
	name  string
	color int
}

// fakeRoleManager is an in-memory RoleManager.
type fakeRoleManager struct {
	nextID  int
	roles   map[string]createdRole
	members map[string][]string
	deleted []string
}

func newFakeRoleManager() *fakeRoleManager {
	return &fakeRoleManager{
		roles:   make(map[string]createdRole),
		members: make(map[string][]string),
	}
}

func (m *fakeRoleManager) CreateRole(_ context.Context, _, name string, color int) (string, error) {
	m.nextID++
	id := fmt.Sprintf("role-%d", m.nextID)
	m.roles[id] = createdRole{name: name, color: color}
	return id, nil
}

func (m *fakeRoleManager) DeleteRole(_ context.Context, _, roleID string) error {
	delete(m.roles, roleID)
	m.deleted = append(m.deleted, roleID)
	return nil
}

func (m *fakeRoleManager) AddMemberRole(_ context.Context, _, userID, roleID string) error {
	m.members[userID] = append(m.members[userID], roleID)
	return nil
}

func (m *fakeRoleManager) RemoveMemberRole(_ context.Context, _, userID, roleID string) error {
	kept := m.members[userID][:0]
	for _, id := range m.members[userID] {
		if id != roleID {
			kept = append(kept, id)
		}
	}
	m.members[userID] = kept
	return nil
}

func (m *fakeRoleManager) RoleExists(_ context.Context, _, roleID string) (bool, error) {
	_, ok := m.roles[roleID]
	return ok, nil
}

// fakeRewardRepo is an in-memory RoleRewardRepository.
type fakeRewardRepo struct {
	configs map[string]*models.RoleRewardConfig
	links   map[string]*models.AchievementRole
}

func newFakeRewardRepo() *fakeRewardRepo {
	return &fakeRewardRepo{
		configs: make(map[string]*models.RoleRewardConfig),
		links:   make(map[string]*models.AchievementRole),
	}
}

func (r *fakeRewardRepo) GetConfig(_ context.Context, guildID string) (*models.RoleRewardConfig, error) {
	if cfg, ok := r.configs[guildID]; ok {
		return cfg, nil
	}
	return models.DefaultRoleRewardConfig(guildID), nil
}

func (r *fakeRewardRepo) UpsertConfig(_ context.Context, cfg *models.RoleRewardConfig) error {
	r.configs[cfg.GuildID] = cfg
	return nil
}

func (r *fakeRewardRepo) GetRoleLink(_ context.Context, guildID, achievementID string) (*models.AchievementRole, error) {
	link, ok := r.links[guildID+"/"+achievementID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return link, nil
}

func (r *fakeRewardRepo) SaveRoleLink(_ context.Context, link *models.AchievementRole) error {
	r.links[link.GuildID+"/"+link.AchievementID] = link
	return nil
}

func (r *fakeRewardRepo) DeleteRoleLink(_ context.Context, guildID, achievementID string) error {
	delete(r.links, guildID+"/"+achievementID)
	return nil
}

func (r *fakeRewardRepo) ListRoleLinks(_ context.Context, guildID string) ([]*models.AchievementRole, error) {
	var out []*models.AchievementRole
	for _, link := range r.links {
		if link.GuildID == guildID {
			out = append(out, link)
		}
	}
	return out, nil
}

// stubAchievementRepo only answers CountAwards; the catalog load path uses
// GetCustomDefinitions and SeedDefinitions as no-ops.
type stubAchievementRepo struct {
	holders map[string]int
}

func (r *stubAchievementRepo) SeedDefinitions(context.Context, []*models.AchievementDefinition) error {
	return nil
}

func (r *stubAchievementRepo) GetCoreDefinitions(context.Context) ([]*models.AchievementDefinition, error) {
	return nil, nil
}

func (r *stubAchievementRepo) GetCustomDefinitions(context.Context, string) ([]*models.AchievementDefinition, error) {
	return nil, nil
}

func (r *stubAchievementRepo) CreateCustomDefinition(context.Context, *models.AchievementDefinition) error {
	return nil
}

func (r *stubAchievementRepo) UpdateCustomDefinition(context.Context, *models.AchievementDefinition) error {
	return nil
}

func (r *stubAchievementRepo) DeleteCustomDefinition(context.Context, string, string) error {
	return nil
}

func (r *stubAchievementRepo) AwardedIDs(context.Context, string, string) (map[string]struct{}, error) {
	return nil, nil
}

func (r *stubAchievementRepo) AwardedList(context.Context, string, string) ([]*models.AwardedAchievement, error) {
	return nil, nil
}

func (r *stubAchievementRepo) InsertAward(context.Context, *models.AwardedAchievement) (bool, error) {
	return true, nil
}

func (r *stubAchievementRepo) DeleteAward(context.Context, string, string, string) error {
	return nil
}

func (r *stubAchievementRepo) HasAward(context.Context, string, string, string) (bool, error) {
	return false, nil
}

func (r *stubAchievementRepo) CountAwards(_ context.Context, _, achievementID string) (int, error) {
	return r.holders[achievementID], nil
}

func testSetup(t *testing.T) (*Reconciler, *fakeRoleManager, *fakeRewardRepo, *stubAchievementRepo) {
	t.Helper()
	roles := newFakeRoleManager()
	rewards := newFakeRewardRepo()
	repo := &stubAchievementRepo{holders: make(map[string]int)}

	catalog := achievements.NewCatalog(repo)
	require.NoError(t, catalog.LoadDefinitions(context.Background()))

	return NewReconciler(roles, rewards, repo, catalog), roles, rewards, repo
}

func TestGrantForAchievement_CreatesRoleAndAssignsIt(t *testing.T) {
	r, roles, rewards, _ := testSetup(t)

	// streak_7 is a role-granting common milestone titled "First Flame".
	err := r.GrantForAchievement(context.Background(), "u1", "g1", "streak_7")
	require.NoError(t, err)

	require.Len(t, roles.roles, 1)
	for _, role := range roles.roles {
		assert.Equal(t, "🔥 First Flame", role.name)
		assert.Equal(t, models.RarityCommon.Color(), role.color)
	}
	require.Len(t, roles.members["u1"], 1)

	link, err := rewards.GetRoleLink(context.Background(), "g1", "streak_7")
	require.NoError(t, err)
	assert.Contains(t, roles.roles, link.RoleID)
}

func TestGrantForAchievement_DisabledConfigDoesNothing(t *testing.T) {
	r, roles, rewards, _ := testSetup(t)

	cfg := models.DefaultRoleRewardConfig("g1")
	cfg.Enabled = false
	rewards.configs["g1"] = cfg

	err := r.GrantForAchievement(context.Background(), "u1", "g1", "streak_7")
	require.NoError(t, err)
	assert.Empty(t, roles.roles)
	assert.Empty(t, roles.members)
}

func TestGrantForAchievement_UnknownAchievement(t *testing.T) {
	r, _, _, _ := testSetup(t)

	err := r.GrantForAchievement(context.Background(), "u1", "g1", "no_such_thing")
	assert.ErrorIs(t, err, achievements.ErrUnknownAchievement)
}

func TestGrantForAchievement_ReusesExistingRole(t *testing.T) {
	r, roles, _, _ := testSetup(t)

	require.NoError(t, r.GrantForAchievement(context.Background(), "u1", "g1", "streak_7"))
	require.NoError(t, r.GrantForAchievement(context.Background(), "u2", "g1", "streak_7"))

	assert.Len(t, roles.roles, 1)
	assert.Len(t, roles.members["u1"], 1)
	assert.Len(t, roles.members["u2"], 1)
}

func TestGrantForAchievement_RecreatesDeletedRole(t *testing.T) {
	r, roles, rewards, _ := testSetup(t)

	// Link points at a role someone deleted on the platform.
	require.NoError(t, rewards.SaveRoleLink(context.Background(), &models.AchievementRole{
		GuildID:       "g1",
		AchievementID: "streak_7",
		RoleID:        "gone-999",
	}))

	require.NoError(t, r.GrantForAchievement(context.Background(), "u1", "g1", "streak_7"))

	link, err := rewards.GetRoleLink(context.Background(), "g1", "streak_7")
	require.NoError(t, err)
	assert.NotEqual(t, "gone-999", link.RoleID)
	assert.Contains(t, roles.roles, link.RoleID)
}

func TestGrantForAchievement_BrandColorPolicy(t *testing.T) {
	r, roles, rewards, _ := testSetup(t)

	cfg := models.DefaultRoleRewardConfig("g1")
	cfg.ColorPolicy = models.ColorPolicyBrand
	rewards.configs["g1"] = cfg

	require.NoError(t, r.GrantForAchievement(context.Background(), "u1", "g1", "streak_7"))

	require.Len(t, roles.roles, 1)
	for _, role := range roles.roles {
		assert.Equal(t, models.DefaultBrandColor, role.color)
	}
}

func TestRevokeForAchievement(t *testing.T) {
	r, roles, _, _ := testSetup(t)

	require.NoError(t, r.GrantForAchievement(context.Background(), "u1", "g1", "streak_7"))
	require.Len(t, roles.members["u1"], 1)

	require.NoError(t, r.RevokeForAchievement(context.Background(), "u1", "g1", "streak_7"))
	assert.Empty(t, roles.members["u1"])

	// No link at all is fine.
	assert.NoError(t, r.RevokeForAchievement(context.Background(), "u1", "g1", "streak_30"))
}

func TestCleanupOrphanedRoles(t *testing.T) {
	r, roles, rewards, repo := testSetup(t)

	require.NoError(t, r.GrantForAchievement(context.Background(), "u1", "g1", "streak_7"))
	require.NoError(t, r.GrantForAchievement(context.Background(), "u1", "g1", "streak_30"))

	// streak_7 still has a holder; streak_30's award was revoked.
	repo.holders["streak_7"] = 1
	repo.holders["streak_30"] = 0

	removed, err := r.CleanupOrphanedRoles(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = rewards.GetRoleLink(context.Background(), "g1", "streak_30")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = rewards.GetRoleLink(context.Background(), "g1", "streak_7")
	assert.NoError(t, err)
	assert.Len(t, roles.deleted, 1)
}

func TestCleanupOrphanedRoles_HonorsAutoCleanupFlag(t *testing.T) {
	r, roles, rewards, repo := testSetup(t)

	require.NoError(t, r.GrantForAchievement(context.Background(), "u1", "g1", "streak_7"))
	repo.holders["streak_7"] = 0

	cfg := models.DefaultRoleRewardConfig("g1")
	cfg.AutoCleanup = false
	rewards.configs["g1"] = cfg

	removed, err := r.CleanupOrphanedRoles(context.Background(), "g1")
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Empty(t, roles.deleted)
}
