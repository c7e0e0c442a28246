package achievements

import (
	"context"
	"fmt"
	"time"

	"github.com/emberbot/ember/ember/database/models"
	"github.com/emberbot/ember/ember/database/repositories"
)

// fakeAchievementRepo is an in-memory AchievementRepository for tests.
type fakeAchievementRepo struct {
	customs     []*models.AchievementDefinition
	awards      map[string]*models.AwardedAchievement
	rejectAward bool
}

func newFakeAchievementRepo() *fakeAchievementRepo {
	return &fakeAchievementRepo{awards: make(map[string]*models.AwardedAchievement)}
}

func awardKey(userID, guildID, achievementID string) string {
	return userID + "/" + guildID + "/" + achievementID
}

func (r *fakeAchievementRepo) SeedDefinitions(context.Context, []*models.AchievementDefinition) error {
	return nil
}

func (r *fakeAchievementRepo) GetCoreDefinitions(context.Context) ([]*models.AchievementDefinition, error) {
	return nil, nil
}

func (r *fakeAchievementRepo) GetCustomDefinitions(_ context.Context, guildID string) ([]*models.AchievementDefinition, error) {
	if guildID == "" {
		return r.customs, nil
	}
	var out []*models.AchievementDefinition
	for _, def := range r.customs {
		if def.GuildID == guildID {
			out = append(out, def)
		}
	}
	return out, nil
}

func (r *fakeAchievementRepo) CreateCustomDefinition(_ context.Context, def *models.AchievementDefinition) error {
	for _, existing := range r.customs {
		if existing.GuildID == def.GuildID && existing.AchievementID == def.AchievementID {
			return repositories.ErrAlreadyExists
		}
	}
	r.customs = append(r.customs, def)
	return nil
}

func (r *fakeAchievementRepo) UpdateCustomDefinition(_ context.Context, def *models.AchievementDefinition) error {
	for i, existing := range r.customs {
		if existing.GuildID == def.GuildID && existing.AchievementID == def.AchievementID {
			r.customs[i] = def
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeAchievementRepo) DeleteCustomDefinition(_ context.Context, guildID, achievementID string) error {
	for i, existing := range r.customs {
		if existing.GuildID == guildID && existing.AchievementID == achievementID {
			r.customs = append(r.customs[:i], r.customs[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeAchievementRepo) AwardedIDs(_ context.Context, userID, guildID string) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	for _, award := range r.awards {
		if award.UserID == userID && award.GuildID == guildID {
			set[award.AchievementID] = struct{}{}
		}
	}
	return set, nil
}

func (r *fakeAchievementRepo) AwardedList(_ context.Context, userID, guildID string) ([]*models.AwardedAchievement, error) {
	var out []*models.AwardedAchievement
	for _, award := range r.awards {
		if award.UserID == userID && award.GuildID == guildID {
			out = append(out, award)
		}
	}
	return out, nil
}

func (r *fakeAchievementRepo) InsertAward(_ context.Context, award *models.AwardedAchievement) (bool, error) {
	if r.rejectAward {
		return false, nil
	}
	key := awardKey(award.UserID, award.GuildID, award.AchievementID)
	if _, ok := r.awards[key]; ok {
		return false, nil
	}
	r.awards[key] = award
	return true, nil
}

func (r *fakeAchievementRepo) DeleteAward(_ context.Context, userID, guildID, achievementID string) error {
	key := awardKey(userID, guildID, achievementID)
	if _, ok := r.awards[key]; !ok {
		return fmt.Errorf("award %q: %w", achievementID, repositories.ErrNotFound)
	}
	delete(r.awards, key)
	return nil
}

func (r *fakeAchievementRepo) HasAward(_ context.Context, userID, guildID, achievementID string) (bool, error) {
	_, ok := r.awards[awardKey(userID, guildID, achievementID)]
	return ok, nil
}

func (r *fakeAchievementRepo) CountAwards(_ context.Context, guildID, achievementID string) (int, error) {
	count := 0
	for _, award := range r.awards {
		if award.GuildID == guildID && award.AchievementID == achievementID {
			count++
		}
	}
	return count, nil
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

// fixedStats returns the same snapshot for every user.
type fixedStats struct {
	stats Stats
}

func (s fixedStats) Stats(context.Context, string, string) (Stats, error) {
	return s.stats, nil
}

// recordingGranter captures role grant requests.
type recordingGranter struct {
	granted []string
}

func (g *recordingGranter) GrantForAchievement(_ context.Context, _, _, achievementID string) error {
	g.granted = append(g.granted, achievementID)
	return nil
}

// recordingNotifier captures DM attempts.
type recordingNotifier struct {
	notified []string
	status   NotifyStatus
}

func (n *recordingNotifier) NotifyAchievement(_ context.Context, _ string, def *models.AchievementDefinition) NotifyStatus {
	n.notified = append(n.notified, def.AchievementID)
	return n.status
}

// catalogWith builds an indexed catalog from explicit core and custom
// definitions, bypassing storage.
func catalogWith(repo *fakeAchievementRepo, core ...*models.AchievementDefinition) *Catalog {
	c := NewCatalog(repo)
	c.core = core
	for _, def := range core {
		c.coreByID[def.AchievementID] = def
		c.byCategory[def.Category] = append(c.byCategory[def.Category], def)
		c.byRarity[def.Rarity] = append(c.byRarity[def.Rarity], def)
	}
	for _, def := range repo.customs {
		c.customByGuild[def.GuildID] = append(c.customByGuild[def.GuildID], def)
		c.customByKey[customKey(def.GuildID, def.AchievementID)] = def
	}
	return c
}

func fixedNow() time.Time {
	return time.Date(2026, time.May, 10, 15, 0, 0, 0, time.UTC)
}
