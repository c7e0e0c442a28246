package achievements

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/emberbot/ember/ember/database/models"
	"github.com/emberbot/ember/ember/database/repositories"
	"github.com/sahilm/fuzzy"
)

// Catalog is the explicitly-owned in-memory index over achievement
// definitions. It is constructed once, injected wherever definitions are
// needed, and refreshed by calling LoadDefinitions again; it is never a
// package-level singleton.
type Catalog struct {
	repo repositories.AchievementRepository

	mu            sync.RWMutex
	core          []*models.AchievementDefinition
	coreByID      map[string]*models.AchievementDefinition
	byCategory    map[string][]*models.AchievementDefinition
	byRarity      map[models.Rarity][]*models.AchievementDefinition
	customByGuild map[string][]*models.AchievementDefinition
	customByKey   map[string]*models.AchievementDefinition
}

func NewCatalog(repo repositories.AchievementRepository) *Catalog {
	return &Catalog{
		repo:          repo,
		coreByID:      make(map[string]*models.AchievementDefinition),
		byCategory:    make(map[string][]*models.AchievementDefinition),
		byRarity:      make(map[models.Rarity][]*models.AchievementDefinition),
		customByGuild: make(map[string][]*models.AchievementDefinition),
		customByKey:   make(map[string]*models.AchievementDefinition),
	}
}

// LoadDefinitions seeds the core catalog into storage and rebuilds every
// index, re-fetching guild customs. Idempotent and safe to call repeatedly;
// the scheduler calls it periodically to pick up custom changes and
// seasonal transitions.
func (c *Catalog) LoadDefinitions(ctx context.Context) error {
	core := CoreDefinitions()
	if err := c.repo.SeedDefinitions(ctx, core); err != nil {
		return fmt.Errorf("failed to seed core achievements: %w", err)
	}

	customs, err := c.repo.GetCustomDefinitions(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to load custom achievements: %w", err)
	}

	coreByID := make(map[string]*models.AchievementDefinition, len(core))
	byCategory := make(map[string][]*models.AchievementDefinition)
	byRarity := make(map[models.Rarity][]*models.AchievementDefinition)
	for _, def := range core {
		coreByID[def.AchievementID] = def
		byCategory[def.Category] = append(byCategory[def.Category], def)
		byRarity[def.Rarity] = append(byRarity[def.Rarity], def)
	}

	customByGuild := make(map[string][]*models.AchievementDefinition)
	customByKey := make(map[string]*models.AchievementDefinition)
	for _, def := range customs {
		customByGuild[def.GuildID] = append(customByGuild[def.GuildID], def)
		customByKey[customKey(def.GuildID, def.AchievementID)] = def
	}

	c.mu.Lock()
	c.core = core
	c.coreByID = coreByID
	c.byCategory = byCategory
	c.byRarity = byRarity
	c.customByGuild = customByGuild
	c.customByKey = customByKey
	c.mu.Unlock()
	return nil
}

func customKey(guildID, achievementID string) string {
	return guildID + "/" + achievementID
}

// ByID resolves an achievement id for a guild: the guild's custom
// definition wins over a core one with the same id.
func (c *Catalog) ByID(guildID, achievementID string) (*models.AchievementDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if def, ok := c.customByKey[customKey(guildID, achievementID)]; ok {
		return def, true
	}
	def, ok := c.coreByID[achievementID]
	return def, ok
}

// ByCategory returns core definitions in a category.
func (c *Catalog) ByCategory(category string) []*models.AchievementDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*models.AchievementDefinition(nil), c.byCategory[category]...)
}

// ByRarity returns core definitions of a rarity.
func (c *Catalog) ByRarity(rarity models.Rarity) []*models.AchievementDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*models.AchievementDefinition(nil), c.byRarity[rarity]...)
}

// CustomForGuild returns a guild's own definitions.
func (c *Catalog) CustomForGuild(guildID string) []*models.AchievementDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*models.AchievementDefinition(nil), c.customByGuild[guildID]...)
}

// ForGuild returns everything awardable in a guild: the core catalog plus
// the guild's customs. This is the set the evaluator iterates.
func (c *Catalog) ForGuild(guildID string) []*models.AchievementDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*models.AchievementDefinition, 0, len(c.core)+len(c.customByGuild[guildID]))
	out = append(out, c.core...)
	out = append(out, c.customByGuild[guildID]...)
	return out
}

// CanAward reports whether the definition may be awarded at the given time.
// Seasonal achievements are only awardable inside their window, for manual
// grants and automatic evaluation alike.
func (c *Catalog) CanAward(guildID, achievementID string, now time.Time) bool {
	def, ok := c.ByID(guildID, achievementID)
	if !ok {
		return false
	}
	return def.InSeason(now)
}

type searchSource []*models.AchievementDefinition

func (s searchSource) String(i int) string {
	return s[i].Title + " " + s[i].AchievementID
}

func (s searchSource) Len() int { return len(s) }

// Search fuzzy-matches titles and ids over the guild's awardable set,
// sorted by match quality.
func (c *Catalog) Search(guildID, query string, limit int) []*models.AchievementDefinition {
	defs := c.ForGuild(guildID)
	if query == "" {
		sort.Slice(defs, func(i, j int) bool { return defs[i].AchievementID < defs[j].AchievementID })
		if len(defs) > limit {
			defs = defs[:limit]
		}
		return defs
	}

	matches := fuzzy.FindFrom(query, searchSource(defs))
	out := make([]*models.AchievementDefinition, 0, limit)
	for _, m := range matches {
		out = append(out, defs[m.Index])
		if len(out) >= limit {
			break
		}
	}
	return out
}
