package rolerewards

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/emberbot/ember/ember/achievements"
	"github.com/emberbot/ember/ember/database/models"
	"github.com/emberbot/ember/ember/database/repositories"
	lru "github.com/hashicorp/golang-lru"
)

const roleCacheSize = 512

// RoleManager is the platform role capability the reconciler drives.
// Implemented over the gateway client's REST API; tests use a fake.
type RoleManager interface {
	CreateRole(ctx context.Context, guildID, name string, color int) (roleID string, err error)
	DeleteRole(ctx context.Context, guildID, roleID string) error
	AddMemberRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveMemberRole(ctx context.Context, guildID, userID, roleID string) error
	RoleExists(ctx context.Context, guildID, roleID string) (bool, error)
}

// Reconciler maps role-granting achievements onto actual platform roles:
// lazily creating them, assigning them to earners, and cleaning up roles
// whose achievement no longer has any holders. Role failures never roll
// back the underlying award.
type Reconciler struct {
	roles   RoleManager
	rewards repositories.RoleRewardRepository
	repo    repositories.AchievementRepository
	catalog *achievements.Catalog
	cache   *lru.Cache
}

func NewReconciler(roles RoleManager, rewards repositories.RoleRewardRepository, repo repositories.AchievementRepository, catalog *achievements.Catalog) *Reconciler {
	cache, _ := lru.New(roleCacheSize)
	return &Reconciler{
		roles:   roles,
		rewards: rewards,
		repo:    repo,
		catalog: catalog,
		cache:   cache,
	}
}

func cacheKey(guildID, achievementID string) string {
	return guildID + "/" + achievementID
}

// GrantForAchievement resolves or creates the achievement's role and
// assigns it to the user, honoring the guild's reward config.
func (r *Reconciler) GrantForAchievement(ctx context.Context, userID, guildID, achievementID string) error {
	cfg, err := r.rewards.GetConfig(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to load reward config: %w", err)
	}
	if !cfg.Enabled {
		return nil
	}

	def, ok := r.catalog.ByID(guildID, achievementID)
	if !ok {
		return fmt.Errorf("%q: %w", achievementID, achievements.ErrUnknownAchievement)
	}

	roleID, err := r.resolveRole(ctx, cfg, def)
	if err != nil {
		return err
	}

	if err := r.roles.AddMemberRole(ctx, guildID, userID, roleID); err != nil {
		return fmt.Errorf("failed to assign role %s: %w", roleID, err)
	}

	slog.Info("Reward role assigned",
		slog.String("guild_id", guildID),
		slog.String("user_id", userID),
		slog.String("achievement_id", achievementID),
		slog.String("role_id", roleID))
	return nil
}

// resolveRole finds the linked role, verifying it still exists on the
// platform, and creates it when missing.
func (r *Reconciler) resolveRole(ctx context.Context, cfg *models.RoleRewardConfig, def *models.AchievementDefinition) (string, error) {
	guildID := cfg.GuildID
	key := cacheKey(guildID, def.AchievementID)

	if cached, ok := r.cache.Get(key); ok {
		return cached.(string), nil
	}

	link, err := r.rewards.GetRoleLink(ctx, guildID, def.AchievementID)
	if err == nil {
		exists, checkErr := r.roles.RoleExists(ctx, guildID, link.RoleID)
		if checkErr != nil {
			return "", checkErr
		}
		if exists {
			r.cache.Add(key, link.RoleID)
			return link.RoleID, nil
		}
		// Role was deleted out from under us; recreate below.
		if err := r.rewards.DeleteRoleLink(ctx, guildID, def.AchievementID); err != nil {
			return "", err
		}
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return "", err
	}

	color := models.DefaultBrandColor
	if cfg.ColorPolicy == models.ColorPolicyRarity {
		color = def.Rarity.Color()
	}

	roleID, err := r.roles.CreateRole(ctx, guildID, cfg.RolePrefix+def.Title, color)
	if err != nil {
		return "", fmt.Errorf("failed to create reward role: %w", err)
	}

	if err := r.rewards.SaveRoleLink(ctx, &models.AchievementRole{
		GuildID:       guildID,
		AchievementID: def.AchievementID,
		RoleID:        roleID,
	}); err != nil {
		return "", err
	}

	r.cache.Add(key, roleID)
	return roleID, nil
}

// RevokeForAchievement removes the achievement's role from a user, used
// when an admin revokes an award.
func (r *Reconciler) RevokeForAchievement(ctx context.Context, userID, guildID, achievementID string) error {
	link, err := r.rewards.GetRoleLink(ctx, guildID, achievementID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return err
	}
	return r.roles.RemoveMemberRole(ctx, guildID, userID, link.RoleID)
}

// CleanupOrphanedRoles deletes reward roles whose achievement has no
// remaining holders in the guild. Honors the guild's auto-cleanup flag;
// returns the number of roles removed.
func (r *Reconciler) CleanupOrphanedRoles(ctx context.Context, guildID string) (int, error) {
	cfg, err := r.rewards.GetConfig(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to load reward config: %w", err)
	}
	if !cfg.AutoCleanup {
		return 0, nil
	}

	links, err := r.rewards.ListRoleLinks(ctx, guildID)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, link := range links {
		holders, err := r.repo.CountAwards(ctx, guildID, link.AchievementID)
		if err != nil {
			slog.Error("Orphan check failed",
				slog.String("guild_id", guildID),
				slog.String("achievement_id", link.AchievementID),
				slog.Any("error", err))
			continue
		}
		if holders > 0 {
			continue
		}

		if err := r.roles.DeleteRole(ctx, guildID, link.RoleID); err != nil {
			slog.Error("Failed to delete orphaned role",
				slog.String("guild_id", guildID),
				slog.String("role_id", link.RoleID),
				slog.Any("error", err))
			continue
		}
		if err := r.rewards.DeleteRoleLink(ctx, guildID, link.AchievementID); err != nil {
			slog.Error("Failed to delete role link",
				slog.String("guild_id", guildID),
				slog.String("achievement_id", link.AchievementID),
				slog.Any("error", err))
			continue
		}
		r.cache.Remove(cacheKey(guildID, link.AchievementID))
		removed++
	}

	return removed, nil
}
