package rolerewards

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

// DisgoRoleManager is the production RoleManager over the gateway client's
// REST API.
type DisgoRoleManager struct {
	client bot.Client
}

func NewDisgoRoleManager(client bot.Client) *DisgoRoleManager {
	return &DisgoRoleManager{client: client}
}

func (m *DisgoRoleManager) CreateRole(ctx context.Context, guildID, name string, color int) (string, error) {
	gid, err := snowflake.Parse(guildID)
	if err != nil {
		return "", fmt.Errorf("invalid guild id %q: %w", guildID, err)
	}

	role, err := m.client.Rest().CreateRole(gid, discord.RoleCreate{
		Name:  name,
		Color: color,
	}, rest.WithCtx(ctx))
	if err != nil {
		return "", err
	}
	return role.ID.String(), nil
}

func (m *DisgoRoleManager) DeleteRole(ctx context.Context, guildID, roleID string) error {
	gid, rid, err := parsePair(guildID, roleID)
	if err != nil {
		return err
	}
	return m.client.Rest().DeleteRole(gid, rid, rest.WithCtx(ctx))
}

func (m *DisgoRoleManager) AddMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	gid, rid, err := parsePair(guildID, roleID)
	if err != nil {
		return err
	}
	uid, err := snowflake.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	return m.client.Rest().AddMemberRole(gid, uid, rid, rest.WithCtx(ctx))
}

func (m *DisgoRoleManager) RemoveMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	gid, rid, err := parsePair(guildID, roleID)
	if err != nil {
		return err
	}
	uid, err := snowflake.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	return m.client.Rest().RemoveMemberRole(gid, uid, rid, rest.WithCtx(ctx))
}

func (m *DisgoRoleManager) RoleExists(ctx context.Context, guildID, roleID string) (bool, error) {
	gid, rid, err := parsePair(guildID, roleID)
	if err != nil {
		return false, err
	}

	roles, err := m.client.Rest().GetRoles(gid, rest.WithCtx(ctx))
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		if role.ID == rid {
			return true, nil
		}
	}
	return false, nil
}

func parsePair(guildID, roleID string) (snowflake.ID, snowflake.ID, error) {
	gid, err := snowflake.Parse(guildID)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid guild id %q: %w", guildID, err)
	}
	rid, err := snowflake.Parse(roleID)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid role id %q: %w", roleID, err)
	}
	return gid, rid, nil
}
