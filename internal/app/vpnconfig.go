package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samvad-hq/fleetctl/internal/domain"
	"github.com/samvad-hq/fleetctl/pkg/fleet"
)

// robotNamePrefix is carried by every robot name in the fleet.
const robotNamePrefix = "BAR"

var (
	// ErrRobotNotFound is returned when no robot carries the requested name.
	ErrRobotNotFound = errors.New("robot not found")
	// ErrVPNConfigNotFound is returned when no VPN profile matches the robot's organization.
	ErrVPNConfigNotFound = errors.New("vpn config not found")
)

// NormalizeRobotName turns user input like `"bar123"` or `123` into BAR123.
func NormalizeRobotName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, `"`, ""))
	name = strings.ReplaceAll(name, "bar", robotNamePrefix)
	if !strings.Contains(name, robotNamePrefix) {
		name = robotNamePrefix + name
	}
	return name
}

// ResolveVPNConfig finds the VPN profile for the named robot. It walks
// robot -> store -> organization and matches the organization slug against
// the file names in the VPN config directory.
func (c *Commander) ResolveVPNConfig(ctx context.Context, robotName string) (string, error) {
	name := NormalizeRobotName(robotName)

	robot, err := c.findRobot(ctx, name)
	if err != nil {
		return "", err
	}

	var store domain.Store
	if err := c.fetch(ctx, &store, c.client.GetStore, robot.StoreID.String()); err != nil {
		return "", fmt.Errorf("store for robot %s: %w", name, err)
	}

	var org domain.Organization
	if err := c.fetch(ctx, &org, c.client.GetOrganization, store.OrganizationID.String()); err != nil {
		return "", fmt.Errorf("organization for store %s: %w", store.ID, err)
	}
	if org.Slug == "" {
		return "", fmt.Errorf("organization %s has no slug: %w", org.ID, ErrVPNConfigNotFound)
	}

	path, err := c.matchVPNConfig(org.Slug)
	if err != nil {
		return "", err
	}
	c.log.InfoObj("vpn config resolved", "vpn_config", map[string]any{
		"robot":        name,
		"organization": org.Slug,
		"path":         path,
	})
	return path, nil
}

func (c *Commander) findRobot(ctx context.Context, name string) (domain.Robot, error) {
	resp, err := c.client.ListRobots(ctx)
	if err != nil {
		return domain.Robot{}, fmt.Errorf("list robots: %w", err)
	}
	if err := resp.Err(); err != nil {
		return domain.Robot{}, fmt.Errorf("list robots: %w", err)
	}
	var robots []domain.Robot
	if err := resp.DecodeJSON(&robots); err != nil {
		return domain.Robot{}, fmt.Errorf("list robots: %w", err)
	}
	for _, r := range robots {
		if r.Name == name {
			return r, nil
		}
	}
	return domain.Robot{}, fmt.Errorf("%w: %s", ErrRobotNotFound, name)
}

type getFunc func(ctx context.Context, id any) (*fleet.Response, error)

// fetch runs get and decodes a 2xx body into v.
func (c *Commander) fetch(ctx context.Context, v any, get getFunc, id string) error {
	resp, err := get(ctx, id)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	return resp.DecodeJSON(v)
}

// matchVPNConfig returns the first file, in lexical order, whose name
// contains slug. Only the base name is compared, and later matches never
// replace an earlier one.
func (c *Commander) matchVPNConfig(slug string) (string, error) {
	if c.vpnDir == "" {
		return "", fmt.Errorf("vpn config directory not configured: %w", ErrVPNConfigNotFound)
	}
	paths, err := filepath.Glob(filepath.Join(c.vpnDir, "*"))
	if err != nil {
		return "", fmt.Errorf("scan vpn configs: %w", err)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if strings.Contains(filepath.Base(p), slug) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: organization %s in %s", ErrVPNConfigNotFound, slug, c.vpnDir)
}
