package fleet

import "context"

// Resource collections exposed by the API.
const (
	pathOrganizations  = "organizations"
	pathStores         = "stores"
	pathRobots         = "robots"
	pathPlayExecutions = "play_executions"
	pathCommands       = "commands"
)

// ListOrganizations fetches GET organizations.
func (c *Client) ListOrganizations(ctx context.Context) (*Response, error) {
	return c.get(ctx, pathOrganizations)
}

// GetOrganization fetches GET organizations/{id}.
func (c *Client) GetOrganization(ctx context.Context, id any) (*Response, error) {
	return c.get(ctx, pathOrganizations, id)
}

// ListStores fetches GET stores.
func (c *Client) ListStores(ctx context.Context) (*Response, error) {
	return c.get(ctx, pathStores)
}

// GetStore fetches GET stores/{id}.
func (c *Client) GetStore(ctx context.Context, id any) (*Response, error) {
	return c.get(ctx, pathStores, id)
}

// ListRobots fetches GET robots.
func (c *Client) ListRobots(ctx context.Context) (*Response, error) {
	return c.get(ctx, pathRobots)
}

// GetRobot fetches GET robots/{id}.
func (c *Client) GetRobot(ctx context.Context, id any) (*Response, error) {
	return c.get(ctx, pathRobots, id)
}

// GetPlayExecution fetches GET play_executions/{id}.
func (c *Client) GetPlayExecution(ctx context.Context, id any) (*Response, error) {
	return c.get(ctx, pathPlayExecutions, id)
}
