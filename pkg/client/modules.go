package client

import (
	"context"
	"fmt"
)

// Modules lists the authenticated user's coaching modules.
func (c *Client) Modules(ctx context.Context) ([]Module, error) {
	var modules []Module
	if err := c.doRequest(ctx, "GET", "/api/modules", nil, &modules); err != nil {
		return nil, err
	}
	return modules, nil
}

// Module fetches one module with its days.
func (c *Client) Module(ctx context.Context, id int64) (*Module, error) {
	var m Module
	if err := c.doRequest(ctx, "GET", fmt.Sprintf("/api/modules/%d", id), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Subscription fetches the authenticated user's subscription.
func (c *Client) Subscription(ctx context.Context) (*Subscription, error) {
	var s Subscription
	if err := c.doRequest(ctx, "GET", "/api/subscription", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
