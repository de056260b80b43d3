package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/client"
)

type Client struct {
	cli *client.Client
	ctx context.Context
}

// NewClient connects to the daemon named by DOCKER_HOST, or the default
// socket when unset.
func NewClient() (*Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create container runtime client: %w", err)
	}

	return &Client{
		cli: cli,
		ctx: context.Background(),
	}, nil
}

func (c *Client) Close() error {
	return c.cli.Close()
}

func (c *Client) GetContext() context.Context {
	return c.ctx
}

// Ping returns the daemon's API version.
func (c *Client) Ping(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()

	ping, err := c.cli.Ping(ctx)
	if err != nil {
		return "", fmt.Errorf("container runtime not responding: %w", err)
	}
	return ping.APIVersion, nil
}
