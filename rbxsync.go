// Package rbxsync synchronizes declaratively configured Roblox monetization
// resources (game passes, developer products, badges) with the live
// platform, tracks what it pushed in a per-project ledger, and deduplicates
// icon uploads by content hash.
package rbxsync

import (
	"context"
	"fmt"

	"github.com/rbxsync/rbxsync/internal/roblox"
	"github.com/rbxsync/rbxsync/pkg/cloud"
	"github.com/rbxsync/rbxsync/pkg/config"
	"github.com/rbxsync/rbxsync/pkg/export"
	"github.com/rbxsync/rbxsync/pkg/sync"
)

// Client is the top-level API: one instance per project and universe.
type Client interface {
	// Sync reconciles the project's declared resources against the live
	// universe. The returned result carries per-resource outcomes; the
	// error covers only run-level failures (config, ledger, option
	// validation).
	Sync(ctx context.Context, opts ...sync.Option) (*sync.Result, error)

	// Export gathers the universe's live resource listings.
	Export(ctx context.Context) (*export.Snapshot, error)

	// Publish uploads the project's place files marked for publishing.
	Publish(ctx context.Context) error
}

// client is the internal implementation of the Client interface.
type client struct {
	config *clientConfig
	remote cloud.Remote
}

// New creates a Client with the given options.
func New(opts ...Option) (Client, error) {
	c := &client{config: defaultClientConfig()}

	if err := c.options(opts...); err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}
	if err := c.config.validate(); err != nil {
		return nil, err
	}

	// A custom remote (tests, alternative backends) bypasses the HTTP
	// client entirely.
	if c.config.remote != nil {
		c.remote = c.config.remote
	} else {
		c.remote = roblox.New(roblox.Config{
			APIKey:       c.config.apiKey,
			Creator:      c.config.creator,
			BaseURL:      c.config.baseURL,
			BadgeListURL: c.config.badgeListURL,
		})
	}

	return c, nil
}

// loadConfig reads the project's desired-state file.
func (c *client) loadConfig() (*config.Config, error) {
	return config.Load(c.config.configPath())
}

// Export implements Client.
func (c *client) Export(ctx context.Context) (*export.Snapshot, error) {
	return export.Gather(ctx, c.remote, c.config.universeID)
}
