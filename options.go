package rbxsync

import (
	"path/filepath"

	"github.com/rbxsync/rbxsync/internal/roblox"
	"github.com/rbxsync/rbxsync/pkg/cloud"
	"github.com/rbxsync/rbxsync/pkg/config"
	"github.com/rbxsync/rbxsync/pkg/errors"
)

// Option is a function that configures a Client instance.
type Option func(*clientConfig) error

// clientConfig holds the resolved Client construction parameters.
type clientConfig struct {
	apiKey     string
	universeID int64
	creator    roblox.Creator

	projectRoot string
	configFile  string

	baseURL      string
	badgeListURL string

	remote cloud.Remote
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		projectRoot: ".",
		configFile:  config.DefaultFile,
		creator:     roblox.Creator{Type: "user"},
	}
}

func (c *client) options(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c.config); err != nil {
			return err
		}
	}
	return nil
}

func (c *clientConfig) validate() error {
	if c.remote == nil && c.apiKey == "" {
		return errors.ErrAPIKeyRequired
	}
	if c.universeID == 0 {
		return errors.ErrUniverseRequired
	}
	return nil
}

// configPath resolves the desired-state file location.
func (c *clientConfig) configPath() string {
	if filepath.IsAbs(c.configFile) {
		return c.configFile
	}
	return filepath.Join(c.projectRoot, c.configFile)
}

// WithAPIKey configures the Open Cloud API key.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) error {
		c.apiKey = key
		return nil
	}
}

// WithUniverseID configures the target universe.
func WithUniverseID(id int64) Option {
	return func(c *clientConfig) error {
		c.universeID = id
		return nil
	}
}

// WithCreator configures the asset upload owner. creatorType is "user" or
// "group".
func WithCreator(creatorType, id string) Option {
	return func(c *clientConfig) error {
		if creatorType != "user" && creatorType != "group" {
			return errors.NewValidationError("creator", creatorType, `must be "user" or "group"`)
		}
		c.creator = roblox.Creator{Type: creatorType, ID: id}
		return nil
	}
}

// WithProjectRoot configures the directory holding the config file, the
// assets directory and the state ledger. Defaults to the current directory.
func WithProjectRoot(root string) Option {
	return func(c *clientConfig) error {
		c.projectRoot = root
		return nil
	}
}

// WithConfigFile overrides the desired-state file name or path.
func WithConfigFile(file string) Option {
	return func(c *clientConfig) error {
		c.configFile = file
		return nil
	}
}

// WithBaseURL overrides the Open Cloud endpoint root.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) error {
		c.baseURL = url
		return nil
	}
}

// WithBadgeListURL overrides the legacy badge listing endpoint root.
func WithBadgeListURL(url string) Option {
	return func(c *clientConfig) error {
		c.badgeListURL = url
		return nil
	}
}

// WithRemote substitutes the remote backend, bypassing HTTP entirely.
// Primarily for tests.
func WithRemote(remote cloud.Remote) Option {
	return func(c *clientConfig) error {
		c.remote = remote
		return nil
	}
}
