package rbxsync

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rbxsync/rbxsync/pkg/errors"
	"github.com/rbxsync/rbxsync/pkg/logging"
)

// Publish implements Client. Place publishing is fire-and-forget: nothing
// about places enters the ledger. Missing files are skipped with a warning;
// an upload failure aborts the batch.
func (c *client) Publish(ctx context.Context) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	published := 0
	for _, place := range cfg.Places {
		if !place.Publish {
			continue
		}
		path := joinRoot(c.config.projectRoot, place.File)
		if _, err := os.Stat(path); err != nil {
			logging.Warn().Int64("place", place.PlaceID).Str("file", path).Msg("Place file missing, skipping")
			continue
		}
		logging.Info().Int64("place", place.PlaceID).Str("file", path).Msg("Publishing place")
		if err := c.remote.PublishPlace(ctx, c.config.universeID, place.PlaceID, path); err != nil {
			return errors.WrapResource("publish", "place", place.File, err)
		}
		published++
	}

	logging.Info().Int("published", published).Msg("Publish finished")
	return nil
}

// joinRoot resolves a config-relative path against the project root,
// leaving absolute paths alone.
func joinRoot(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
