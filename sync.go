package rbxsync

import (
	"context"

	"github.com/rbxsync/rbxsync/internal/reconciler"
	"github.com/rbxsync/rbxsync/pkg/cloud"
	"github.com/rbxsync/rbxsync/pkg/config"
	"github.com/rbxsync/rbxsync/pkg/errors"
	"github.com/rbxsync/rbxsync/pkg/logging"
	"github.com/rbxsync/rbxsync/pkg/state"
	"github.com/rbxsync/rbxsync/pkg/sync"
)

// Sync implements Client. The run order is fixed: universe settings first,
// then game passes, developer products and badges. The ledger is written
// once, at the end, so an aborted run never persists partial state.
func (c *client) Sync(ctx context.Context, opts ...sync.Option) (*sync.Result, error) {
	options := sync.Defaults().Apply(opts...)
	if err := options.Validate(); err != nil {
		return nil, err
	}

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}

	ledger, err := state.Load(c.config.projectRoot)
	if err != nil {
		return nil, err
	}

	result := &sync.Result{
		CategoryErrors: make(map[cloud.Category]error),
		DryRun:         options.DryRun,
	}

	if err := c.syncUniverse(ctx, cfg, options, result); err != nil {
		return nil, err
	}

	r := reconciler.New(reconciler.Config{
		Remote:          c.remote,
		Ledger:          ledger,
		UniverseID:      c.config.universeID,
		AssetsDir:       c.assetsDir(cfg),
		PollInterval:    options.PollInterval,
		PollMaxAttempts: options.PollMaxAttempts,
		DryRun:          options.DryRun,
		FailFast:        options.FailFast,
	})

	for _, category := range cloud.Categories() {
		declared := declaredResources(cfg, category)
		results, err := r.Category(ctx, category, declared)
		result.Resources = append(result.Resources, results...)
		if err != nil {
			result.CategoryErrors[category] = err
			logging.Error().
				Err(err).
				Str("category", string(category)).
				Msg("Category listing failed, resources not attempted")
			if options.FailFast {
				break
			}
			continue
		}
		if options.FailFast && len(result.Failures()) > 0 {
			break
		}
	}

	// Dry runs never write: the ledger still reflects the last real sync.
	if !options.DryRun {
		if err := ledger.Save(c.config.projectRoot); err != nil {
			return result, err
		}
	}

	logging.Info().Str("summary", result.Summary()).Msg("Sync finished")
	return result, nil
}

// syncUniverse patches universe-level settings when any are declared.
func (c *client) syncUniverse(ctx context.Context, cfg *config.Config, options *sync.Options, result *sync.Result) error {
	settings := cloud.UniverseSettings{
		Name:            cfg.Universe.Name,
		Description:     cfg.Universe.Description,
		Genre:           cfg.Universe.Genre,
		PlayableDevices: cfg.Universe.PlayableDevices,
	}
	if settings.Empty() || options.DryRun {
		return nil
	}

	if err := c.remote.UpdateUniverseSettings(ctx, c.config.universeID, settings); err != nil {
		return errors.WrapResource("update", "universe", "", err)
	}
	result.UniverseUpdated = true
	logging.Info().Int64("universe", c.config.universeID).Msg("Universe settings updated")
	return nil
}

// assetsDir resolves the icon base directory against the project root.
func (c *client) assetsDir(cfg *config.Config) string {
	if cfg.AssetsDir == "" {
		return c.config.projectRoot
	}
	return joinRoot(c.config.projectRoot, cfg.AssetsDir)
}

// declaredResources maps the category's config section onto the
// category-neutral declared form the reconciler consumes.
func declaredResources(cfg *config.Config, category cloud.Category) []reconciler.Declared {
	switch category {
	case cloud.CategoryGamePass:
		declared := make([]reconciler.Declared, 0, len(cfg.GamePasses))
		for _, p := range cfg.GamePasses {
			declared = append(declared, reconciler.Declared{
				Name:        p.Name,
				Description: p.Description,
				Price:       p.Price,
				Active:      p.IsForSale,
				Icon:        p.Icon,
			})
		}
		return declared

	case cloud.CategoryDeveloperProduct:
		declared := make([]reconciler.Declared, 0, len(cfg.DeveloperProducts))
		for _, p := range cfg.DeveloperProducts {
			declared = append(declared, reconciler.Declared{
				Name:        p.Name,
				Description: p.Description,
				Price:       p.Price,
				Icon:        p.Icon,
			})
		}
		return declared

	case cloud.CategoryBadge:
		declared := make([]reconciler.Declared, 0, len(cfg.Badges))
		for _, b := range cfg.Badges {
			declared = append(declared, reconciler.Declared{
				Name:        b.Name,
				Description: b.Description,
				Active:      b.IsEnabled,
				Icon:        b.Icon,
			})
		}
		return declared
	}
	return nil
}
