// Package reconciler implements the core reconciliation engine: for each
// declared resource it merges the desired config, the persisted ledger and
// the live remote directory to decide create-vs-update, uploads icons only
// when their content changed, and records the outcome back into the ledger.
package reconciler

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/rbxsync/rbxsync/internal/fingerprint"
	"github.com/rbxsync/rbxsync/pkg/cloud"
	"github.com/rbxsync/rbxsync/pkg/errors"
	"github.com/rbxsync/rbxsync/pkg/logging"
	"github.com/rbxsync/rbxsync/pkg/state"
	syncpkg "github.com/rbxsync/rbxsync/pkg/sync"
)

var nameFolder = cases.Fold()

// Declared is the category-neutral view of one configured resource.
type Declared struct {
	Name        string
	Description *string
	Price       *int64
	Active      *bool  // for-sale / enabled flag
	Icon        string // path relative to the assets dir, empty if none
}

// Config wires a Reconciler.
type Config struct {
	Remote     cloud.Remote
	Ledger     *state.Ledger
	UniverseID int64

	// AssetsDir is the base directory declared icon paths resolve against.
	AssetsDir string

	PollInterval    time.Duration
	PollMaxAttempts int

	DryRun   bool
	FailFast bool
}

// Reconciler reconciles declared resources of one universe against the
// remote platform. It is the sole writer of the ledger during a run and is
// not safe for concurrent use.
type Reconciler struct {
	cfg Config
}

// New creates a Reconciler. Poll tuning falls back to the sync defaults.
func New(cfg Config) *Reconciler {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = syncpkg.DefaultPollInterval
	}
	if cfg.PollMaxAttempts <= 0 {
		cfg.PollMaxAttempts = syncpkg.DefaultPollMaxAttempts
	}
	return &Reconciler{cfg: cfg}
}

// Directory resolves the live remote listing of a category into a folded
// name → identifier index, following pagination to the terminal page. Any
// page failure discards the whole listing: a partial index could cause
// erroneous re-creation of resources that actually exist.
func (r *Reconciler) Directory(ctx context.Context, category cloud.Category) (map[string]int64, error) {
	index := make(map[string]int64)
	cursor := ""
	for {
		page, err := r.cfg.Remote.List(ctx, category, r.cfg.UniverseID, cursor)
		if err != nil {
			return nil, errors.WrapResource("list", string(category), "", err)
		}
		for _, item := range page.Items {
			// Last-seen wins; the remote should not hold duplicate names.
			index[nameFolder.String(item.Name)] = item.ID
		}
		if page.NextCursor == "" {
			return index, nil
		}
		cursor = page.NextCursor
	}
}

// Category reconciles all declared resources of one category. Per-resource
// failures are collected into the results rather than aborting the pass,
// unless FailFast is set. The returned error is category-level only: a
// listing failure that prevented any resource from being attempted.
func (r *Reconciler) Category(ctx context.Context, category cloud.Category, declared []Declared) ([]syncpkg.ResourceResult, error) {
	if len(declared) == 0 {
		return nil, nil
	}

	directory, err := r.Directory(ctx, category)
	if err != nil {
		return nil, err
	}

	results := make([]syncpkg.ResourceResult, 0, len(declared))
	for _, d := range declared {
		res := r.reconcile(ctx, category, d, directory)
		results = append(results, res)
		if res.Failed() {
			logging.Error().
				Err(res.Err).
				Str("category", string(category)).
				Str("resource", d.Name).
				Msg("Resource reconciliation failed")
			if r.cfg.FailFast {
				break
			}
			continue
		}
		logging.Info().
			Str("category", string(category)).
			Str("resource", d.Name).
			Int64("id", res.ID).
			Str("action", string(res.Action)).
			Msg("Resource reconciled")
	}
	return results, nil
}

// reconcile runs the per-resource decision procedure: icon resolution,
// identity resolution, create-or-update, ledger write.
func (r *Reconciler) reconcile(ctx context.Context, category cloud.Category, d Declared, directory map[string]int64) syncpkg.ResourceResult {
	result := syncpkg.ResourceResult{Category: category, Name: d.Name}
	entries := r.cfg.Ledger.Category(category)

	fail := func(err error) syncpkg.ResourceResult {
		result.Action = syncpkg.ActionFailed
		result.Err = errors.WrapResource("sync", string(category), d.Name, err)
		return result
	}

	// Step 1: icon resolution. Uploads are skipped when the ledger already
	// records an asset for these exact bytes.
	var iconAssetID *int64
	var iconHash string
	if d.Icon != "" {
		id, hash, uploaded, err := r.resolveIcon(ctx, entries, d)
		if err != nil {
			return fail(err)
		}
		iconAssetID, iconHash = id, hash
		result.IconUploaded = uploaded
	}

	fields := cloud.Fields{
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Active:      d.Active,
		IconAssetID: iconAssetID,
	}

	// Step 2: identity resolution. The ledger is authoritative once an
	// identifier is established; the remote directory covers first-run
	// adoption of resources created outside this tool.
	id, _, known := entries.FindByName(d.Name)
	created := false
	if !known {
		if remoteID, ok := directory[nameFolder.String(d.Name)]; ok {
			id = remoteID
		} else {
			if r.cfg.DryRun {
				result.Action = syncpkg.ActionSkipped
				return result
			}
			newID, err := r.cfg.Remote.Create(ctx, category, r.cfg.UniverseID, fields)
			if err != nil {
				return fail(err)
			}
			id = newID
			created = true
			logging.Debug().
				Str("category", string(category)).
				Str("resource", d.Name).
				Int64("id", id).
				Msg("Created resource")
		}
	}
	result.ID = id

	if r.cfg.DryRun {
		result.Action = syncpkg.ActionSkipped
		return result
	}

	// Step 3: always update with the full declared field set. Re-running
	// with unchanged config is a remote no-op but keeps runs self-healing
	// against out-of-band edits.
	if err := r.cfg.Remote.Update(ctx, category, r.cfg.UniverseID, id, fields); err != nil {
		return fail(err)
	}

	// Step 4: ledger write, from the declared config (update responses may
	// be empty). Only after a successful update, so failures never leave a
	// partial entry behind.
	entry := state.Entry{
		Name:     d.Name,
		Price:    d.Price,
		Active:   d.Active,
		IconHash: iconHash,
	}
	if d.Description != nil {
		entry.Description = *d.Description
	}
	if iconAssetID != nil {
		entry.IconAssetID = *iconAssetID
	}
	entries.Upsert(id, entry)

	if created {
		result.Action = syncpkg.ActionCreated
	} else {
		result.Action = syncpkg.ActionUpdated
	}
	return result
}

// resolveIcon computes the icon's content fingerprint and either reuses the
// asset identifier recorded for identical bytes or uploads a new asset.
// Returns the asset identifier, the content hash, and whether an upload
// actually occurred.
func (r *Reconciler) resolveIcon(ctx context.Context, entries state.Entries, d Declared) (*int64, string, bool, error) {
	path := d.Icon
	if r.cfg.AssetsDir != "" {
		path = filepath.Join(r.cfg.AssetsDir, d.Icon)
	}

	hash, err := fingerprint.File(path)
	if err != nil {
		return nil, "", false, err
	}

	// Icon identity is only knowable once the resource has an identifier,
	// so a ledger miss here simply means upload.
	if _, prior, ok := entries.FindByName(d.Name); ok {
		if prior.IconHash == hash && prior.IconAssetID != 0 {
			logging.Debug().
				Str("resource", d.Name).
				Str("hash", hash).
				Int64("asset_id", prior.IconAssetID).
				Msg("Icon unchanged, reusing uploaded asset")
			reused := prior.IconAssetID
			return &reused, hash, false, nil
		}
	}

	if r.cfg.DryRun {
		// Would upload; no asset identifier is knowable without doing so.
		return nil, hash, true, nil
	}

	assetID, err := r.upload(ctx, path, displayName(path))
	if err != nil {
		return nil, "", false, err
	}
	return &assetID, hash, true, nil
}

// displayName derives the uploaded asset's display name from the file stem.
func displayName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
