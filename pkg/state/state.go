// Package state implements the persisted sync ledger: the tool's memory of
// what it last pushed for every remote resource. The ledger lives in a
// single human-diffable YAML file under the project's .rbxsync directory.
package state

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/cases"

	"github.com/rbxsync/rbxsync/pkg/cloud"
	"github.com/rbxsync/rbxsync/pkg/errors"
)

const (
	// StateDir is the hidden directory under the project root that holds
	// tool-managed files.
	StateDir = ".rbxsync"

	// StateFile is the ledger file name inside StateDir.
	StateFile = "state.yaml"
)

// nameFolder performs Unicode case folding for case-insensitive name
// comparisons.
var nameFolder = cases.Fold()

// Entry records the last-synced attributes of one remote resource.
// Entries are replaced wholesale on every successful sync, never merged.
type Entry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Price       *int64 `yaml:"price,omitempty"`
	Active      *bool  `yaml:"active,omitempty"`
	IconHash    string `yaml:"icon_hash,omitempty"`
	IconAssetID int64  `yaml:"icon_asset_id,omitempty"`
}

// Entries maps remote numeric identifiers to their ledger entries.
type Entries map[int64]Entry

// FindByID looks up an entry by its remote identifier.
func (e Entries) FindByID(id int64) (Entry, bool) {
	entry, ok := e[id]
	return entry, ok
}

// FindByName looks up an entry by resource name, case-insensitively.
// Resource counts per project are small, so a linear scan is fine.
func (e Entries) FindByName(name string) (int64, Entry, bool) {
	folded := nameFolder.String(name)
	for id, entry := range e {
		if nameFolder.String(entry.Name) == folded {
			return id, entry, true
		}
	}
	return 0, Entry{}, false
}

// Upsert replaces any prior entry for the identifier wholesale.
func (e Entries) Upsert(id int64, entry Entry) {
	e[id] = entry
}

// Ledger is the full persisted sync record, one section per category.
type Ledger struct {
	GamePasses        Entries `yaml:"game_passes"`
	DeveloperProducts Entries `yaml:"developer_products"`
	Badges            Entries `yaml:"badges"`
}

// New returns an empty ledger with all sections initialized.
func New() *Ledger {
	return &Ledger{
		GamePasses:        make(Entries),
		DeveloperProducts: make(Entries),
		Badges:            make(Entries),
	}
}

// Category returns the entries section for a resource category.
func (l *Ledger) Category(category cloud.Category) Entries {
	switch category {
	case cloud.CategoryGamePass:
		return l.GamePasses
	case cloud.CategoryDeveloperProduct:
		return l.DeveloperProducts
	case cloud.CategoryBadge:
		return l.Badges
	}
	return nil
}

// Load reads the ledger from the project root. A missing file is not an
// error: the first run starts from an empty ledger.
func Load(root string) (*Ledger, error) {
	path := Path(root)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, errors.WrapIO("read", path, err)
	}

	ledger := New()
	if err := yaml.Unmarshal(data, ledger); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	// Sections absent from the file come back nil; keep them usable.
	if ledger.GamePasses == nil {
		ledger.GamePasses = make(Entries)
	}
	if ledger.DeveloperProducts == nil {
		ledger.DeveloperProducts = make(Entries)
	}
	if ledger.Badges == nil {
		ledger.Badges = make(Entries)
	}

	return ledger, nil
}

// Save writes the whole ledger to the project root, creating the state
// directory if needed. Callers persist once at the end of a run so that
// partial writes are never visible.
func (l *Ledger) Save(root string) error {
	path := Path(root)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}

	data, err := yaml.Marshal(l)
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// Path returns the ledger file location for a project root.
func Path(root string) string {
	return filepath.Join(root, StateDir, StateFile)
}
