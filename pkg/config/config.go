// Package config loads and validates the project's desired-state
// configuration file (rbxsync.yaml). Declared resources are read-only per
// run; the reconciliation engine never mutates them.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/cases"

	"github.com/rbxsync/rbxsync/pkg/errors"
)

// DefaultFile is the conventional config file name at the project root.
const DefaultFile = "rbxsync.yaml"

var nameFolder = cases.Fold()

// Config is the full desired state of a project.
type Config struct {
	// AssetsDir is the base directory icon paths are resolved against.
	AssetsDir string `yaml:"assets_dir"`

	Universe          Universe           `yaml:"universe"`
	GamePasses        []GamePass         `yaml:"game_passes"`
	DeveloperProducts []DeveloperProduct `yaml:"developer_products"`
	Badges            []Badge            `yaml:"badges"`
	Places            []Place            `yaml:"places"`
}

// Universe holds optional universe-level settings. Only declared fields
// are patched.
type Universe struct {
	Name            *string  `yaml:"name,omitempty"`
	Description     *string  `yaml:"description,omitempty"`
	Genre           *string  `yaml:"genre,omitempty"`
	PlayableDevices []string `yaml:"playable_devices,omitempty"`
}

// GamePass declares one game pass.
type GamePass struct {
	Name        string  `yaml:"name"`
	Description *string `yaml:"description,omitempty"`
	Price       *int64  `yaml:"price,omitempty"`
	IsForSale   *bool   `yaml:"is_for_sale,omitempty"`
	Icon        string  `yaml:"icon,omitempty"`
}

// DeveloperProduct declares one developer product.
type DeveloperProduct struct {
	Name        string  `yaml:"name"`
	Description *string `yaml:"description,omitempty"`
	Price       *int64  `yaml:"price,omitempty"`
	Icon        string  `yaml:"icon,omitempty"`
}

// Badge declares one badge.
type Badge struct {
	Name        string  `yaml:"name"`
	Description *string `yaml:"description,omitempty"`
	IsEnabled   *bool   `yaml:"is_enabled,omitempty"`
	Icon        string  `yaml:"icon,omitempty"`
}

// Place declares one place file for publishing. Places are not reconciled;
// publishing is a fire-and-forget upload.
type Place struct {
	PlaceID int64  `yaml:"place_id"`
	File    string `yaml:"file"`
	Publish bool   `yaml:"publish"`
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks declared resources for consistency. Names are the unique
// key within a category, compared case-insensitively.
func (c *Config) Validate() error {
	if err := validateNames("game_passes", gamePassNames(c.GamePasses)); err != nil {
		return err
	}
	if err := validateNames("developer_products", productNames(c.DeveloperProducts)); err != nil {
		return err
	}
	if err := validateNames("badges", badgeNames(c.Badges)); err != nil {
		return err
	}

	for _, p := range c.GamePasses {
		if p.Price != nil && *p.Price < 0 {
			return errors.NewValidationError("game_passes."+p.Name+".price", *p.Price, "price must be non-negative")
		}
	}
	for _, p := range c.DeveloperProducts {
		if p.Price != nil && *p.Price < 0 {
			return errors.NewValidationError("developer_products."+p.Name+".price", *p.Price, "price must be non-negative")
		}
	}

	for _, place := range c.Places {
		if place.PlaceID == 0 {
			return errors.NewValidationError("places.place_id", place.PlaceID, "place_id is required")
		}
		if place.File == "" {
			return errors.NewValidationError("places.file", place.File, "file is required")
		}
	}

	return nil
}

func validateNames(section string, names []string) error {
	seen := make(map[string]string, len(names))
	for _, name := range names {
		if name == "" {
			return errors.NewValidationError(section+".name", name, "name is required")
		}
		folded := nameFolder.String(name)
		if prior, dup := seen[folded]; dup {
			return errors.NewValidationError(section, name,
				fmt.Sprintf("duplicate name (conflicts with %q, names are case-insensitive)", prior))
		}
		seen[folded] = name
	}
	return nil
}

func gamePassNames(passes []GamePass) []string {
	names := make([]string, 0, len(passes))
	for _, p := range passes {
		names = append(names, p.Name)
	}
	return names
}

func productNames(products []DeveloperProduct) []string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return names
}

func badgeNames(badges []Badge) []string {
	names := make([]string, 0, len(badges))
	for _, b := range badges {
		names = append(names, b.Name)
	}
	return names
}
