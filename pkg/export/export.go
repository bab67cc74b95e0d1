// Package export produces read-only snapshots of a universe's live
// monetization resources, for dumping into Luau or YAML form.
package export

import (
	"context"

	"github.com/goccy/go-yaml"

	"github.com/rbxsync/rbxsync/pkg/cloud"
	"github.com/rbxsync/rbxsync/pkg/errors"
)

// Resource is one exported resource.
type Resource struct {
	ID          int64  `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Price       *int64 `yaml:"price,omitempty"`
	IconAssetID int64  `yaml:"icon_asset_id,omitempty"`
}

// Snapshot is the full live listing of a universe's resources.
type Snapshot struct {
	UniverseID        int64      `yaml:"universe_id"`
	GamePasses        []Resource `yaml:"game_passes"`
	DeveloperProducts []Resource `yaml:"developer_products"`
	Badges            []Resource `yaml:"badges"`
}

// Gather lists every category of the universe, following pagination to the
// terminal page of each.
func Gather(ctx context.Context, remote cloud.Remote, universeID int64) (*Snapshot, error) {
	snapshot := &Snapshot{UniverseID: universeID}

	for _, category := range cloud.Categories() {
		resources, err := gatherCategory(ctx, remote, category, universeID)
		if err != nil {
			return nil, errors.WrapResource("list", string(category), "", err)
		}
		switch category {
		case cloud.CategoryGamePass:
			snapshot.GamePasses = resources
		case cloud.CategoryDeveloperProduct:
			snapshot.DeveloperProducts = resources
		case cloud.CategoryBadge:
			snapshot.Badges = resources
		}
	}
	return snapshot, nil
}

func gatherCategory(ctx context.Context, remote cloud.Remote, category cloud.Category, universeID int64) ([]Resource, error) {
	var resources []Resource
	cursor := ""
	for {
		page, err := remote.List(ctx, category, universeID, cursor)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			resources = append(resources, Resource{
				ID:          item.ID,
				Name:        item.Name,
				Description: item.Description,
				Price:       item.Price,
				IconAssetID: item.IconAssetID,
			})
		}
		if page.NextCursor == "" {
			return resources, nil
		}
		cursor = page.NextCursor
	}
}

// YAML renders the snapshot as YAML.
func (s *Snapshot) YAML() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, errors.WrapParse("yaml", "snapshot", err)
	}
	return data, nil
}
