// Package cloud defines the domain types and the abstract remote operation
// set that the reconciliation engine works against. The concrete HTTP
// implementation lives in internal/roblox; tests substitute fakes.
package cloud

import "context"

// Category identifies a monetization resource category.
type Category string

// Resource categories, in the order the coordinator reconciles them.
const (
	CategoryGamePass         Category = "game-pass"
	CategoryDeveloperProduct Category = "developer-product"
	CategoryBadge            Category = "badge"
)

// Categories returns all resource categories in reconciliation order.
func Categories() []Category {
	return []Category{CategoryGamePass, CategoryDeveloperProduct, CategoryBadge}
}

// Fields is the declared field set sent on create and update calls.
// Optional fields are pointers so that absent values are omitted rather
// than zeroed on the remote side.
type Fields struct {
	Name        string
	Description *string
	Price       *int64
	Active      *bool // for-sale (passes/products) or enabled (badges)
	IconAssetID *int64
}

// Item is one entry of a remote category listing, decoded into a typed
// record at the transport boundary.
type Item struct {
	ID          int64
	Name        string
	Description string
	Price       *int64
	IconAssetID int64
	Active      *bool
}

// Page is a single page of a remote category listing. NextCursor is empty
// on the terminal page.
type Page struct {
	Items      []Item
	NextCursor string
}

// OperationStatus is the state of an asynchronous asset upload operation.
type OperationStatus int

const (
	// OperationPending means the upload was accepted and must be polled.
	OperationPending OperationStatus = iota
	// OperationCompleted means the upload finished and AssetID is valid.
	OperationCompleted
	// OperationFailed means the remote reported a terminal error.
	OperationFailed
)

// Operation is the tagged state of an asset upload. Exactly one of
// AssetID (completed), Path (pending) or Message (failed) is meaningful
// for a given status.
type Operation struct {
	Status  OperationStatus
	AssetID int64  // set when Status == OperationCompleted
	Path    string // poll handle, set when Status == OperationPending
	Message string // error detail, set when Status == OperationFailed
}

// UniverseSettings is the optional universe-level configuration patch.
// Nil fields are left untouched on the remote side.
type UniverseSettings struct {
	Name            *string
	Description     *string
	Genre           *string
	PlayableDevices []string
}

// Empty reports whether no universe setting is declared.
func (u UniverseSettings) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Genre == nil && len(u.PlayableDevices) == 0
}

// Remote is the operation set the reconciliation engine consumes. All
// methods are blocking and honor the passed context.
type Remote interface {
	// List returns one page of the category's live listing. An empty
	// cursor requests the first page.
	List(ctx context.Context, category Category, universeID int64, cursor string) (*Page, error)

	// Create creates a resource and returns its remote identifier.
	Create(ctx context.Context, category Category, universeID int64, fields Fields) (int64, error)

	// Update patches a resource with the full declared field set. Some
	// endpoints return no body on success.
	Update(ctx context.Context, category Category, universeID, id int64, fields Fields) error

	// UploadAsset submits a local binary asset. The remote may short-circuit
	// with a completed operation or hand back a pending one to poll.
	UploadAsset(ctx context.Context, path, displayName string) (*Operation, error)

	// PollOperation fetches the current state of a pending upload operation.
	PollOperation(ctx context.Context, operationPath string) (*Operation, error)

	// UpdateUniverseSettings patches universe-level configuration.
	UpdateUniverseSettings(ctx context.Context, universeID int64, settings UniverseSettings) error

	// PublishPlace uploads a place file as a new published version.
	// Fire-and-forget: no state is tracked for places.
	PublishPlace(ctx context.Context, universeID, placeID int64, path string) error
}
