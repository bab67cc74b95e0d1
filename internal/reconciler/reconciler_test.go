package reconciler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbxsync/rbxsync/pkg/cloud"
	"github.com/rbxsync/rbxsync/pkg/errors"
	"github.com/rbxsync/rbxsync/pkg/state"
	syncpkg "github.com/rbxsync/rbxsync/pkg/sync"
)

// fakeRemote is a scriptable cloud.Remote that records calls.
type fakeRemote struct {
	listFn   func(category cloud.Category, cursor string) (*cloud.Page, error)
	createFn func(category cloud.Category, fields cloud.Fields) (int64, error)
	updateFn func(category cloud.Category, id int64, fields cloud.Fields) error
	uploadFn func(path string) (*cloud.Operation, error)
	pollFn   func(operationPath string) (*cloud.Operation, error)

	creates []cloud.Fields
	updates []int64
	uploads []string
	polls   int
}

func (f *fakeRemote) List(_ context.Context, category cloud.Category, _ int64, cursor string) (*cloud.Page, error) {
	if f.listFn != nil {
		return f.listFn(category, cursor)
	}
	return &cloud.Page{}, nil
}

func (f *fakeRemote) Create(_ context.Context, category cloud.Category, _ int64, fields cloud.Fields) (int64, error) {
	f.creates = append(f.creates, fields)
	if f.createFn != nil {
		return f.createFn(category, fields)
	}
	return 1000 + int64(len(f.creates)), nil
}

func (f *fakeRemote) Update(_ context.Context, category cloud.Category, _ int64, id int64, fields cloud.Fields) error {
	f.updates = append(f.updates, id)
	if f.updateFn != nil {
		return f.updateFn(category, id, fields)
	}
	return nil
}

func (f *fakeRemote) UploadAsset(_ context.Context, path, _ string) (*cloud.Operation, error) {
	f.uploads = append(f.uploads, path)
	if f.uploadFn != nil {
		return f.uploadFn(path)
	}
	return &cloud.Operation{Status: cloud.OperationCompleted, AssetID: 555}, nil
}

func (f *fakeRemote) PollOperation(_ context.Context, operationPath string) (*cloud.Operation, error) {
	f.polls++
	if f.pollFn != nil {
		return f.pollFn(operationPath)
	}
	return &cloud.Operation{Status: cloud.OperationCompleted, AssetID: 555}, nil
}

func (f *fakeRemote) UpdateUniverseSettings(context.Context, int64, cloud.UniverseSettings) error {
	return nil
}

func (f *fakeRemote) PublishPlace(context.Context, int64, int64, string) error {
	return nil
}

func newTestReconciler(remote *fakeRemote, ledger *state.Ledger) *Reconciler {
	return New(Config{
		Remote:     remote,
		Ledger:     ledger,
		UniverseID: 42,
	})
}

func writeIcon(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func int64Ptr(v int64) *int64 { return &v }

func TestCategoryCreatesUnknownResource(t *testing.T) {
	remote := &fakeRemote{}
	ledger := state.New()
	r := newTestReconciler(remote, ledger)

	results, err := r.Category(context.Background(), cloud.CategoryGamePass, []Declared{
		{Name: "VIP", Price: int64Ptr(99)},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, syncpkg.ActionCreated, results[0].Action)
	assert.Len(t, remote.creates, 1)
	assert.Equal(t, []int64{results[0].ID}, remote.updates)

	// The ledger now remembers the new identifier.
	id, entry, ok := ledger.GamePasses.FindByName("VIP")
	require.True(t, ok)
	assert.Equal(t, results[0].ID, id)
	require.NotNil(t, entry.Price)
	assert.Equal(t, int64(99), *entry.Price)
}

func TestCategoryAdoptsExistingRemoteResource(t *testing.T) {
	remote := &fakeRemote{
		listFn: func(_ cloud.Category, _ string) (*cloud.Page, error) {
			return &cloud.Page{Items: []cloud.Item{{ID: 77, Name: "vip"}}}, nil
		},
	}
	ledger := state.New()
	r := newTestReconciler(remote, ledger)

	// Declared name differs only in case from the remote listing.
	results, err := r.Category(context.Background(), cloud.CategoryGamePass, []Declared{
		{Name: "VIP"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, syncpkg.ActionUpdated, results[0].Action)
	assert.Equal(t, int64(77), results[0].ID)
	assert.Empty(t, remote.creates)
	assert.Equal(t, []int64{77}, remote.updates)

	entry, ok := ledger.GamePasses.FindByID(77)
	require.True(t, ok)
	assert.Equal(t, "VIP", entry.Name)
}

func TestLedgerIdentityBeatsDirectory(t *testing.T) {
	remote := &fakeRemote{
		listFn: func(_ cloud.Category, _ string) (*cloud.Page, error) {
			// The remote lists a different resource under the same name.
			return &cloud.Page{Items: []cloud.Item{{ID: 9, Name: "VIP"}}}, nil
		},
	}
	ledger := state.New()
	ledger.GamePasses.Upsert(5, state.Entry{Name: "VIP"})
	r := newTestReconciler(remote, ledger)

	results, err := r.Category(context.Background(), cloud.CategoryGamePass, []Declared{
		{Name: "VIP"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, int64(5), results[0].ID)
	assert.Equal(t, []int64{5}, remote.updates)
	assert.Empty(t, remote.creates)
}

func TestDirectoryFollowsPagination(t *testing.T) {
	remote := &fakeRemote{
		listFn: func(_ cloud.Category, cursor string) (*cloud.Page, error) {
			switch cursor {
			case "":
				return &cloud.Page{Items: []cloud.Item{{ID: 1, Name: "One"}}, NextCursor: "page2"}, nil
			case "page2":
				return &cloud.Page{Items: []cloud.Item{{ID: 2, Name: "Two"}}}, nil
			}
			t.Fatalf("unexpected cursor %q", cursor)
			return nil, nil
		},
	}
	r := newTestReconciler(remote, state.New())

	index, err := r.Directory(context.Background(), cloud.CategoryBadge)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"one": 1, "two": 2}, index)
}

func TestDirectoryDiscardsListingOnPageFailure(t *testing.T) {
	remote := &fakeRemote{
		listFn: func(_ cloud.Category, cursor string) (*cloud.Page, error) {
			if cursor == "" {
				return &cloud.Page{Items: []cloud.Item{{ID: 1, Name: "One"}}, NextCursor: "page2"}, nil
			}
			return nil, &errors.APIError{Endpoint: "list", StatusCode: 500}
		},
	}
	r := newTestReconciler(remote, state.New())

	index, err := r.Directory(context.Background(), cloud.CategoryBadge)
	require.Error(t, err)
	assert.Nil(t, index)
}

func TestCategoryListingFailureIsCategoryLevel(t *testing.T) {
	remote := &fakeRemote{
		listFn: func(_ cloud.Category, _ string) (*cloud.Page, error) {
			return nil, &errors.APIError{Endpoint: "list", StatusCode: 500}
		},
	}
	r := newTestReconciler(remote, state.New())

	results, err := r.Category(context.Background(), cloud.CategoryGamePass, []Declared{
		{Name: "VIP"},
	})
	require.Error(t, err)
	assert.Nil(t, results)
}

func TestCategoryCollectsPerResourceFailures(t *testing.T) {
	remote := &fakeRemote{
		updateFn: func(_ cloud.Category, id int64, fields cloud.Fields) error {
			if fields.Name == "Broken" {
				return &errors.APIError{Endpoint: "update", StatusCode: 500}
			}
			return nil
		},
	}
	ledger := state.New()
	r := newTestReconciler(remote, ledger)

	results, err := r.Category(context.Background(), cloud.CategoryDeveloperProduct, []Declared{
		{Name: "Broken"},
		{Name: "Fine"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Failed())
	assert.Equal(t, syncpkg.ActionFailed, results[0].Action)
	assert.False(t, results[1].Failed())

	// The failed resource never reaches the ledger; the healthy one does.
	_, _, broken := ledger.DeveloperProducts.FindByName("Broken")
	assert.False(t, broken)
	_, _, fine := ledger.DeveloperProducts.FindByName("Fine")
	assert.True(t, fine)
}

func TestCategoryFailFastStopsAfterFirstFailure(t *testing.T) {
	remote := &fakeRemote{
		updateFn: func(_ cloud.Category, _ int64, _ cloud.Fields) error {
			return &errors.APIError{Endpoint: "update", StatusCode: 500}
		},
	}
	r := New(Config{
		Remote:     remote,
		Ledger:     state.New(),
		UniverseID: 42,
		FailFast:   true,
	})

	results, err := r.Category(context.Background(), cloud.CategoryGamePass, []Declared{
		{Name: "First"},
		{Name: "Second"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Failed())
}

func TestReconcileUploadsNewIcon(t *testing.T) {
	dir := t.TempDir()
	writeIcon(t, dir, "vip.png", []byte("icon-bytes"))

	remote := &fakeRemote{}
	ledger := state.New()
	r := New(Config{
		Remote:     remote,
		Ledger:     ledger,
		UniverseID: 42,
		AssetsDir:  dir,
	})

	results, err := r.Category(context.Background(), cloud.CategoryGamePass, []Declared{
		{Name: "VIP", Icon: "vip.png"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.True(t, results[0].IconUploaded)
	assert.Len(t, remote.uploads, 1)

	_, entry, ok := ledger.GamePasses.FindByName("VIP")
	require.True(t, ok)
	assert.Equal(t, int64(555), entry.IconAssetID)
	assert.NotEmpty(t, entry.IconHash)
}

func TestReconcileReusesUnchangedIcon(t *testing.T) {
	dir := t.TempDir()
	writeIcon(t, dir, "vip.png", []byte("icon-bytes"))

	remote := &fakeRemote{}
	ledger := state.New()
	r := New(Config{
		Remote:     remote,
		Ledger:     ledger,
		UniverseID: 42,
		AssetsDir:  dir,
	})

	declared := []Declared{{Name: "VIP", Icon: "vip.png"}}

	// First run uploads and records the content hash.
	_, err := r.Category(context.Background(), cloud.CategoryGamePass, declared)
	require.NoError(t, err)
	require.Len(t, remote.uploads, 1)

	// Second run over identical bytes must not upload again.
	results, err := r.Category(context.Background(), cloud.CategoryGamePass, declared)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.False(t, results[0].IconUploaded)
	assert.Len(t, remote.uploads, 1)

	_, entry, ok := ledger.GamePasses.FindByName("VIP")
	require.True(t, ok)
	assert.Equal(t, int64(555), entry.IconAssetID)
}

func TestReconcileUploadsWhenIconBytesChange(t *testing.T) {
	dir := t.TempDir()
	writeIcon(t, dir, "vip.png", []byte("version-one"))

	uploaded := int64(0)
	remote := &fakeRemote{
		uploadFn: func(string) (*cloud.Operation, error) {
			uploaded++
			return &cloud.Operation{Status: cloud.OperationCompleted, AssetID: 555 + uploaded}, nil
		},
	}
	ledger := state.New()
	r := New(Config{
		Remote:     remote,
		Ledger:     ledger,
		UniverseID: 42,
		AssetsDir:  dir,
	})

	declared := []Declared{{Name: "VIP", Icon: "vip.png"}}

	_, err := r.Category(context.Background(), cloud.CategoryGamePass, declared)
	require.NoError(t, err)

	writeIcon(t, dir, "vip.png", []byte("version-two"))
	_, err = r.Category(context.Background(), cloud.CategoryGamePass, declared)
	require.NoError(t, err)
	assert.Len(t, remote.uploads, 2)

	// Reverting to the original bytes still uploads: only the latest
	// hash+asset pair is remembered.
	writeIcon(t, dir, "vip.png", []byte("version-one"))
	_, err = r.Category(context.Background(), cloud.CategoryGamePass, declared)
	require.NoError(t, err)
	assert.Len(t, remote.uploads, 3)
}

func TestReconcileMissingIconFails(t *testing.T) {
	remote := &fakeRemote{}
	r := New(Config{
		Remote:     remote,
		Ledger:     state.New(),
		UniverseID: 42,
		AssetsDir:  t.TempDir(),
	})

	results, err := r.Category(context.Background(), cloud.CategoryBadge, []Declared{
		{Name: "Explorer", Icon: "missing.png"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.True(t, results[0].Failed())
	assert.ErrorIs(t, results[0].Err, errors.ErrAssetNotFound)
	assert.Empty(t, remote.creates)
	assert.Empty(t, remote.updates)
}

func TestDryRunTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	writeIcon(t, dir, "vip.png", []byte("icon-bytes"))

	remote := &fakeRemote{}
	ledger := state.New()
	r := New(Config{
		Remote:     remote,
		Ledger:     ledger,
		UniverseID: 42,
		AssetsDir:  dir,
		DryRun:     true,
	})

	results, err := r.Category(context.Background(), cloud.CategoryGamePass, []Declared{
		{Name: "VIP", Icon: "vip.png"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, syncpkg.ActionSkipped, results[0].Action)
	assert.True(t, results[0].IconUploaded) // reported as "would upload"
	assert.Empty(t, remote.creates)
	assert.Empty(t, remote.updates)
	assert.Empty(t, remote.uploads)
	assert.Empty(t, ledger.GamePasses)
}

func TestReconcileEmptyDeclarationsListsNothing(t *testing.T) {
	listed := false
	remote := &fakeRemote{
		listFn: func(_ cloud.Category, _ string) (*cloud.Page, error) {
			listed = true
			return &cloud.Page{}, nil
		},
	}
	r := newTestReconciler(remote, state.New())

	results, err := r.Category(context.Background(), cloud.CategoryBadge, nil)
	require.NoError(t, err)
	assert.Nil(t, results)
	assert.False(t, listed)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "vip", displayName(filepath.Join("assets", "vip.png")))
	assert.Equal(t, "coin pack", displayName("coin pack.jpg"))
	assert.Equal(t, "plain", displayName("plain"))
}
