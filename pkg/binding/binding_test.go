package binding_test

import (
	"context"
	"testing"

	"github.com/nais/sitedeploy/pkg/binding"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func testStore(t *testing.T, store binding.Store) {
	ctx := context.Background()

	b, err := store.Binding(ctx)
	assert.Nil(t, b)
	assert.True(t, binding.IsErrNotFound(err))

	assert.ErrorIs(t, store.SaveBinding(ctx, binding.SiteBinding{SiteID: "s1"}), binding.ErrIncomplete)
	assert.ErrorIs(t, store.SaveBinding(ctx, binding.SiteBinding{SiteName: "my-site"}), binding.ErrIncomplete)

	assert.NoError(t, store.SaveBinding(ctx, binding.SiteBinding{SiteID: "s1", SiteName: "my-site"}))
	b, err = store.Binding(ctx)
	assert.NoError(t, err)
	assert.Equal(t, &binding.SiteBinding{SiteID: "s1", SiteName: "my-site"}, b)

	// returned bindings are copies
	b.SiteName = "changed"
	b, _ = store.Binding(ctx)
	assert.Equal(t, "my-site", b.SiteName)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, binding.NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	fs := afero.NewMemMapFs()
	testStore(t, binding.NewFileStore(fs, "/project/.sitedeploy"))

	data, err := afero.ReadFile(fs, "/project/.sitedeploy/binding.yaml")
	assert.NoError(t, err)
	assert.Equal(t, "siteId: s1\nsiteName: my-site\n", string(data))
}

func TestFileStoreReadsJSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	assert.NoError(t, afero.WriteFile(fs, "/state/binding.yaml", []byte(`{"siteId":"abc","siteName":"docs"}`), 0o644))

	b, err := binding.NewFileStore(fs, "/state").Binding(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, &binding.SiteBinding{SiteID: "abc", SiteName: "docs"}, b)
}

func TestFileStoreRejectsIncompleteFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	assert.NoError(t, afero.WriteFile(fs, "/state/binding.yaml", []byte("siteName: docs\n"), 0o644))

	_, err := binding.NewFileStore(fs, "/state").Binding(context.Background())
	assert.ErrorIs(t, err, binding.ErrIncomplete)
}
