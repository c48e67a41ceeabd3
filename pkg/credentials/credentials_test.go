package credentials_test

import (
	"context"
	"testing"

	"github.com/nais/sitedeploy/pkg/credentials"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func testStore(t *testing.T, store credentials.Store) {
	ctx := context.Background()

	_, err := store.Token(ctx)
	assert.ErrorIs(t, err, credentials.ErrNotFound)

	assert.ErrorIs(t, store.SetToken(ctx, ""), credentials.ErrEmptyToken)

	assert.NoError(t, store.SetToken(ctx, "first"))
	token, err := store.Token(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "first", token)

	// overwrite, verbatim
	assert.NoError(t, store.SetToken(ctx, "  second: with spaces "))
	token, err = store.Token(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "  second: with spaces ", token)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, credentials.NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	fs := afero.NewMemMapFs()
	testStore(t, credentials.NewFileStore(fs, "/home/user/.config/sitedeploy/credentials.yaml"))

	info, err := fs.Stat("/home/user/.config/sitedeploy/credentials.yaml")
	assert.NoError(t, err)
	assert.Equal(t, "-rw-------", info.Mode().Perm().String())
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()

	assert.NoError(t, credentials.NewFileStore(fs, "/creds.yaml").SetToken(ctx, "tok"))

	token, err := credentials.NewFileStore(fs, "/creds.yaml").Token(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "tok", token)
}

func TestFileStoreMalformed(t *testing.T) {
	fs := afero.NewMemMapFs()
	assert.NoError(t, afero.WriteFile(fs, "/creds.yaml", []byte("token: [unterminated"), 0o600))

	_, err := credentials.NewFileStore(fs, "/creds.yaml").Token(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, credentials.ErrNotFound)
}
