package cas_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/cas"
	"go.trai.ch/kiln/internal/core/domain"
)

func newStore(t *testing.T) (*cas.Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), domain.KilnDirName)
	return cas.NewStore(filepath.Join(dir, domain.ChecksumsFileName), filepath.Join(dir, domain.LockFileName)), dir
}

func TestStore_LoadMissing(t *testing.T) {
	store, _ := newStore(t)

	sums, err := store.Load()
	require.NoError(t, err)
	assert.NotNil(t, sums)
	assert.Empty(t, sums)
}

func TestStore_Persistence(t *testing.T) {
	store, dir := newStore(t)

	want := domain.Checksums{"data-src/joy.spine": "00000000deadbeef", "data-src/audio/de_007.ogg": "0123456789abcdef"}
	require.NoError(t, store.Save(want))

	reopened := cas.NewStore(filepath.Join(dir, domain.ChecksumsFileName), filepath.Join(dir, domain.LockFileName))
	got, err := reopened.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestStore_SaveNil(t *testing.T) {
	store, _ := newStore(t)

	require.NoError(t, store.Save(nil))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_Corrupted(t *testing.T) {
	store, dir := newStore(t)
	require.NoError(t, os.MkdirAll(dir, domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ChecksumsFileName), []byte("{not json"), domain.FilePerm))

	_, err := store.Load()
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrCacheUnmarshalFailed.Error())
}

func TestStore_EmptyFile(t *testing.T) {
	store, dir := newStore(t)
	require.NoError(t, os.MkdirAll(dir, domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ChecksumsFileName), nil, domain.FilePerm))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_Lock(t *testing.T) {
	first, dir := newStore(t)
	second := cas.NewStore(filepath.Join(dir, domain.ChecksumsFileName), filepath.Join(dir, domain.LockFileName))

	require.NoError(t, first.Acquire())

	err := second.Acquire()
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrLocked.Error())

	require.NoError(t, first.Release())
	require.NoError(t, second.Acquire())
	require.NoError(t, second.Release())
}
