package convert_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/convert"
)

func testConfig(t *testing.T) *domain.Config {
	t.Helper()
	root := t.TempDir()
	return &domain.Config{
		Root:           root,
		Source:         filepath.Join(root, "data-src"),
		Output:         filepath.Join(root, "data"),
		Cache:          filepath.Join(root, domain.KilnDirName),
		Parallelism:    2,
		ExportTemplate: filepath.Join(root, "export.json"),
		Tools: domain.ToolsConfig{
			Animation: "spine",
			LipSync:   "rhubarb",
		},
		LipSync: domain.LipSyncConfig{Output: filepath.Join(root, "data", "rhubarb")},
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
}

func files() *fs.Files {
	return fs.NewFiles(fs.NewWalker())
}

func newHasher() *fs.Hasher {
	return fs.NewHasher()
}

func hashOf(t *testing.T, path string) string {
	t.Helper()
	h, err := fs.NewHasher().Hash(path)
	require.NoError(t, err)
	return h
}

func TestShouldSkip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "joy.spine")
	writeFile(t, path, "rig v1")

	hasher := fs.NewHasher()
	skip, hash, err := convert.ShouldSkip(hasher, "joy.spine", path, domain.NewChecksums())
	require.NoError(t, err)
	assert.False(t, skip)
	assert.Len(t, hash, 16)

	cache := domain.Checksums{"joy.spine": hash}
	skip, again, err := convert.ShouldSkip(hasher, "joy.spine", path, cache)
	require.NoError(t, err)
	assert.True(t, skip)
	assert.Equal(t, hash, again)

	// One changed byte invalidates the entry.
	writeFile(t, path, "rig v2")
	skip, changed, err := convert.ShouldSkip(hasher, "joy.spine", path, cache)
	require.NoError(t, err)
	assert.False(t, skip)
	assert.NotEqual(t, hash, changed)
}

func TestShouldSkip_MissingFile(t *testing.T) {
	_, _, err := convert.ShouldSkip(fs.NewHasher(), "gone.spine", filepath.Join(t.TempDir(), "gone.spine"), nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrIOFailure.Error())
}

func TestAssetName(t *testing.T) {
	assert.Equal(t, "joy", convert.AssetName(filepath.Join("characters", "joy", "joy.spine")))
}
