package processor_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/nfse-reader/internal/processor"
	"github.com/rezonia/nfse-reader/internal/testutil/nfsetest"
)

func relative(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func scanFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	nfsetest.WriteFile(t, dir, "a.xml", nfsetest.Numbered(1))
	nfsetest.WriteFile(t, dir, "b.XML", nfsetest.Numbered(2))
	nfsetest.WriteFile(t, dir, "c.txt", "not xml")
	nfsetest.WriteFile(t, dir, "sub/d.xml", nfsetest.Numbered(3))
	nfsetest.WriteFile(t, dir, ".xml", nfsetest.Numbered(4))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "e.xml"), 0o755))
	return dir
}

func TestScanDir(t *testing.T) {
	dir := scanFixture(t)

	files, err := processor.ScanDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.xml", "sub/d.xml"}, relative(t, dir, files))
}

func TestScanDir_Empty(t *testing.T) {
	files, err := processor.ScanDir(t.TempDir())
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)
}

func TestScanDir_InvalidRoot(t *testing.T) {
	dir := t.TempDir()
	file := nfsetest.WriteFile(t, dir, "a.xml", nfsetest.Numbered(1))

	_, err := processor.ScanDir(filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = processor.ScanDir(file)
	require.Error(t, err)
	assert.ErrorIs(t, err, processor.ErrNotDirectory)
}

func TestHasXMLExtension(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.xml", true},
		{"dir/nested.xml", true},
		{"archive.tar.xml", true},
		{".hidden.xml", true},
		{"b.XML", false},
		{"c.xml.bak", false},
		{"xml", false},
		{".xml", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, processor.HasXMLExtension(tt.path))
		})
	}
}

func TestCollectPaths(t *testing.T) {
	dir := scanFixture(t)
	other := t.TempDir()
	explicit := nfsetest.WriteFile(t, other, "notes.txt", "explicit")
	missing := filepath.Join(other, "missing.xml")

	paths, err := processor.CollectPaths([]string{
		filepath.Join(dir, "*.xml"),
		filepath.Join(dir, "sub"),
		explicit,
		missing,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, ".xml"),
		filepath.Join(dir, "a.xml"),
		filepath.Join(dir, "sub", "d.xml"),
		explicit,
		missing,
	}, paths)
}

func TestCollectPaths_LiteralNameWithMetacharacters(t *testing.T) {
	dir := t.TempDir()
	literal := nfsetest.WriteFile(t, dir, "nota[1].xml", nfsetest.Numbered(1))
	nfsetest.WriteFile(t, dir, "nota1.xml", nfsetest.Numbered(2))
	brackets := nfsetest.WriteFile(t, dir, "[].xml", nfsetest.Numbered(3))

	paths, err := processor.CollectPaths([]string{literal, brackets})
	require.NoError(t, err)
	assert.Equal(t, []string{literal, brackets}, paths)

	paths, err = processor.CollectPaths([]string{filepath.Join(dir, "nota[0-9].xml")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "nota1.xml")}, paths)
}

func TestCollectPaths_InvalidPattern(t *testing.T) {
	_, err := processor.CollectPaths([]string{"[]"})
	require.Error(t, err)
}
