package fetcher

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestExtractZIP_FiltersByExtension(t *testing.T) {
	zipPath := writeZip(t, map[string]string{
		"0001.yaml":  "info: {}",
		"0002.yaml":  "info: {}",
		"README.txt": "notes",
	})
	dest := t.TempDir()

	paths, err := ExtractZIP(zipPath, dest, ".yaml")
	require.NoError(t, err)

	require.Len(t, paths, 2)
	for _, p := range paths {
		assert.Equal(t, ".yaml", filepath.Ext(p))
		assert.FileExists(t, p)
	}
	assert.NoFileExists(t, filepath.Join(dest, "README.txt"))
}

func TestExtractZIP_FlattensDirectories(t *testing.T) {
	zipPath := writeZip(t, map[string]string{
		"ipl/season_2025/0001.yaml": "info: {}",
	})
	dest := t.TempDir()

	paths, err := ExtractZIP(zipPath, dest, ".yaml")
	require.NoError(t, err)

	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(dest, "0001.yaml"), paths[0])
}

func TestExtractZIP_NeverEscapesDest(t *testing.T) {
	zipPath := writeZip(t, map[string]string{
		"../../evil.yaml": "info: {}",
	})
	dest := t.TempDir()

	paths, err := ExtractZIP(zipPath, dest, ".yaml")
	require.NoError(t, err)

	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(dest, "evil.yaml"), paths[0])
	assert.NoFileExists(t, filepath.Join(filepath.Dir(filepath.Dir(dest)), "evil.yaml"))
}

func TestExtractZIP_PreservesContent(t *testing.T) {
	zipPath := writeZip(t, map[string]string{
		"0001.yaml": "info:\n  venue: Eden Gardens\n",
	})
	dest := t.TempDir()

	paths, err := ExtractZIP(zipPath, dest, "")
	require.NoError(t, err)
	require.Len(t, paths, 1)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "info:\n  venue: Eden Gardens\n", string(data))
}

func TestExtractZIP_MissingArchive(t *testing.T) {
	_, err := ExtractZIP(filepath.Join(t.TempDir(), "absent.zip"), t.TempDir(), ".yaml")
	require.Error(t, err)
}
