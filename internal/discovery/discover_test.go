package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func TestDiscover(t *testing.T) {
	root := makeTree(t, map[string]string{
		"a.sql":            "select 1;",
		"nested/b.SQL":     "select 2;",
		"nested/c.pgsql":   "select 3;",
		"notes.txt":        "not sql",
		"deep/er/d_up.sql": "select 4;",
	})

	files, err := Discover(root, Options{})
	require.NoError(t, err)

	var rel []string
	for _, f := range files {
		rel = append(rel, filepath.ToSlash(f.RelativePath))
		assert.True(t, filepath.IsAbs(f.Path))
		assert.False(t, f.ModTime.IsZero())
	}
	assert.ElementsMatch(t, []string{"a.sql", "nested/b.SQL", "deep/er/d_up.sql"}, rel)
}

func TestDiscover_Patterns(t *testing.T) {
	root := makeTree(t, map[string]string{
		"a.sql":   "",
		"b.pgsql": "",
		"c.psql":  "",
	})

	files, err := Discover(root, Options{Patterns: []string{"*.pgsql", "*.PSQL"}})
	require.NoError(t, err)
	require.Len(t, files, 2)

	_, err = Discover(root, Options{Patterns: []string{"[a-"}})
	assert.Error(t, err)
}

func TestDiscover_SingleFile(t *testing.T) {
	root := makeTree(t, map[string]string{"script.txt": "select 1;"})

	files, err := Discover(filepath.Join(root, "script.txt"), Options{Encoding: "latin1"})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "script.txt", files[0].RelativePath)
	assert.Equal(t, "latin1", files[0].Encoding)
}

func TestDiscover_NotFound(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"), Options{})
	assert.ErrorContains(t, err, "path not found")
}

func TestDiscoverPaths(t *testing.T) {
	root := makeTree(t, map[string]string{
		"b.sql":     "",
		"a/one.sql": "",
	})

	files, err := DiscoverPaths([]string{root, filepath.Join(root, "b.sql"), filepath.Join(root, "a")}, Options{})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Less(t, files[0].Path, files[1].Path)
}

func TestReadFile(t *testing.T) {
	root := makeTree(t, map[string]string{
		"utf8.sql":   "select 'café';",
		"latin1.sql": "select 'caf\xe9';",
	})

	content, err := ReadFile(&DiscoveredFile{Path: filepath.Join(root, "utf8.sql")})
	require.NoError(t, err)
	assert.Equal(t, "select 'café';", content)

	content, err = ReadFile(&DiscoveredFile{Path: filepath.Join(root, "latin1.sql"), Encoding: "latin1"})
	require.NoError(t, err)
	assert.Equal(t, "select 'café';", content)

	_, err = ReadFile(&DiscoveredFile{Path: filepath.Join(root, "utf8.sql"), Encoding: "klingon"})
	assert.ErrorContains(t, err, "unknown encoding")
}

func TestValidateEncoding(t *testing.T) {
	assert.NoError(t, ValidateEncoding(""))
	assert.NoError(t, ValidateEncoding("UTF-8"))
	assert.NoError(t, ValidateEncoding("windows-1252"))
	assert.Error(t, ValidateEncoding("klingon"))
}
