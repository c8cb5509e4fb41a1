package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_url = "test.db"
store_dir = "/store"
delegate_dirs = ["/a", "/b"]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test.db", cfg.DBURL)
	assert.Equal(t, "/store", cfg.StoreDir)
	assert.Equal(t, []string{"/a", "/b"}, cfg.DelegateDirs)
}

func TestLoadMissingFileIsNotAnErrorWhenEnvSuppliesDBURL(t *testing.T) {
	t.Setenv("FFS_DB_URL", "env.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.DBURL)
}

func TestLoadRequiresDBURL(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_url = "file.db"
store_dir = "/from-file"
`), 0o644))

	t.Setenv("FFS_DB_URL", "env.db")
	t.Setenv("FFS_STORE_DIR", "/from-env")
	t.Setenv("FFS_DELEGATE_DIRS", "/x,/y,/z")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.DBURL)
	assert.Equal(t, "/from-env", cfg.StoreDir)
	assert.Equal(t, []string{"/x", "/y", "/z"}, cfg.DelegateDirs)
}

func TestSplitNonEmpty(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitNonEmpty("a,b,c", ','))
	assert.Equal(t, []string{"a", "c"}, splitNonEmpty("a,,c", ','))
	assert.Nil(t, splitNonEmpty("", ','))
	assert.Equal(t, []string{"a"}, splitNonEmpty("a", ','))
}
