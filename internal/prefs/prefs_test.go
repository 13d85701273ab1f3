package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/domain"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p := Load("")
	assert.Empty(t, p.LastTab)
	assert.Equal(t, domain.CatalogUpcoming, p.Tab())
}

func TestLoad_ReadsDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "reel")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prefs.toml"), []byte("last_tab = \"popular\"\n"), 0o644))

	assert.Equal(t, domain.CatalogPopular, Load("").Tab())
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "prefs.toml")

	require.NoError(t, Save(path, Prefs{LastTab: string(domain.CatalogPopular)}))
	assert.Equal(t, domain.CatalogPopular, Load(path).Tab())
}

func TestLoad_InvalidFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte("not valid toml {{{\n"), 0o644))

	assert.Equal(t, domain.CatalogUpcoming, Load(path).Tab())
}

func TestTab_UnknownValue(t *testing.T) {
	assert.Equal(t, domain.CatalogUpcoming, Prefs{LastTab: "trending"}.Tab())
}
