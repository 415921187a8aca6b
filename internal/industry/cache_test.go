package industry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.json")

	c, err := LoadCache(path)
	require.NoError(t, err)
	assert.Zero(t, c.Len())

	c.Put("Hospital & Health Care", "HOSPITAL_HEALTH_CARE")
	c.Put("Fintech", "FINANCIAL_SERVICES")
	require.NoError(t, c.Save())

	reloaded, err := LoadCache(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Len())
	v, ok := reloaded.Get("Fintech")
	assert.True(t, ok)
	assert.Equal(t, "FINANCIAL_SERVICES", v)
}

func TestLoadCache_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	_, err := LoadCache(path)
	assert.Error(t, err)
}

func TestCache_SaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	c, err := LoadCache(filepath.Join(dir, "cache.json"))
	require.NoError(t, err)
	c.Put("a", "RETAIL")
	require.NoError(t, c.Save())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cache.json", entries[0].Name())
}

func TestIsEnum(t *testing.T) {
	assert.True(t, IsEnum("BANKING"))
	assert.True(t, IsEnum("MOBILE_GAMES"))
	assert.False(t, IsEnum("banking"))
	assert.False(t, IsEnum(""))
}
