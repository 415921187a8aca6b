package industry

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// Cache is a raw-value → enum mapping persisted as a JSON file. A missing
// file is an empty cache, not an error.
type Cache struct {
	path    string
	entries map[string]string
}

// LoadCache reads the cache file at path, tolerating a missing file.
func LoadCache(path string) (*Cache, error) {
	c := &Cache{path: path, entries: make(map[string]string)}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "industry: read cache %s", path)
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, eris.Wrapf(err, "industry: parse cache %s", path)
	}
	return c, nil
}

// Get returns the cached enum for a raw value.
func (c *Cache) Get(raw string) (string, bool) {
	v, ok := c.entries[raw]
	return v, ok
}

// Put records a raw → enum mapping in memory. Call Save to persist.
func (c *Cache) Put(raw, enum string) {
	c.entries[raw] = enum
}

// Len returns the number of cached mappings.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Save writes the cache file atomically via a temp file rename. Keys are
// sorted by json.Marshal so diffs stay stable across runs.
func (c *Cache) Save() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return eris.Wrap(err, "industry: encode cache")
	}
	tmp := c.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return eris.Wrapf(err, "industry: create cache dir for %s", c.path)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return eris.Wrapf(err, "industry: write cache %s", tmp)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return eris.Wrapf(err, "industry: rename cache %s", c.path)
	}
	return nil
}
