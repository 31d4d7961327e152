package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// Cache is a disk-backed store of model responses keyed by prompt and
// model. Entries expire after the configured TTL; expired files are removed
// on read.
type Cache struct {
	dir    string
	ttl    time.Duration
	hits   int
	misses int
}

// cacheEntry is the on-disk record for a single cached response.
type cacheEntry struct {
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	Response  string    `json:"response"`
}

// NewCache creates a response cache rooted at dir. A zero or negative TTL
// means entries never expire.
func NewCache(dir string, ttl time.Duration) (cache *Cache, err error) {
	err = os.MkdirAll(dir, 0o755)
	if err != nil {
		err = errors.Wrapf(err, "failed to create cache directory %s", dir)
		return cache, err
	}

	cache = &Cache{
		dir: dir,
		ttl: ttl,
	}

	return cache, err
}

// Get returns the cached response for the prompt and model, if present and
// not expired.
func (c *Cache) Get(prompt, model string) (response string, hit bool) {
	path := c.entryPath(prompt, model)

	data, err := os.ReadFile(path)
	if err != nil {
		c.misses++
		return response, hit
	}

	var entry cacheEntry
	err = json.Unmarshal(data, &entry)
	if err != nil {
		// Corrupt entry. Remove it and treat as a miss.
		_ = os.Remove(path)
		c.misses++
		return response, hit
	}

	if c.ttl > 0 && time.Since(entry.CreatedAt) > c.ttl {
		_ = os.Remove(path)
		c.misses++
		return response, hit
	}

	c.hits++
	response = entry.Response
	hit = true

	return response, hit
}

// Put stores a response for the prompt and model.
func (c *Cache) Put(prompt, model, response string) (err error) {
	entry := cacheEntry{
		Model:     model,
		CreatedAt: time.Now().UTC(),
		Response:  response,
	}

	var data []byte
	data, err = json.MarshalIndent(entry, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal cache entry")
		return err
	}

	path := c.entryPath(prompt, model)
	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		err = errors.Wrapf(err, "failed to write cache entry %s", path)
		return err
	}

	return err
}

// Clear removes every entry from the cache.
func (c *Cache) Clear() (removed int, err error) {
	var entries []os.DirEntry
	entries, err = os.ReadDir(c.dir)
	if err != nil {
		err = errors.Wrapf(err, "failed to read cache directory %s", c.dir)
		return removed, err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		removeErr := os.Remove(filepath.Join(c.dir, entry.Name()))
		if removeErr != nil {
			err = errors.Wrapf(removeErr, "failed to remove cache entry %s", entry.Name())
			return removed, err
		}
		removed++
	}

	return removed, err
}

// Stats reports cache hits and misses for this process.
func (c *Cache) Stats() (hits, misses int) {
	hits = c.hits
	misses = c.misses
	return hits, misses
}

// entryPath derives the on-disk path for a prompt/model pair.
func (c *Cache) entryPath(prompt, model string) (path string) {
	sum := sha256.Sum256([]byte(prompt + "|" + model))
	key := hex.EncodeToString(sum[:])[:16]
	path = filepath.Join(c.dir, key+".json")
	return path
}
