package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/abhisek/sqldrill/internal/logger"
)

// DefaultTTL is how long a cached value stays fresh.
const DefaultTTL = time.Hour

// Cache is a file-per-key store with timestamped expiry. It exists to
// avoid repeating remote grading and embedding calls; entries are
// derived and reproducible, so every failure mode degrades to a miss
// and concurrent writers are last-write-wins.
type Cache struct {
	dir string
	ttl time.Duration
	log *logger.Logger

	// now is stubbed in tests to exercise expiry without sleeping.
	now func() time.Time
}

// entry is the on-disk representation of one cached value.
type entry struct {
	CreatedAt int64           `json:"created_at"`
	Value     json.RawMessage `json:"value"`
}

// New creates a Cache rooted at dir, creating it if needed. ttl <= 0
// selects DefaultTTL.
func New(dir string, ttl time.Duration, log *logger.Logger) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl, log: log, now: time.Now}, nil
}

// Get loads the value stored under key into out. It returns false on a
// miss, which includes expiry, corruption, and any I/O error. Errors
// never escape the cache boundary.
func (c *Cache) Get(key string, out any) bool {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.Warn("cache read failed", "key", key, "error", err)
		}
		return false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.log.Warn("cache entry corrupt, discarding", "key", key, "error", err)
		_ = os.Remove(path)
		return false
	}

	if c.now().Unix()-e.CreatedAt > int64(c.ttl.Seconds()) {
		_ = os.Remove(path)
		return false
	}

	if err := json.Unmarshal(e.Value, out); err != nil {
		c.log.Warn("cache value unmarshal failed", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores value under key. Failures are logged and swallowed; the
// next Get simply misses.
func (c *Cache) Set(key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("cache value marshal failed", "key", key, "error", err)
		return
	}
	data, err := json.Marshal(entry{CreatedAt: c.now().Unix(), Value: raw})
	if err != nil {
		c.log.Warn("cache entry marshal failed", "key", key, "error", err)
		return
	}
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		c.log.Warn("cache write failed", "key", key, "error", err)
	}
}

// Clear removes every cached entry.
func (c *Cache) Clear() {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		c.log.Warn("cache clear failed", "error", err)
		return
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			c.log.Warn("cache remove failed", "file", m, "error", err)
		}
	}
}

// path maps a key to its cache file. Keys are hashed so arbitrary
// fingerprint strings stay filesystem-safe.
func (c *Cache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:16])+".json")
}
