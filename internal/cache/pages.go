// Package cache holds fetched page bodies between crawl runs. The memory
// layer answers repeat fetches within one run; the optional disk layer
// survives restarts so re-crawling a slow source does not re-download
// unchanged pages.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// PageCache caches page bodies keyed by URL, memory first, disk second
type PageCache struct {
	memory *gocache.Cache
	dir    string // Empty disables the disk layer
	ttl    time.Duration
}

type diskEntry struct {
	URL       string    `json:"url"`
	Body      string    `json:"body"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewPageCache creates a page cache with the given TTL. A non-empty dir
// enables the persistent layer.
func NewPageCache(ttl time.Duration, dir string) *PageCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &PageCache{
		memory: gocache.New(ttl, 2*ttl),
		dir:    dir,
		ttl:    ttl,
	}
}

// Get returns the cached body for a URL. Disk hits are promoted to memory.
func (c *PageCache) Get(url string) (string, bool) {
	if body, found := c.memory.Get(url); found {
		return body.(string), true
	}

	if c.dir == "" {
		return "", false
	}

	raw, err := os.ReadFile(c.path(url))
	if err != nil {
		return "", false
	}

	var entry diskEntry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.URL != url {
		return "", false
	}
	if time.Now().After(entry.ExpiresAt) {
		os.Remove(c.path(url))
		return "", false
	}

	c.memory.Set(url, entry.Body, gocache.DefaultExpiration)
	return entry.Body, true
}

// Put stores a page body in both layers. Disk write failures are silent:
// the cache is an optimization, never a dependency.
func (c *PageCache) Put(url, body string) {
	c.memory.Set(url, body, gocache.DefaultExpiration)

	if c.dir == "" {
		return
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return
	}

	raw, err := json.Marshal(diskEntry{
		URL:       url,
		Body:      body,
		ExpiresAt: time.Now().Add(c.ttl),
	})
	if err != nil {
		return
	}
	os.WriteFile(c.path(url), raw, 0644)
}

func (c *PageCache) path(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])[:24]+".json")
}
