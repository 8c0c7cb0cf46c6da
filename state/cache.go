// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"slices"

	"github.com/qianbin/directcache"

	"github.com/acreage-labs/acreage/cache"
)

// Cache caches raw storage blobs keyed by their db key, shared by all State
// instances over the same store.
type Cache struct {
	blobs *directcache.Cache
	stats cache.Stats
}

// NewCache creates a cache with the given capacity in bytes.
func NewCache(sizeBytes int) *Cache {
	return &Cache{blobs: directcache.New(sizeBytes)}
}

// Get returns a copy of the cached blob. An empty blob is a cached "not found".
func (c *Cache) Get(key []byte) ([]byte, bool) {
	var blob []byte
	if c.blobs.AdvGet(key, func(val []byte) {
		blob = slices.Clone(val)
	}, false) {
		c.stats.Hit()
		return blob, true
	}
	c.stats.Miss()
	return nil, false
}

// Set caches the blob under key.
func (c *Cache) Set(key, blob []byte) {
	_ = c.blobs.Set(key, blob)
}

// Stats returns the hit rate change flag and the hit and miss counters.
func (c *Cache) Stats() (bool, int64, int64) {
	return c.stats.Stats()
}
