// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	lru "github.com/hashicorp/golang-lru"
)

const committedCacheSize = 4096

// committedCache caches values already persisted in kv, keyed by raw key.
// A cached nil value records a known-absent key.
type committedCache struct {
	cache *lru.Cache
}

func newCommittedCache(size int) *committedCache {
	cache, err := lru.New(size)
	if err != nil {
		return &committedCache{}
	}
	return &committedCache{cache: cache}
}

func (c *committedCache) Get(key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	if v, ok := c.cache.Get(key); ok {
		return v.([]byte), true
	}
	return nil, false
}

func (c *committedCache) Put(key string, val []byte) {
	if c.cache == nil {
		return
	}
	c.cache.Add(key, val)
}
