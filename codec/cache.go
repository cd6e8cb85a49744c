// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

package codec

import (
	"reflect"
	"sync"

	"github.com/linkedin/avrogo/schema"
)

// cacheKey identifies one compiled (schema, host type) pairing by the
// schema's CRC-64 fingerprint rather than by pointer identity, so two
// schema.Schema trees parsed from the same JSON document (e.g. fetched
// twice from a registry) share one cached codec.
type cacheKey struct {
	fingerprint uint64
	typ         reflect.Type
}

// Cache compiles and memoizes ValueCodecs keyed by (schema fingerprint,
// host type), using the double-checked-locking pattern: a read lock
// covers the common hit path, and a second, per-key mutex ensures a
// concurrent miss on the same key builds the codec exactly once. Failed
// builds are not cached; a later Get for the same key retries.
type Cache struct {
	builder *Builder

	mu     sync.RWMutex
	codecs map[cacheKey]*ValueCodec

	buildMu sync.Mutex
	inFlight map[cacheKey]*sync.Mutex
}

// NewCache returns a Cache that compiles misses with b.
func NewCache(b *Builder) *Cache {
	return &Cache{
		builder:  b,
		codecs:   map[cacheKey]*ValueCodec{},
		inFlight: map[cacheKey]*sync.Mutex{},
	}
}

// Get returns the compiled codec for (s, t), building and caching it on
// first request. Concurrent Get calls for the same key block on each
// other rather than duplicating the build.
func (c *Cache) Get(s schema.Schema, t reflect.Type) (*ValueCodec, error) {
	fp, err := schema.Fingerprint(s)
	if err != nil {
		return nil, err
	}
	key := cacheKey{fingerprint: fp, typ: t}

	c.mu.RLock()
	vc, ok := c.codecs[key]
	c.mu.RUnlock()
	if ok {
		return vc, nil
	}

	lock := c.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	c.mu.RLock()
	vc, ok = c.codecs[key]
	c.mu.RUnlock()
	if ok {
		return vc, nil
	}

	vc, err = c.builder.build(newBuildState(), s, t, "")
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.codecs[key] = vc
	c.mu.Unlock()
	return vc, nil
}

func (c *Cache) lockFor(key cacheKey) *sync.Mutex {
	c.buildMu.Lock()
	defer c.buildMu.Unlock()
	lock, ok := c.inFlight[key]
	if !ok {
		lock = &sync.Mutex{}
		c.inFlight[key] = lock
	}
	return lock
}
