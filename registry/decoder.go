// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/linkedin/avrogo/codec"
)

// CachingDecoder glues Unframe, a Client, and a codec.Builder into a
// single Decode call: a per-schema-id decoder is compiled at most once,
// under double-checked locking, and kept for the process lifetime. There
// is no TTL eviction; schema ids are immutable once registered.
type CachingDecoder struct {
	client  Client
	builder *codec.Builder

	mu       sync.RWMutex
	decoders map[uint32]func(buf []byte) (interface{}, []byte, error)

	buildMu  sync.Mutex
	inFlight map[uint32]*sync.Mutex
}

// NewCachingDecoder returns a CachingDecoder that resolves unknown schema
// ids through client and compiles them with builder.
func NewCachingDecoder(client Client, builder *codec.Builder) *CachingDecoder {
	return &CachingDecoder{
		client:   client,
		builder:  builder,
		decoders: map[uint32]func(buf []byte) (interface{}, []byte, error){},
		inFlight: map[uint32]*sync.Mutex{},
	}
}

// Decode unframes wire, resolves its schema id to a compiled decoder
// (building and caching one on first use), and returns the decoded value
// as an interface{} per the dynamic case's tagged-union/map/slice
// rendering.
func (d *CachingDecoder) Decode(ctx context.Context, wire []byte) (interface{}, []byte, error) {
	id, payload, err := Unframe(wire)
	if err != nil {
		return nil, nil, err
	}

	decode, err := d.getDecoder(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	val, rest, err := decode(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("registry: decode schema id %d: %w", id, err)
	}
	return val, rest, nil
}

func (d *CachingDecoder) getDecoder(ctx context.Context, id uint32) (func(buf []byte) (interface{}, []byte, error), error) {
	d.mu.RLock()
	dec, ok := d.decoders[id]
	d.mu.RUnlock()
	if ok {
		return dec, nil
	}

	lock := d.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	d.mu.RLock()
	dec, ok = d.decoders[id]
	d.mu.RUnlock()
	if ok {
		return dec, nil
	}

	doc, err := d.client.GetSchemaByID(ctx, int(id))
	if err != nil {
		return nil, fmt.Errorf("registry: fetch schema id %d: %w", id, err)
	}
	s, err := d.builder.Compile(doc)
	if err != nil {
		return nil, fmt.Errorf("registry: compile schema id %d: %w", id, err)
	}
	dec, err = codec.BuildBinaryDecoder[interface{}](d.builder, s)
	if err != nil {
		return nil, fmt.Errorf("registry: build decoder for schema id %d: %w", id, err)
	}

	d.mu.Lock()
	d.decoders[id] = dec
	d.mu.Unlock()
	return dec, nil
}

func (d *CachingDecoder) lockFor(id uint32) *sync.Mutex {
	d.buildMu.Lock()
	defer d.buildMu.Unlock()
	lock, ok := d.inFlight[id]
	if !ok {
		lock = &sync.Mutex{}
		d.inFlight[id] = lock
	}
	return lock
}
